/*
Package config loads server configuration from the environment.

PURPOSE:
  One flat struct, populated from PEERWISE_* variables with sane
  defaults, so the binary runs with zero configuration in development.

VARIABLES:
  PEERWISE_PORT             HTTP listen port        (default 8080)
  PEERWISE_DB               SQLite database path    (default peerwise.db)
  PEERWISE_ALLOWED_ORIGINS  CORS / websocket origins (default *)
  PEERWISE_LOG_LEVEL        logrus level            (default info)
*/
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Config holds everything the server needs to start.
type Config struct {
	Port           int      `envconfig:"PORT" default:"8080"`
	DB             string   `envconfig:"DB" default:"peerwise.db"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the environment with the PEERWISE prefix.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("peerwise", &c); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &c, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseLogLevel maps the configured level to a logrus level, falling
// back to info on garbage.
func (c *Config) ParseLogLevel() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
