/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the PeerWise credit engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from PEERWISE_* environment variables
  2. Initialize SQLite store and seed the reward catalog
  3. Start the websocket hub and wire the engine/service to it
  4. Configure the HTTP router
  5. Serve with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  PEERWISE_DB=./data/peerwise.db ./server

  # Run with in-memory database on another port
  PEERWISE_DB=":memory:" PEERWISE_PORT=3000 ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/peerwise/forum-engine/api"
	"github.com/peerwise/forum-engine/config"
	"github.com/peerwise/forum-engine/forum"
	"github.com/peerwise/forum-engine/realtime"
	"github.com/peerwise/forum-engine/rewards"
	"github.com/peerwise/forum-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	log.SetLevel(cfg.ParseLogLevel())
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Store
	store, err := sqlite.New(cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	ctx := context.Background()
	if err := rewards.Seed(ctx, store); err != nil {
		log.WithError(err).Fatal("failed to seed reward catalog")
	}

	// Realtime hub
	checkOrigin := originChecker(cfg.AllowedOrigins)
	hub := realtime.NewHub(realtime.NewMemoryRegistry(), checkOrigin)

	// Engines
	engine := forum.NewEngine(store, hub)
	svc := rewards.NewService(store, hub)

	// Router
	handler := api.NewHandler(store, store, engine, svc)
	router := api.NewRouter(handler, hub, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{"addr": cfg.Addr(), "db": cfg.DB}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server stopped")
}

// originChecker builds the websocket origin check from the CORS list.
// "*" accepts everything.
func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return nil // hub default accepts any origin
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
