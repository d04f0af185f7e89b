/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/accounts/*     Accounts and credit history
  /api/threads/*      Problems and responses
  /api/responses/*    Votes and best-answer awards
  /api/rewards/*      Reward catalog and redemption
  /api/ranks/*        Rank store
  /api/leaderboard/*  Derived boards
  /ws                 Websocket events

SECURITY NOTE:
  No authentication middleware. The actor comes from X-User-ID; a real
  deployment puts an auth proxy in front.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured. ws may be nil
// when realtime is disabled (tests).
func NewRouter(h *Handler, ws http.Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
			r.Get("/{id}/ledger", h.GetLedger)
		})

		r.Route("/threads", func(r chi.Router) {
			r.Get("/", h.ListThreads)
			r.Post("/", h.CreateThread)
			r.Get("/{id}", h.GetThread)
			r.Get("/{id}/responses", h.ListResponses)
			r.Post("/{id}/responses", h.CreateResponse)
		})

		r.Route("/responses", func(r chi.Router) {
			r.Post("/{id}/vote", h.CastVote)
			r.Post("/{id}/best-answer", h.AwardBestAnswer)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/", h.ListRewards)
			r.Post("/{id}/redeem", h.RedeemReward)
		})

		r.Route("/ranks", func(r chi.Router) {
			r.Get("/", h.ListRanks)
			r.Post("/{name}/claim", h.ClaimRank)
		})

		r.Get("/leaderboard/{metric}", h.GetLeaderboard)
	})

	// Websocket endpoint
	if ws != nil {
		r.Handle("/ws", ws)
	}

	return r
}
