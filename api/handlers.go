/*
handlers.go - HTTP API handlers for the credit engine

PURPOSE:
  Exposes the forum credit engine via REST. Handles HTTP request and
  response, JSON serialization, and delegates to the domain packages.

ENDPOINTS:
  Accounts:
    POST   /api/accounts                    Register account
    GET    /api/accounts/{id}               Account details
    GET    /api/accounts/{id}/ledger        Credit history + audit

  Threads:
    GET    /api/threads                     List problems (newest first)
    POST   /api/threads                     Post a problem
    GET    /api/threads/{id}                Thread details
    GET    /api/threads/{id}/responses      List responses
    POST   /api/threads/{id}/responses      Post a response

  Responses:
    POST   /api/responses/{id}/vote         Cast a vote event
    POST   /api/responses/{id}/best-answer  Award best answer

  Rewards:
    GET    /api/rewards                     Reward catalog
    POST   /api/rewards/{id}/redeem         Redeem a reward
    GET    /api/ranks                       Rank store tiers
    POST   /api/ranks/{name}/claim          Buy a cosmetic rank

  Leaderboards:
    GET    /api/leaderboard/{metric}        alltime|upvoted|bestanswer|weekly

ACTOR IDENTIFICATION:
  The acting user is the X-User-ID header. There is no authentication;
  the deployment fronts this with its own auth proxy.

ERROR HANDLING:
  Errors map to status by category:
  - 400: Validation errors, insufficient credits
  - 403: Self-vote, self-award, non-author award
  - 404: Missing account/thread/response/reward/metric
  - 409: Already awarded/redeemed/claimed, version conflict
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/forum"
	"github.com/peerwise/forum-engine/leaderboard"
	"github.com/peerwise/forum-engine/rewards"
)

// Store is what the handlers read from directly; mutations go through
// the engine and the rewards service.
type Store interface {
	forum.Store
	leaderboard.Source
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Ledger  credit.LedgerReader
	Engine  *forum.Engine
	Rewards *rewards.Service
}

// NewHandler creates a handler over the given dependencies.
func NewHandler(store Store, ledger credit.LedgerReader, engine *forum.Engine, svc *rewards.Service) *Handler {
	return &Handler{Store: store, Ledger: ledger, Engine: engine, Rewards: svc}
}

// actor returns the requesting user, or "" when the header is absent.
func actor(r *http.Request) credit.UserID {
	return credit.UserID(strings.TrimSpace(r.Header.Get("X-User-ID")))
}

// requireActor writes a 400 and returns "" when no actor is present.
func requireActor(w http.ResponseWriter, r *http.Request) credit.UserID {
	id := actor(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing X-User-ID header", nil)
	}
	return id
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// CreateAccount registers a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "id and username are required", nil)
		return
	}

	account := credit.NewAccount(credit.UserID(req.ID), req.Username)
	if err := h.Store.CreateAccount(r.Context(), account); err != nil {
		writeDomainError(w, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := credit.UserID(chi.URLParam(r, "id"))
	account, err := h.Store.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

// GetLedger returns an account's credit history and the replay audit.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := credit.UserID(chi.URLParam(r, "id"))

	account, err := h.Store.GetAccount(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get account", err)
		return
	}
	entries, err := h.Ledger.Entries(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to read ledger", err)
		return
	}

	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LedgerEntryDTO{
			ID:        string(e.ID),
			Delta:     e.Delta.Int64(),
			Type:      string(e.Type),
			Reference: e.Reference,
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		}
	}

	replayed := credit.Replay(entries)
	writeJSON(w, http.StatusOK, LedgerDTO{
		Entries:    dtos,
		Balance:    account.Credits.Int64(),
		Replayed:   replayed.Int64(),
		Reconciled: replayed.Equal(account.Credits),
	})
}

// =============================================================================
// THREAD HANDLERS
// =============================================================================

// ListThreads returns all threads, newest first.
func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threads, err := h.Store.ListThreads(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list threads", err)
		return
	}

	dtos := make([]ThreadDTO, len(threads))
	for i, t := range threads {
		count, err := h.Store.CountResponses(ctx, t.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to count responses", err)
			return
		}
		dtos[i] = ThreadDTO{
			ID:            string(t.ID),
			AuthorID:      string(t.AuthorID),
			Title:         t.Title,
			Description:   t.Description,
			ResponseCount: count,
			CreatedAt:     t.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateThread posts a new problem.
func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	author := requireActor(w, r)
	if author == "" {
		return
	}
	var req CreateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required", nil)
		return
	}

	thread, err := h.Engine.CreateThread(r.Context(), author, req.Title, req.Description)
	if err != nil {
		writeDomainError(w, "Failed to create thread", err)
		return
	}
	writeJSON(w, http.StatusCreated, ThreadDTO{
		ID:          string(thread.ID),
		AuthorID:    string(thread.AuthorID),
		Title:       thread.Title,
		Description: thread.Description,
		CreatedAt:   thread.CreatedAt,
	})
}

// GetThread returns a single thread.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := forum.ThreadID(chi.URLParam(r, "id"))
	thread, err := h.Store.GetThread(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get thread", err)
		return
	}
	count, err := h.Store.CountResponses(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count responses", err)
		return
	}
	writeJSON(w, http.StatusOK, ThreadDTO{
		ID:            string(thread.ID),
		AuthorID:      string(thread.AuthorID),
		Title:         thread.Title,
		Description:   thread.Description,
		ResponseCount: count,
		CreatedAt:     thread.CreatedAt,
	})
}

// ListResponses returns a thread's responses, newest first, with the
// requester's vote state stamped when X-User-ID is present.
func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := forum.ThreadID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetThread(ctx, id); err != nil {
		writeDomainError(w, "Failed to get thread", err)
		return
	}
	responses, err := h.Store.ListResponses(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list responses", err)
		return
	}

	viewer := actor(r)
	dtos := make([]ResponseDTO, len(responses))
	for i, resp := range responses {
		dtos[i] = toResponseDTO(resp, viewer)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateResponse posts an answer to a thread.
func (h *Handler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	author := requireActor(w, r)
	if author == "" {
		return
	}
	var req CreateResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required", nil)
		return
	}

	id := forum.ThreadID(chi.URLParam(r, "id"))
	resp, err := h.Engine.AddResponse(r.Context(), id, author, req.Content, req.FileURL, req.YouTubeURL)
	if err != nil {
		writeDomainError(w, "Failed to create response", err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponseDTO(resp, author))
}

// =============================================================================
// VOTE AND AWARD HANDLERS
// =============================================================================

// CastVote applies a vote event to a response.
func (h *Handler) CastVote(w http.ResponseWriter, r *http.Request) {
	voter := requireActor(w, r)
	if voter == "" {
		return
	}
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := forum.ResponseID(chi.URLParam(r, "id"))
	result, err := h.Engine.CastVote(r.Context(), id, voter, forum.VoteType(req.Type))
	if err != nil {
		writeDomainError(w, "Failed to cast vote", err)
		return
	}
	writeJSON(w, http.StatusOK, VoteResponseDTO{
		ResponseID: string(id),
		ThumbsUp:   result.ThumbsUp,
		ThumbsDown: result.ThumbsDown,
		VoterState: string(result.VoterState),
	})
}

// AwardBestAnswer marks a response as its thread's best answer.
func (h *Handler) AwardBestAnswer(w http.ResponseWriter, r *http.Request) {
	caller := requireActor(w, r)
	if caller == "" {
		return
	}

	id := forum.ResponseID(chi.URLParam(r, "id"))
	result, err := h.Engine.AwardBestAnswer(r.Context(), id, caller)
	if err != nil {
		writeDomainError(w, "Failed to award best answer", err)
		return
	}
	writeJSON(w, http.StatusOK, AwardResponseDTO{
		ResponseID: string(result.ResponseID),
		AuthorID:   string(result.AuthorID),
		Awarded:    result.Awarded,
	})
}

// =============================================================================
// REWARD AND RANK HANDLERS
// =============================================================================

// ListRewards returns the reward catalog.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.Rewards.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rewards", err)
		return
	}
	dtos := make([]RewardDTO, len(catalog))
	for i, rw := range catalog {
		dtos[i] = toRewardDTO(rw)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RedeemReward spends credits on a catalog reward.
func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	account := requireActor(w, r)
	if account == "" {
		return
	}

	id := rewards.RewardID(chi.URLParam(r, "id"))
	result, err := h.Rewards.Redeem(r.Context(), account, id)
	if err != nil {
		writeDomainError(w, "Failed to redeem reward", err)
		return
	}
	writeJSON(w, http.StatusOK, RedemptionDTO{
		RewardName:       result.RewardName,
		RemainingCredits: result.RemainingCredits,
	})
}

// ListRanks returns the purchasable rank tiers.
func (h *Handler) ListRanks(w http.ResponseWriter, r *http.Request) {
	dtos := make([]RankTierDTO, len(rewards.RankStoreTiers))
	for i, t := range rewards.RankStoreTiers {
		dtos[i] = RankTierDTO{Name: t.Name, Cost: t.Cost}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ClaimRank buys a cosmetic rank tier.
func (h *Handler) ClaimRank(w http.ResponseWriter, r *http.Request) {
	account := requireActor(w, r)
	if account == "" {
		return
	}

	name := chi.URLParam(r, "name")
	result, err := h.Rewards.ClaimRank(r.Context(), account, name)
	if err != nil {
		writeDomainError(w, "Failed to claim rank", err)
		return
	}
	writeJSON(w, http.StatusOK, ClaimDTO{
		ClaimedRank:      result.ClaimedRank,
		RemainingCredits: result.RemainingCredits,
	})
}

// =============================================================================
// LEADERBOARD HANDLERS
// =============================================================================

// GetLeaderboard computes the requested board. Optional ?limit= caps it.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	metric := leaderboard.Metric(chi.URLParam(r, "metric"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	rows, err := leaderboard.Board(r.Context(), h.Store, metric, limit)
	if err != nil {
		writeDomainError(w, "Failed to compute leaderboard", err)
		return
	}
	if rows == nil {
		rows = []leaderboard.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a domain error to its HTTP status by category.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case credit.IsValidation(err) || credit.IsInsufficient(err):
		writeError(w, http.StatusBadRequest, message, err)
	case credit.IsForbidden(err):
		writeError(w, http.StatusForbidden, message, err)
	case credit.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case credit.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
