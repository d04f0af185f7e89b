package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/forum"
	"github.com/peerwise/forum-engine/realtime"
	"github.com/peerwise/forum-engine/rewards"
	"github.com/peerwise/forum-engine/store/memory"
)

type testServer struct {
	router http.Handler
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	require.NoError(t, rewards.Seed(context.Background(), store))

	engine := forum.NewEngine(store, realtime.Nop{})
	svc := rewards.NewService(store, realtime.Nop{})
	handler := NewHandler(store, store, engine, svc)

	return &testServer{
		router: NewRouter(handler, nil, []string{"*"}),
		store:  store,
	}
}

// do sends a JSON request as the given user and decodes the response
// into out when it is non-nil.
func (s *testServer) do(t *testing.T, method, path, user string, body, out any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func (s *testServer) createAccount(t *testing.T, id, username string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/accounts", "",
		CreateAccountRequest{ID: id, Username: username}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *testServer) fund(t *testing.T, id credit.UserID, amount int64) {
	t.Helper()
	ctx := context.Background()
	a, err := s.store.GetAccount(ctx, id)
	require.NoError(t, err)
	a.Apply(credit.NewCredits(amount), credit.EarnedRanks)
	require.NoError(t, s.store.SaveAccount(ctx, a))
}

// postThread creates a thread and one response, returning both IDs.
func (s *testServer) postThread(t *testing.T, asker, answerer string) (thread, response string) {
	t.Helper()
	var td ThreadDTO
	rec := s.do(t, http.MethodPost, "/api/threads", asker,
		CreateThreadRequest{Title: "help", Description: "please"}, &td)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var rd ResponseDTO
	rec = s.do(t, http.MethodPost, "/api/threads/"+td.ID+"/responses", answerer,
		CreateResponseRequest{Content: "try this"}, &rd)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return td.ID, rd.ID
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func TestAccountEndpoints(t *testing.T) {
	s := newTestServer(t)

	s.createAccount(t, "u1", "alice")

	// Duplicate ID conflicts.
	rec := s.do(t, http.MethodPost, "/api/accounts", "",
		CreateAccountRequest{ID: "u1", Username: "impostor"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Missing fields are a client error.
	rec = s.do(t, http.MethodPost, "/api/accounts", "", CreateAccountRequest{ID: "u2"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var dto AccountDTO
	rec = s.do(t, http.MethodGet, "/api/accounts/u1", "", nil, &dto)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", dto.Username)
	assert.Equal(t, int64(0), dto.Credits)
	assert.Equal(t, "Newbie", dto.Rank)

	rec = s.do(t, http.MethodGet, "/api/accounts/ghost", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLedgerEndpoint_Reconciles(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "asker", "alice")
	s.createAccount(t, "answerer", "bob")
	s.createAccount(t, "voter", "carol")
	_, respID := s.postThread(t, "asker", "answerer")

	rec := s.do(t, http.MethodPost, "/api/responses/"+respID+"/vote", "voter",
		VoteRequest{Type: "up"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ledger LedgerDTO
	rec = s.do(t, http.MethodGet, "/api/accounts/answerer/ledger", "", nil, &ledger)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ledger.Entries, 1)
	assert.Equal(t, int64(5), ledger.Entries[0].Delta)
	assert.Equal(t, int64(5), ledger.Balance)
	assert.True(t, ledger.Reconciled)
}

// =============================================================================
// THREADS AND VOTES
// =============================================================================

func TestThreadEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "asker", "alice")
	s.createAccount(t, "answerer", "bob")

	// Posting without an actor is a client error.
	rec := s.do(t, http.MethodPost, "/api/threads", "",
		CreateThreadRequest{Title: "help"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	threadID, _ := s.postThread(t, "asker", "answerer")

	var threads []ThreadDTO
	rec = s.do(t, http.MethodGet, "/api/threads", "", nil, &threads)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, threads, 1)
	assert.Equal(t, 1, threads[0].ResponseCount)

	var responses []ResponseDTO
	rec = s.do(t, http.MethodGet, "/api/threads/"+threadID+"/responses", "answerer", nil, &responses)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, responses, 1)

	rec = s.do(t, http.MethodGet, "/api/threads/ghost", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoteEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "asker", "alice")
	s.createAccount(t, "answerer", "bob")
	s.createAccount(t, "voter", "carol")
	_, respID := s.postThread(t, "asker", "answerer")

	var result VoteResponseDTO
	rec := s.do(t, http.MethodPost, "/api/responses/"+respID+"/vote", "voter",
		VoteRequest{Type: "up"}, &result)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, result.ThumbsUp)
	assert.Equal(t, "up", result.VoterState)

	// Self-vote is forbidden.
	rec = s.do(t, http.MethodPost, "/api/responses/"+respID+"/vote", "answerer",
		VoteRequest{Type: "up"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown vote type is a client error.
	rec = s.do(t, http.MethodPost, "/api/responses/"+respID+"/vote", "voter",
		VoteRequest{Type: "sideways"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/responses/ghost/vote", "voter",
		VoteRequest{Type: "up"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The voter's state is stamped on listings.
	var threads []ThreadDTO
	rec = s.do(t, http.MethodGet, "/api/threads", "", nil, &threads)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, threads, 1)
	var responses []ResponseDTO
	rec = s.do(t, http.MethodGet, "/api/threads/"+threads[0].ID+"/responses", "voter", nil, &responses)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, responses, 1)
	assert.Equal(t, "up", responses[0].VoterState)
}

func TestBestAnswerEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "asker", "alice")
	s.createAccount(t, "answerer", "bob")
	s.createAccount(t, "other", "carol")
	threadID, respID := s.postThread(t, "asker", "answerer")

	// Only the thread author may award.
	rec := s.do(t, http.MethodPost, "/api/responses/"+respID+"/best-answer", "other", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var result AwardResponseDTO
	rec = s.do(t, http.MethodPost, "/api/responses/"+respID+"/best-answer", "asker", nil, &result)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, result.Awarded)
	assert.Equal(t, "answerer", result.AuthorID)

	// Second award on the thread conflicts.
	var rd ResponseDTO
	rec = s.do(t, http.MethodPost, "/api/threads/"+threadID+"/responses", "other",
		CreateResponseRequest{Content: "me too"}, &rd)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/responses/"+rd.ID+"/best-answer", "asker", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// REWARDS, RANKS, LEADERBOARD
// =============================================================================

func TestRewardEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "u1", "alice")

	var catalog []RewardDTO
	rec := s.do(t, http.MethodGet, "/api/rewards", "", nil, &catalog)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, catalog, 4)

	// Broke account: 400 with the shortfall in the details.
	rec = s.do(t, http.MethodPost, "/api/rewards/merch-sticker-pack/redeem", "u1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.fund(t, "u1", 200)
	var result RedemptionDTO
	rec = s.do(t, http.MethodPost, "/api/rewards/merch-sticker-pack/redeem", "u1", nil, &result)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(50), result.RemainingCredits)

	rec = s.do(t, http.MethodPost, "/api/rewards/ghost/redeem", "u1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRankEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "u1", "alice")
	s.fund(t, "u1", 100)

	var tiers []RankTierDTO
	rec := s.do(t, http.MethodGet, "/api/ranks", "", nil, &tiers)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, tiers, 5)
	assert.Equal(t, "Bronze", tiers[0].Name)

	var claim ClaimDTO
	rec = s.do(t, http.MethodPost, "/api/ranks/Bronze/claim", "u1", nil, &claim)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bronze", claim.ClaimedRank)
	assert.Equal(t, int64(50), claim.RemainingCredits)

	// Repeat claim of the held tier conflicts.
	rec = s.do(t, http.MethodPost, "/api/ranks/Bronze/claim", "u1", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/ranks/Mythril/claim", "u1", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboardEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "u1", "alice")
	s.createAccount(t, "u2", "bob")
	s.fund(t, "u2", 700)

	var rows []struct {
		UserID string `json:"user_id"`
		Metric int64  `json:"metric"`
		Rank   string `json:"rank"`
	}
	rec := s.do(t, http.MethodGet, "/api/leaderboard/alltime", "", nil, &rows)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rows, 2)
	assert.Equal(t, "u2", rows[0].UserID)
	assert.Equal(t, "Guru", rows[0].Rank)

	rec = s.do(t, http.MethodGet, "/api/leaderboard/elo", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/leaderboard/alltime?limit=x", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
