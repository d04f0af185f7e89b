package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/forum"
)

func seed(t *testing.T) (*Store, *forum.Response, *credit.Account) {
	t.Helper()
	ctx := context.Background()
	s := New()

	author := credit.NewAccount("author", "alice")
	require.NoError(t, s.CreateAccount(ctx, author))
	require.NoError(t, s.CreateThread(ctx, &forum.Thread{
		ID: "t1", AuthorID: "asker", Title: "q", CreatedAt: time.Now().UTC(),
	}))

	resp := &forum.Response{
		ID: "r1", ThreadID: "t1", AuthorID: "author",
		Content: "a", Voters: map[credit.UserID]forum.VoteType{},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateResponse(ctx, resp))
	return s, resp, author
}

func TestCreateAccount_Duplicate(t *testing.T) {
	s, _, _ := seed(t)
	err := s.CreateAccount(context.Background(), credit.NewAccount("author", "other"))
	assert.ErrorIs(t, err, credit.ErrAlreadyExists)
}

func TestGetAccount_ReturnsClone(t *testing.T) {
	s, _, _ := seed(t)
	ctx := context.Background()

	a, err := s.GetAccount(ctx, "author")
	require.NoError(t, err)
	a.Credits = credit.NewCredits(999)

	fresh, err := s.GetAccount(ctx, "author")
	require.NoError(t, err)
	assert.True(t, fresh.Credits.IsZero(), "mutating a read copy must not leak into the store")
}

func TestSaveAccount_VersionConflict(t *testing.T) {
	s, _, _ := seed(t)
	ctx := context.Background()

	// GIVEN two readers holding the same version
	first, err := s.GetAccount(ctx, "author")
	require.NoError(t, err)
	second, err := s.GetAccount(ctx, "author")
	require.NoError(t, err)

	// WHEN the first commits
	first.Apply(credit.NewCredits(5), credit.EarnedRanks)
	require.NoError(t, s.SaveAccount(ctx, first))

	// THEN the second's write is stale
	second.Apply(credit.NewCredits(25), credit.EarnedRanks)
	err = s.SaveAccount(ctx, second)
	assert.ErrorIs(t, err, credit.ErrConcurrentModification)

	// And the first write survived untouched.
	fresh, err := s.GetAccount(ctx, "author")
	require.NoError(t, err)
	assert.Equal(t, int64(5), fresh.Credits.Int64())
}

func TestCommitVote_AllOrNothing(t *testing.T) {
	s, resp, author := seed(t)
	ctx := context.Background()

	// GIVEN a response whose version has moved on
	stale := resp.Clone()
	resp.ThumbsUp = 1
	resp.Voters["v1"] = forum.VoteUp
	entry := credit.NewEntry(author.ID, credit.NewCredits(5), credit.EntryVote, "r1", "vote cast")
	require.NoError(t, s.CommitVote(ctx, resp, author, entry))

	// WHEN committing from the stale read
	stale.ThumbsUp = 1
	stale.Voters["v2"] = forum.VoteUp
	staleAuthor, err := s.GetAccount(ctx, author.ID)
	require.NoError(t, err)
	entry2 := credit.NewEntry(author.ID, credit.NewCredits(5), credit.EntryVote, "r1", "vote cast")
	err = s.CommitVote(ctx, stale, staleAuthor, entry2)
	assert.ErrorIs(t, err, credit.ErrConcurrentModification)

	// THEN neither the account nor the ledger saw the failed commit
	entries, err := s.Entries(ctx, author.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCommitVote_RejectsStaleAccount(t *testing.T) {
	s, resp, author := seed(t)
	ctx := context.Background()

	// The account moves independently of the response.
	other, err := s.GetAccount(ctx, author.ID)
	require.NoError(t, err)
	require.NoError(t, s.SaveAccount(ctx, other))

	entry := credit.NewEntry(author.ID, credit.NewCredits(5), credit.EntryVote, "r1", "vote cast")
	err = s.CommitVote(ctx, resp, author, entry)
	assert.ErrorIs(t, err, credit.ErrConcurrentModification)

	// The response version must not have been bumped by the failed commit.
	fresh, err := s.GetResponse(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Version)
}

func TestCommitAward_OnePerThread(t *testing.T) {
	s, resp, author := seed(t)
	ctx := context.Background()

	sibling := &forum.Response{
		ID: "r2", ThreadID: "t1", AuthorID: "author",
		Content: "b", Voters: map[credit.UserID]forum.VoteType{},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateResponse(ctx, sibling))

	resp.IsBestAnswer = true
	entry := credit.NewEntry(author.ID, credit.NewCredits(25), credit.EntryBestAnswer, "r1", "best answer awarded")
	require.NoError(t, s.CommitAward(ctx, resp, author, entry))

	// WHEN awarding the sibling in the same thread
	sibling.IsBestAnswer = true
	freshAuthor, err := s.GetAccount(ctx, author.ID)
	require.NoError(t, err)
	entry2 := credit.NewEntry(author.ID, credit.NewCredits(25), credit.EntryBestAnswer, "r2", "best answer awarded")
	err = s.CommitAward(ctx, sibling, freshAuthor, entry2)
	assert.ErrorIs(t, err, credit.ErrAlreadyAwarded)
}

func TestListThreads_NewestFirst(t *testing.T) {
	s, _, _ := seed(t)
	ctx := context.Background()

	require.NoError(t, s.CreateThread(ctx, &forum.Thread{
		ID: "t2", AuthorID: "asker", Title: "newer",
		CreatedAt: time.Now().UTC().Add(time.Minute),
	}))

	threads, err := s.ListThreads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, forum.ThreadID("t2"), threads[0].ID)
}

func TestCreateResponse_MissingThread(t *testing.T) {
	s, _, _ := seed(t)
	err := s.CreateResponse(context.Background(), &forum.Response{
		ID: "rX", ThreadID: "missing", AuthorID: "author",
	})
	assert.ErrorIs(t, err, credit.ErrNotFound)
}
