package credit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// RANK TABLE
// =============================================================================

func TestRankFor_Thresholds(t *testing.T) {
	cases := []struct {
		credits int64
		want    string
	}{
		{0, "Newbie"},
		{99, "Newbie"},
		{100, "Scholar"},
		{499, "Scholar"},
		{500, "Guru"},
		{1999, "Guru"},
		{2000, "Sage"},
		{4999, "Sage"},
		{5000, "Elite Master"},
		{123456, "Elite Master"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EarnedRanks.RankFor(NewCredits(tc.credits)),
			"credits=%d", tc.credits)
	}
}

func TestRankFor_NegativeBalance(t *testing.T) {
	// GIVEN a balance pushed below zero by downvotes
	// THEN the rank is the baseline, not empty
	assert.Equal(t, "Newbie", EarnedRanks.RankFor(NewCredits(-10)))
}

func TestTable_Baseline(t *testing.T) {
	assert.Equal(t, "Newbie", EarnedRanks.Baseline())
	assert.Equal(t, "", Table{}.Baseline())
}

// =============================================================================
// ACCOUNT
// =============================================================================

func TestAccount_ApplyRederivesRank(t *testing.T) {
	a := NewAccount("u1", "alice")
	require.Equal(t, "Newbie", a.Rank)

	// WHEN credits cross a threshold
	a.Apply(NewCredits(100), EarnedRanks)

	// THEN balance and rank move together
	assert.Equal(t, int64(100), a.Credits.Int64())
	assert.Equal(t, "Scholar", a.Rank)

	// WHEN credits drop back below it
	a.Apply(NewCredits(-1), EarnedRanks)
	assert.Equal(t, "Newbie", a.Rank)
}

func TestAccount_ApplyNeverTouchesClaimedRank(t *testing.T) {
	// GIVEN an account that bought a cosmetic rank
	a := NewAccount("u1", "alice")
	a.ClaimedRank = "Gold"

	// WHEN the earned rank changes
	a.Apply(NewCredits(5000), EarnedRanks)

	// THEN the two systems stay independent
	assert.Equal(t, "Elite Master", a.Rank)
	assert.Equal(t, "Gold", a.ClaimedRank)
}

func TestAccount_AddBadgeAtMostOnce(t *testing.T) {
	a := NewAccount("u1", "alice")
	a.AddBadge("badge-x")
	a.AddBadge("badge-x")
	assert.Len(t, a.Badges, 1)
	assert.True(t, a.HasBadge("badge-x"))
	assert.False(t, a.HasBadge("badge-y"))
}

func TestAccount_CloneIsolation(t *testing.T) {
	a := NewAccount("u1", "alice")
	a.AddBadge("badge-x")

	cp := a.Clone()
	cp.AddBadge("badge-y")
	cp.Apply(NewCredits(10), EarnedRanks)

	assert.Len(t, a.Badges, 1)
	assert.True(t, a.Credits.IsZero())
}

// =============================================================================
// AMOUNT
// =============================================================================

func TestAmount_ParseRoundTrip(t *testing.T) {
	a := NewCredits(-42)
	assert.True(t, ParseCredits(a.String()).Equal(a))
	assert.True(t, ParseCredits("garbage").IsZero())
}

func TestAmount_Arithmetic(t *testing.T) {
	a := NewCredits(5).Add(NewCredits(-7))
	assert.Equal(t, int64(-2), a.Int64())
	assert.True(t, a.IsNegative())
	assert.True(t, a.Neg().Equal(NewCredits(2)))
	assert.True(t, NewCredits(3).LessThan(NewCredits(4)))
	assert.True(t, NewCredits(4).GreaterThanOrEqual(NewCredits(4)))
}

// =============================================================================
// LEDGER REPLAY
// =============================================================================

type staticLedger map[UserID][]Entry

func (l staticLedger) Entries(_ context.Context, user UserID) ([]Entry, error) {
	return l[user], nil
}

func TestReplay_SumsDeltas(t *testing.T) {
	entries := []Entry{
		NewEntry("u1", NewCredits(5), EntryVote, "r1", "vote cast"),
		NewEntry("u1", NewCredits(-7), EntryVoteSwitch, "r1", "vote switched"),
		NewEntry("u1", NewCredits(25), EntryBestAnswer, "r1", "best answer awarded"),
	}
	assert.Equal(t, int64(23), Replay(entries).Int64())
	assert.True(t, Replay(nil).IsZero())
}

func TestReconcile_CleanAccount(t *testing.T) {
	// GIVEN a balance maintained in lockstep with its entries
	a := NewAccount("u1", "alice")
	a.Apply(NewCredits(5), EarnedRanks)
	ledger := staticLedger{"u1": {
		NewEntry("u1", NewCredits(5), EntryVote, "r1", "vote cast"),
	}}

	drift, ok, err := Reconcile(context.Background(), ledger, a)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, drift.IsZero())
}

func TestReconcile_DetectsDrift(t *testing.T) {
	// GIVEN a stored balance that disagrees with its ledger
	a := NewAccount("u1", "alice")
	a.Apply(NewCredits(10), EarnedRanks)
	ledger := staticLedger{"u1": {
		NewEntry("u1", NewCredits(5), EntryVote, "r1", "vote cast"),
	}}

	drift, ok, err := Reconcile(context.Background(), ledger, a)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(-5), drift.Int64())
}

// =============================================================================
// ERRORS
// =============================================================================

func TestInsufficientCreditsError(t *testing.T) {
	err := &InsufficientCreditsError{
		UserID:    "u1",
		Available: NewCredits(40),
		Requested: NewCredits(50),
	}

	assert.True(t, errors.Is(err, ErrInsufficientCredits))
	assert.True(t, IsInsufficient(err))
	assert.Equal(t, int64(10), err.Shortfall().Int64())

	var ice *InsufficientCreditsError
	require.True(t, errors.As(error(err), &ice))
	assert.Equal(t, UserID("u1"), ice.UserID)
}

func TestErrorCategories(t *testing.T) {
	assert.True(t, IsValidation(ErrInvalidVoteType))
	assert.True(t, IsForbidden(ErrSelfVote))
	assert.True(t, IsForbidden(ErrSelfAward))
	assert.True(t, IsForbidden(ErrNotThreadAuthor))
	assert.True(t, IsConflict(ErrAlreadyAwarded))
	assert.True(t, IsConflict(ErrConcurrentModification))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsRetryable(ErrConcurrentModification))
	assert.False(t, IsRetryable(ErrAlreadyAwarded))
}
