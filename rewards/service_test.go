package rewards_test

import (
	"context"
	"errors"
	"testing"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/realtime"
	"github.com/peerwise/forum-engine/rewards"
	"github.com/peerwise/forum-engine/store/memory"
)

// newService seeds the default catalog and one account with the given
// starting balance.
func newService(t *testing.T, balance int64) (*rewards.Service, *memory.Store, *realtime.Recorder) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	if err := rewards.Seed(ctx, store); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	account := credit.NewAccount("u1", "alice")
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	if balance != 0 {
		account.Apply(credit.NewCredits(balance), credit.EarnedRanks)
		if err := store.SaveAccount(ctx, account); err != nil {
			t.Fatalf("fund account failed: %v", err)
		}
	}

	events := &realtime.Recorder{}
	return rewards.NewService(store, events), store, events
}

func getAccount(t *testing.T, store *memory.Store) *credit.Account {
	t.Helper()
	a, err := store.GetAccount(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	return a
}

// =============================================================================
// CATALOG
// =============================================================================

func TestSeed_Idempotent(t *testing.T) {
	svc, store, _ := newService(t, 0)

	// WHEN seeding runs again (server restart)
	if err := rewards.Seed(context.Background(), store); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	catalog, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(catalog) != 4 {
		t.Errorf("catalog size = %d, want 4", len(catalog))
	}
}

// =============================================================================
// REDEMPTION
// =============================================================================

func TestRedeem_InsufficientCredits(t *testing.T) {
	// GIVEN an account with 40 credits and a 150-credit reward
	svc, store, _ := newService(t, 40)

	// WHEN redeeming
	_, err := svc.Redeem(context.Background(), "u1", "merch-sticker-pack")

	// THEN the failure names the shortfall and nothing is deducted
	var ice *credit.InsufficientCreditsError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InsufficientCreditsError, got %v", err)
	}
	if got := ice.Shortfall().Int64(); got != 110 {
		t.Errorf("shortfall = %d, want 110", got)
	}
	if got := getAccount(t, store).Credits.Int64(); got != 40 {
		t.Errorf("balance after failed redeem = %d, want 40", got)
	}
}

func TestRedeem_TitleSetsTitleAndBadge(t *testing.T) {
	svc, store, events := newService(t, 150)

	result, err := svc.Redeem(context.Background(), "u1", "title-problem-solver")
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if result.RewardName != "Problem Solver" {
		t.Errorf("reward name = %q, want Problem Solver", result.RewardName)
	}
	if result.RemainingCredits != 50 {
		t.Errorf("remaining = %d, want 50", result.RemainingCredits)
	}

	a := getAccount(t, store)
	if a.Title != "Problem Solver" {
		t.Errorf("title = %q, want Problem Solver", a.Title)
	}
	if !a.HasBadge("badge-problem-solver") {
		t.Error("badge not granted")
	}

	// Ledger entry recorded alongside the deduction
	entries, err := store.Entries(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ledger read failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != credit.EntryRedemption {
		t.Errorf("ledger = %v, want one redemption entry", entries)
	}
	if got := entries[0].Delta.Int64(); got != -100 {
		t.Errorf("ledger delta = %d, want -100", got)
	}

	if len(events.OfType(realtime.EventCreditsUpdated)) != 1 {
		t.Error("expected a credits-updated event")
	}
}

func TestRedeem_TitleOnlyOnce(t *testing.T) {
	// GIVEN an account that already holds the title badge
	svc, store, _ := newService(t, 500)
	if _, err := svc.Redeem(context.Background(), "u1", "title-problem-solver"); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}

	// WHEN redeeming the same title again, with credits to spare
	_, err := svc.Redeem(context.Background(), "u1", "title-problem-solver")

	// THEN it fails and charges nothing
	if !errors.Is(err, credit.ErrAlreadyRedeemed) {
		t.Fatalf("expected ErrAlreadyRedeemed, got %v", err)
	}
	if got := getAccount(t, store).Credits.Int64(); got != 400 {
		t.Errorf("balance = %d, want 400", got)
	}
}

func TestRedeem_MerchandiseIsRepeatable(t *testing.T) {
	svc, store, _ := newService(t, 400)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Redeem(ctx, "u1", "merch-sticker-pack"); err != nil {
			t.Fatalf("redeem %d failed: %v", i+1, err)
		}
	}

	a := getAccount(t, store)
	if got := a.Credits.Int64(); got != 100 {
		t.Errorf("balance = %d, want 100", got)
	}
	if a.Title != "" || len(a.Badges) != 0 {
		t.Error("merchandise must not grant titles or badges")
	}
}

func TestRedeem_UnknownReward(t *testing.T) {
	svc, _, _ := newService(t, 100)
	_, err := svc.Redeem(context.Background(), "u1", "no-such-reward")
	if !errors.Is(err, credit.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// =============================================================================
// RANK STORE
// =============================================================================

func TestClaimRank_Purchase(t *testing.T) {
	svc, store, _ := newService(t, 60)

	result, err := svc.ClaimRank(context.Background(), "u1", "Bronze")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if result.ClaimedRank != "Bronze" || result.RemainingCredits != 10 {
		t.Errorf("result = %+v, want Bronze with 10 remaining", result)
	}

	a := getAccount(t, store)
	if a.ClaimedRank != "Bronze" {
		t.Errorf("claimed rank = %q, want Bronze", a.ClaimedRank)
	}
	// The earned rank is untouched by the purchase.
	if a.Rank != "Newbie" {
		t.Errorf("earned rank = %q, want Newbie", a.Rank)
	}
}

func TestClaimRank_SameTierRefused(t *testing.T) {
	svc, store, _ := newService(t, 200)
	ctx := context.Background()

	if _, err := svc.ClaimRank(ctx, "u1", "Bronze"); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	_, err := svc.ClaimRank(ctx, "u1", "Bronze")
	if !errors.Is(err, credit.ErrRankAlreadyClaimed) {
		t.Fatalf("expected ErrRankAlreadyClaimed, got %v", err)
	}
	if got := getAccount(t, store).Credits.Int64(); got != 150 {
		t.Errorf("balance = %d, want 150", got)
	}
}

func TestClaimRank_SwitchTierPaysFullPrice(t *testing.T) {
	// GIVEN an account holding Bronze
	svc, store, _ := newService(t, 300)
	ctx := context.Background()
	if _, err := svc.ClaimRank(ctx, "u1", "Bronze"); err != nil {
		t.Fatalf("bronze claim failed: %v", err)
	}

	// WHEN claiming Silver
	result, err := svc.ClaimRank(ctx, "u1", "Silver")
	if err != nil {
		t.Fatalf("silver claim failed: %v", err)
	}

	// THEN the tier is replaced and the full 200 charged (no trade-in)
	if result.ClaimedRank != "Silver" {
		t.Errorf("claimed rank = %q, want Silver", result.ClaimedRank)
	}
	if got := getAccount(t, store).Credits.Int64(); got != 50 {
		t.Errorf("balance = %d, want 50", got)
	}
}

func TestClaimRank_UnknownTier(t *testing.T) {
	svc, _, _ := newService(t, 1000)
	_, err := svc.ClaimRank(context.Background(), "u1", "Unobtainium")
	if !errors.Is(err, credit.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimRank_InsufficientCredits(t *testing.T) {
	svc, _, _ := newService(t, 49)
	_, err := svc.ClaimRank(context.Background(), "u1", "Bronze")
	if !errors.Is(err, credit.ErrInsufficientCredits) {
		t.Errorf("expected ErrInsufficientCredits, got %v", err)
	}
}
