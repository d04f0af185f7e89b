/*
service.go - Redemption and rank-claim logic

PURPOSE:
  Spending follows the same discipline as earning: read -> validate ->
  compute -> conditional commit with bounded retry. A failed redemption
  leaves the account untouched; a successful one deducts the cost, applies
  the cosmetic effect, and appends the ledger entry in one commit.

PRECONDITIONS:
  Redeem:    credits >= cost; titles not already held (badge check)
  ClaimRank: known tier; tier not already claimed; credits >= cost
*/
package rewards

import (
	"context"
	"fmt"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/realtime"
)

const maxCommitRetries = 3

// Store is the persistence the service depends on.
type Store interface {
	CreateReward(ctx context.Context, r *Reward) error
	GetReward(ctx context.Context, id RewardID) (*Reward, error)
	ListRewards(ctx context.Context) ([]*Reward, error)

	CreateBadge(ctx context.Context, b *Badge) error
	GetBadge(ctx context.Context, id credit.BadgeID) (*Badge, error)

	GetAccount(ctx context.Context, id credit.UserID) (*credit.Account, error)

	// CommitRedemption atomically persists the mutated account and the
	// ledger entry, failing whole on a version mismatch.
	CommitRedemption(ctx context.Context, a *credit.Account, entry credit.Entry) error
}

// Service performs redemptions and rank claims.
type Service struct {
	store  Store
	events realtime.Emitter
	ranks  credit.Table
}

func NewService(store Store, events realtime.Emitter) *Service {
	return &Service{store: store, events: events, ranks: credit.EarnedRanks}
}

// List returns the reward catalog.
func (s *Service) List(ctx context.Context) ([]*Reward, error) {
	return s.store.ListRewards(ctx)
}

// =============================================================================
// REWARD REDEMPTION
// =============================================================================

// RedemptionResult reports the balance after a successful redemption.
type RedemptionResult struct {
	RewardName       string
	RemainingCredits int64
}

// Redeem spends credits on a catalog reward. Titles set the display title
// and grant the linked badge; redeeming a held title fails. Merchandise
// only deducts — fulfillment happens elsewhere.
func (s *Service) Redeem(ctx context.Context, accountID credit.UserID, rewardID RewardID) (RedemptionResult, error) {
	reward, err := s.store.GetReward(ctx, rewardID)
	if err != nil {
		return RedemptionResult{}, err
	}
	cost := credit.NewCredits(reward.Cost)

	var lastErr error
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		account, err := s.store.GetAccount(ctx, accountID)
		if err != nil {
			return RedemptionResult{}, err
		}
		if account.Credits.LessThan(cost) {
			return RedemptionResult{}, &credit.InsufficientCreditsError{
				UserID:    accountID,
				Available: account.Credits,
				Requested: cost,
			}
		}
		if reward.Type == RewardTitle {
			if account.HasBadge(reward.BadgeID) {
				return RedemptionResult{}, fmt.Errorf("reward %q: %w", reward.Name, credit.ErrAlreadyRedeemed)
			}
			account.Title = reward.Name
			account.AddBadge(reward.BadgeID)
		}

		account.Apply(cost.Neg(), s.ranks)
		entry := credit.NewEntry(accountID, cost.Neg(), credit.EntryRedemption, string(rewardID), "reward redeemed: "+reward.Name)

		if err := s.store.CommitRedemption(ctx, account, entry); err != nil {
			if credit.IsRetryable(err) {
				lastErr = err
				continue
			}
			return RedemptionResult{}, err
		}

		s.emitCredits(account)
		return RedemptionResult{
			RewardName:       reward.Name,
			RemainingCredits: account.Credits.Int64(),
		}, nil
	}
	return RedemptionResult{}, fmt.Errorf("redeem %s: %w", rewardID, lastErr)
}

// =============================================================================
// RANK STORE
// =============================================================================

// ClaimResult reports the balance and claimed rank after a purchase.
type ClaimResult struct {
	ClaimedRank      string
	RemainingCredits int64
}

// ClaimRank buys a cosmetic tier from the rank store. Claiming the tier
// already held is refused; claiming a different tier replaces it (each
// claim pays full price).
func (s *Service) ClaimRank(ctx context.Context, accountID credit.UserID, rankName string) (ClaimResult, error) {
	tier, ok := FindTier(rankName)
	if !ok {
		return ClaimResult{}, fmt.Errorf("rank %q: %w", rankName, credit.ErrNotFound)
	}
	cost := credit.NewCredits(tier.Cost)

	var lastErr error
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		account, err := s.store.GetAccount(ctx, accountID)
		if err != nil {
			return ClaimResult{}, err
		}
		if account.ClaimedRank == tier.Name {
			return ClaimResult{}, fmt.Errorf("rank %q: %w", rankName, credit.ErrRankAlreadyClaimed)
		}
		if account.Credits.LessThan(cost) {
			return ClaimResult{}, &credit.InsufficientCreditsError{
				UserID:    accountID,
				Available: account.Credits,
				Requested: cost,
			}
		}

		account.ClaimedRank = tier.Name
		account.Apply(cost.Neg(), s.ranks)
		entry := credit.NewEntry(accountID, cost.Neg(), credit.EntryRankClaim, tier.Name, "rank claimed: "+tier.Name)

		if err := s.store.CommitRedemption(ctx, account, entry); err != nil {
			if credit.IsRetryable(err) {
				lastErr = err
				continue
			}
			return ClaimResult{}, err
		}

		s.emitCredits(account)
		return ClaimResult{
			ClaimedRank:      account.ClaimedRank,
			RemainingCredits: account.Credits.Int64(),
		}, nil
	}
	return ClaimResult{}, fmt.Errorf("claim rank %s: %w", rankName, lastErr)
}

func (s *Service) emitCredits(account *credit.Account) {
	s.events.Emit(realtime.Event{
		Type:   realtime.EventCreditsUpdated,
		UserID: account.ID,
		Payload: struct {
			Credits int64  `json:"credits"`
			Rank    string `json:"rank"`
		}{Credits: account.Credits.Int64(), Rank: account.Rank},
	})
}
