/*
Package credit provides the core credit ledger engine.

PURPOSE:
  This package contains the domain types and algorithms for the platform's
  single fungible currency: credits. Votes, best-answer awards, reward
  redemptions, and rank purchases all mutate credit balances through the
  types defined here.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A credit quantity backed by decimal.Decimal
  - Entry: An immutable ledger record of a balance change
  - Credit constants: The fixed deltas votes and awards are worth

DESIGN PRINCIPLES:
  1. Immutability: Ledger entries are never modified after creation
  2. Precision: decimal.Decimal keeps arithmetic exact end to end
  3. Auditability: Every entry carries type, reference, and reason
  4. Single currency: Unlike multi-unit systems, credits are the only unit

SEE ALSO:
  - account.go: The account that entries settle against
  - ledger.go: Replay and reconciliation
  - rank.go: Mapping balances to rank labels
*/
package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CREDIT CONSTANTS
// =============================================================================

// Fixed credit values for forum events. An upvote rewards the response
// author, a downvote costs them, a best-answer award pays a one-time bonus.
const (
	UpvoteCredit     int64 = 5
	DownvoteCredit   int64 = -2
	BestAnswerCredit int64 = 25
)

// =============================================================================
// AMOUNT - Credit quantity
// =============================================================================

// Amount is a quantity of credits. Balances can go negative in transient
// states (a downvoted author may briefly owe credits), so no sign invariant
// is enforced here.
type Amount struct {
	Value decimal.Decimal
}

func NewCredits(n int64) Amount {
	return Amount{Value: decimal.NewFromInt(n)}
}

// ParseCredits restores an Amount from its stored string form.
// Malformed input yields zero; stores treat that as corruption upstream.
func ParseCredits(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Value: decimal.Zero}
	}
	return Amount{Value: d}
}

func (a Amount) Add(b Amount) Amount     { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount     { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Neg() Amount             { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsNegative() bool        { return a.Value.IsNegative() }
func (a Amount) IsZero() bool            { return a.Value.IsZero() }
func (a Amount) LessThan(b Amount) bool  { return a.Value.LessThan(b.Value) }
func (a Amount) GreaterThanOrEqual(b Amount) bool {
	return a.Value.GreaterThanOrEqual(b.Value)
}
func (a Amount) Equal(b Amount) bool { return a.Value.Equal(b.Value) }
func (a Amount) Int64() int64        { return a.Value.IntPart() }
func (a Amount) String() string      { return a.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type UserID string
type BadgeID string
type EntryID string

// =============================================================================
// ENTRY - Atomic change to a credit balance
// =============================================================================

type EntryType string

const (
	EntryVote       EntryType = "vote"        // First vote on a response
	EntryVoteUndo   EntryType = "vote_undo"   // Same vote cast again (undo)
	EntryVoteSwitch EntryType = "vote_switch" // Up-to-down or down-to-up
	EntryBestAnswer EntryType = "best_answer" // One-time award bonus
	EntryRedemption EntryType = "redemption"  // Reward catalog purchase
	EntryRankClaim  EntryType = "rank_claim"  // Cosmetic rank purchase
)

// Entry is an immutable ledger record. Reference points at the document
// that caused the change (response, reward, or rank name).
type Entry struct {
	ID        EntryID
	UserID    UserID
	Delta     Amount
	Type      EntryType
	Reference string
	Reason    string
	CreatedAt time.Time
}

// NewEntry builds a ledger entry with a fresh ID.
func NewEntry(user UserID, delta Amount, typ EntryType, reference, reason string) Entry {
	return Entry{
		ID:        EntryID(uuid.NewString()),
		UserID:    user,
		Delta:     delta,
		Type:      typ,
		Reference: reference,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}
