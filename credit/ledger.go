/*
ledger.go - Replay and reconciliation over the append-only credit ledger

PURPOSE:
  The stored Account.Credits counter is updated incrementally at the
  moment of each vote/award/redemption, inside the same commit as the
  matching ledger entry. That makes the ledger a full audit trail:
  replaying a user's entries must land exactly on the stored balance.

  Reconcile is the check. It is an on-demand audit, not a repair path —
  recomputing balances on reads and writing them back can race with
  concurrent vote commits and clobber them, so nothing here ever writes.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: stores expose no update or delete for entries
  2. ONE ENTRY PER MUTATION: every balance commit carries its entry
  3. REPLAY == BALANCE: sum of deltas equals Account.Credits at rest
*/
package credit

import "context"

// LedgerReader provides read access to a user's ledger entries,
// in commit order. Implemented by the stores.
type LedgerReader interface {
	Entries(ctx context.Context, user UserID) ([]Entry, error)
}

// Replay sums entry deltas into a balance.
func Replay(entries []Entry) Amount {
	balance := NewCredits(0)
	for _, e := range entries {
		balance = balance.Add(e.Delta)
	}
	return balance
}

// Reconcile replays the user's ledger and compares it to the stored
// balance. It returns the drift (replayed minus stored); a zero drift
// with ok=true means the account satisfies the ledger invariant.
func Reconcile(ctx context.Context, r LedgerReader, account *Account) (Amount, bool, error) {
	entries, err := r.Entries(ctx, account.ID)
	if err != nil {
		return Amount{}, false, err
	}
	replayed := Replay(entries)
	drift := replayed.Sub(account.Credits)
	return drift, drift.IsZero(), nil
}
