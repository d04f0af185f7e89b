/*
errors.go - Centralized error types for the credit engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context; the HTTP
  layer maps the categories below to status codes.

ERROR CATEGORIES:
  1. Validation errors - Malformed input (unknown vote type, unknown metric)
  2. Forbidden errors  - Allowed input, disallowed actor (self-vote, self-award)
  3. Conflict errors   - State already moved on (awarded, redeemed, version race)
  4. Funds errors      - Balance below cost
  5. Not-found errors  - Missing account/thread/response/reward

USAGE:
  if errors.Is(err, credit.ErrSelfVote) { ... }

  var ice *credit.InsufficientCreditsError
  if errors.As(err, &ice) { log(ice.Shortfall) }
*/
package credit

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced document doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a document whose ID is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidVoteType is returned for vote types other than "up"/"down".
	ErrInvalidVoteType = errors.New("invalid vote type")

	// ErrSelfVote is returned when a voter targets their own response.
	ErrSelfVote = errors.New("cannot vote on your own response")

	// ErrNotThreadAuthor is returned when a non-author tries to award
	// a best answer on a thread.
	ErrNotThreadAuthor = errors.New("only the thread author can award a best answer")

	// ErrSelfAward is returned when a thread author tries to award
	// their own response.
	ErrSelfAward = errors.New("cannot award your own response")

	// ErrAlreadyAwarded is returned when a thread already has a best answer.
	// The award transition is one-way; there is no unaward.
	ErrAlreadyAwarded = errors.New("thread already has a best answer")

	// ErrInsufficientCredits is returned when balance is below a cost.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrAlreadyRedeemed is returned when a one-shot title reward is
	// redeemed a second time.
	ErrAlreadyRedeemed = errors.New("title already redeemed")

	// ErrRankAlreadyClaimed is returned when claiming the cosmetic rank
	// the account already holds.
	ErrRankAlreadyClaimed = errors.New("rank already claimed")

	// ErrConcurrentModification is returned when optimistic locking detects
	// a conflict that survived the engine's bounded retries.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientCreditsError provides details about a balance shortage.
type InsufficientCreditsError struct {
	UserID    UserID
	Available Amount
	Requested Amount
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: available %v, requested %v",
		e.Available.Value, e.Requested.Value)
}

func (e *InsufficientCreditsError) Unwrap() error {
	return ErrInsufficientCredits
}

// Shortfall is how many credits are missing.
func (e *InsufficientCreditsError) Shortfall() Amount {
	return e.Requested.Sub(e.Available)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true for malformed client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidVoteType)
}

// IsForbidden returns true when the actor may not perform the action.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrSelfVote) ||
		errors.Is(err, ErrSelfAward) ||
		errors.Is(err, ErrNotThreadAuthor)
}

// IsConflict returns true when state already moved past the request.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyAwarded) ||
		errors.Is(err, ErrAlreadyRedeemed) ||
		errors.Is(err, ErrRankAlreadyClaimed) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsInsufficient returns true for balance shortages.
func IsInsufficient(err error) bool {
	return errors.Is(err, ErrInsufficientCredits)
}

// IsNotFound returns true if the error indicates a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
