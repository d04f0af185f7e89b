/*
Package forum implements the Q&A documents and the operations that
move credits: the vote state machine and the best-answer award.

PURPOSE:
  Threads collect responses; responses collect votes. Each (response,
  voter) pair has at most one active vote, and the response's tallies
  must equal the voter set at all times. Every tally change carries a
  paired credit delta for the response's author, committed atomically.

KEY CONCEPTS IN THIS FILE (types.go):
  - Thread, Response: The two documents votes operate on
  - VoteType:  The event a voter sends ("up" / "down")
  - VoteState: The per-voter state on a response (none / up / down)

INVARIANTS:
  1. ThumbsUp == |{voters with up}|, ThumbsDown == |{voters with down}|
  2. At most one response per thread has IsBestAnswer == true
  3. Response.Version changes on every persisted mutation

SEE ALSO:
  - vote.go:   The transition table
  - engine.go: Orchestration, atomicity, event emission
*/
package forum

import (
	"time"

	"github.com/peerwise/forum-engine/credit"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ThreadID string
type ResponseID string

// =============================================================================
// VOTES
// =============================================================================

// VoteType is the event a voter casts.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether the vote type is one of the two recognized values.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// VoteState is a voter's current state on one response.
type VoteState string

const (
	StateNone VoteState = "none"
	StateUp   VoteState = "up"
	StateDown VoteState = "down"
)

// =============================================================================
// DOCUMENTS
// =============================================================================

// Thread is a posted problem. Response count is derived on read,
// never stored.
type Thread struct {
	ID          ThreadID
	AuthorID    credit.UserID
	Title       string
	Description string
	CreatedAt   time.Time
}

// Response is an answer to a thread. Voters is the single source of
// truth for active votes; the tallies are kept in lockstep with it.
type Response struct {
	ID         ResponseID
	ThreadID   ThreadID
	AuthorID   credit.UserID
	Content    string
	FileURL    string
	YouTubeURL string

	ThumbsUp   int
	ThumbsDown int
	Voters     map[credit.UserID]VoteType

	IsBestAnswer bool
	CreatedAt    time.Time

	// Version supports optimistic concurrency in the stores.
	Version int64
}

// StateOf returns the voter's current vote state on this response.
func (r *Response) StateOf(voter credit.UserID) VoteState {
	switch r.Voters[voter] {
	case VoteUp:
		return StateUp
	case VoteDown:
		return StateDown
	default:
		return StateNone
	}
}

// TalliesConsistent checks invariant 1: tallies equal the voter set.
func (r *Response) TalliesConsistent() bool {
	up, down := 0, 0
	for _, v := range r.Voters {
		switch v {
		case VoteUp:
			up++
		case VoteDown:
			down++
		}
	}
	return r.ThumbsUp == up && r.ThumbsDown == down
}

// Clone returns a deep copy. Stores hand out clones; the engine mutates
// a clone and commits it conditionally.
func (r *Response) Clone() *Response {
	cp := *r
	cp.Voters = make(map[credit.UserID]VoteType, len(r.Voters))
	for k, v := range r.Voters {
		cp.Voters[k] = v
	}
	return &cp
}
