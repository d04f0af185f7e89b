/*
vote.go - The vote state machine

PURPOSE:
  Pure computation of what one vote event does. Per (response, voter)
  there are three states (none, up, down) and two events (up, down).
  Casting the vote you already hold undoes it; casting the other one
  switches. Every transition pairs a tally delta with the exact inverse-
  consistent credit delta for the response's author:

    current | event | next | author credits | thumbs_up | thumbs_down
    --------+-------+------+----------------+-----------+------------
    none    | up    | up   | +5             | +1        |  0
    none    | down  | down | -2             |  0        | +1
    up      | up    | none | -5             | -1        |  0
    up      | down  | down | -7             | -1        | +1
    down    | down  | none | +2             |  0        | -1
    down    | up    | up   | +7             | +1        | -1

  The switch rows are the sum of an undo and a fresh cast, which is what
  makes vote histories invertible: any sequence of events by one voter
  nets out exactly when it returns to none.
*/
package forum

import "github.com/peerwise/forum-engine/credit"

// Outcome describes the effect of applying one vote event.
type Outcome struct {
	Next        VoteState
	CreditDelta int64
	UpDelta     int
	DownDelta   int
	EntryType   credit.EntryType
	Reason      string
}

// castValue is the credit value of holding a vote of the given type.
func castValue(v VoteType) int64 {
	if v == VoteUp {
		return credit.UpvoteCredit
	}
	return credit.DownvoteCredit
}

// tallyDelta returns the thumbs_up/thumbs_down contribution of a vote.
func tallyDelta(v VoteType) (up, down int) {
	if v == VoteUp {
		return 1, 0
	}
	return 0, 1
}

// Transition computes the outcome of the voter casting vote while in
// state current. Fails only on an unrecognized vote type; preconditions
// about who may vote live in the engine.
func Transition(current VoteState, vote VoteType) (Outcome, error) {
	if !vote.Valid() {
		return Outcome{}, credit.ErrInvalidVoteType
	}

	up, down := tallyDelta(vote)

	switch current {
	case StateNone:
		return Outcome{
			Next:        VoteState(vote),
			CreditDelta: castValue(vote),
			UpDelta:     up,
			DownDelta:   down,
			EntryType:   credit.EntryVote,
			Reason:      "vote cast",
		}, nil

	case VoteState(vote):
		// Same vote again: undo. Remove the held vote and refund its value.
		return Outcome{
			Next:        StateNone,
			CreditDelta: -castValue(vote),
			UpDelta:     -up,
			DownDelta:   -down,
			EntryType:   credit.EntryVoteUndo,
			Reason:      "vote undone",
		}, nil

	default:
		// Switch: undo the held vote, then cast the new one.
		heldUp, heldDown := tallyDelta(VoteType(current))
		return Outcome{
			Next:        VoteState(vote),
			CreditDelta: castValue(vote) - castValue(VoteType(current)),
			UpDelta:     up - heldUp,
			DownDelta:   down - heldDown,
			EntryType:   credit.EntryVoteSwitch,
			Reason:      "vote switched",
		}, nil
	}
}

// applyOutcome mutates the response in place: tallies and voter record
// move together, keeping the voters-set invariant.
func applyOutcome(r *Response, voter credit.UserID, o Outcome) {
	r.ThumbsUp += o.UpDelta
	r.ThumbsDown += o.DownDelta
	if o.Next == StateNone {
		delete(r.Voters, voter)
	} else {
		if r.Voters == nil {
			r.Voters = make(map[credit.UserID]VoteType)
		}
		r.Voters[voter] = VoteType(o.Next)
	}
}
