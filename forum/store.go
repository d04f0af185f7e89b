/*
store.go - Persistence interface for forum documents and credit accounts

PURPOSE:
  Defines the interface between the engine and the database. Reads return
  independent copies; writes are conditional commits that apply a whole
  mutation (document + account + ledger entry) atomically or not at all.

OPTIMISTIC CONCURRENCY CONTRACT:
  Documents passed to Commit* carry the Version they were read at. The
  store applies the writes and bumps versions only if the stored versions
  still match; otherwise it returns credit.ErrConcurrentModification and
  changes nothing. The engine retries a bounded number of times.

  Voters on different responses never contend beyond the store's own
  short critical section — there is no long-held global lock.

UNIQUENESS:
  "At most one best answer per thread" is enforced inside CommitAward by
  the store (partial unique index in SQLite, award registry in memory),
  not by a read-then-check in the engine. A lost race surfaces as
  credit.ErrAlreadyAwarded.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for testing/dev
*/
package forum

import (
	"context"

	"github.com/peerwise/forum-engine/credit"
)

// Store handles persistence for threads, responses, and accounts.
type Store interface {
	// Threads
	CreateThread(ctx context.Context, t *Thread) error
	GetThread(ctx context.Context, id ThreadID) (*Thread, error)
	ListThreads(ctx context.Context) ([]*Thread, error)
	CountResponses(ctx context.Context, id ThreadID) (int, error)

	// Responses
	CreateResponse(ctx context.Context, r *Response) error
	GetResponse(ctx context.Context, id ResponseID) (*Response, error)
	ListResponses(ctx context.Context, thread ThreadID) ([]*Response, error)

	// Accounts
	CreateAccount(ctx context.Context, a *credit.Account) error
	GetAccount(ctx context.Context, id credit.UserID) (*credit.Account, error)

	// SaveAccount persists non-credit account fields (question/answer
	// counters). Version-guarded like the commits below.
	SaveAccount(ctx context.Context, a *credit.Account) error

	// CommitVote atomically persists the mutated response, the author's
	// account, and the ledger entry. Fails whole on a version mismatch.
	CommitVote(ctx context.Context, r *Response, author *credit.Account, entry credit.Entry) error

	// CommitAward atomically persists the awarded response, the author's
	// account, and the ledger entry, enforcing award uniqueness per thread.
	CommitAward(ctx context.Context, r *Response, author *credit.Account, entry credit.Entry) error
}
