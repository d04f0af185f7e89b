/*
Package memory provides an in-memory Store implementation (for testing/dev).

PURPOSE:
  Implements the forum, rewards, leaderboard, and ledger interfaces with
  versioned maps. Reads return deep copies; conditional commits check the
  versions the caller read at, then apply every write and bump versions
  inside one short critical section — all or nothing, mirroring what the
  SQLite store does with transactions and version-guarded UPDATEs.
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/forum"
	"github.com/peerwise/forum-engine/rewards"
)

// Store is the in-memory implementation of all persistence interfaces.
type Store struct {
	mu sync.RWMutex

	accounts  map[credit.UserID]*credit.Account
	threads   map[forum.ThreadID]*forum.Thread
	responses map[forum.ResponseID]*forum.Response
	rewards   map[rewards.RewardID]*rewards.Reward
	badges    map[credit.BadgeID]*rewards.Badge
	ledger    map[credit.UserID][]credit.Entry

	// bestAnswers enforces at most one award per thread.
	bestAnswers map[forum.ThreadID]forum.ResponseID
}

func New() *Store {
	return &Store{
		accounts:    make(map[credit.UserID]*credit.Account),
		threads:     make(map[forum.ThreadID]*forum.Thread),
		responses:   make(map[forum.ResponseID]*forum.Response),
		rewards:     make(map[rewards.RewardID]*rewards.Reward),
		badges:      make(map[credit.BadgeID]*rewards.Badge),
		ledger:      make(map[credit.UserID][]credit.Entry),
		bestAnswers: make(map[forum.ThreadID]forum.ResponseID),
	}
}

// Interface checks.
var (
	_ forum.Store         = (*Store)(nil)
	_ rewards.Store       = (*Store)(nil)
	_ credit.LedgerReader = (*Store)(nil)
)

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) CreateAccount(_ context.Context, a *credit.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return credit.ErrAlreadyExists
	}
	cp := a.Clone()
	cp.Version = 1
	s.accounts[a.ID] = cp
	a.Version = 1
	return nil
}

func (s *Store) GetAccount(_ context.Context, id credit.UserID) (*credit.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, credit.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *Store) ListAccounts(_ context.Context) ([]*credit.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*credit.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveAccount(_ context.Context, a *credit.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putAccountLocked(a)
}

// putAccountLocked applies a version-guarded account write.
func (s *Store) putAccountLocked(a *credit.Account) error {
	stored, ok := s.accounts[a.ID]
	if !ok {
		return credit.ErrNotFound
	}
	if stored.Version != a.Version {
		return credit.ErrConcurrentModification
	}
	cp := a.Clone()
	cp.Version++
	s.accounts[a.ID] = cp
	a.Version = cp.Version
	return nil
}

// =============================================================================
// THREADS AND RESPONSES
// =============================================================================

func (s *Store) CreateThread(_ context.Context, t *forum.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[t.ID]; ok {
		return credit.ErrAlreadyExists
	}
	cp := *t
	s.threads[t.ID] = &cp
	return nil
}

func (s *Store) GetThread(_ context.Context, id forum.ThreadID) (*forum.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[id]
	if !ok {
		return nil, credit.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) ListThreads(_ context.Context) ([]*forum.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*forum.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		cp := *t
		out = append(out, &cp)
	}
	// Newest first, the way the forum lists them.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CountResponses(_ context.Context, id forum.ThreadID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.responses {
		if r.ThreadID == id {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateResponse(_ context.Context, r *forum.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responses[r.ID]; ok {
		return credit.ErrAlreadyExists
	}
	if _, ok := s.threads[r.ThreadID]; !ok {
		return credit.ErrNotFound
	}
	cp := r.Clone()
	cp.Version = 1
	s.responses[r.ID] = cp
	r.Version = 1
	return nil
}

func (s *Store) GetResponse(_ context.Context, id forum.ResponseID) (*forum.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[id]
	if !ok {
		return nil, credit.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *Store) ListResponses(_ context.Context, thread forum.ThreadID) ([]*forum.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*forum.Response
	for _, r := range s.responses {
		if r.ThreadID == thread {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListAllResponses(_ context.Context) ([]*forum.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*forum.Response, 0, len(s.responses))
	for _, r := range s.responses {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// CONDITIONAL COMMITS
// =============================================================================

func (s *Store) CommitVote(_ context.Context, r *forum.Response, author *credit.Account, entry credit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.responses[r.ID]
	if !ok {
		return credit.ErrNotFound
	}
	if stored.Version != r.Version {
		return credit.ErrConcurrentModification
	}
	// Check the account guard before writing anything.
	storedAcc, ok := s.accounts[author.ID]
	if !ok {
		return credit.ErrNotFound
	}
	if storedAcc.Version != author.Version {
		return credit.ErrConcurrentModification
	}

	rcp := r.Clone()
	rcp.Version++
	s.responses[r.ID] = rcp
	r.Version = rcp.Version

	acp := author.Clone()
	acp.Version++
	s.accounts[author.ID] = acp
	author.Version = acp.Version

	s.ledger[entry.UserID] = append(s.ledger[entry.UserID], entry)
	return nil
}

func (s *Store) CommitAward(_ context.Context, r *forum.Response, author *credit.Account, entry credit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.bestAnswers[r.ThreadID]; ok && existing != r.ID {
		return credit.ErrAlreadyAwarded
	}
	stored, ok := s.responses[r.ID]
	if !ok {
		return credit.ErrNotFound
	}
	if stored.Version != r.Version {
		return credit.ErrConcurrentModification
	}
	if stored.IsBestAnswer {
		return credit.ErrAlreadyAwarded
	}
	storedAcc, ok := s.accounts[author.ID]
	if !ok {
		return credit.ErrNotFound
	}
	if storedAcc.Version != author.Version {
		return credit.ErrConcurrentModification
	}

	rcp := r.Clone()
	rcp.Version++
	s.responses[r.ID] = rcp
	r.Version = rcp.Version

	acp := author.Clone()
	acp.Version++
	s.accounts[author.ID] = acp
	author.Version = acp.Version

	s.bestAnswers[r.ThreadID] = r.ID
	s.ledger[entry.UserID] = append(s.ledger[entry.UserID], entry)
	return nil
}

func (s *Store) CommitRedemption(_ context.Context, a *credit.Account, entry credit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.putAccountLocked(a); err != nil {
		return err
	}
	s.ledger[entry.UserID] = append(s.ledger[entry.UserID], entry)
	return nil
}

// =============================================================================
// REWARD CATALOG
// =============================================================================

func (s *Store) CreateReward(_ context.Context, r *rewards.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rewards[r.ID]; ok {
		return credit.ErrAlreadyExists
	}
	cp := *r
	s.rewards[r.ID] = &cp
	return nil
}

func (s *Store) GetReward(_ context.Context, id rewards.RewardID) (*rewards.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rewards[id]
	if !ok {
		return nil, credit.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) ListRewards(_ context.Context) ([]*rewards.Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*rewards.Reward, 0, len(s.rewards))
	for _, r := range s.rewards {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateBadge(_ context.Context, b *rewards.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.badges[b.ID]; ok {
		return credit.ErrAlreadyExists
	}
	cp := *b
	s.badges[b.ID] = &cp
	return nil
}

func (s *Store) GetBadge(_ context.Context, id credit.BadgeID) (*rewards.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.badges[id]
	if !ok {
		return nil, credit.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) Entries(_ context.Context, user credit.UserID) ([]credit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]credit.Entry(nil), s.ledger[user]...), nil
}
