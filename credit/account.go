/*
account.go - The credit account

PURPOSE:
  Holds a user's current credit balance and everything derived from or
  bought with it: earned rank, claimed rank, display title, badges, and
  the best-answer counter.

MUTATION DISCIPLINE:
  All balance changes go through Apply, which re-derives the earned rank
  in the same step so rank is never stale relative to credits. Stores
  persist accounts with a version number; a stale version fails the
  commit (see store implementations).
*/
package credit

// Account is a user's credit account.
type Account struct {
	ID       UserID
	Username string

	// Credits is the incrementally maintained balance. The ledger is the
	// audit trail; Reconcile checks the two agree.
	Credits Amount

	// Rank is derived; always EarnedRanks.RankFor(Credits).
	Rank string

	// ClaimedRank is the cosmetic tier bought in the rank store.
	// Independent of Rank. Empty until first purchase.
	ClaimedRank string

	// Title is the display title set by redeeming a title reward.
	Title string

	// Badges holds redeemed badge references. A title badge appears
	// at most once.
	Badges []BadgeID

	// BestAnswerCount only ever increases; there is no unaward.
	BestAnswerCount int

	QuestionsAsked int
	AnswersGiven   int

	// Version supports optimistic concurrency in the stores.
	Version int64
}

// NewAccount creates an account with zero credits at the baseline rank.
func NewAccount(id UserID, username string) *Account {
	return &Account{
		ID:       id,
		Username: username,
		Credits:  NewCredits(0),
		Rank:     EarnedRanks.Baseline(),
	}
}

// Apply adds delta to the balance and re-derives the earned rank from
// the given table. Callers persist the account and the matching ledger
// entry in one atomic commit.
func (a *Account) Apply(delta Amount, table Table) {
	a.Credits = a.Credits.Add(delta)
	a.Rank = table.RankFor(a.Credits)
}

// HasBadge reports whether the account already holds the badge.
func (a *Account) HasBadge(id BadgeID) bool {
	for _, b := range a.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// AddBadge appends the badge, preserving the at-most-once invariant.
func (a *Account) AddBadge(id BadgeID) {
	if a.HasBadge(id) {
		return
	}
	a.Badges = append(a.Badges, id)
}

// Clone returns a deep copy. Stores hand out clones so failed operations
// cannot leak partial mutations into shared state.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Badges = append([]BadgeID(nil), a.Badges...)
	return &cp
}
