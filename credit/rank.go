/*
rank.go - Credit-to-rank mapping

PURPOSE:
  Pure calculation of the earned rank label from a credit balance.
  The earned rank is derived, automatic, and non-purchasable; the
  cosmetic "claimed rank" sold in the rank store is a separate system
  with its own names and cost table (see rewards package). The two are
  never conflated.

INVARIANT:
  Account.Rank must equal EarnedRanks.RankFor(Account.Credits) immediately
  after any credit mutation. Account.Apply enforces this.
*/
package credit

// Tier pairs a minimum credit threshold with a rank label.
type Tier struct {
	Threshold int64
	Label     string
}

// Table is an ordered (ascending by threshold) list of tiers.
// The first tier is the baseline and should have threshold 0.
type Table []Tier

// EarnedRanks is the automatic tier ladder.
var EarnedRanks = Table{
	{Threshold: 0, Label: "Newbie"},
	{Threshold: 100, Label: "Scholar"},
	{Threshold: 500, Label: "Guru"},
	{Threshold: 2000, Label: "Sage"},
	{Threshold: 5000, Label: "Elite Master"},
}

// RankFor returns the label of the highest tier whose threshold does not
// exceed credits. Balances below the lowest threshold (possible, since
// downvotes can push credits negative) get the baseline label.
func (t Table) RankFor(credits Amount) string {
	if len(t) == 0 {
		return ""
	}
	label := t[0].Label
	for _, tier := range t[1:] {
		if credits.GreaterThanOrEqual(NewCredits(tier.Threshold)) {
			label = tier.Label
		}
	}
	return label
}

// Baseline returns the lowest tier's label, the rank new accounts start at.
func (t Table) Baseline() string {
	if len(t) == 0 {
		return ""
	}
	return t[0].Label
}
