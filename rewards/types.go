/*
Package rewards provides the catalog and the operations that spend
credits: reward redemption and cosmetic rank purchases.

PURPOSE:
  Credits earned in the forum are spent here. Two catalogs exist:
  - Rewards: titles (one-shot, badge-backed) and merchandise
  - Rank store: fixed cosmetic tiers bought outright

THE TWO RANK SYSTEMS:
  The earned rank (credit.EarnedRanks) is automatic and free; the claimed
  rank sold below is a purchase. They use different names and thresholds
  and never feed each other.

SEE ALSO:
  - service.go: Redemption and claim logic
  - catalog.go: Seed catalog
*/
package rewards

import "github.com/peerwise/forum-engine/credit"

// =============================================================================
// REWARD CATALOG
// =============================================================================

type RewardID string

type RewardType string

const (
	RewardTitle       RewardType = "title"
	RewardMerchandise RewardType = "merchandise"
)

// Reward is a catalog entry. Title rewards must reference a badge; the
// badge is what makes re-redemption detectable.
type Reward struct {
	ID          RewardID
	Name        string
	Description string
	Cost        int64
	Type        RewardType
	BadgeID     credit.BadgeID // required for titles
	ImageURL    string         // merchandise artwork
}

// Badge is the cosmetic granted by a title reward.
type Badge struct {
	ID          credit.BadgeID
	Name        string
	Description string
	ImageURL    string
	RewardID    RewardID
}

// =============================================================================
// RANK STORE
// =============================================================================

// RankTier is a purchasable cosmetic tier.
type RankTier struct {
	Name string
	Cost int64
}

// RankStoreTiers is the fixed cost table for claimed ranks.
var RankStoreTiers = []RankTier{
	{Name: "Bronze", Cost: 50},
	{Name: "Silver", Cost: 200},
	{Name: "Gold", Cost: 500},
	{Name: "Platinum", Cost: 800},
	{Name: "Diamond", Cost: 1000},
}

// FindTier looks a tier up by name.
func FindTier(name string) (RankTier, bool) {
	for _, t := range RankStoreTiers {
		if t.Name == name {
			return t, true
		}
	}
	return RankTier{}, false
}
