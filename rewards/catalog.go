/*
catalog.go - Seed catalog

PURPOSE:
  Ready-made rewards and badges so a fresh deployment has something to
  spend credits on. Seed is idempotent by reward ID.
*/
package rewards

import (
	"context"
	"errors"

	"github.com/peerwise/forum-engine/credit"
)

// DefaultCatalog returns the built-in rewards and their badges.
func DefaultCatalog() ([]*Reward, []*Badge) {
	rewards := []*Reward{
		{
			ID:          "title-problem-solver",
			Name:        "Problem Solver",
			Description: "Display title for reliable answerers",
			Cost:        100,
			Type:        RewardTitle,
			BadgeID:     "badge-problem-solver",
		},
		{
			ID:          "title-code-wizard",
			Name:        "Code Wizard",
			Description: "Display title for the truly arcane",
			Cost:        400,
			Type:        RewardTitle,
			BadgeID:     "badge-code-wizard",
		},
		{
			ID:          "merch-sticker-pack",
			Name:        "Sticker Pack",
			Description: "PeerWise laptop stickers",
			Cost:        150,
			Type:        RewardMerchandise,
			ImageURL:    "/img/rewards/stickers.png",
		},
		{
			ID:          "merch-tshirt",
			Name:        "PeerWise T-Shirt",
			Description: "The classic",
			Cost:        600,
			Type:        RewardMerchandise,
			ImageURL:    "/img/rewards/tshirt.png",
		},
	}
	badges := []*Badge{
		{
			ID:          "badge-problem-solver",
			Name:        "Problem Solver",
			Description: "Redeemed the Problem Solver title",
			ImageURL:    "/img/badges/problem-solver.png",
			RewardID:    "title-problem-solver",
		},
		{
			ID:          "badge-code-wizard",
			Name:        "Code Wizard",
			Description: "Redeemed the Code Wizard title",
			ImageURL:    "/img/badges/code-wizard.png",
			RewardID:    "title-code-wizard",
		},
	}
	return rewards, badges
}

// Seed inserts the default catalog, skipping entries that already exist.
func Seed(ctx context.Context, store Store) error {
	rewards, badges := DefaultCatalog()
	for _, b := range badges {
		if err := store.CreateBadge(ctx, b); err != nil && !errors.Is(err, credit.ErrAlreadyExists) {
			return err
		}
	}
	for _, r := range rewards {
		if err := store.CreateReward(ctx, r); err != nil && !errors.Is(err, credit.ErrAlreadyExists) {
			return err
		}
	}
	return nil
}
