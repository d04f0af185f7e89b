/*
Package leaderboard computes ranked boards from forum state.

PURPOSE:
  Boards are derived at read time from accounts and responses — nothing
  here is persisted, so the boards can never drift from the documents
  they summarize.

METRICS:
  alltime:    stored credit balances
  upvoted:    total thumbs_up received per author
  bestanswer: best answers won per author
  weekly:     responses of the last 7 days scored 5*up - 2*down + 25*best

Each row carries the earned-rank label for its metric value, so a weekly
board shows the rank the week's credits alone would earn.
*/
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/forum"
)

// Metric selects a board.
type Metric string

const (
	MetricAllTime    Metric = "alltime"
	MetricUpvoted    Metric = "upvoted"
	MetricBestAnswer Metric = "bestanswer"
	MetricWeekly     Metric = "weekly"
)

// DefaultLimit caps board size when the caller passes limit <= 0.
const DefaultLimit = 100

// weeklyWindow is how far back the weekly board looks.
const weeklyWindow = 7 * 24 * time.Hour

// Source provides the documents boards are computed from.
type Source interface {
	ListAccounts(ctx context.Context) ([]*credit.Account, error)
	ListAllResponses(ctx context.Context) ([]*forum.Response, error)
}

// Row is one board entry.
type Row struct {
	UserID   credit.UserID `json:"user_id"`
	Username string        `json:"username"`
	Metric   int64         `json:"metric"`
	Rank     string        `json:"rank"`
}

// Board computes the requested board, sorted descending by metric.
func Board(ctx context.Context, src Source, metric Metric, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	switch metric {
	case MetricAllTime:
		return allTime(ctx, src, limit)
	case MetricUpvoted, MetricBestAnswer, MetricWeekly:
		return fromResponses(ctx, src, metric, limit)
	default:
		return nil, fmt.Errorf("leaderboard metric %q: %w", metric, credit.ErrNotFound)
	}
}

func allTime(ctx context.Context, src Source, limit int) ([]Row, error) {
	accounts, err := src.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, Row{
			UserID:   a.ID,
			Username: a.Username,
			Metric:   a.Credits.Int64(),
		})
	}
	return finish(rows, limit), nil
}

func fromResponses(ctx context.Context, src Source, metric Metric, limit int) ([]Row, error) {
	responses, err := src.ListAllResponses(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := src.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	usernames := make(map[credit.UserID]string, len(accounts))
	for _, a := range accounts {
		usernames[a.ID] = a.Username
	}

	cutoff := time.Now().UTC().Add(-weeklyWindow)
	scores := make(map[credit.UserID]int64)
	for _, r := range responses {
		switch metric {
		case MetricUpvoted:
			scores[r.AuthorID] += int64(r.ThumbsUp)
		case MetricBestAnswer:
			if r.IsBestAnswer {
				scores[r.AuthorID]++
			}
		case MetricWeekly:
			if r.CreatedAt.Before(cutoff) {
				continue
			}
			score := int64(r.ThumbsUp)*credit.UpvoteCredit + int64(r.ThumbsDown)*credit.DownvoteCredit
			if r.IsBestAnswer {
				score += credit.BestAnswerCredit
			}
			scores[r.AuthorID] += score
		}
	}

	rows := make([]Row, 0, len(scores))
	for user, score := range scores {
		rows = append(rows, Row{
			UserID:   user,
			Username: usernames[user],
			Metric:   score,
		})
	}
	return finish(rows, limit), nil
}

// finish sorts, trims, and stamps rank labels. Ties break by username so
// ordering is stable across reads.
func finish(rows []Row, limit int) []Row {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Metric != rows[j].Metric {
			return rows[i].Metric > rows[j].Metric
		}
		return rows[i].Username < rows[j].Username
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = credit.EarnedRanks.RankFor(credit.NewCredits(rows[i].Metric))
	}
	return rows
}
