/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the API contract, decoupled from the domain types
  so internal fields can move without breaking clients.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Done in handlers; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/forum"
	"github.com/peerwise/forum-engine/rewards"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountDTO represents a user account in API responses.
type AccountDTO struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Credits         int64    `json:"credits"`
	Rank            string   `json:"rank"`
	ClaimedRank     string   `json:"claimed_rank,omitempty"`
	Title           string   `json:"title,omitempty"`
	Badges          []string `json:"badges"`
	BestAnswerCount int      `json:"best_answer_count"`
	QuestionsAsked  int      `json:"questions_asked"`
	AnswersGiven    int      `json:"answers_given"`
}

// CreateAccountRequest is the request to register an account.
type CreateAccountRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LedgerEntryDTO is one credit ledger line.
type LedgerEntryDTO struct {
	ID        string    `json:"id"`
	Delta     int64     `json:"delta"`
	Type      string    `json:"type"`
	Reference string    `json:"reference,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LedgerDTO is an account's full history plus the audit result.
type LedgerDTO struct {
	Entries    []LedgerEntryDTO `json:"entries"`
	Balance    int64            `json:"balance"`
	Replayed   int64            `json:"replayed"`
	Reconciled bool             `json:"reconciled"`
}

// =============================================================================
// THREADS AND RESPONSES
// =============================================================================

// ThreadDTO represents a problem thread in API responses.
type ThreadDTO struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ResponseCount int       `json:"response_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateThreadRequest is the request to post a problem.
type CreateThreadRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ResponseDTO represents a response in API responses. VoterState is the
// requesting user's vote on it, when known.
type ResponseDTO struct {
	ID           string    `json:"id"`
	ThreadID     string    `json:"thread_id"`
	AuthorID     string    `json:"author_id"`
	Content      string    `json:"content"`
	FileURL      string    `json:"file_url,omitempty"`
	YouTubeURL   string    `json:"youtube_url,omitempty"`
	ThumbsUp     int       `json:"thumbs_up"`
	ThumbsDown   int       `json:"thumbs_down"`
	IsBestAnswer bool      `json:"is_best_answer"`
	VoterState   string    `json:"voter_state,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateResponseRequest is the request to answer a thread.
type CreateResponseRequest struct {
	Content    string `json:"content"`
	FileURL    string `json:"file_url"`
	YouTubeURL string `json:"youtube_url"`
}

// VoteRequest carries the vote direction.
type VoteRequest struct {
	Type string `json:"type"`
}

// VoteResponseDTO reports the tallies after a vote.
type VoteResponseDTO struct {
	ResponseID string `json:"response_id"`
	ThumbsUp   int    `json:"thumbs_up"`
	ThumbsDown int    `json:"thumbs_down"`
	VoterState string `json:"voter_state"`
}

// AwardResponseDTO confirms a best-answer award.
type AwardResponseDTO struct {
	ResponseID string `json:"response_id"`
	AuthorID   string `json:"author_id"`
	Awarded    bool   `json:"awarded"`
}

// =============================================================================
// REWARDS AND RANKS
// =============================================================================

// RewardDTO represents a catalog reward.
type RewardDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cost        int64  `json:"cost"`
	Type        string `json:"type"`
	BadgeID     string `json:"badge_id,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// RedemptionDTO reports a successful redemption.
type RedemptionDTO struct {
	RewardName       string `json:"reward_name"`
	RemainingCredits int64  `json:"remaining_credits"`
}

// RankTierDTO is one purchasable rank.
type RankTierDTO struct {
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

// ClaimDTO reports a successful rank claim.
type ClaimDTO struct {
	ClaimedRank      string `json:"claimed_rank"`
	RemainingCredits int64  `json:"remaining_credits"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toAccountDTO(a *credit.Account) AccountDTO {
	badges := make([]string, len(a.Badges))
	for i, b := range a.Badges {
		badges[i] = string(b)
	}
	return AccountDTO{
		ID:              string(a.ID),
		Username:        a.Username,
		Credits:         a.Credits.Int64(),
		Rank:            a.Rank,
		ClaimedRank:     a.ClaimedRank,
		Title:           a.Title,
		Badges:          badges,
		BestAnswerCount: a.BestAnswerCount,
		QuestionsAsked:  a.QuestionsAsked,
		AnswersGiven:    a.AnswersGiven,
	}
}

func toResponseDTO(r *forum.Response, viewer credit.UserID) ResponseDTO {
	dto := ResponseDTO{
		ID:           string(r.ID),
		ThreadID:     string(r.ThreadID),
		AuthorID:     string(r.AuthorID),
		Content:      r.Content,
		FileURL:      r.FileURL,
		YouTubeURL:   r.YouTubeURL,
		ThumbsUp:     r.ThumbsUp,
		ThumbsDown:   r.ThumbsDown,
		IsBestAnswer: r.IsBestAnswer,
		CreatedAt:    r.CreatedAt,
	}
	if viewer != "" {
		dto.VoterState = string(r.StateOf(viewer))
	}
	return dto
}

func toRewardDTO(r *rewards.Reward) RewardDTO {
	return RewardDTO{
		ID:          string(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Cost:        r.Cost,
		Type:        string(r.Type),
		BadgeID:     string(r.BadgeID),
		ImageURL:    r.ImageURL,
	}
}
