/*
engine.go - Orchestration of votes, awards, threads, and responses

PURPOSE:
  The Engine runs each operation as read -> validate -> compute ->
  conditional commit, retrying a bounded number of times on version
  conflicts. A failed operation leaves every document exactly as it was;
  a successful one emits real-time events strictly after the commit.

EVENT EMISSION:
  Fire-and-forget. The Emitter never feeds errors back here, so delivery
  problems cannot roll back or retry a committed credit mutation.
*/
package forum

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/realtime"
)

// maxCommitRetries bounds the optimistic-concurrency retry loop.
// Conflicts past this surface as credit.ErrConcurrentModification.
const maxCommitRetries = 3

// Engine coordinates forum operations against a Store and an Emitter.
type Engine struct {
	store  Store
	events realtime.Emitter
	ranks  credit.Table
}

// NewEngine creates an engine using the default earned-rank table.
func NewEngine(store Store, events realtime.Emitter) *Engine {
	return &Engine{store: store, events: events, ranks: credit.EarnedRanks}
}

// =============================================================================
// VOTING
// =============================================================================

// VoteResult reports the tallies and the caller's vote state after the cast.
type VoteResult struct {
	ThumbsUp   int
	ThumbsDown int
	VoterState VoteState
}

// CastVote applies one vote event from voter to the response. The tally
// change, the voter record, the author's credit delta, the re-derived
// rank, and the ledger entry commit together or not at all.
func (e *Engine) CastVote(ctx context.Context, responseID ResponseID, voterID credit.UserID, vote VoteType) (VoteResult, error) {
	if !vote.Valid() {
		return VoteResult{}, fmt.Errorf("vote %q: %w", vote, credit.ErrInvalidVoteType)
	}

	var lastErr error
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		resp, err := e.store.GetResponse(ctx, responseID)
		if err != nil {
			return VoteResult{}, err
		}
		if resp.AuthorID == voterID {
			return VoteResult{}, credit.ErrSelfVote
		}

		author, err := e.store.GetAccount(ctx, resp.AuthorID)
		if err != nil {
			return VoteResult{}, err
		}

		outcome, err := Transition(resp.StateOf(voterID), vote)
		if err != nil {
			return VoteResult{}, err
		}

		applyOutcome(resp, voterID, outcome)
		delta := credit.NewCredits(outcome.CreditDelta)
		author.Apply(delta, e.ranks)
		entry := credit.NewEntry(author.ID, delta, outcome.EntryType, string(responseID), outcome.Reason)

		if err := e.store.CommitVote(ctx, resp, author, entry); err != nil {
			if credit.IsRetryable(err) {
				lastErr = err
				continue
			}
			return VoteResult{}, err
		}

		e.events.Emit(realtime.Event{
			Type: realtime.EventVotesUpdated,
			Room: string(resp.ThreadID),
			Payload: votesPayload{
				ResponseID: resp.ID,
				ThumbsUp:   resp.ThumbsUp,
				ThumbsDown: resp.ThumbsDown,
			},
		})
		if !delta.IsZero() {
			e.events.Emit(realtime.Event{
				Type:    realtime.EventCreditsUpdated,
				UserID:  author.ID,
				Payload: creditsPayload{Credits: author.Credits.Int64(), Rank: author.Rank},
			})
		}

		return VoteResult{
			ThumbsUp:   resp.ThumbsUp,
			ThumbsDown: resp.ThumbsDown,
			VoterState: outcome.Next,
		}, nil
	}
	return VoteResult{}, fmt.Errorf("cast vote on %s: %w", responseID, lastErr)
}

// =============================================================================
// BEST ANSWER
// =============================================================================

// AwardResult confirms a best-answer award.
type AwardResult struct {
	Awarded    bool
	ResponseID ResponseID
	AuthorID   credit.UserID
}

// AwardBestAnswer marks the response as its thread's best answer and pays
// the author the one-time bonus. Only the thread author may award, never
// to themselves, and at most once per thread. Irreversible.
func (e *Engine) AwardBestAnswer(ctx context.Context, responseID ResponseID, callerID credit.UserID) (AwardResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		resp, err := e.store.GetResponse(ctx, responseID)
		if err != nil {
			return AwardResult{}, err
		}
		thread, err := e.store.GetThread(ctx, resp.ThreadID)
		if err != nil {
			return AwardResult{}, err
		}
		if thread.AuthorID != callerID {
			return AwardResult{}, credit.ErrNotThreadAuthor
		}
		if resp.AuthorID == thread.AuthorID {
			return AwardResult{}, credit.ErrSelfAward
		}
		if resp.IsBestAnswer {
			return AwardResult{}, credit.ErrAlreadyAwarded
		}

		author, err := e.store.GetAccount(ctx, resp.AuthorID)
		if err != nil {
			return AwardResult{}, err
		}

		resp.IsBestAnswer = true
		bonus := credit.NewCredits(credit.BestAnswerCredit)
		author.Apply(bonus, e.ranks)
		author.BestAnswerCount++
		entry := credit.NewEntry(author.ID, bonus, credit.EntryBestAnswer, string(responseID), "best answer awarded")

		if err := e.store.CommitAward(ctx, resp, author, entry); err != nil {
			if credit.IsRetryable(err) {
				lastErr = err
				continue
			}
			return AwardResult{}, err
		}

		e.events.Emit(realtime.Event{
			Type:    realtime.EventBestAnswer,
			Room:    string(resp.ThreadID),
			Payload: bestAnswerPayload{ResponseID: resp.ID},
		})
		e.events.Emit(realtime.Event{
			Type:   realtime.EventNotification,
			UserID: author.ID,
			Payload: notificationPayload{
				Message: fmt.Sprintf("Your response was chosen as the best answer on %q (+%d credits)", thread.Title, credit.BestAnswerCredit),
				Link:    "/threads/" + string(thread.ID),
			},
		})
		e.events.Emit(realtime.Event{
			Type:    realtime.EventCreditsUpdated,
			UserID:  author.ID,
			Payload: creditsPayload{Credits: author.Credits.Int64(), Rank: author.Rank},
		})

		return AwardResult{Awarded: true, ResponseID: resp.ID, AuthorID: author.ID}, nil
	}
	return AwardResult{}, fmt.Errorf("award best answer on %s: %w", responseID, lastErr)
}

// =============================================================================
// THREADS AND RESPONSES
// =============================================================================

// CreateThread posts a new problem.
func (e *Engine) CreateThread(ctx context.Context, authorID credit.UserID, title, description string) (*Thread, error) {
	author, err := e.store.GetAccount(ctx, authorID)
	if err != nil {
		return nil, err
	}

	thread := &Thread{
		ID:          ThreadID(uuid.NewString()),
		AuthorID:    authorID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.store.CreateThread(ctx, thread); err != nil {
		return nil, err
	}

	e.bumpCounters(ctx, author, func(a *credit.Account) { a.QuestionsAsked++ })

	e.events.Emit(realtime.Event{
		Type: realtime.EventNewThread,
		Payload: threadPayload{
			ID:             thread.ID,
			Title:          thread.Title,
			Description:    thread.Description,
			AuthorUsername: author.Username,
			ResponseCount:  0,
			CreatedAt:      thread.CreatedAt,
		},
	})
	return thread, nil
}

// AddResponse posts an answer to a thread, notifying the thread author
// when somebody else responds.
func (e *Engine) AddResponse(ctx context.Context, threadID ThreadID, authorID credit.UserID, content, fileURL, youtubeURL string) (*Response, error) {
	thread, err := e.store.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	author, err := e.store.GetAccount(ctx, authorID)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		ID:         ResponseID(uuid.NewString()),
		ThreadID:   threadID,
		AuthorID:   authorID,
		Content:    content,
		FileURL:    fileURL,
		YouTubeURL: youtubeURL,
		Voters:     make(map[credit.UserID]VoteType),
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.CreateResponse(ctx, resp); err != nil {
		return nil, err
	}

	e.bumpCounters(ctx, author, func(a *credit.Account) { a.AnswersGiven++ })

	if thread.AuthorID != authorID {
		e.events.Emit(realtime.Event{
			Type:   realtime.EventNotification,
			UserID: thread.AuthorID,
			Payload: notificationPayload{
				Message: fmt.Sprintf("Someone responded to your problem: %q", thread.Title),
				Link:    "/threads/" + string(threadID),
			},
		})
	}
	e.events.Emit(realtime.Event{
		Type: realtime.EventNewResponse,
		Room: string(threadID),
		Payload: responsePayload{
			ID:             resp.ID,
			ThreadID:       threadID,
			Content:        resp.Content,
			AuthorUsername: author.Username,
			FileURL:        resp.FileURL,
			YouTubeURL:     resp.YouTubeURL,
			CreatedAt:      resp.CreatedAt,
		},
	})
	return resp, nil
}

// bumpCounters applies a non-credit counter change with the same bounded
// retry as commits. Losing one is harmless to the ledger, so a conflict
// past the retries is only logged.
func (e *Engine) bumpCounters(ctx context.Context, account *credit.Account, mutate func(*credit.Account)) {
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		mutate(account)
		err := e.store.SaveAccount(ctx, account)
		if err == nil {
			return
		}
		if !credit.IsRetryable(err) {
			log.WithError(err).WithField("account", account.ID).Warn("account counter update failed")
			return
		}
		fresh, getErr := e.store.GetAccount(ctx, account.ID)
		if getErr != nil {
			log.WithError(getErr).WithField("account", account.ID).Warn("account counter update failed")
			return
		}
		account = fresh
	}
	log.WithField("account", account.ID).Warn("account counter update dropped after retries")
}

// =============================================================================
// EVENT PAYLOADS
// =============================================================================

type votesPayload struct {
	ResponseID ResponseID `json:"response_id"`
	ThumbsUp   int        `json:"thumbs_up"`
	ThumbsDown int        `json:"thumbs_down"`
}

type creditsPayload struct {
	Credits int64  `json:"credits"`
	Rank    string `json:"rank"`
}

type bestAnswerPayload struct {
	ResponseID ResponseID `json:"response_id"`
}

type notificationPayload struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

type threadPayload struct {
	ID             ThreadID  `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	AuthorUsername string    `json:"author_username"`
	ResponseCount  int       `json:"response_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type responsePayload struct {
	ID             ResponseID `json:"id"`
	ThreadID       ThreadID   `json:"thread_id"`
	Content        string     `json:"content"`
	AuthorUsername string     `json:"author_username"`
	FileURL        string     `json:"file_url,omitempty"`
	YouTubeURL     string     `json:"youtube_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
