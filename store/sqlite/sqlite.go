/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements the forum, rewards, leaderboard, and ledger interfaces on
  SQLite. The same patterns apply to PostgreSQL — only minor SQL dialect
  differences.

CONCURRENCY:
  Optimistic concurrency: accounts and responses carry a version column,
  and every mutating statement is `UPDATE ... WHERE id=? AND version=?`
  inside a transaction. Zero rows affected means another commit won the
  race; the whole transaction rolls back and the caller sees
  credit.ErrConcurrentModification. The connection opens with
  _txlock=immediate so write transactions serialize at BEGIN instead of
  deadlocking mid-flight.

UNIQUENESS:
  "At most one best answer per thread" is a partial unique index on
  responses(thread_id) WHERE is_best_answer=1. A lost award race comes
  back as a constraint violation, mapped to credit.ErrAlreadyAwarded.

APPEND-ONLY LEDGER:
  credit_ledger has INSERT and SELECT paths only. Corrections would be
  new entries, never edits.

KEY TABLES:
  accounts, account_badges, threads, responses, response_voters,
  rewards, badges, credit_ledger

USAGE:
  store, err := sqlite.New("./peerwise.db")  // or ":memory:"
  defer store.Close()

SEE ALSO:
  - forum/store.go: Interface contracts
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/peerwise/forum-engine/credit"
	"github.com/peerwise/forum-engine/forum"
	"github.com/peerwise/forum-engine/rewards"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// Interface checks.
var (
	_ forum.Store         = (*Store)(nil)
	_ rewards.Store       = (*Store)(nil)
	_ credit.LedgerReader = (*Store)(nil)
)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a pool of writers just queues on the
	// file lock, so keep a single connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id                TEXT PRIMARY KEY,
		username          TEXT NOT NULL,
		credits           TEXT NOT NULL,
		rank              TEXT NOT NULL,
		claimed_rank      TEXT NOT NULL DEFAULT '',
		title             TEXT NOT NULL DEFAULT '',
		best_answer_count INTEGER NOT NULL DEFAULT 0,
		questions_asked   INTEGER NOT NULL DEFAULT 0,
		answers_given     INTEGER NOT NULL DEFAULT 0,
		version           INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS account_badges (
		account_id TEXT NOT NULL REFERENCES accounts(id),
		badge_id   TEXT NOT NULL,
		position   INTEGER NOT NULL,
		PRIMARY KEY (account_id, badge_id)
	);

	CREATE TABLE IF NOT EXISTS threads (
		id          TEXT PRIMARY KEY,
		author_id   TEXT NOT NULL REFERENCES accounts(id),
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS responses (
		id             TEXT PRIMARY KEY,
		thread_id      TEXT NOT NULL REFERENCES threads(id),
		author_id      TEXT NOT NULL REFERENCES accounts(id),
		content        TEXT NOT NULL,
		file_url       TEXT NOT NULL DEFAULT '',
		youtube_url    TEXT NOT NULL DEFAULT '',
		thumbs_up      INTEGER NOT NULL DEFAULT 0,
		thumbs_down    INTEGER NOT NULL DEFAULT 0,
		is_best_answer INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMP NOT NULL,
		version        INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_responses_thread ON responses(thread_id);
	CREATE INDEX IF NOT EXISTS idx_responses_author ON responses(author_id);

	-- Invariant: at most one best answer per thread.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_one_best_answer
		ON responses(thread_id) WHERE is_best_answer = 1;

	CREATE TABLE IF NOT EXISTS response_voters (
		response_id TEXT NOT NULL REFERENCES responses(id),
		voter_id    TEXT NOT NULL,
		vote_type   TEXT NOT NULL CHECK (vote_type IN ('up', 'down')),
		PRIMARY KEY (response_id, voter_id)
	);

	CREATE TABLE IF NOT EXISTS rewards (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		cost        INTEGER NOT NULL CHECK (cost >= 0),
		type        TEXT NOT NULL CHECK (type IN ('title', 'merchandise')),
		badge_id    TEXT NOT NULL DEFAULT '',
		image_url   TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS badges (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image_url   TEXT NOT NULL DEFAULT '',
		reward_id   TEXT NOT NULL DEFAULT ''
	);

	-- Append-only: no UPDATE or DELETE path exists for this table.
	CREATE TABLE IF NOT EXISTS credit_ledger (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		delta      TEXT NOT NULL,
		type       TEXT NOT NULL,
		reference  TEXT NOT NULL DEFAULT '',
		reason     TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_user ON credit_ledger(user_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// isConstraint reports whether err is a SQLite constraint violation.
func isConstraint(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) CreateAccount(ctx context.Context, a *credit.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, credits, rank, claimed_rank, title,
			best_answer_count, questions_asked, answers_given, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		a.ID, a.Username, a.Credits.String(), a.Rank, a.ClaimedRank, a.Title,
		a.BestAnswerCount, a.QuestionsAsked, a.AnswersGiven)
	if isConstraint(err) {
		return credit.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	a.Version = 1
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id credit.UserID) (*credit.Account, error) {
	return s.getAccount(ctx, s.db, id)
}

// querier lets account reads run against the pool or an open transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) getAccount(ctx context.Context, q querier, id credit.UserID) (*credit.Account, error) {
	var a credit.Account
	var creditsStr string
	err := q.QueryRowContext(ctx, `
		SELECT id, username, credits, rank, claimed_rank, title,
			best_answer_count, questions_asked, answers_given, version
		FROM accounts WHERE id = ?`, id).Scan(
		&a.ID, &a.Username, &creditsStr, &a.Rank, &a.ClaimedRank, &a.Title,
		&a.BestAnswerCount, &a.QuestionsAsked, &a.AnswersGiven, &a.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, credit.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Credits = credit.ParseCredits(creditsStr)

	rows, err := q.QueryContext(ctx, `
		SELECT badge_id FROM account_badges WHERE account_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b credit.BadgeID
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		a.Badges = append(a.Badges, b)
	}
	return &a, rows.Err()
}

func (s *Store) ListAccounts(ctx context.Context) ([]*credit.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []credit.UserID
	for rows.Next() {
		var id credit.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*credit.Account, 0, len(ids))
	for _, id := range ids {
		a, err := s.getAccount(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) SaveAccount(ctx context.Context, a *credit.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.updateAccountTx(ctx, tx, a); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	a.Version++
	return nil
}

// updateAccountTx performs the version-guarded account write, including
// the badge set. Does not bump a.Version; callers do on commit.
func (s *Store) updateAccountTx(ctx context.Context, tx *sql.Tx, a *credit.Account) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET username = ?, credits = ?, rank = ?, claimed_rank = ?, title = ?,
			best_answer_count = ?, questions_asked = ?, answers_given = ?,
			version = version + 1
		WHERE id = ? AND version = ?`,
		a.Username, a.Credits.String(), a.Rank, a.ClaimedRank, a.Title,
		a.BestAnswerCount, a.QuestionsAsked, a.AnswersGiven,
		a.ID, a.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the account vanished or the version moved on.
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE id = ?`, a.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return credit.ErrNotFound
		}
		return credit.ErrConcurrentModification
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM account_badges WHERE account_id = ?`, a.ID); err != nil {
		return err
	}
	for i, b := range a.Badges {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO account_badges (account_id, badge_id, position) VALUES (?, ?, ?)`,
			a.ID, b, i); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// THREADS
// =============================================================================

func (s *Store) CreateThread(ctx context.Context, t *forum.Thread) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO threads (id, author_id, title, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.AuthorID, t.Title, t.Description, t.CreatedAt)
	if isConstraint(err) {
		return credit.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetThread(ctx context.Context, id forum.ThreadID) (*forum.Thread, error) {
	var t forum.Thread
	err := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, title, description, created_at
		FROM threads WHERE id = ?`, id).Scan(
		&t.ID, &t.AuthorID, &t.Title, &t.Description, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, credit.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListThreads(ctx context.Context) ([]*forum.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, title, description, created_at
		FROM threads ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*forum.Thread
	for rows.Next() {
		var t forum.Thread
		if err := rows.Scan(&t.ID, &t.AuthorID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *Store) CountResponses(ctx context.Context, id forum.ThreadID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM responses WHERE thread_id = ?`, id).Scan(&n)
	return n, err
}

// =============================================================================
// RESPONSES
// =============================================================================

func (s *Store) CreateResponse(ctx context.Context, r *forum.Response) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (id, thread_id, author_id, content, file_url,
			youtube_url, thumbs_up, thumbs_down, is_best_answer, created_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		r.ID, r.ThreadID, r.AuthorID, r.Content, r.FileURL, r.YouTubeURL,
		r.ThumbsUp, r.ThumbsDown, boolToInt(r.IsBestAnswer), r.CreatedAt)
	if isConstraint(err) {
		// Distinguish a duplicate ID from a missing thread FK.
		if t, terr := s.GetThread(ctx, r.ThreadID); terr != nil || t == nil {
			return credit.ErrNotFound
		}
		return credit.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	r.Version = 1
	return nil
}

func (s *Store) GetResponse(ctx context.Context, id forum.ResponseID) (*forum.Response, error) {
	r, err := s.scanResponse(ctx, `
		SELECT id, thread_id, author_id, content, file_url, youtube_url,
			thumbs_up, thumbs_down, is_best_answer, created_at, version
		FROM responses WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(r) == 0 {
		return nil, credit.ErrNotFound
	}
	return r[0], nil
}

func (s *Store) ListResponses(ctx context.Context, thread forum.ThreadID) ([]*forum.Response, error) {
	return s.scanResponse(ctx, `
		SELECT id, thread_id, author_id, content, file_url, youtube_url,
			thumbs_up, thumbs_down, is_best_answer, created_at, version
		FROM responses WHERE thread_id = ? ORDER BY created_at DESC`, thread)
}

func (s *Store) ListAllResponses(ctx context.Context) ([]*forum.Response, error) {
	return s.scanResponse(ctx, `
		SELECT id, thread_id, author_id, content, file_url, youtube_url,
			thumbs_up, thumbs_down, is_best_answer, created_at, version
		FROM responses ORDER BY id`)
}

func (s *Store) scanResponse(ctx context.Context, query string, args ...any) ([]*forum.Response, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*forum.Response
	for rows.Next() {
		var r forum.Response
		var best int
		if err := rows.Scan(&r.ID, &r.ThreadID, &r.AuthorID, &r.Content,
			&r.FileURL, &r.YouTubeURL, &r.ThumbsUp, &r.ThumbsDown,
			&best, &r.CreatedAt, &r.Version); err != nil {
			return nil, err
		}
		r.IsBestAnswer = best == 1
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, r := range out {
		if err := s.loadVoters(ctx, r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadVoters(ctx context.Context, r *forum.Response) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT voter_id, vote_type FROM response_voters WHERE response_id = ?`, r.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	r.Voters = make(map[credit.UserID]forum.VoteType)
	for rows.Next() {
		var voter credit.UserID
		var vt forum.VoteType
		if err := rows.Scan(&voter, &vt); err != nil {
			return err
		}
		r.Voters[voter] = vt
	}
	return rows.Err()
}

// =============================================================================
// CONDITIONAL COMMITS
// =============================================================================

func (s *Store) CommitVote(ctx context.Context, r *forum.Response, author *credit.Account, entry credit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.updateResponseTx(ctx, tx, r); err != nil {
		return err
	}
	if err := s.updateAccountTx(ctx, tx, author); err != nil {
		return err
	}
	if err := appendEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.Version++
	author.Version++
	return nil
}

func (s *Store) CommitAward(ctx context.Context, r *forum.Response, author *credit.Account, entry credit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.updateResponseTx(ctx, tx, r); err != nil {
		if errors.Is(err, credit.ErrConcurrentModification) {
			return err
		}
		if isConstraint(err) {
			// The partial unique index fired: thread already has a winner.
			return credit.ErrAlreadyAwarded
		}
		return err
	}
	if err := s.updateAccountTx(ctx, tx, author); err != nil {
		return err
	}
	if err := appendEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if isConstraint(err) {
			return credit.ErrAlreadyAwarded
		}
		return err
	}
	r.Version++
	author.Version++
	return nil
}

func (s *Store) CommitRedemption(ctx context.Context, a *credit.Account, entry credit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.updateAccountTx(ctx, tx, a); err != nil {
		return err
	}
	if err := appendEntryTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	a.Version++
	return nil
}

// updateResponseTx performs the version-guarded response write, replacing
// the voter set. Does not bump r.Version; callers do on commit.
func (s *Store) updateResponseTx(ctx context.Context, tx *sql.Tx, r *forum.Response) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE responses
		SET thumbs_up = ?, thumbs_down = ?, is_best_answer = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		r.ThumbsUp, r.ThumbsDown, boolToInt(r.IsBestAnswer), r.ID, r.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses WHERE id = ?`, r.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return credit.ErrNotFound
		}
		return credit.ErrConcurrentModification
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM response_voters WHERE response_id = ?`, r.ID); err != nil {
		return err
	}
	for voter, vt := range r.Voters {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO response_voters (response_id, voter_id, vote_type) VALUES (?, ?, ?)`,
			r.ID, voter, vt); err != nil {
			return err
		}
	}
	return nil
}

func appendEntryTx(ctx context.Context, tx *sql.Tx, entry credit.Entry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_ledger (id, user_id, delta, type, reference, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Delta.String(), entry.Type,
		entry.Reference, entry.Reason, entry.CreatedAt)
	return err
}

// =============================================================================
// REWARD CATALOG
// =============================================================================

func (s *Store) CreateReward(ctx context.Context, r *rewards.Reward) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewards (id, name, description, cost, type, badge_id, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Description, r.Cost, r.Type, r.BadgeID, r.ImageURL)
	if isConstraint(err) {
		return credit.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetReward(ctx context.Context, id rewards.RewardID) (*rewards.Reward, error) {
	var r rewards.Reward
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, cost, type, badge_id, image_url
		FROM rewards WHERE id = ?`, id).Scan(
		&r.ID, &r.Name, &r.Description, &r.Cost, &r.Type, &r.BadgeID, &r.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, credit.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) ListRewards(ctx context.Context) ([]*rewards.Reward, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, cost, type, badge_id, image_url
		FROM rewards ORDER BY cost, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*rewards.Reward
	for rows.Next() {
		var r rewards.Reward
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Cost, &r.Type, &r.BadgeID, &r.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Store) CreateBadge(ctx context.Context, b *rewards.Badge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO badges (id, name, description, image_url, reward_id)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Description, b.ImageURL, b.RewardID)
	if isConstraint(err) {
		return credit.ErrAlreadyExists
	}
	return err
}

func (s *Store) GetBadge(ctx context.Context, id credit.BadgeID) (*rewards.Badge, error) {
	var b rewards.Badge
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, image_url, reward_id
		FROM badges WHERE id = ?`, id).Scan(
		&b.ID, &b.Name, &b.Description, &b.ImageURL, &b.RewardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, credit.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) Entries(ctx context.Context, user credit.UserID) ([]credit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, delta, type, reference, reason, created_at
		FROM credit_ledger WHERE user_id = ? ORDER BY created_at, id`, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []credit.Entry
	for rows.Next() {
		var e credit.Entry
		var delta string
		var created time.Time
		if err := rows.Scan(&e.ID, &e.UserID, &delta, &e.Type, &e.Reference, &e.Reason, &created); err != nil {
			return nil, err
		}
		e.Delta = credit.ParseCredits(delta)
		e.CreatedAt = created
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
