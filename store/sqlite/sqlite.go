/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements ledger.TxStore and the directory/catalog CRUD the API needs,
  using a single SQLite file.

KEY TABLES:
  teams:             Team directory (unique name)
  users:             User directory (unique email, required team)
  transactions:      Append-only coin ledger
  achievements:      Milestone catalog
  user_achievements: User unlocks, UNIQUE(user_id, achievement_id)
  team_achievements: Team unlocks, UNIQUE(team_id, achievement_id)

VIEWS:
  user_leaderboard, team_leaderboard aggregate totals, counts, and last
  activity straight from the ledger on every read. Nothing is cached.

CASCADES:
  Deleting a team deletes its users and entries. Deleting a user deletes
  that user's entries and unlocks.

CONCURRENCY:
  The pool is capped at one connection, so SQLite sees a single writer.
  A transaction opened by WithTx holds that connection until it commits
  or rolls back; all work inside must go through the Store passed to fn.

TIMESTAMPS:
  Stored as fixed-width UTC text (timeLayout) so that string comparison
  and MAX() order the same way as time.

USAGE:
  store, err := sqlite.New("./data/coinboard.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/coinboard/ledger"
)

const timeLayout = "2006-01-02T15:04:05.000000Z"

// DefaultTeamColor is used when a team is created without a color.
const DefaultTeamColor = "#3B82F6"

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	queries
}

var _ ledger.TxStore = (*Store)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds every statement so the same code runs inside and outside
// a transaction.
type queries struct {
	q querier
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dbPath+sep+"_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, queries: queries{q: db}}
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		color TEXT NOT NULL DEFAULT '#3B82F6',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		team_id INTEGER NOT NULL,
		avatar_url TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE
	);

	-- Append-only ledger. user_id is NULL for team-only awards.
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		team_id INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		reason TEXT NOT NULL,
		awarded_by TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS achievements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL CHECK (type IN ('user', 'team')),
		name TEXT NOT NULL,
		description TEXT,
		icon TEXT,
		threshold INTEGER NOT NULL,
		tier TEXT NOT NULL DEFAULT 'bronze',
		created_at TEXT NOT NULL
	);

	-- The UNIQUE pairs are the only guard for concurrent unlocks.
	CREATE TABLE IF NOT EXISTS user_achievements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		achievement_id INTEGER NOT NULL,
		unlocked_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (achievement_id) REFERENCES achievements(id) ON DELETE CASCADE,
		UNIQUE(user_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS team_achievements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		team_id INTEGER NOT NULL,
		achievement_id INTEGER NOT NULL,
		unlocked_at TEXT NOT NULL,
		FOREIGN KEY (team_id) REFERENCES teams(id) ON DELETE CASCADE,
		FOREIGN KEY (achievement_id) REFERENCES achievements(id) ON DELETE CASCADE,
		UNIQUE(team_id, achievement_id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_team_id ON transactions(team_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
	CREATE INDEX IF NOT EXISTS idx_users_team_id ON users(team_id);

	DROP VIEW IF EXISTS user_leaderboard;
	DROP VIEW IF EXISTS team_leaderboard;

	CREATE VIEW user_leaderboard AS
	SELECT
		u.id,
		u.name,
		COALESCE(u.email, '') AS email,
		u.team_id,
		t.name AS team_name,
		t.color AS team_color,
		COALESCE(SUM(tr.amount), 0) AS total_coins,
		(SELECT COUNT(*) FROM user_achievements ua WHERE ua.user_id = u.id) AS achievement_count,
		MAX(tr.created_at) AS last_activity
	FROM users u
	JOIN teams t ON u.team_id = t.id
	LEFT JOIN transactions tr ON tr.user_id = u.id
	GROUP BY u.id, u.name, u.email, u.team_id, t.name, t.color;

	CREATE VIEW team_leaderboard AS
	SELECT
		t.id,
		t.name,
		COALESCE(t.description, '') AS description,
		t.color,
		(SELECT COUNT(*) FROM users WHERE team_id = t.id) AS member_count,
		COALESCE((SELECT SUM(amount) FROM transactions WHERE team_id = t.id), 0) AS total_coins,
		(SELECT COUNT(*) FROM team_achievements WHERE team_id = t.id) AS achievement_count,
		(SELECT MAX(created_at) FROM transactions WHERE team_id = t.id) AS last_activity
	FROM teams t;
	`

	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// Tx is a store bound to one open transaction. Besides the ledger operations
// it carries the directory writes (Reset, CreateTeam, CreateUser) so they can
// commit together with ledger entries.
type Tx struct {
	queries
}

var _ ledger.TxStore = (*Tx)(nil)

// WithTx joins the enclosing transaction: fn runs against t and the outer
// WithBoardTx decides commit or rollback.
func (t *Tx) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	return fn(t)
}

// WithBoardTx executes fn within a database transaction that also allows
// directory writes. If fn returns error, everything fn wrote is rolled back.
func (s *Store) WithBoardTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&Tx{queries: queries{q: sqlTx}}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// =============================================================================
// DIRECTORY LOOKUPS (ledger.Store)
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

const teamColumns = `id, name, COALESCE(description, ''), color, created_at, updated_at`

func scanTeam(row scanner) (ledger.Team, error) {
	var (
		t                    ledger.Team
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Color, &createdAt, &updatedAt); err != nil {
		return t, err
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

// Team returns a team by ID, or nil if it doesn't exist.
func (s *queries) Team(ctx context.Context, id ledger.TeamID) (*ledger.Team, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM teams WHERE id = ?", id)
	t, err := scanTeam(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

const userColumns = `id, name, COALESCE(email, ''), team_id, COALESCE(avatar_url, ''), created_at, updated_at`

func scanUser(row scanner) (ledger.User, error) {
	var (
		u                    ledger.User
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.TeamID, &u.AvatarURL, &createdAt, &updatedAt); err != nil {
		return u, err
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return u, nil
}

// User returns a user by ID, or nil if it doesn't exist.
func (s *queries) User(ctx context.Context, id ledger.UserID) (*ledger.User, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// =============================================================================
// LEDGER (ledger.Store)
// =============================================================================

const entryColumns = `id, user_id, team_id, amount, reason, COALESCE(awarded_by, ''), created_at`

// AppendEntry adds an entry to the ledger. There is no update or delete.
func (s *queries) AppendEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	var userID sql.NullInt64
	if e.UserID != nil {
		userID = sql.NullInt64{Int64: int64(*e.UserID), Valid: true}
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (user_id, team_id, amount, reason, awarded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, e.TeamID, e.Amount, e.Reason, nullString(e.AwardedBy), formatTime(e.CreatedAt))
	if err != nil {
		return e, fmt.Errorf("failed to append entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return e, fmt.Errorf("failed to read entry id: %w", err)
	}
	e.ID = ledger.EntryID(id)
	return e, nil
}

// TotalCoins sums every entry referencing ref. Zero when there are none.
func (s *queries) TotalCoins(ctx context.Context, ref ledger.EntityRef) (int64, error) {
	col, err := entryColumn(ref.Scope)
	if err != nil {
		return 0, err
	}

	var total int64
	err = s.q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE "+col+" = ?", ref.ID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum coins: %w", err)
	}
	return total, nil
}

// EntriesSince returns entries referencing ref created at or after since.
func (s *queries) EntriesSince(ctx context.Context, ref ledger.EntityRef, since time.Time) ([]ledger.Entry, error) {
	col, err := entryColumn(ref.Scope)
	if err != nil {
		return nil, err
	}

	lower := ""
	if !since.IsZero() {
		lower = formatTime(since)
	}

	return s.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM transactions
		WHERE `+col+` = ? AND created_at >= ?
		ORDER BY created_at ASC, id ASC
	`, ref.ID, lower)
}

// RecentEntries returns the newest entries referencing ref.
func (s *queries) RecentEntries(ctx context.Context, ref ledger.EntityRef, limit int) ([]ledger.Entry, error) {
	col, err := entryColumn(ref.Scope)
	if err != nil {
		return nil, err
	}

	return s.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM transactions
		WHERE `+col+` = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, ref.ID, limit)
}

func (s *queries) queryEntries(ctx context.Context, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []ledger.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(row scanner) (ledger.Entry, error) {
	var (
		e         ledger.Entry
		userID    sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&e.ID, &userID, &e.TeamID, &e.Amount, &e.Reason, &e.AwardedBy, &createdAt); err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}
	if userID.Valid {
		uid := ledger.UserID(userID.Int64)
		e.UserID = &uid
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

// =============================================================================
// ACHIEVEMENTS (ledger.Store)
// =============================================================================

const achievementColumns = `id, type, name, COALESCE(description, ''), COALESCE(icon, ''), threshold, tier, created_at`

func scanAchievement(row scanner) (ledger.Achievement, error) {
	var (
		a         ledger.Achievement
		createdAt string
	)
	if err := row.Scan(&a.ID, &a.Scope, &a.Name, &a.Description, &a.Icon, &a.Threshold, &a.Tier, &createdAt); err != nil {
		return a, err
	}
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

// Achievements returns the catalog for scope ordered by threshold.
func (s *queries) Achievements(ctx context.Context, scope ledger.Scope) ([]ledger.Achievement, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+achievementColumns+" FROM achievements WHERE type = ? ORDER BY threshold ASC, id ASC",
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	out := []ledger.Achievement{}
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Unlocks returns the unlock records held by ref.
func (s *queries) Unlocks(ctx context.Context, ref ledger.EntityRef) ([]ledger.Unlock, error) {
	table, col, err := unlockTable(ref.Scope)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT achievement_id, unlocked_at FROM "+table+" WHERE "+col+" = ? ORDER BY unlocked_at ASC, id ASC",
		ref.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unlocks: %w", err)
	}
	defer rows.Close()

	out := []ledger.Unlock{}
	for rows.Next() {
		var (
			u          = ledger.Unlock{Entity: ref}
			unlockedAt string
		)
		if err := rows.Scan(&u.AchievementID, &unlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unlock: %w", err)
		}
		u.UnlockedAt = parseTime(unlockedAt)
		out = append(out, u)
	}
	return out, rows.Err()
}

// Unlock records an unlock. A uniqueness violation is ErrDuplicateUnlock.
func (s *queries) Unlock(ctx context.Context, ref ledger.EntityRef, id ledger.AchievementID, at time.Time) error {
	table, col, err := unlockTable(ref.Scope)
	if err != nil {
		return err
	}

	_, err = s.q.ExecContext(ctx,
		"INSERT INTO "+table+" ("+col+", achievement_id, unlocked_at) VALUES (?, ?, ?)",
		ref.ID, id, formatTime(at),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateUnlock
		}
		return fmt.Errorf("failed to unlock achievement: %w", err)
	}
	return nil
}

// =============================================================================
// AGGREGATE VIEWS (ledger.Store)
// =============================================================================

// UserStandings aggregates every user from the ledger.
func (s *queries) UserStandings(ctx context.Context) ([]ledger.Standing, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, email, team_id, team_name, team_color,
		       total_coins, achievement_count, last_activity
		FROM user_leaderboard
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user standings: %w", err)
	}
	defer rows.Close()

	out := []ledger.Standing{}
	for rows.Next() {
		var (
			st   = ledger.Standing{Scope: ledger.ScopeUser}
			last sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.TeamID, &st.TeamName, &st.TeamColor,
			&st.TotalCoins, &st.AchievementCount, &last); err != nil {
			return nil, fmt.Errorf("failed to scan user standing: %w", err)
		}
		st.LastActivity = parseNullTime(last)
		out = append(out, st)
	}
	return out, rows.Err()
}

// TeamStandings aggregates every team from the ledger.
func (s *queries) TeamStandings(ctx context.Context) ([]ledger.Standing, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, description, color, member_count,
		       total_coins, achievement_count, last_activity
		FROM team_leaderboard
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team standings: %w", err)
	}
	defer rows.Close()

	out := []ledger.Standing{}
	for rows.Next() {
		var (
			st   = ledger.Standing{Scope: ledger.ScopeTeam}
			last sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.Color, &st.MemberCount,
			&st.TotalCoins, &st.AchievementCount, &last); err != nil {
			return nil, fmt.Errorf("failed to scan team standing: %w", err)
		}
		st.LastActivity = parseNullTime(last)
		out = append(out, st)
	}
	return out, rows.Err()
}

// Helper functions

func entryColumn(scope ledger.Scope) (string, error) {
	switch scope {
	case ledger.ScopeUser:
		return "user_id", nil
	case ledger.ScopeTeam:
		return "team_id", nil
	}
	return "", ledger.Invalid("scope", fmt.Sprintf("unknown scope %q", scope))
}

func unlockTable(scope ledger.Scope) (table, col string, err error) {
	switch scope {
	case ledger.ScopeUser:
		return "user_achievements", "user_id", nil
	case ledger.ScopeTeam:
		return "team_achievements", "team_id", nil
	}
	return "", "", ledger.Invalid("scope", fmt.Sprintf("unknown scope %q", scope))
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
