package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/warp/coinboard/ledger"
)

// =============================================================================
// TEAM STORE
// =============================================================================

// TeamUpdate carries optional team fields. Nil fields are left unchanged.
type TeamUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

// CreateTeam inserts a team. A taken name is ledger.ErrDuplicate.
func (s *queries) CreateTeam(ctx context.Context, t ledger.Team) (ledger.Team, error) {
	if t.Color == "" {
		t.Color = DefaultTeamColor
	}
	now := time.Now().UTC()

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO teams (name, description, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.Name, nullString(t.Description), t.Color, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueConstraintError(err) {
			return t, fmt.Errorf("team name %q: %w", t.Name, ledger.ErrDuplicate)
		}
		return t, fmt.Errorf("failed to create team: %w", err)
	}

	id, _ := res.LastInsertId()
	t.ID = ledger.TeamID(id)
	t.CreatedAt, t.UpdatedAt = now, now
	return t, nil
}

// UpdateTeam applies the non-nil fields of u.
func (s *Store) UpdateTeam(ctx context.Context, id ledger.TeamID, u TeamUpdate) (*ledger.Team, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE teams
		SET name = COALESCE(?, name),
		    description = COALESCE(?, description),
		    color = COALESCE(?, color),
		    updated_at = ?
		WHERE id = ?
	`, u.Name, u.Description, u.Color, formatTime(time.Now()), id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("team name: %w", ledger.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &ledger.NotFoundError{Kind: "team", ID: int64(id)}
	}
	return s.Team(ctx, id)
}

// DeleteTeam removes a team, its users, and their entries.
func (s *Store) DeleteTeam(ctx context.Context, id ledger.TeamID) error {
	return s.deleteByID(ctx, "teams", "team", int64(id))
}

// ListTeams returns all teams ordered by name.
func (s *Store) ListTeams(ctx context.Context) ([]ledger.Team, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+teamColumns+" FROM teams ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []ledger.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// TeamMembers returns a team's users ordered by name.
func (s *Store) TeamMembers(ctx context.Context, id ledger.TeamID) ([]ledger.User, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+userColumns+" FROM users WHERE team_id = ? ORDER BY name ASC", id)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	users := []ledger.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// =============================================================================
// USER STORE
// =============================================================================

// UserRecord is a user joined with its team's display fields.
type UserRecord struct {
	ledger.User
	TeamName  string
	TeamColor string
}

// UserUpdate carries optional user fields. Nil fields are left unchanged.
type UserUpdate struct {
	Name   *string
	Email  *string
	TeamID *ledger.TeamID
}

// CreateUser inserts a user. The team must exist; a taken email is
// ledger.ErrDuplicate.
func (s *queries) CreateUser(ctx context.Context, u ledger.User) (ledger.User, error) {
	team, err := s.Team(ctx, u.TeamID)
	if err != nil {
		return u, err
	}
	if team == nil {
		return u, &ledger.NotFoundError{Kind: "team", ID: int64(u.TeamID)}
	}

	now := time.Now().UTC()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO users (name, email, team_id, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.Name, nullString(u.Email), u.TeamID, nullString(u.AvatarURL), formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueConstraintError(err) {
			return u, fmt.Errorf("email %q: %w", u.Email, ledger.ErrDuplicate)
		}
		return u, fmt.Errorf("failed to create user: %w", err)
	}

	id, _ := res.LastInsertId()
	u.ID = ledger.UserID(id)
	u.CreatedAt, u.UpdatedAt = now, now
	return u, nil
}

// UpdateUser applies the non-nil fields of u. Moving a user to another team
// does not move their past entries.
func (s *Store) UpdateUser(ctx context.Context, id ledger.UserID, u UserUpdate) (*UserRecord, error) {
	if u.TeamID != nil {
		team, err := s.Team(ctx, *u.TeamID)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, &ledger.NotFoundError{Kind: "team", ID: int64(*u.TeamID)}
		}
	}

	// An empty email clears it to NULL so UNIQUE(email) ignores it.
	var email sql.NullString
	if u.Email != nil {
		email = nullString(*u.Email)
	}

	res, err := s.q.ExecContext(ctx, `
		UPDATE users
		SET name = COALESCE(?, name),
		    email = CASE WHEN ? THEN ? ELSE email END,
		    team_id = COALESCE(?, team_id),
		    updated_at = ?
		WHERE id = ?
	`, u.Name, u.Email != nil, email, u.TeamID, formatTime(time.Now()), id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("email: %w", ledger.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &ledger.NotFoundError{Kind: "user", ID: int64(id)}
	}
	return s.GetUserRecord(ctx, id)
}

// DeleteUser removes a user and their entries.
func (s *Store) DeleteUser(ctx context.Context, id ledger.UserID) error {
	return s.deleteByID(ctx, "users", "user", int64(id))
}

const userRecordQuery = `
	SELECT u.id, u.name, COALESCE(u.email, ''), u.team_id, COALESCE(u.avatar_url, ''),
	       u.created_at, u.updated_at, COALESCE(t.name, ''), COALESCE(t.color, '')
	FROM users u
	LEFT JOIN teams t ON u.team_id = t.id
`

func scanUserRecord(row scanner) (UserRecord, error) {
	var (
		r                    UserRecord
		createdAt, updatedAt string
	)
	err := row.Scan(&r.ID, &r.Name, &r.Email, &r.TeamID, &r.AvatarURL,
		&createdAt, &updatedAt, &r.TeamName, &r.TeamColor)
	if err != nil {
		return r, err
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}

// GetUserRecord returns a user with team fields, or nil if missing.
func (s *Store) GetUserRecord(ctx context.Context, id ledger.UserID) (*UserRecord, error) {
	r, err := scanUserRecord(s.q.QueryRowContext(ctx, userRecordQuery+" WHERE u.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &r, nil
}

// ListUsers returns all users with team fields ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]UserRecord, error) {
	rows, err := s.q.QueryContext(ctx, userRecordQuery+" ORDER BY u.name ASC, u.id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	out := []UserRecord{}
	for rows.Next() {
		r, err := scanUserRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// ACHIEVEMENT CATALOG
// =============================================================================

// AchievementUpdate carries optional catalog fields. Scope cannot change.
type AchievementUpdate struct {
	Name        *string
	Description *string
	Icon        *string
	Threshold   *int64
	Tier        *ledger.Tier
}

// CreateAchievement adds a catalog entry.
func (s *Store) CreateAchievement(ctx context.Context, a ledger.Achievement) (ledger.Achievement, error) {
	if a.Tier == "" {
		a.Tier = ledger.TierBronze
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.CreatedAt = a.CreatedAt.UTC()

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO achievements (type, name, description, icon, threshold, tier, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.Scope, a.Name, nullString(a.Description), nullString(a.Icon), a.Threshold, a.Tier, formatTime(a.CreatedAt))
	if err != nil {
		return a, fmt.Errorf("failed to create achievement: %w", err)
	}

	id, _ := res.LastInsertId()
	a.ID = ledger.AchievementID(id)
	return a, nil
}

// GetAchievement returns a catalog entry, or nil if missing.
func (s *Store) GetAchievement(ctx context.Context, id ledger.AchievementID) (*ledger.Achievement, error) {
	a, err := scanAchievement(s.q.QueryRowContext(ctx,
		"SELECT "+achievementColumns+" FROM achievements WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement: %w", err)
	}
	return &a, nil
}

// UpdateAchievement applies the non-nil fields of u. Existing unlocks are
// kept even if the threshold is raised.
func (s *Store) UpdateAchievement(ctx context.Context, id ledger.AchievementID, u AchievementUpdate) (*ledger.Achievement, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE achievements
		SET name = COALESCE(?, name),
		    description = COALESCE(?, description),
		    icon = COALESCE(?, icon),
		    threshold = COALESCE(?, threshold),
		    tier = COALESCE(?, tier)
		WHERE id = ?
	`, u.Name, u.Description, u.Icon, u.Threshold, u.Tier, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update achievement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &ledger.NotFoundError{Kind: "achievement", ID: int64(id)}
	}
	return s.GetAchievement(ctx, id)
}

// DeleteAchievement removes a catalog entry and its unlocks.
func (s *Store) DeleteAchievement(ctx context.Context, id ledger.AchievementID) error {
	return s.deleteByID(ctx, "achievements", "achievement", int64(id))
}

// SeedAchievements inserts the catalog only when the table is empty.
// Returns how many rows were inserted.
func (s *Store) SeedAchievements(ctx context.Context, catalog []ledger.Achievement) (int, error) {
	var count int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM achievements").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count achievements: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	tx := &Store{db: s.db, queries: queries{q: sqlTx}}
	for _, a := range catalog {
		if _, err := tx.CreateAchievement(ctx, a); err != nil {
			return 0, err
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return 0, err
	}
	return len(catalog), nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// EntryRecord is a ledger entry joined with display names.
type EntryRecord struct {
	ledger.Entry
	UserName string // empty for team-only awards
	TeamName string
}

// Stats summarizes the board for the admin dashboard.
type Stats struct {
	TotalUsers    int
	TotalTeams    int
	TotalCoins    int64
	RecentEntries []EntryRecord
}

// Stats returns board-wide counts and the last 10 entries.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM teams),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions)
	`).Scan(&st.TotalUsers, &st.TotalTeams, &st.TotalCoins)
	if err != nil {
		return nil, fmt.Errorf("failed to count board: %w", err)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.team_id, t.amount, t.reason, COALESCE(t.awarded_by, ''), t.created_at,
		       COALESCE(u.name, ''), tm.name
		FROM transactions t
		LEFT JOIN users u ON t.user_id = u.id
		JOIN teams tm ON t.team_id = tm.id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent entries: %w", err)
	}
	defer rows.Close()

	st.RecentEntries = []EntryRecord{}
	for rows.Next() {
		var (
			r         EntryRecord
			userID    sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&r.ID, &userID, &r.TeamID, &r.Amount, &r.Reason, &r.AwardedBy, &createdAt,
			&r.UserName, &r.TeamName); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if userID.Valid {
			uid := ledger.UserID(userID.Int64)
			r.UserID = &uid
		}
		r.CreatedAt = parseTime(createdAt)
		st.RecentEntries = append(st.RecentEntries, r)
	}
	return &st, rows.Err()
}

// Reset clears teams, users, entries, and unlocks (for demo scenarios).
// The achievement catalog is kept.
func (s *queries) Reset(ctx context.Context) error {
	tables := []string{"user_achievements", "team_achievements", "transactions", "users", "teams"}
	for _, table := range tables {
		if _, err := s.q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table, kind string, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
