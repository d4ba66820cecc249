/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model in ledger/ and rewards/ from the wire format.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers and the rewards service, not in DTOs.
  Optional update fields are pointers so "absent" and "empty" differ.

SEE ALSO:
  - handlers.go: Uses these types
  - convert.go: Domain to DTO conversion
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DIRECTORY
// =============================================================================

// TeamDTO represents a team in API responses.
type TeamDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	TeamID    int64     `json:"team_id"`
	TeamName  string    `json:"team_name,omitempty"`
	TeamColor string    `json:"team_color,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamDetailResponse is a team with its members.
type TeamDetailResponse struct {
	Team    TeamDTO   `json:"team"`
	Members []UserDTO `json:"members"`
}

// UserDetailResponse is a user with recent entries and total.
type UserDetailResponse struct {
	User         UserDTO          `json:"user"`
	Transactions []TransactionDTO `json:"transactions"`
	TotalCoins   int64            `json:"total_coins"`
}

// CreateTeamRequest is the body for POST /api/admin/teams.
type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// UpdateTeamRequest is the body for PUT /api/admin/teams/{id}.
type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// CreateUserRequest is the body for POST /api/admin/users.
type CreateUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	TeamID int64  `json:"team_id"`
}

// UpdateUserRequest is the body for PUT /api/admin/users/{id}.
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	TeamID *int64  `json:"team_id"`
}

// =============================================================================
// LEDGER
// =============================================================================

// TransactionDTO represents a ledger entry.
type TransactionDTO struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"` // null for team-only awards
	TeamID    int64     `json:"team_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	AwardedBy string    `json:"awarded_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UserName  string    `json:"user_name,omitempty"`
	TeamName  string    `json:"team_name,omitempty"`
}

// AwardRequest is the body for POST /api/admin/transactions and one item
// of a bulk award.
type AwardRequest struct {
	UserID int64  `json:"user_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// TeamAwardRequest is the body for POST /api/admin/transactions/team.
type TeamAwardRequest struct {
	TeamID int64  `json:"team_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// BulkAwardRequest is the body for POST /api/admin/transactions/bulk.
type BulkAwardRequest struct {
	Awards []AwardRequest `json:"awards"`
}

// NewAchievementsDTO groups achievements unlocked by one award.
type NewAchievementsDTO struct {
	User []AchievementDTO `json:"user,omitempty"`
	Team []AchievementDTO `json:"team"`
}

// AwardResponse is the result of a single award.
type AwardResponse struct {
	Transaction     TransactionDTO     `json:"transaction"`
	NewAchievements NewAchievementsDTO `json:"new_achievements"`
}

// BulkAchievementsDTO lists unlocks for one user of a bulk batch.
type BulkAchievementsDTO struct {
	UserID int64            `json:"user_id"`
	User   []AchievementDTO `json:"user"`
	Team   []AchievementDTO `json:"team"`
}

// BulkAwardResponse is the result of a committed bulk award. Only awards
// that unlocked something appear in NewAchievements.
type BulkAwardResponse struct {
	Transactions    []TransactionDTO      `json:"transactions"`
	NewAchievements []BulkAchievementsDTO `json:"new_achievements"`
}

// =============================================================================
// LEADERBOARD & HISTORY
// =============================================================================

// UserStandingDTO is one ranked user row.
type UserStandingDTO struct {
	Rank             int        `json:"rank"`
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	TeamID           int64      `json:"team_id"`
	TeamName         string     `json:"team_name"`
	TeamColor        string     `json:"team_color"`
	TotalCoins       int64      `json:"total_coins"`
	AchievementCount int        `json:"achievement_count"`
	LastActivity     *time.Time `json:"last_activity"`
}

// TeamStandingDTO is one ranked team row.
type TeamStandingDTO struct {
	Rank             int             `json:"rank"`
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Color            string          `json:"color"`
	MemberCount      int             `json:"member_count"`
	TotalCoins       int64           `json:"total_coins"`
	AverageCoins     decimal.Decimal `json:"average_coins"`
	AchievementCount int             `json:"achievement_count"`
	LastActivity     *time.Time      `json:"last_activity"`
}

// UserLeaderboardResponse is a page of the user leaderboard.
type UserLeaderboardResponse struct {
	Users []UserStandingDTO `json:"users"`
	PageDTO
}

// TeamLeaderboardResponse is a page of the team leaderboard.
type TeamLeaderboardResponse struct {
	Teams []TeamStandingDTO `json:"teams"`
	PageDTO
}

// PageDTO carries pagination fields.
type PageDTO struct {
	Total  int `json:"total"`
	Page   int `json:"page"`
	Pages  int `json:"pages"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// HistoryPointDTO is one active day.
type HistoryPointDTO struct {
	Date            string `json:"date"` // YYYY-MM-DD, UTC
	DailyCoins      int64  `json:"daily_coins"`
	CumulativeCoins int64  `json:"cumulative_coins"`
}

// HistoryResponse is an entity's daily series.
type HistoryResponse struct {
	UserID *int64            `json:"user_id,omitempty"`
	TeamID *int64            `json:"team_id,omitempty"`
	Period string            `json:"period"`
	Data   []HistoryPointDTO `json:"data"`
}

// =============================================================================
// ACHIEVEMENTS
// =============================================================================

// AchievementDTO represents a catalog entry.
type AchievementDTO struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Threshold   int64      `json:"threshold"`
	Tier        string     `json:"tier"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

// CatalogResponse is the full catalog split by scope.
type CatalogResponse struct {
	User []AchievementDTO `json:"user"`
	Team []AchievementDTO `json:"team"`
}

// ProgressDTO is the next-milestone hint.
type ProgressDTO struct {
	NextAchievement AchievementDTO `json:"next_achievement"`
	CurrentCoins    int64          `json:"current_coins"`
	NeededCoins     int64          `json:"needed_coins"`
}

// EntityAchievementsResponse lists unlocked and locked achievements.
type EntityAchievementsResponse struct {
	Unlocked []AchievementDTO `json:"unlocked"`
	Locked   []AchievementDTO `json:"locked"`
	Progress *ProgressDTO     `json:"progress"`
}

// CreateAchievementRequest is the body for POST /api/admin/achievements.
type CreateAchievementRequest struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Threshold   int64  `json:"threshold"`
	Tier        string `json:"tier"`
}

// UpdateAchievementRequest is the body for PUT /api/admin/achievements/{id}.
type UpdateAchievementRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Threshold   *int64  `json:"threshold"`
	Tier        *string `json:"tier"`
}

// =============================================================================
// ADMIN
// =============================================================================

// LoginRequest is the body for POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the admin token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// StatsResponse is the admin dashboard summary.
type StatsResponse struct {
	TotalUsers          int              `json:"total_users"`
	TotalTeams          int              `json:"total_teams"`
	TotalCoinsAwarded   int64            `json:"total_coins_awarded"`
	AverageCoinsPerUser decimal.Decimal  `json:"average_coins_per_user"`
	RecentTransactions  []TransactionDTO `json:"recent_transactions"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body for POST /api/admin/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// MessageResponse is a simple acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
	Index   *int   `json:"index,omitempty"` // failing award in a bulk batch
}
