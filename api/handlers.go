/*
handlers.go - HTTP API handlers for the coin board

PURPOSE:
  Exposes the rewards service and the directory store via REST API.
  Handles HTTP request/response and JSON serialization, and delegates to
  rewards.Service for awards, leaderboards, history, and progress.

ENDPOINTS:
  Public:
    GET    /api/leaderboard/users            Ranked users (?limit=&offset=)
    GET    /api/leaderboard/teams            Ranked teams (?limit=&offset=)
    GET    /api/stats/user/{id}/history      Daily series (?period=7d|30d|90d|1y|all)
    GET    /api/stats/team/{id}/history
    GET    /api/achievements                 Catalog by scope
    GET    /api/achievements/user/{id}       Unlocked, locked, next milestone
    GET    /api/achievements/team/{id}
    GET    /api/teams                        All teams
    GET    /api/teams/{id}                   Team with members
    GET    /api/users/{id}                   User with recent entries and total
    GET    /api/health

  Auth:
    POST   /api/admin/login
    POST   /api/admin/verify

  Admin (bearer token):
    POST/PUT/DELETE /api/admin/teams[/{id}]
    GET/POST/PUT/DELETE /api/admin/users[/{id}]
    POST   /api/admin/transactions           Award to user
    POST   /api/admin/transactions/team      Award to team
    POST   /api/admin/transactions/bulk      All-or-nothing batch
    POST/PUT/DELETE /api/admin/achievements[/{id}]
    GET    /api/admin/stats
    GET    /api/admin/scenarios, POST /api/admin/scenarios/load

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or invalid token, wrong password
  - 403: Token without admin role
  - 404: Resource not found
  - 409: Duplicate team name or email
  - 500: Internal errors
  A failed bulk award also reports the zero-based index of the failing item.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/coinboard/ledger"
	"github.com/warp/coinboard/rewards"
	"github.com/warp/coinboard/store/sqlite"
)

const (
	defaultPageLimit   = 50
	recentEntriesLimit = 50
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Rewards *rewards.Service
	Auth    *Auth
	log     logrus.FieldLogger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, auth *Auth, log logrus.FieldLogger) *Handler {
	return &Handler{
		Store:   store,
		Rewards: rewards.NewService(store, log),
		Auth:    auth,
		log:     log,
	}
}

// =============================================================================
// LEADERBOARD HANDLERS
// =============================================================================

// GetUserLeaderboard returns one page of ranked users.
// GET /api/leaderboard/users
func (h *Handler) GetUserLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		h.writeServiceError(w, "Invalid pagination", err)
		return
	}

	page, err := h.Rewards.Leaderboard(r.Context(), ledger.ScopeUser, limit, offset)
	if err != nil {
		h.writeServiceError(w, "Failed to load leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserLeaderboard(page))
}

// GetTeamLeaderboard returns one page of ranked teams.
// GET /api/leaderboard/teams
func (h *Handler) GetTeamLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r)
	if err != nil {
		h.writeServiceError(w, "Invalid pagination", err)
		return
	}

	page, err := h.Rewards.Leaderboard(r.Context(), ledger.ScopeTeam, limit, offset)
	if err != nil {
		h.writeServiceError(w, "Failed to load leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamLeaderboard(page))
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// GetUserHistory returns a user's daily coin series.
// GET /api/stats/user/{id}/history?period=30d
func (h *Handler) GetUserHistory(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, ledger.ScopeUser)
}

// GetTeamHistory returns a team's daily coin series.
// GET /api/stats/team/{id}/history?period=30d
func (h *Handler) GetTeamHistory(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, ledger.ScopeTeam)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request, scope ledger.Scope) {
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}

	ref := ledger.EntityRef{Scope: scope, ID: id}
	hist, err := h.Rewards.History(r.Context(), ref, r.URL.Query().Get("period"))
	if err != nil {
		h.writeServiceError(w, "Failed to load history", err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(hist))
}

// =============================================================================
// ACHIEVEMENT HANDLERS
// =============================================================================

// ListAchievements returns the catalog split by scope.
// GET /api/achievements
func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.Store.Achievements(ctx, ledger.ScopeUser)
	if err != nil {
		h.writeServiceError(w, "Failed to list achievements", err)
		return
	}
	teams, err := h.Store.Achievements(ctx, ledger.ScopeTeam)
	if err != nil {
		h.writeServiceError(w, "Failed to list achievements", err)
		return
	}

	writeJSON(w, http.StatusOK, CatalogResponse{
		User: toAchievementDTOs(users),
		Team: toAchievementDTOs(teams),
	})
}

// GetUserAchievements returns a user's achievement progress.
// GET /api/achievements/user/{id}
func (h *Handler) GetUserAchievements(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, ledger.ScopeUser)
}

// GetTeamAchievements returns a team's achievement progress.
// GET /api/achievements/team/{id}
func (h *Handler) GetTeamAchievements(w http.ResponseWriter, r *http.Request) {
	h.progress(w, r, ledger.ScopeTeam)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request, scope ledger.Scope) {
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}

	p, err := h.Rewards.Progress(r.Context(), ledger.EntityRef{Scope: scope, ID: id})
	if err != nil {
		h.writeServiceError(w, "Failed to load achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, toProgressResponse(p))
}

// CreateAchievement adds a catalog entry.
// POST /api/admin/achievements
func (h *Handler) CreateAchievement(w http.ResponseWriter, r *http.Request) {
	var req CreateAchievementRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}

	scope := ledger.Scope(req.Type)
	switch {
	case !scope.Valid():
		h.writeServiceError(w, "Invalid achievement", ledger.Invalid("type", "must be user or team"))
		return
	case strings.TrimSpace(req.Name) == "":
		h.writeServiceError(w, "Invalid achievement", ledger.Invalid("name", "is required"))
		return
	case req.Threshold <= 0:
		h.writeServiceError(w, "Invalid achievement", ledger.Invalid("threshold", "must be positive"))
		return
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		h.writeServiceError(w, "Invalid achievement", err)
		return
	}

	icon := req.Icon
	if icon == "" {
		icon = rewards.DefaultIcon
	}

	a, err := h.Store.CreateAchievement(r.Context(), ledger.Achievement{
		Scope:       scope,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Icon:        icon,
		Threshold:   req.Threshold,
		Tier:        tier,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create achievement", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]AchievementDTO{"achievement": toAchievementDTO(a)})
}

// UpdateAchievement edits a catalog entry. Existing unlocks are kept.
// PUT /api/admin/achievements/{id}
func (h *Handler) UpdateAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}

	var req UpdateAchievementRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}

	update := sqlite.AchievementUpdate{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Threshold:   req.Threshold,
	}
	if req.Threshold != nil && *req.Threshold <= 0 {
		h.writeServiceError(w, "Invalid achievement", ledger.Invalid("threshold", "must be positive"))
		return
	}
	if req.Tier != nil {
		tier, err := parseTier(*req.Tier)
		if err != nil {
			h.writeServiceError(w, "Invalid achievement", err)
			return
		}
		update.Tier = &tier
	}

	a, err := h.Store.UpdateAchievement(r.Context(), ledger.AchievementID(id), update)
	if err != nil {
		h.writeServiceError(w, "Failed to update achievement", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]AchievementDTO{"achievement": toAchievementDTO(*a)})
}

// DeleteAchievement removes a catalog entry and its unlocks.
// DELETE /api/admin/achievements/{id}
func (h *Handler) DeleteAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}
	if err := h.Store.DeleteAchievement(r.Context(), ledger.AchievementID(id)); err != nil {
		h.writeServiceError(w, "Failed to delete achievement", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Achievement deleted successfully"})
}

// =============================================================================
// TEAM HANDLERS
// =============================================================================

// ListTeams returns all teams.
// GET /api/teams
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Store.ListTeams(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list teams", err)
		return
	}

	dtos := make([]TeamDTO, len(teams))
	for i, t := range teams {
		dtos[i] = toTeamDTO(t)
	}
	writeJSON(w, http.StatusOK, map[string][]TeamDTO{"teams": dtos})
}

// GetTeam returns a team with its members.
// GET /api/teams/{id}
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}

	team, err := h.Store.Team(ctx, ledger.TeamID(id))
	if err != nil {
		h.writeServiceError(w, "Failed to get team", err)
		return
	}
	if team == nil {
		writeError(w, http.StatusNotFound, "Team not found", nil)
		return
	}

	members, err := h.Store.TeamMembers(ctx, team.ID)
	if err != nil {
		h.writeServiceError(w, "Failed to list members", err)
		return
	}

	resp := TeamDetailResponse{Team: toTeamDTO(*team), Members: make([]UserDTO, len(members))}
	for i, m := range members {
		resp.Members[i] = toUserDTO(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTeam creates a team.
// POST /api/admin/teams
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeServiceError(w, "Invalid team", ledger.Invalid("name", "is required"))
		return
	}

	team, err := h.Store.CreateTeam(r.Context(), ledger.Team{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create team", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]TeamDTO{"team": toTeamDTO(team)})
}

// UpdateTeam edits a team.
// PUT /api/admin/teams/{id}
func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}

	var req UpdateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		h.writeServiceError(w, "Invalid team", ledger.Invalid("name", "must not be empty"))
		return
	}

	team, err := h.Store.UpdateTeam(r.Context(), ledger.TeamID(id), sqlite.TeamUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to update team", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]TeamDTO{"team": toTeamDTO(*team)})
}

// DeleteTeam deletes a team, its users, and their entries.
// DELETE /api/admin/teams/{id}
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}
	if err := h.Store.DeleteTeam(r.Context(), ledger.TeamID(id)); err != nil {
		h.writeServiceError(w, "Failed to delete team", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Team deleted successfully"})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users with team fields.
// GET /api/admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserRecordDTO(u)
	}
	writeJSON(w, http.StatusOK, map[string][]UserDTO{"users": dtos})
}

// GetUser returns a user with recent entries and total.
// GET /api/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}

	user, err := h.Store.GetUserRecord(ctx, ledger.UserID(id))
	if err != nil {
		h.writeServiceError(w, "Failed to get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	ref := ledger.UserRef(user.ID)
	entries, err := h.Store.RecentEntries(ctx, ref, recentEntriesLimit)
	if err != nil {
		h.writeServiceError(w, "Failed to load transactions", err)
		return
	}
	total, err := h.Store.TotalCoins(ctx, ref)
	if err != nil {
		h.writeServiceError(w, "Failed to load total", err)
		return
	}

	writeJSON(w, http.StatusOK, UserDetailResponse{
		User:         toUserRecordDTO(*user),
		Transactions: toTransactionDTOs(entries),
		TotalCoins:   total,
	})
}

// CreateUser creates a user in an existing team.
// POST /api/admin/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}
	switch {
	case strings.TrimSpace(req.Name) == "":
		h.writeServiceError(w, "Invalid user", ledger.Invalid("name", "is required"))
		return
	case req.TeamID <= 0:
		h.writeServiceError(w, "Invalid user", ledger.Invalid("team_id", "is required"))
		return
	}

	user, err := h.Store.CreateUser(r.Context(), ledger.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.TrimSpace(req.Email),
		TeamID: ledger.TeamID(req.TeamID),
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]UserDTO{"user": toUserDTO(user)})
}

// UpdateUser edits a user. Moving teams does not move past entries.
// PUT /api/admin/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		h.writeServiceError(w, "Invalid user", ledger.Invalid("name", "must not be empty"))
		return
	}

	update := sqlite.UserUpdate{Name: req.Name, Email: req.Email}
	if req.TeamID != nil {
		tid := ledger.TeamID(*req.TeamID)
		update.TeamID = &tid
	}

	user, err := h.Store.UpdateUser(r.Context(), ledger.UserID(id), update)
	if err != nil {
		h.writeServiceError(w, "Failed to update user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]UserDTO{"user": toUserRecordDTO(*user)})
}

// DeleteUser deletes a user and their entries.
// DELETE /api/admin/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeServiceError(w, "Invalid ID", err)
		return
	}
	if err := h.Store.DeleteUser(r.Context(), ledger.UserID(id)); err != nil {
		h.writeServiceError(w, "Failed to delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "User deleted successfully"})
}

// =============================================================================
// AWARD HANDLERS
// =============================================================================

// AwardCoins awards coins to a user and their team.
// POST /api/admin/transactions
func (h *Handler) AwardCoins(w http.ResponseWriter, r *http.Request) {
	var req AwardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}

	result, err := h.Rewards.AwardToUser(r.Context(), rewards.AwardInput{
		UserID:    ledger.UserID(req.UserID),
		Amount:    req.Amount,
		Reason:    req.Reason,
		AwardedBy: actorFrom(r.Context()),
	})
	if err != nil {
		h.writeServiceError(w, "Failed to award coins", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAwardResponse(result, ledger.ScopeUser))
}

// AwardTeamCoins awards coins to a team without a user.
// POST /api/admin/transactions/team
func (h *Handler) AwardTeamCoins(w http.ResponseWriter, r *http.Request) {
	var req TeamAwardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}

	result, err := h.Rewards.AwardToTeam(r.Context(), rewards.TeamAwardInput{
		TeamID:    ledger.TeamID(req.TeamID),
		Amount:    req.Amount,
		Reason:    req.Reason,
		AwardedBy: actorFrom(r.Context()),
	})
	if err != nil {
		h.writeServiceError(w, "Failed to award coins", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAwardResponse(result, ledger.ScopeTeam))
}

// BulkAwardCoins applies a batch of user awards atomically.
// POST /api/admin/transactions/bulk
func (h *Handler) BulkAwardCoins(w http.ResponseWriter, r *http.Request) {
	var req BulkAwardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}

	inputs := make([]rewards.AwardInput, len(req.Awards))
	for i, a := range req.Awards {
		inputs[i] = rewards.AwardInput{
			UserID: ledger.UserID(a.UserID),
			Amount: a.Amount,
			Reason: a.Reason,
		}
	}

	result, err := h.Rewards.BulkAward(r.Context(), inputs, actorFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, "Bulk award rolled back", err)
		return
	}

	resp := BulkAwardResponse{
		Transactions:    make([]TransactionDTO, len(result.Awards)),
		NewAchievements: []BulkAchievementsDTO{},
	}
	for i, a := range result.Awards {
		resp.Transactions[i] = toTransactionDTO(a.Entry)
		if len(a.UserAchievements) == 0 && len(a.TeamAchievements) == 0 {
			continue
		}
		resp.NewAchievements = append(resp.NewAchievements, BulkAchievementsDTO{
			UserID: int64(*a.Entry.UserID),
			User:   toAchievementDTOs(a.UserAchievements),
			Team:   toAchievementDTOs(a.TeamAchievements),
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Login exchanges the admin password for a token.
// POST /api/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required", nil)
		return
	}

	token, ttl, err := h.Auth.Login(req.Password)
	if errors.Is(err, ErrInvalidPassword) {
		h.log.WithField("remote_addr", r.RemoteAddr).Warn("Failed admin login")
		writeError(w, http.StatusUnauthorized, "Invalid password", nil)
		return
	}
	if err != nil {
		h.writeServiceError(w, "Failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresIn: int64(ttl / time.Second)})
}

// Verify reports whether the bearer token is valid. RequireAdmin runs first.
// POST /api/admin/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// GetStats returns board-wide counts and recent entries.
// GET /api/admin/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load stats", err)
		return
	}

	resp := StatsResponse{
		TotalUsers:          stats.TotalUsers,
		TotalTeams:          stats.TotalTeams,
		TotalCoinsAwarded:   stats.TotalCoins,
		AverageCoinsPerUser: rewards.AverageCoins(stats.TotalCoins, stats.TotalUsers),
		RecentTransactions:  make([]TransactionDTO, len(stats.RecentEntries)),
	}
	for i, e := range stats.RecentEntries {
		dto := toTransactionDTO(e.Entry)
		dto.UserName = e.UserName
		dto.TeamName = e.TeamName
		resp.RecentTransactions[i] = dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps domain errors to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse{Error: message, Details: err.Error()}

	var agg *ledger.AggregateError
	if errors.As(err, &agg) {
		idx := agg.Index
		resp.Index = &idx
	}
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrValidation):
		status = http.StatusBadRequest
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicate):
		status = http.StatusConflict
	default:
		h.log.WithError(err).Error(message)
		resp.Details = ""
	}
	writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return ledger.Invalid("body", "invalid JSON: "+err.Error())
	}
	return nil
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ledger.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// parsePage reads ?limit= and ?offset=. Absent values take the defaults;
// the ranking engine rejects out-of-range ones.
func parsePage(r *http.Request) (limit, offset int, err error) {
	limit, offset = defaultPageLimit, 0
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return 0, 0, ledger.Invalid("limit", "must be an integer")
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil {
			return 0, 0, ledger.Invalid("offset", "must be an integer")
		}
	}
	return limit, offset, nil
}

func parseTier(s string) (ledger.Tier, error) {
	switch t := ledger.Tier(s); t {
	case "":
		return ledger.TierBronze, nil
	case ledger.TierBronze, ledger.TierSilver, ledger.TierGold, ledger.TierPlatinum:
		return t, nil
	}
	return "", ledger.Invalid("tier", "must be bronze, silver, gold, or platinum")
}
