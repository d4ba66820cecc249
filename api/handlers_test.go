/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Admin auth (401 vs 403, login)
- Awards, team awards, and all-or-nothing bulk awards
- Leaderboard pagination and history validation
- Error status mapping (400/404/409)
- Demo scenarios
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/coinboard/ledger"
	"github.com/warp/coinboard/rewards"
	"github.com/warp/coinboard/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type testServer struct {
	t      *testing.T
	h      *Handler
	router http.Handler
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.SeedAchievements(context.Background(), rewards.DefaultCatalog())
	require.NoError(t, err)

	auth, err := NewAuth("test-secret", "hunter2", time.Hour)
	require.NoError(t, err)
	token, err := auth.Issue(roleAdmin)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	h := NewHandler(store, auth, log)
	return &testServer{
		t:      t,
		h:      h,
		router: NewRouter(h, RouterOptions{StaticDir: t.TempDir()}),
		token:  token,
	}
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) admin(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(method, path, body, s.token)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createTeam(name string) TeamDTO {
	s.t.Helper()
	rec := s.admin(http.MethodPost, "/api/admin/teams", CreateTeamRequest{Name: name})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]TeamDTO](s.t, rec)["team"]
}

func (s *testServer) createUser(name string, teamID int64) UserDTO {
	s.t.Helper()
	rec := s.admin(http.MethodPost, "/api/admin/users", CreateUserRequest{Name: name, TeamID: teamID})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]UserDTO](s.t, rec)["user"]
}

func names(as []AchievementDTO) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name
	}
	return out
}

// =============================================================================
// AUTH
// =============================================================================

func TestAdminRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/admin/stats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/stats", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	viewer, err := s.h.Auth.Issue("viewer")
	require.NoError(t, err)
	rec = s.do(http.MethodGet, "/api/admin/stats", nil, viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.admin(http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/admin/login", LoginRequest{Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/login", LoginRequest{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/login", LoginRequest{Password: "hunter2"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[LoginResponse](t, rec)
	assert.Equal(t, int64(3600), login.ExpiresIn)

	rec = s.do(http.MethodPost, "/api/admin/verify", nil, login.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]bool](t, rec)["valid"])
}

// =============================================================================
// AWARDS
// =============================================================================

func TestAwardCoins_ReturnsNewAchievements(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	user := s.createUser("Ada", team.ID)

	// WHEN: the first award crosses two user thresholds (1 and 10)
	rec := s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: user.ID, Amount: 10, Reason: "Great demo"})

	// THEN: both unlock, the team has nothing yet
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[AwardResponse](t, rec)
	assert.Equal(t, int64(10), resp.Transaction.Amount)
	require.NotNil(t, resp.Transaction.UserID)
	assert.Equal(t, user.ID, *resp.Transaction.UserID)
	assert.Equal(t, team.ID, resp.Transaction.TeamID)
	assert.Equal(t, roleAdmin, resp.Transaction.AwardedBy)
	assert.Equal(t, []string{"First Llama", "Coin Collector"}, names(resp.NewAchievements.User))
	assert.Empty(t, resp.NewAchievements.Team)

	// WHEN: a second award crosses nothing new
	rec = s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: user.ID, Amount: 5, Reason: "Review"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, decode[AwardResponse](t, rec).NewAchievements.User)
}

func TestAwardCoins_Errors(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	user := s.createUser("Ada", team.ID)

	rec := s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: user.ID, Amount: 0, Reason: "Nothing"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "amount", decode[ErrorResponse](t, rec).Field)

	rec = s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: user.ID, Amount: 5, Reason: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "reason", decode[ErrorResponse](t, rec).Field)

	rec = s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: 999, Amount: 5, Reason: "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAwardTeamCoins_HasNoUser(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")

	rec := s.admin(http.MethodPost, "/api/admin/transactions/team", TeamAwardRequest{TeamID: team.ID, Amount: 100, Reason: "Launch"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	var tx map[string]any
	require.NoError(t, json.Unmarshal(raw["transaction"], &tx))
	assert.Nil(t, tx["user_id"])

	resp := decode[AwardResponse](t, rec)
	assert.Equal(t, []string{"Team Starter"}, names(resp.NewAchievements.Team))
	assert.Nil(t, resp.NewAchievements.User)
}

func TestBulkAwardCoins_RollsBackOnFailure(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	user := s.createUser("Ada", team.ID)

	// GIVEN: a batch whose second award names a missing user
	rec := s.admin(http.MethodPost, "/api/admin/transactions/bulk", BulkAwardRequest{Awards: []AwardRequest{
		{UserID: user.ID, Amount: 50, Reason: "Good"},
		{UserID: 999, Amount: 10, Reason: "Ghost"},
	}})

	// THEN: the failing index is reported and nothing was committed
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	errResp := decode[ErrorResponse](t, rec)
	require.NotNil(t, errResp.Index)
	assert.Equal(t, 1, *errResp.Index)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[UserDetailResponse](t, rec)
	assert.Zero(t, detail.TotalCoins)
	assert.Empty(t, detail.Transactions)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/achievements/user/%d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[EntityAchievementsResponse](t, rec).Unlocked)
}

func TestBulkAwardCoins_Success(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	ada := s.createUser("Ada", team.ID)
	linus := s.createUser("Linus", team.ID)

	rec := s.admin(http.MethodPost, "/api/admin/transactions/bulk", BulkAwardRequest{Awards: []AwardRequest{
		{UserID: ada.ID, Amount: 60, Reason: "Migration"},
		{UserID: linus.ID, Amount: 45, Reason: "Migration"},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[BulkAwardResponse](t, rec)
	require.Len(t, resp.Transactions, 2)
	require.Len(t, resp.NewAchievements, 2)
	assert.Equal(t, ada.ID, resp.NewAchievements[0].UserID)
	assert.Equal(t, []string{"First Llama", "Coin Collector", "Half Century"}, names(resp.NewAchievements[0].User))
	// Team crosses 100 only on the second award.
	assert.Empty(t, resp.NewAchievements[0].Team)
	assert.Equal(t, []string{"Team Starter"}, names(resp.NewAchievements[1].Team))

	rec = s.admin(http.MethodPost, "/api/admin/transactions/bulk", BulkAwardRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// LEADERBOARD & HISTORY
// =============================================================================

func TestGetUserLeaderboard_Pagination(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	for i, amount := range []int64{5, 30, 20} {
		u := s.createUser(fmt.Sprintf("user-%d", i), team.ID)
		rec := s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: u.ID, Amount: amount, Reason: "Seed"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodGet, "/api/leaderboard/users?limit=1&offset=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[UserLeaderboardResponse](t, rec)

	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Users, 1)
	assert.Equal(t, 2, page.Users[0].Rank)
	assert.Equal(t, "user-2", page.Users[0].Name)
	assert.Equal(t, int64(20), page.Users[0].TotalCoins)
	assert.Equal(t, "Platform", page.Users[0].TeamName)
	assert.NotNil(t, page.Users[0].LastActivity)

	rec = s.do(http.MethodGet, "/api/leaderboard/teams", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	teams := decode[TeamLeaderboardResponse](t, rec)
	require.Len(t, teams.Teams, 1)
	assert.Equal(t, int64(55), teams.Teams[0].TotalCoins)
	assert.Equal(t, 3, teams.Teams[0].MemberCount)
	assert.Equal(t, "18.33", teams.Teams[0].AverageCoins.String())
}

func TestGetUserLeaderboard_HugeLimit(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	for i := 0; i < 3; i++ {
		u := s.createUser(fmt.Sprintf("user-%d", i), team.ID)
		rec := s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: u.ID, Amount: int64(10 + i), Reason: "Seed"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodGet, "/api/leaderboard/users?limit=9223372036854775807&offset=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[UserLeaderboardResponse](t, rec)

	assert.Equal(t, 1, page.Pages)
	require.Len(t, page.Users, 2)
	assert.Equal(t, 2, page.Users[0].Rank)
	assert.Equal(t, "user-1", page.Users[0].Name)
}

func TestGetUserLeaderboard_BadPagination(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{"limit=abc", "limit=0", "offset=-1", "offset=x"} {
		rec := s.do(http.MethodGet, "/api/leaderboard/users?"+query, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestGetHistory(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	user := s.createUser("Ada", team.ID)
	rec := s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: user.ID, Amount: 7, Reason: "Today"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/stats/user/%d/history?period=7d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[HistoryResponse](t, rec)
	assert.Equal(t, "7d", hist.Period)
	require.NotNil(t, hist.UserID)
	assert.Equal(t, user.ID, *hist.UserID)
	require.Len(t, hist.Data, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), hist.Data[0].Date)
	assert.Equal(t, int64(7), hist.Data[0].CumulativeCoins)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/stats/team/%d/history", team.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30d", decode[HistoryResponse](t, rec).Period)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/stats/user/%d/history?period=2w", user.ID), nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "period", decode[ErrorResponse](t, rec).Field)

	rec = s.do(http.MethodGet, "/api/stats/user/999/history", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/stats/user/abc/history", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// DIRECTORY & ACHIEVEMENTS
// =============================================================================

func TestCreateTeam_Duplicate(t *testing.T) {
	s := newTestServer(t)
	s.createTeam("Platform")

	rec := s.admin(http.MethodPost, "/api/admin/teams", CreateTeamRequest{Name: "Platform"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.admin(http.MethodPost, "/api/admin/teams", CreateTeamRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeamAndUserDetail(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	user := s.createUser("Ada", team.ID)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/teams/%d", team.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[TeamDetailResponse](t, rec)
	assert.Equal(t, sqlite.DefaultTeamColor, detail.Team.Color)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, user.ID, detail.Members[0].ID)

	rec = s.do(http.MethodGet, "/api/teams/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.admin(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", user.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAchievementCatalog(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/achievements", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	catalog := decode[CatalogResponse](t, rec)
	assert.Len(t, catalog.User, 9)
	assert.Len(t, catalog.Team, 5)

	rec = s.admin(http.MethodPost, "/api/admin/achievements", CreateAchievementRequest{Type: "user", Name: "Tiny", Threshold: 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]AchievementDTO](t, rec)["achievement"]
	assert.Equal(t, rewards.DefaultIcon, created.Icon)
	assert.Equal(t, "bronze", created.Tier)

	rec = s.admin(http.MethodPost, "/api/admin/achievements", CreateAchievementRequest{Type: "org", Name: "Nope", Threshold: 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.admin(http.MethodPost, "/api/admin/achievements", CreateAchievementRequest{Type: "team", Name: "Shiny", Threshold: 3, Tier: "diamond"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserAchievements_Progress(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	user := s.createUser("Ada", team.ID)
	rec := s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: user.ID, Amount: 12, Reason: "Pairing"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/achievements/user/%d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[EntityAchievementsResponse](t, rec)

	assert.Equal(t, []string{"First Llama", "Coin Collector"}, names(resp.Unlocked))
	assert.NotNil(t, resp.Unlocked[0].UnlockedAt)
	assert.Len(t, resp.Locked, 7)
	require.NotNil(t, resp.Progress)
	assert.Equal(t, "Half Century", resp.Progress.NextAchievement.Name)
	assert.Equal(t, int64(38), resp.Progress.NeededCoins)
}

func TestGetStats(t *testing.T) {
	s := newTestServer(t)
	team := s.createTeam("Platform")
	ada := s.createUser("Ada", team.ID)
	s.createUser("Linus", team.ID)
	rec := s.admin(http.MethodPost, "/api/admin/transactions", AwardRequest{UserID: ada.ID, Amount: 25, Reason: "Fix"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.admin(http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[StatsResponse](t, rec)

	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalTeams)
	assert.Equal(t, int64(25), stats.TotalCoinsAwarded)
	assert.Equal(t, "12.5", stats.AverageCoinsPerUser.String())
	require.Len(t, stats.RecentTransactions, 1)
	assert.Equal(t, "Ada", stats.RecentTransactions[0].UserName)
	assert.Equal(t, "Platform", stats.RecentTransactions[0].TeamName)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestLoadScenario_CloseRace(t *testing.T) {
	s := newTestServer(t)

	rec := s.admin(http.MethodPost, "/api/admin/scenarios/load", LoadScenarioRequest{ScenarioID: "close-race"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/leaderboard/users?limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[UserLeaderboardResponse](t, rec)
	require.Len(t, page.Users, 2)
	assert.Equal(t, page.Users[0].TotalCoins, page.Users[1].TotalCoins)
	assert.Less(t, page.Users[0].ID, page.Users[1].ID)
	assert.Equal(t, 1, page.Users[0].Rank)
	assert.Equal(t, 2, page.Users[1].Rank)

	rec = s.admin(http.MethodGet, "/api/admin/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "close-race", decode[ScenarioDTO](t, rec).ID)
}

func TestLoadScenario_SmallOfficeHistoryMatchesTotal(t *testing.T) {
	s := newTestServer(t)

	rec := s.admin(http.MethodPost, "/api/admin/scenarios/load", LoadScenarioRequest{ScenarioID: "small-office"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/leaderboard/users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[UserLeaderboardResponse](t, rec)
	require.Equal(t, 9, page.Total)

	top := page.Users[0]
	rec = s.do(http.MethodGet, fmt.Sprintf("/api/stats/user/%d/history?period=90d", top.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[HistoryResponse](t, rec)
	require.NotEmpty(t, hist.Data)
	assert.Greater(t, len(hist.Data), 1)
	assert.Equal(t, top.TotalCoins, hist.Data[len(hist.Data)-1].CumulativeCoins)

	rec = s.admin(http.MethodPost, "/api/admin/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadScenario_FailureKeepsPreviousBoard(t *testing.T) {
	// GIVEN: A loaded scenario and a loader that fails after writing a team
	s := newTestServer(t)
	rec := s.admin(http.MethodPost, "/api/admin/scenarios/load", LoadScenarioRequest{ScenarioID: "close-race"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	scenarioLoaders["half-seeded"] = func(ctx context.Context, b *board) error {
		if _, err := b.tx.CreateTeam(ctx, ledger.Team{Name: "Half"}); err != nil {
			return err
		}
		return errors.New("seed failed")
	}
	t.Cleanup(func() { delete(scenarioLoaders, "half-seeded") })

	// WHEN: Loading the failing scenario
	rec = s.admin(http.MethodPost, "/api/admin/scenarios/load", LoadScenarioRequest{ScenarioID: "half-seeded"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// THEN: The reset and the partial writes are rolled back
	rec = s.do(http.MethodGet, "/api/leaderboard/users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, decode[UserLeaderboardResponse](t, rec).Total)

	rec = s.do(http.MethodGet, "/api/teams", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	teams := decode[map[string][]TeamDTO](t, rec)["teams"]
	assert.Len(t, teams, 3)
	for _, team := range teams {
		assert.NotEqual(t, "Half", team.Name)
	}

	// AND: The current scenario is unchanged
	rec = s.admin(http.MethodGet, "/api/admin/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "close-race", decode[ScenarioDTO](t, rec).ID)
}
