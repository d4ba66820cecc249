/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built boards that populate the database with realistic
	data for demos. Each scenario creates teams, users, and ledger entries
	that show off a specific part of the board.

AVAILABLE SCENARIOS:

	empty-board:   Teams and users, no coins yet
	small-office:  Three teams with a month of backdated activity
	close-race:    Two users tied at the top, decided by ID

HOW SCENARIOS WORK:
 1. Reset the board (catalog is kept)
 2. Create teams and users
 3. Append entries, backdated where history matters
 4. Evaluate achievements after each entry, as a live award would
 All four steps run in one transaction. A failed load keeps the previous
 board and the previous current scenario.

USAGE VIA API:

	POST /api/admin/scenarios/load
	{"scenario_id": "small-office"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler context
  - rewards/award.go: Award and bulk award
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/coinboard/ledger"
	"github.com/warp/coinboard/rewards"
	"github.com/warp/coinboard/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty-board",
		Name:        "Empty Board",
		Description: "Three teams with members and no coins awarded yet",
	},
	{
		ID:          "small-office",
		Name:        "Small Office",
		Description: "Three teams with 30 days of awards and a few deductions",
	},
	{
		ID:          "close-race",
		Name:        "Close Race",
		Description: "Two users tied on coins; the lower ID ranks first",
	},
}

type demoTeam struct {
	name, description, color string
	members                  []string
}

var demoTeams = []demoTeam{
	{"Platform", "Infra and tooling", "#3B82F6", []string{"Ada", "Linus", "Grace"}},
	{"Product", "Features and design", "#10B981", []string{"Margaret", "Ken", "Barbara"}},
	{"Support", "Customer happiness", "#F59E0B", []string{"Alan", "Frances", "Dennis"}},
}

// ListScenarios returns available scenarios.
// GET /api/admin/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/admin/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the board and loads a predefined scenario. The reset
// and the load commit together; on failure the previous board is kept.
// POST /api/admin/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, "Invalid request body", err)
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	err := h.Store.WithBoardTx(ctx, func(tx *sqlite.Tx) error {
		if err := tx.Reset(ctx); err != nil {
			return err
		}
		return load(ctx, &board{tx: tx, rewards: h.Rewards.Bind(tx)})
	})
	if err != nil {
		h.writeServiceError(w, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.log.WithField("scenario", req.ScenarioID).Info("Loaded demo scenario")
	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Scenario '%s' loaded successfully", req.ScenarioID),
	})
}

// ResetBoard clears teams, users, entries, and unlocks.
// POST /api/admin/scenarios/reset
func (h *Handler) ResetBoard(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to reset board", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Board reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// board is what a loader writes through: one open transaction and a rewards
// service bound to it.
type board struct {
	tx      *sqlite.Tx
	rewards *rewards.Service
}

type scenarioLoader func(ctx context.Context, b *board) error

var scenarioLoaders = map[string]scenarioLoader{
	"empty-board":  loadEmptyBoardScenario,
	"small-office": loadSmallOfficeScenario,
	"close-race":   loadCloseRaceScenario,
}

func loadEmptyBoardScenario(ctx context.Context, b *board) error {
	_, err := b.createDemoTeams(ctx)
	return err
}

// loadSmallOfficeScenario spreads awards over the last 30 days so the
// history charts have shape. Amounts are derived from positions, not
// randomness, so the board looks the same on every load.
func loadSmallOfficeScenario(ctx context.Context, b *board) error {
	users, err := b.createDemoTeams(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for day := 30; day >= 1; day-- {
		at := now.AddDate(0, 0, -day)
		for i, u := range users {
			if (i+day)%3 != 0 {
				continue
			}
			amount := int64((i*7+day*3)%15 + 1)
			if err := b.backfill(ctx, u, amount, "Weekly shout-out", at); err != nil {
				return err
			}
		}
	}

	// A few corrections so totals are not monotone.
	for _, u := range users[:2] {
		if err := b.backfill(ctx, u, -5, "Correction", now.AddDate(0, 0, -2)); err != nil {
			return err
		}
	}

	// One team-only award on top of member activity.
	_, err = b.rewards.AwardToTeam(ctx, rewards.TeamAwardInput{
		TeamID: users[0].TeamID,
		Amount: 50,
		Reason: "Shipped the quarterly release",
	})
	return err
}

func loadCloseRaceScenario(ctx context.Context, b *board) error {
	users, err := b.createDemoTeams(ctx)
	if err != nil {
		return err
	}

	awards := make([]rewards.AwardInput, 0, len(users))
	for i, u := range users {
		amount := int64(10 * (len(users) - i))
		if i == 1 {
			// Tie with the first user.
			amount = int64(10 * len(users))
		}
		awards = append(awards, rewards.AwardInput{UserID: u.ID, Amount: amount, Reason: "Sprint demo"})
	}
	_, err = b.rewards.BulkAward(ctx, awards, rewards.DefaultActor)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func (b *board) createDemoTeams(ctx context.Context) ([]ledger.User, error) {
	var users []ledger.User
	for _, dt := range demoTeams {
		team, err := b.tx.CreateTeam(ctx, ledger.Team{
			Name:        dt.name,
			Description: dt.description,
			Color:       dt.color,
		})
		if err != nil {
			return nil, err
		}
		for _, name := range dt.members {
			u, err := b.tx.CreateUser(ctx, ledger.User{Name: name, TeamID: team.ID})
			if err != nil {
				return nil, err
			}
			users = append(users, u)
		}
	}
	return users, nil
}

// backfill appends a user entry at a past time and evaluates achievements
// for the user and team, as a live award would.
func (b *board) backfill(ctx context.Context, u ledger.User, amount int64, reason string, at time.Time) error {
	uid := u.ID
	if _, err := b.tx.AppendEntry(ctx, ledger.Entry{
		UserID:    &uid,
		TeamID:    u.TeamID,
		Amount:    amount,
		Reason:    reason,
		AwardedBy: rewards.DefaultActor,
		CreatedAt: at,
	}); err != nil {
		return err
	}
	if _, err := b.rewards.Evaluate(ctx, b.tx, ledger.UserRef(u.ID)); err != nil {
		return err
	}
	_, err := b.rewards.Evaluate(ctx, b.tx, ledger.TeamRef(u.TeamID))
	return err
}
