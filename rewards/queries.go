package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/coinboard/ledger"
)

// =============================================================================
// LEADERBOARD
// =============================================================================

// Leaderboard ranks every entity of scope from the live ledger and returns
// one page of it.
func (s *Service) Leaderboard(ctx context.Context, scope ledger.Scope, limit, offset int) (ledger.Page, error) {
	var (
		standings []ledger.Standing
		err       error
	)
	switch scope {
	case ledger.ScopeUser:
		standings, err = s.store.UserStandings(ctx)
	case ledger.ScopeTeam:
		standings, err = s.store.TeamStandings(ctx)
	default:
		return ledger.Page{}, ledger.Invalid("scope", fmt.Sprintf("unknown scope %q", scope))
	}
	if err != nil {
		return ledger.Page{}, err
	}
	return ledger.Rank(standings, limit, offset)
}

// AverageCoins is total/count rounded to two places, or zero when count is
// zero. Used for per-member team averages and per-user board averages.
func AverageCoins(total int64, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(count))).Round(2)
}

// =============================================================================
// HISTORY
// =============================================================================

// History is the daily coin series for one entity.
type History struct {
	Entity ledger.EntityRef
	Period ledger.Period
	Points []ledger.HistoryPoint
}

// History buckets ref's entries inside period by UTC day. period must be one
// of ledger.Periods() or empty for ledger.DefaultPeriod. Days with no
// entries have no point.
func (s *Service) History(ctx context.Context, ref ledger.EntityRef, period string) (*History, error) {
	p, err := ledger.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	if err := s.requireEntity(ctx, s.store, ref); err != nil {
		return nil, err
	}

	entries, err := s.store.EntriesSince(ctx, ref, p.Since(s.now()))
	if err != nil {
		return nil, err
	}

	return &History{
		Entity: ref,
		Period: p,
		Points: ledger.BucketByDay(entries),
	}, nil
}

// =============================================================================
// ACHIEVEMENT PROGRESS
// =============================================================================

// UnlockedAchievement is a catalog entry with the time ref unlocked it.
type UnlockedAchievement struct {
	ledger.Achievement
	UnlockedAt time.Time
}

// Milestone is the next locked achievement above the current total.
type Milestone struct {
	Achievement  ledger.Achievement
	CurrentCoins int64
	NeededCoins  int64
}

// Progress lists what an entity holds and what remains.
type Progress struct {
	TotalCoins int64
	Unlocked   []UnlockedAchievement
	Locked     []ledger.Achievement
	Next       *Milestone // nil when every achievement above the total is held
}

// Progress reports ref's unlocked and locked achievements and the next
// milestone. It does not evaluate: an achievement whose threshold is met but
// which has not been unlocked yet is reported as locked.
func (s *Service) Progress(ctx context.Context, ref ledger.EntityRef) (*Progress, error) {
	if err := s.requireEntity(ctx, s.store, ref); err != nil {
		return nil, err
	}

	total, err := s.store.TotalCoins(ctx, ref)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.Achievements(ctx, ref.Scope)
	if err != nil {
		return nil, err
	}
	held, err := s.store.Unlocks(ctx, ref)
	if err != nil {
		return nil, err
	}

	byID := make(map[ledger.AchievementID]ledger.Achievement, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}

	p := &Progress{
		TotalCoins: total,
		Unlocked:   []UnlockedAchievement{},
		Locked:     ledger.Locked(catalog, held),
	}
	for _, u := range held {
		if a, ok := byID[u.AchievementID]; ok {
			p.Unlocked = append(p.Unlocked, UnlockedAchievement{Achievement: a, UnlockedAt: u.UnlockedAt})
		}
	}
	if next := ledger.NextLocked(catalog, held, total); next != nil {
		p.Next = &Milestone{
			Achievement:  *next,
			CurrentCoins: total,
			NeededCoins:  next.Threshold - total,
		}
	}
	return p, nil
}

// requireEntity returns a NotFoundError when ref does not resolve.
func (s *Service) requireEntity(ctx context.Context, st ledger.Store, ref ledger.EntityRef) error {
	switch ref.Scope {
	case ledger.ScopeUser:
		u, err := st.User(ctx, ledger.UserID(ref.ID))
		if err != nil {
			return err
		}
		if u == nil {
			return &ledger.NotFoundError{Kind: "user", ID: ref.ID}
		}
	case ledger.ScopeTeam:
		t, err := st.Team(ctx, ledger.TeamID(ref.ID))
		if err != nil {
			return err
		}
		if t == nil {
			return &ledger.NotFoundError{Kind: "team", ID: ref.ID}
		}
	default:
		return ledger.Invalid("scope", fmt.Sprintf("unknown scope %q", ref.Scope))
	}
	return nil
}
