// Package memory provides an in-memory ledger.TxStore for tests and dev.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/coinboard/ledger"
)

const defaultTeamColor = "#3B82F6"

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps every table in maps guarded by one lock. It enforces the same
// unlock uniqueness as the SQLite store.
type Memory struct {
	mu sync.RWMutex
	st state
}

var _ ledger.TxStore = (*Memory)(nil)

type unlockKey struct {
	scope       ledger.Scope
	entity      int64
	achievement ledger.AchievementID
}

type state struct {
	teams        map[ledger.TeamID]ledger.Team
	users        map[ledger.UserID]ledger.User
	entries      []ledger.Entry
	achievements map[ledger.AchievementID]ledger.Achievement
	unlocks      map[unlockKey]ledger.Unlock
	seq          int64
}

func New() *Memory {
	return &Memory{st: state{
		teams:        make(map[ledger.TeamID]ledger.Team),
		users:        make(map[ledger.UserID]ledger.User),
		achievements: make(map[ledger.AchievementID]ledger.Achievement),
		unlocks:      make(map[unlockKey]ledger.Unlock),
	}}
}

func (m *Memory) Team(ctx context.Context, id ledger.TeamID) (*ledger.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Team(ctx, id)
}

func (m *Memory) User(ctx context.Context, id ledger.UserID) (*ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.User(ctx, id)
}

func (m *Memory) AppendEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.AppendEntry(ctx, e)
}

func (m *Memory) TotalCoins(ctx context.Context, ref ledger.EntityRef) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.TotalCoins(ctx, ref)
}

func (m *Memory) EntriesSince(ctx context.Context, ref ledger.EntityRef, since time.Time) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.EntriesSince(ctx, ref, since)
}

func (m *Memory) Achievements(ctx context.Context, scope ledger.Scope) ([]ledger.Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Achievements(ctx, scope)
}

func (m *Memory) Unlocks(ctx context.Context, ref ledger.EntityRef) ([]ledger.Unlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Unlocks(ctx, ref)
}

func (m *Memory) Unlock(ctx context.Context, ref ledger.EntityRef, id ledger.AchievementID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.Unlock(ctx, ref, id, at)
}

func (m *Memory) UserStandings(ctx context.Context) ([]ledger.Standing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.UserStandings(ctx)
}

func (m *Memory) TeamStandings(ctx context.Context) ([]ledger.Standing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.TeamStandings(ctx)
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(&m.st); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (s *state) clone() state {
	c := state{
		teams:        make(map[ledger.TeamID]ledger.Team, len(s.teams)),
		users:        make(map[ledger.UserID]ledger.User, len(s.users)),
		entries:      append([]ledger.Entry(nil), s.entries...),
		achievements: make(map[ledger.AchievementID]ledger.Achievement, len(s.achievements)),
		unlocks:      make(map[unlockKey]ledger.Unlock, len(s.unlocks)),
		seq:          s.seq,
	}
	for k, v := range s.teams {
		c.teams[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.achievements {
		c.achievements[k] = v
	}
	for k, v := range s.unlocks {
		c.unlocks[k] = v
	}
	return c
}

// =============================================================================
// FIXTURES - Directory writes, same signatures as store/sqlite
// =============================================================================

func (m *Memory) CreateTeam(_ context.Context, t ledger.Team) (ledger.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.st.teams {
		if existing.Name == t.Name {
			return t, fmt.Errorf("team name %q: %w", t.Name, ledger.ErrDuplicate)
		}
	}
	if t.Color == "" {
		t.Color = defaultTeamColor
	}
	now := time.Now().UTC()
	t.ID = ledger.TeamID(m.st.next())
	t.CreatedAt, t.UpdatedAt = now, now
	m.st.teams[t.ID] = t
	return t, nil
}

func (m *Memory) CreateUser(_ context.Context, u ledger.User) (ledger.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.st.teams[u.TeamID]; !ok {
		return u, &ledger.NotFoundError{Kind: "team", ID: int64(u.TeamID)}
	}
	if u.Email != "" {
		for _, existing := range m.st.users {
			if existing.Email == u.Email {
				return u, fmt.Errorf("email %q: %w", u.Email, ledger.ErrDuplicate)
			}
		}
	}
	now := time.Now().UTC()
	u.ID = ledger.UserID(m.st.next())
	u.CreatedAt, u.UpdatedAt = now, now
	m.st.users[u.ID] = u
	return u, nil
}

func (m *Memory) CreateAchievement(_ context.Context, a ledger.Achievement) (ledger.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.Tier == "" {
		a.Tier = ledger.TierBronze
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.ID = ledger.AchievementID(m.st.next())
	m.st.achievements[a.ID] = a
	return a, nil
}

// =============================================================================
// STATE - Unlocked ledger.Store implementation
// =============================================================================

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

func (s *state) Team(_ context.Context, id ledger.TeamID) (*ledger.Team, error) {
	t, ok := s.teams[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *state) User(_ context.Context, id ledger.UserID) (*ledger.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *state) AppendEntry(_ context.Context, e ledger.Entry) (ledger.Entry, error) {
	if _, ok := s.teams[e.TeamID]; !ok {
		return e, &ledger.NotFoundError{Kind: "team", ID: int64(e.TeamID)}
	}
	if e.UserID != nil {
		if _, ok := s.users[*e.UserID]; !ok {
			return e, &ledger.NotFoundError{Kind: "user", ID: int64(*e.UserID)}
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.ID = ledger.EntryID(s.next())
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *state) TotalCoins(_ context.Context, ref ledger.EntityRef) (int64, error) {
	var total int64
	for _, e := range s.entries {
		if e.References(ref) {
			total += e.Amount
		}
	}
	return total, nil
}

func (s *state) EntriesSince(_ context.Context, ref ledger.EntityRef, since time.Time) ([]ledger.Entry, error) {
	out := []ledger.Entry{}
	for _, e := range s.entries {
		if e.References(ref) && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *state) Achievements(_ context.Context, scope ledger.Scope) ([]ledger.Achievement, error) {
	out := []ledger.Achievement{}
	for _, a := range s.achievements {
		if a.Scope == scope {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Threshold != out[j].Threshold {
			return out[i].Threshold < out[j].Threshold
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *state) Unlocks(_ context.Context, ref ledger.EntityRef) ([]ledger.Unlock, error) {
	out := []ledger.Unlock{}
	for k, u := range s.unlocks {
		if k.scope == ref.Scope && k.entity == ref.ID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].UnlockedAt.Before(out[j].UnlockedAt)
		}
		return out[i].AchievementID < out[j].AchievementID
	})
	return out, nil
}

func (s *state) Unlock(_ context.Context, ref ledger.EntityRef, id ledger.AchievementID, at time.Time) error {
	if _, ok := s.achievements[id]; !ok {
		return &ledger.NotFoundError{Kind: "achievement", ID: int64(id)}
	}
	k := unlockKey{scope: ref.Scope, entity: ref.ID, achievement: id}
	if _, exists := s.unlocks[k]; exists {
		return ledger.ErrDuplicateUnlock
	}
	s.unlocks[k] = ledger.Unlock{Entity: ref, AchievementID: id, UnlockedAt: at.UTC()}
	return nil
}

func (s *state) UserStandings(ctx context.Context) ([]ledger.Standing, error) {
	out := make([]ledger.Standing, 0, len(s.users))
	for _, u := range s.users {
		team := s.teams[u.TeamID]
		st := ledger.Standing{
			Scope:     ledger.ScopeUser,
			ID:        int64(u.ID),
			Name:      u.Name,
			Email:     u.Email,
			TeamID:    u.TeamID,
			TeamName:  team.Name,
			TeamColor: team.Color,
		}
		s.aggregate(&st, ledger.UserRef(u.ID))
		out = append(out, st)
	}
	return out, nil
}

func (s *state) TeamStandings(ctx context.Context) ([]ledger.Standing, error) {
	members := make(map[ledger.TeamID]int)
	for _, u := range s.users {
		members[u.TeamID]++
	}

	out := make([]ledger.Standing, 0, len(s.teams))
	for _, t := range s.teams {
		st := ledger.Standing{
			Scope:       ledger.ScopeTeam,
			ID:          int64(t.ID),
			Name:        t.Name,
			Description: t.Description,
			Color:       t.Color,
			MemberCount: members[t.ID],
		}
		s.aggregate(&st, ledger.TeamRef(t.ID))
		out = append(out, st)
	}
	return out, nil
}

func (s *state) aggregate(st *ledger.Standing, ref ledger.EntityRef) {
	for _, e := range s.entries {
		if !e.References(ref) {
			continue
		}
		st.TotalCoins += e.Amount
		if st.LastActivity == nil || e.CreatedAt.After(*st.LastActivity) {
			last := e.CreatedAt
			st.LastActivity = &last
		}
	}
	for k := range s.unlocks {
		if k.scope == ref.Scope && k.entity == ref.ID {
			st.AchievementCount++
		}
	}
}
