/*
Package ledger provides the core coin board engine.

PURPOSE:
  Domain types and pure algorithms for a coin reward board. Teams and users
  earn coins through ledger entries; totals, ranks, and history are always
  derived from the ledger, never stored.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: An immutable ledger row (signed coin amount)
  - Achievement: A threshold milestone scoped to users or teams
  - Unlock: Proof that an entity crossed an achievement threshold
  - Standing: One aggregated leaderboard row

DESIGN PRINCIPLES:
  1. Immutability: Entries are never modified or deleted by normal flow
  2. Derived state: Totals and ranks are recomputed from the ledger on read
  3. Monotonic unlocks: Once unlocked, an achievement stays unlocked
  4. Type safety: Distinct ID types prevent mixing team and user IDs

SEE ALSO:
  - ranking.go: Leaderboard ordering and pagination
  - history.go: Daily buckets and cumulative totals
  - achievements.go: Threshold eligibility
  - store.go: Persistence interfaces
*/
package ledger

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TeamID int64
type UserID int64
type EntryID int64
type AchievementID int64

// Scope says whether an aggregate or achievement applies to a user or a team.
type Scope string

const (
	ScopeUser Scope = "user"
	ScopeTeam Scope = "team"
)

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	return s == ScopeUser || s == ScopeTeam
}

// EntityRef points at a single user or team.
type EntityRef struct {
	Scope Scope
	ID    int64
}

func UserRef(id UserID) EntityRef { return EntityRef{Scope: ScopeUser, ID: int64(id)} }
func TeamRef(id TeamID) EntityRef { return EntityRef{Scope: ScopeTeam, ID: int64(id)} }

// =============================================================================
// DIRECTORY - Teams and users (owned by CRUD collaborators)
// =============================================================================

type Team struct {
	ID          TeamID
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID        UserID
	Name      string
	Email     string // empty = none
	TeamID    TeamID
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// ENTRY - Atomic coin award or deduction
// =============================================================================

// Entry is one ledger row. A nil UserID means a team-level award with no
// individual attribution. When UserID is set, TeamID is the user's team.
type Entry struct {
	ID        EntryID
	UserID    *UserID
	TeamID    TeamID
	Amount    int64 // positive = award, negative = deduction
	Reason    string
	AwardedBy string
	CreatedAt time.Time
}

// References reports whether the entry counts toward ref's total.
func (e Entry) References(ref EntityRef) bool {
	switch ref.Scope {
	case ScopeUser:
		return e.UserID != nil && int64(*e.UserID) == ref.ID
	case ScopeTeam:
		return int64(e.TeamID) == ref.ID
	}
	return false
}

// =============================================================================
// ACHIEVEMENTS
// =============================================================================

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Achievement is a milestone definition. Tier is cosmetic and never used
// in unlock logic.
type Achievement struct {
	ID          AchievementID
	Scope       Scope
	Name        string
	Description string
	Icon        string
	Threshold   int64
	Tier        Tier
	CreatedAt   time.Time
}

// Unlock records that an entity has unlocked an achievement.
// At most one Unlock exists per (entity, achievement).
type Unlock struct {
	Entity        EntityRef
	AchievementID AchievementID
	UnlockedAt    time.Time
}

// =============================================================================
// STANDING - Aggregated view row
// =============================================================================

// Standing is the aggregated state of one user or team, derived from the
// ledger at read time.
type Standing struct {
	Scope Scope
	ID    int64
	Name  string

	// User rows
	Email     string
	TeamID    TeamID
	TeamName  string
	TeamColor string

	// Team rows
	Description string
	Color       string
	MemberCount int

	TotalCoins       int64
	AchievementCount int
	LastActivity     *time.Time
}

// RankedStanding is a Standing with its absolute position in the full order.
type RankedStanding struct {
	Rank int
	Standing
}

// HistoryPoint is one active day in an entity's coin history.
type HistoryPoint struct {
	Date            time.Time // midnight UTC
	DailyCoins      int64
	CumulativeCoins int64
}
