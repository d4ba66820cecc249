/*
store.go - Persistence interface for the coin ledger and derived views

PURPOSE:
  Defines the interface between the board logic and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  Store:   Ledger appends, directory lookups, unlocks, aggregate views
  TxStore: Store + atomic multi-write transactions

APPEND-ONLY CONTRACT:
  Entries are written with AppendEntry and never updated. Unlocks are
  written with Unlock and never removed by normal flow.

UNIQUENESS:
  Unlock must enforce at most one record per (entity, achievement) at the
  storage level and report a violation as ErrDuplicateUnlock. This is the
  only concurrency guard for achievement evaluation.

IMPLEMENTATIONS:
  - store/sqlite: SQLite, production
  - store/memory: In-memory, tests
*/
package ledger

import (
	"context"
	"time"
)

// Store handles persistence of ledger entries and the views derived from them.
type Store interface {
	// Team returns the team, or nil if it doesn't exist.
	Team(ctx context.Context, id TeamID) (*Team, error)

	// User returns the user, or nil if it doesn't exist.
	User(ctx context.Context, id UserID) (*User, error)

	// AppendEntry persists an entry and returns it with ID and CreatedAt set.
	// A zero CreatedAt is stamped with the current time.
	AppendEntry(ctx context.Context, e Entry) (Entry, error)

	// TotalCoins sums the signed amounts of all entries referencing ref.
	TotalCoins(ctx context.Context, ref EntityRef) (int64, error)

	// EntriesSince returns entries referencing ref created at or after since,
	// oldest first. A zero since means no lower bound.
	EntriesSince(ctx context.Context, ref EntityRef, since time.Time) ([]Entry, error)

	// Achievements returns the catalog for a scope ordered by threshold.
	Achievements(ctx context.Context, scope Scope) ([]Achievement, error)

	// Unlocks returns the unlock records held by ref.
	Unlocks(ctx context.Context, ref EntityRef) ([]Unlock, error)

	// Unlock inserts an unlock record. Returns ErrDuplicateUnlock if one exists.
	Unlock(ctx context.Context, ref EntityRef, id AchievementID, at time.Time) error

	// UserStandings aggregates every user from the ledger.
	UserStandings(ctx context.Context) ([]Standing, error)

	// TeamStandings aggregates every team from the ledger.
	TeamStandings(ctx context.Context) ([]Standing, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
