/*
Package rewards orchestrates coin awards, achievement unlocks, and the
read-side leaderboard and history queries.

PURPOSE:
  The ledger package holds the pure rules (ranking, bucketing,
  eligibility). This package wires them to a ledger.TxStore and owns the
  transaction boundaries.

CONTROL FLOW:
  Award:  validate -> WithTx { append entry -> evaluate user -> evaluate team }
  Read:   standings -> ledger.Rank        (leaderboard)
          entries   -> ledger.BucketByDay (history)

  Reads never evaluate achievements and have no side effects.

CONCURRENCY:
  Evaluate uses check-then-insert. Two evaluations racing on the same entity
  may both see an achievement as eligible; the store's uniqueness constraint
  rejects the second insert and Evaluate drops it from its result with a
  warning. No lock is taken.

SEE ALSO:
  - ledger/achievements.go: Eligibility rules
  - ledger/ranking.go: Leaderboard ordering
  - catalog.go: Default achievement catalog
*/
package rewards

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/coinboard/ledger"
)

// DefaultActor is recorded as AwardedBy when the caller does not name one.
const DefaultActor = "admin"

// Service runs award and read operations against a store.
type Service struct {
	store ledger.TxStore
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewService creates a service. A nil log discards output.
func NewService(store ledger.TxStore, log logrus.FieldLogger) *Service {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Bind returns a copy of the service running against store, with the same
// logger and clock. Used to run awards inside a caller's transaction.
func (s *Service) Bind(store ledger.TxStore) *Service {
	c := *s
	c.store = store
	return &c
}

// SetClock overrides the clock used for entry and unlock timestamps and
// history windows.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
