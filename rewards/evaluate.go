package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/warp/coinboard/ledger"
)

// Evaluate unlocks every achievement ref has crossed and not yet holds.
//
// It returns only the achievements whose unlock was recorded by this call.
// A duplicate unlock means a concurrent evaluation got there first; it is
// logged and left out of the result. Any other store error aborts.
//
// st is the store to run against, normally the transaction of the award
// that triggered the evaluation.
func (s *Service) Evaluate(ctx context.Context, st ledger.Store, ref ledger.EntityRef) ([]ledger.Achievement, error) {
	total, err := st.TotalCoins(ctx, ref)
	if err != nil {
		return nil, err
	}

	catalog, err := st.Achievements(ctx, ref.Scope)
	if err != nil {
		return nil, err
	}

	held, err := st.Unlocks(ctx, ref)
	if err != nil {
		return nil, err
	}

	unlocked := []ledger.Achievement{}
	at := s.now()
	for _, a := range ledger.Eligible(catalog, held, total) {
		err := st.Unlock(ctx, ref, a.ID, at)
		if errors.Is(err, ledger.ErrDuplicateUnlock) {
			s.log.WithFields(logrus.Fields{
				"scope":          ref.Scope,
				"entity_id":      ref.ID,
				"achievement_id": a.ID,
			}).Warn("Achievement already unlocked by a concurrent evaluation")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("unlock %q for %s %d: %w", a.Name, ref.Scope, ref.ID, err)
		}

		s.log.WithFields(logrus.Fields{
			"scope":       ref.Scope,
			"entity_id":   ref.ID,
			"achievement": a.Name,
			"total_coins": total,
		}).Info("Achievement unlocked")
		unlocked = append(unlocked, a)
	}
	return unlocked, nil
}
