package rewards

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/warp/coinboard/ledger"
)

// =============================================================================
// INPUTS & RESULTS
// =============================================================================

// AwardInput awards (or deducts, when Amount is negative) coins to a user.
type AwardInput struct {
	UserID    ledger.UserID
	Amount    int64
	Reason    string
	AwardedBy string // defaults to DefaultActor
}

// TeamAwardInput awards coins to a team with no individual attribution.
type TeamAwardInput struct {
	TeamID    ledger.TeamID
	Amount    int64
	Reason    string
	AwardedBy string
}

// AwardResult is the created entry plus what it unlocked.
type AwardResult struct {
	Entry            ledger.Entry
	UserAchievements []ledger.Achievement // always empty for team awards
	TeamAchievements []ledger.Achievement
}

// BulkResult holds one AwardResult per input, in input order.
type BulkResult struct {
	Awards []AwardResult
}

// =============================================================================
// AWARD OPERATIONS
// =============================================================================

// AwardToUser records an entry for the user and their current team, then
// evaluates achievements for both. The entry and unlocks commit together.
func (s *Service) AwardToUser(ctx context.Context, in AwardInput) (*AwardResult, error) {
	var result *AwardResult
	err := s.store.WithTx(ctx, func(tx ledger.Store) error {
		r, err := s.awardToUser(ctx, tx, in)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": in.UserID,
		"team_id": result.Entry.TeamID,
		"amount":  in.Amount,
	}).Info("Coins awarded to user")
	return result, nil
}

// AwardToTeam records a team-only entry and evaluates team achievements.
func (s *Service) AwardToTeam(ctx context.Context, in TeamAwardInput) (*AwardResult, error) {
	if in.TeamID <= 0 {
		return nil, ledger.Invalid("team_id", "is required")
	}
	reason, actor, err := validateAward(in.Amount, in.Reason, in.AwardedBy)
	if err != nil {
		return nil, err
	}

	var result *AwardResult
	err = s.store.WithTx(ctx, func(tx ledger.Store) error {
		team, err := tx.Team(ctx, in.TeamID)
		if err != nil {
			return err
		}
		if team == nil {
			return &ledger.NotFoundError{Kind: "team", ID: int64(in.TeamID)}
		}

		entry, err := tx.AppendEntry(ctx, ledger.Entry{
			TeamID:    team.ID,
			Amount:    in.Amount,
			Reason:    reason,
			AwardedBy: actor,
			CreatedAt: s.now(),
		})
		if err != nil {
			return err
		}

		teamAch, err := s.Evaluate(ctx, tx, ledger.TeamRef(team.ID))
		if err != nil {
			return err
		}

		result = &AwardResult{
			Entry:            entry,
			UserAchievements: []ledger.Achievement{},
			TeamAchievements: teamAch,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"team_id": in.TeamID,
		"amount":  in.Amount,
	}).Info("Coins awarded to team")
	return result, nil
}

// BulkAward applies every award in one transaction. If any award fails, the
// batch is rolled back and the error is an *ledger.AggregateError naming
// the failing index.
func (s *Service) BulkAward(ctx context.Context, awards []AwardInput, actor string) (*BulkResult, error) {
	if len(awards) == 0 {
		return nil, ledger.Invalid("awards", "at least one award is required")
	}

	result := &BulkResult{Awards: make([]AwardResult, 0, len(awards))}
	err := s.store.WithTx(ctx, func(tx ledger.Store) error {
		for i, in := range awards {
			if in.AwardedBy == "" {
				in.AwardedBy = actor
			}
			r, err := s.awardToUser(ctx, tx, in)
			if err != nil {
				return &ledger.AggregateError{Index: i, UserID: in.UserID, Err: err}
			}
			result.Awards = append(result.Awards, *r)
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("batch_size", len(awards)).Warn("Bulk award rolled back")
		return nil, err
	}

	s.log.WithField("batch_size", len(awards)).Info("Bulk award committed")
	return result, nil
}

// awardToUser is the body of a user award, run inside tx.
func (s *Service) awardToUser(ctx context.Context, tx ledger.Store, in AwardInput) (*AwardResult, error) {
	if in.UserID <= 0 {
		return nil, ledger.Invalid("user_id", "is required")
	}
	reason, actor, err := validateAward(in.Amount, in.Reason, in.AwardedBy)
	if err != nil {
		return nil, err
	}

	user, err := tx.User(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &ledger.NotFoundError{Kind: "user", ID: int64(in.UserID)}
	}

	uid := user.ID
	entry, err := tx.AppendEntry(ctx, ledger.Entry{
		UserID:    &uid,
		TeamID:    user.TeamID,
		Amount:    in.Amount,
		Reason:    reason,
		AwardedBy: actor,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}

	userAch, err := s.Evaluate(ctx, tx, ledger.UserRef(user.ID))
	if err != nil {
		return nil, err
	}
	teamAch, err := s.Evaluate(ctx, tx, ledger.TeamRef(user.TeamID))
	if err != nil {
		return nil, err
	}

	return &AwardResult{
		Entry:            entry,
		UserAchievements: userAch,
		TeamAchievements: teamAch,
	}, nil
}

// validateAward checks the fields shared by user and team awards and
// returns the trimmed reason and the effective actor.
func validateAward(amount int64, reason, actor string) (string, string, error) {
	if amount == 0 {
		return "", "", ledger.Invalid("amount", "must be non-zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", "", ledger.Invalid("reason", "is required")
	}
	if actor == "" {
		actor = DefaultActor
	}
	return reason, actor, nil
}
