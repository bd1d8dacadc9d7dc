package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Toggle actions returned to the caller.
const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)

// ToggleResult reports which branch a toggle took. Reaction is set only on
// the added branch.
type ToggleResult struct {
	Action   string           `json:"action"`
	Reaction *models.Reaction `json:"reaction,omitempty"`
}

// ReactionService owns the reaction ledger and the denormalized counters on
// its targets. A ledger mutation and its counter delta are one unit of work:
// comment counters live in Postgres and commit in the same transaction as the
// row; post counters live on the Mongo document, so the row commits first and
// the $inc follows, with Recount as the recovery path if the second step is
// lost.
type ReactionService struct {
	db    *gorm.DB
	posts repositories.PostRepository
	log   zerolog.Logger
}

// NewReactionService creates a new ReactionService
func NewReactionService(db *gorm.DB, posts repositories.PostRepository, log zerolog.Logger) *ReactionService {
	return &ReactionService{db: db, posts: posts, log: log}
}

// Toggle adds a reaction for (target, user) or removes the existing one.
// The unique ledger index serializes concurrent toggles from the same user;
// a loser of that race gets ErrDuplicateReaction.
func (s *ReactionService) Toggle(ctx context.Context, target models.Target, userID uint, kind string) (*ToggleResult, error) {
	if kind == "" {
		kind = "like"
	}

	var result *ToggleResult
	var postDelta int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where("target_type = ? AND target_id = ? AND user_id = ?", target.Type, target.ID, userID).
			First(&existing).Error

		switch {
		case err == nil:
			res := tx.Delete(&models.Reaction{}, existing.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// A concurrent toggle already removed the row between our
				// read and this delete; that transaction owns the decrement.
				result = &ToggleResult{Action: ReactionRemoved}
				return nil
			}
			if err := s.bumpCounter(tx, target, -1, &postDelta); err != nil {
				return err
			}
			result = &ToggleResult{Action: ReactionRemoved}
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction := &models.Reaction{
				TargetType: target.Type,
				TargetID:   target.ID,
				UserID:     userID,
				Kind:       kind,
			}
			if err := tx.Create(reaction).Error; err != nil {
				if isDuplicate(err) {
					return ErrDuplicateReaction
				}
				return err
			}
			if err := s.bumpCounter(tx, target, 1, &postDelta); err != nil {
				return err
			}
			result = &ToggleResult{Action: ReactionAdded, Reaction: reaction}
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.applyPostDelta(ctx, target, postDelta)
	return result, nil
}

// Remove deletes the (target, user) reaction unconditionally. Unlike Toggle
// it fails with ErrReactionNotFound instead of adding one.
func (s *ReactionService) Remove(ctx context.Context, target models.Target, userID uint) error {
	var postDelta int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("target_type = ? AND target_id = ? AND user_id = ?", target.Type, target.ID, userID).
			Delete(&models.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReactionNotFound
		}
		return s.bumpCounter(tx, target, -1, &postDelta)
	})
	if err != nil {
		return err
	}

	s.applyPostDelta(ctx, target, postDelta)
	return nil
}

// Recount recomputes a target's counter from the live ledger rows and writes
// it through. Safe to run at any time; this is the recovery path after a
// partial failure left the counter behind the ledger.
func (s *ReactionService) Recount(ctx context.Context, target models.Target) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	switch target.Type {
	case models.TargetPost:
		if err := s.posts.SetReactionCount(ctx, target.ID, int(count)); err != nil {
			return 0, err
		}
	case models.TargetComment:
		commentID, err := parseCommentID(target.ID)
		if err != nil {
			return 0, err
		}
		res := s.db.WithContext(ctx).Model(&models.Comment{}).
			Where("id = ?", commentID).
			UpdateColumn("reaction_count", count)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, ErrTargetNotFound
		}
	}
	return count, nil
}

// bumpCounter applies the counter half of a ledger mutation. Comment counters
// are updated inside the surrounding transaction with an atomic expression;
// post counters are deferred to applyPostDelta after the transaction commits.
func (s *ReactionService) bumpCounter(tx *gorm.DB, target models.Target, delta int, postDelta *int) error {
	switch target.Type {
	case models.TargetComment:
		commentID, err := parseCommentID(target.ID)
		if err != nil {
			return err
		}
		res := tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			UpdateColumn("reaction_count", gorm.Expr("reaction_count + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTargetNotFound
		}
		return nil
	case models.TargetPost:
		*postDelta = delta
		return nil
	}
	return ErrTargetNotFound
}

// applyPostDelta runs the Mongo $inc after the ledger row is durable. A
// failure here leaves the counter behind the ledger until Recount runs, so it
// is logged rather than unwinding the already-committed reaction.
func (s *ReactionService) applyPostDelta(ctx context.Context, target models.Target, delta int) {
	if delta == 0 || target.Type != models.TargetPost {
		return
	}
	if err := s.posts.IncrementReactionCount(ctx, target.ID, delta); err != nil {
		s.log.Error().Err(err).
			Str("post_id", target.ID).
			Int("delta", delta).
			Msg("post reaction counter update failed, recount needed")
	}
}

func parseCommentID(id string) (uint, error) {
	commentID, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, ErrTargetNotFound
	}
	return uint(commentID), nil
}

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
