package repositories

import (
	"github.com/commune-app/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionRepository defines read access to the reaction ledger. Writes go
// through the reaction service, which pairs them with the target's counter.
type ReactionRepository interface {
	GetReaction(target models.Target, userID uint) (*models.Reaction, error)
	CountByTarget(target models.Target) (int64, error)
	GetReactedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// GetReaction retrieves the live reaction for a (target, user) pair
func (r *PostgresReactionRepository) GetReaction(target models.Target, userID uint) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.Where("target_type = ? AND target_id = ? AND user_id = ?", target.Type, target.ID, userID).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CountByTarget counts the live ledger rows for a target
func (r *PostgresReactionRepository) CountByTarget(target models.Target) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reaction{}).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Count(&count).Error
	return count, err
}

// GetReactedPostIDs returns which of the given post IDs the user has reacted
// to, in one query
func (r *PostgresReactionRepository) GetReactedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var reactions []models.Reaction
	err := r.db.Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, models.TargetPost, postIDs).
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	for _, reaction := range reactions {
		result[reaction.TargetID] = true
	}
	return result, nil
}
