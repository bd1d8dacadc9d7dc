package repositories

import (
	"errors"

	"github.com/commune-app/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSubscriptionNotFound is returned when unsubscribing a (user, target)
// pair that has no subscription row.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	Upsert(subscription *models.Subscription) error
	Delete(userID uint, target models.Target) error
	GetByUserID(userID uint) ([]models.Subscription, error)
}

// PostgresSubscriptionRepository implements SubscriptionRepository
type PostgresSubscriptionRepository struct {
	db *gorm.DB
}

func NewPostgresSubscriptionRepository(db *gorm.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// Upsert creates the subscription row or replaces its channel flags when the
// (user, target) triple already exists. Replacement is wholesale, not additive.
func (r *PostgresSubscriptionRepository) Upsert(subscription *models.Subscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"in_app", "email", "push", "updated_at"}),
	}).Create(subscription).Error
}

// Delete removes the subscription for a (user, target) pair
func (r *PostgresSubscriptionRepository) Delete(userID uint, target models.Target) error {
	res := r.db.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Type, target.ID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// GetByUserID retrieves all subscriptions for a user, newest first
func (r *PostgresSubscriptionRepository) GetByUserID(userID uint) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subscriptions).Error
	return subscriptions, err
}
