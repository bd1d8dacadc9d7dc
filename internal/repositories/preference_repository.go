package repositories

import (
	"github.com/commune-app/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository defines the interface for preference operations
type PreferenceRepository interface {
	GetByUserID(userID uint) (*models.NotificationPreference, error)
	Replace(preference *models.NotificationPreference) error
}

// PostgresPreferenceRepository implements PreferenceRepository
type PostgresPreferenceRepository struct {
	db *gorm.DB
}

func NewPostgresPreferenceRepository(db *gorm.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

// GetByUserID retrieves the preference row for a user
func (r *PostgresPreferenceRepository) GetByUserID(userID uint) (*models.NotificationPreference, error) {
	var preference models.NotificationPreference
	if err := r.db.Where("user_id = ?", userID).First(&preference).Error; err != nil {
		return nil, err
	}
	return &preference, nil
}

// Replace writes the user's settings wholesale, creating the row on first use
func (r *PostgresPreferenceRepository) Replace(preference *models.NotificationPreference) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
	}).Create(preference).Error
}
