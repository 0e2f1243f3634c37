package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ibrahem-systems/daftar-backend/pkg/db/models"
)

// Repository persists platform-wide key/value settings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAll(ctx context.Context) ([]models.SystemSetting, error) {
	var rows []models.SystemSetting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	var row models.SystemSetting
	if err := r.db.WithContext(ctx).First(&row, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Upsert(ctx context.Context, key, value string) error {
	row := models.SystemSetting{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}
