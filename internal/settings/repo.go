package settings

import (
	"context"
	"errors"
	"time"

	"github.com/heatparts/storefront/internal/repo"
	"github.com/heatparts/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists device key/value settings.
type Repository struct {
	repo.Base
	now func() time.Time
}

// NewRepository binds the repository to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db), now: time.Now}
}

// Get returns the stored value and whether the key exists.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var row models.DeviceSetting
	err := r.DB(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

// Set upserts the value for key.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	row := models.DeviceSetting{Key: key, Value: value, UpdatedAt: r.now().UTC()}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// Delete removes key. Deleting a missing key is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.DB(ctx).Where("key = ?", key).Delete(&models.DeviceSetting{}).Error
}

// GetMany returns the stored values for the given keys; missing keys are absent from the map.
func (r *Repository) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	var rows []models.DeviceSetting
	if err := r.DB(ctx).Where("key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}
