// Package trends serves seasonal demand signals scraped into the
// trends table, with a short-lived cache per season.
package trends

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
)

// Repository defines the trend read surface.
type Repository interface {
	ListTopBySeason(ctx context.Context, season string, since time.Time, limit int) ([]models.Trend, error)
}

// GormRepository implements Repository against the shared GORM connection.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// ListTopBySeason returns the hottest trend records whose season
// contains the given name, scraped since the given time, hot-score
// descending. The match is case-insensitive so stored seasons like
// "Christmas 2025" still surface for "Christmas".
func (r *GormRepository) ListTopBySeason(ctx context.Context, season string, since time.Time, limit int) ([]models.Trend, error) {
	var records []models.Trend
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("lower(season) LIKE lower(?) AND scraped_at >= ?", "%"+season+"%", since).
		Order("hot_score DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
