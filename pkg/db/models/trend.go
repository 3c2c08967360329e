package models

import (
	"time"

	"github.com/google/uuid"
)

// Trend is a scraped seasonal demand signal. Keywords is a
// comma-separated list as delivered by the scraper.
type Trend struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Season     string     `gorm:"column:season;not null;index"`
	Keywords   string     `gorm:"column:keywords;not null"`
	HotScore   float64    `gorm:"column:hot_score;not null;default:0"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid"`
	Category   *Category  `gorm:"foreignKey:CategoryID"`
	ScrapedAt  time.Time  `gorm:"column:scraped_at;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
