package models

import (
	"time"

	"github.com/google/uuid"
)

// SalesRecord is one unit-count sale event for a product.
type SalesRecord struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Quantity  int       `gorm:"column:quantity;not null"`
	SoldAt    time.Time `gorm:"column:sold_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
