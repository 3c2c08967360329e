package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents one catalog entry in the merchant's inventory.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string         `gorm:"column:sku;not null;uniqueIndex"`
	Name        string         `gorm:"column:name;not null"`
	Description *string        `gorm:"column:description"`
	CategoryID  uuid.UUID      `gorm:"column:category_id;type:uuid;not null"`
	Category    *Category      `gorm:"foreignKey:CategoryID"`
	SupplierID  *uuid.UUID     `gorm:"column:supplier_id;type:uuid"`
	Supplier    *Supplier      `gorm:"foreignKey:SupplierID"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]"`
	PriceCents  int            `gorm:"column:price_cents;not null;default:0"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	Inventory   *Inventory     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
