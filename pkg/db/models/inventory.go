package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Inventory tracks stock level and demand rate per product.
type Inventory struct {
	ProductID         uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	StockQuantity     int             `gorm:"column:stock_quantity;not null;default:0"`
	AverageDailySales decimal.Decimal `gorm:"column:average_daily_sales;type:numeric(10,2);not null;default:0"`
	ReorderLevel      int             `gorm:"column:reorder_level;not null;default:0"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
