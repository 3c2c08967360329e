// Package catalog provides read-only persistence helpers for product
// lookup and inventory aggregation.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
)

// Repository defines the catalog read surface the assistant consumes.
type Repository interface {
	SearchBySubstring(ctx context.Context, query string) (*models.Product, error)
	SearchRanked(ctx context.Context, query string, cutoff float64) (*models.Product, error)
	ListNamePairs(ctx context.Context, limit int) ([]NamePair, error)
	FindExact(ctx context.Context, value string) (*models.Product, error)
	ListCategoryNames(ctx context.Context) ([]string, error)
	FirstInCategory(ctx context.Context, categoryName string) (*models.Product, error)
	ItemSales(ctx context.Context, productID uuid.UUID, since time.Time) (int64, error)
	CategoryStats(ctx context.Context, categoryID uuid.UUID, lowStockThreshold int, since time.Time) (*CategoryStats, error)
	OverviewStats(ctx context.Context, lowStockThreshold, topCategories int, since time.Time) (*OverviewStats, error)
}

// NamePair is one (name, sku) row from the bounded catalog sample.
type NamePair struct {
	Name string
	SKU  string
}

// CategoryStats aggregates inventory across one category.
type CategoryStats struct {
	Name          string
	TotalStock    int64
	AvgDailySales float64
	LowStockCount int64
	ItemCount     int64
}

// CategoryStock is one row of the top-categories ranking.
type CategoryStock struct {
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

// OverviewStats aggregates inventory across the whole catalog.
type OverviewStats struct {
	TotalStock      int64
	TotalProducts   int64
	AvgDailySales   float64
	LowStockCount   int64
	OutOfStockCount int64
	TopCategories   []CategoryStock
}

// GormRepository implements Repository against the shared GORM connection.
type GormRepository struct {
	db     *gorm.DB
	driver string
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB, driver string) *GormRepository {
	return &GormRepository{db: db, driver: driver}
}

const rankedSearchSQL = `
SELECT id,
       ts_rank(
         setweight(to_tsvector('english', coalesce(name, '')), 'A') ||
         setweight(to_tsvector('english', coalesce(sku, '')), 'B'),
         plainto_tsquery('english', ?)
       ) AS rank
FROM products
WHERE is_active
  AND (
    setweight(to_tsvector('english', coalesce(name, '')), 'A') ||
    setweight(to_tsvector('english', coalesce(sku, '')), 'B')
  ) @@ plainto_tsquery('english', ?)
ORDER BY rank DESC
LIMIT 1
`

// SearchBySubstring returns the first active product whose name or SKU
// contains the query, case-insensitive. Ordering is by name so a fixed
// catalog always yields the same row.
func (r *GormRepository) SearchBySubstring(ctx context.Context, query string) (*models.Product, error) {
	like := "%" + query + "%"
	tx := r.withAssociations(ctx).Where("is_active")
	if r.driver == "sqlite" {
		tx = tx.Where("lower(name) LIKE lower(?) OR lower(sku) LIKE lower(?)", like, like)
	} else {
		tx = tx.Where("name ILIKE ? OR sku ILIKE ?", like, like)
	}

	var product models.Product
	if err := tx.Order("name").First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// SearchRanked runs a weighted full-text search, name weighted above
// SKU, and returns the best hit at or above the relevance cutoff. The
// sqlite driver has no ts_rank; the tier reports no match there.
func (r *GormRepository) SearchRanked(ctx context.Context, query string, cutoff float64) (*models.Product, error) {
	if r.driver == "sqlite" {
		return nil, nil
	}

	var row struct {
		ID   uuid.UUID
		Rank float64
	}
	err := r.db.WithContext(ctx).Raw(rankedSearchSQL, query, query).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil || row.Rank < cutoff {
		return nil, nil
	}

	var product models.Product
	if err := r.withAssociations(ctx).First(&product, "id = ?", row.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListNamePairs returns up to limit (name, sku) pairs in name order for
// approximate matching.
func (r *GormRepository) ListNamePairs(ctx context.Context, limit int) ([]NamePair, error) {
	var pairs []NamePair
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("name", "sku").
		Where("is_active").
		Order("name").
		Limit(limit).
		Find(&pairs).Error
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// FindExact returns the product whose name or SKU equals value,
// case-insensitive.
func (r *GormRepository) FindExact(ctx context.Context, value string) (*models.Product, error) {
	var product models.Product
	err := r.withAssociations(ctx).
		Where("is_active").
		Where("lower(name) = lower(?) OR lower(sku) = lower(?)", value, value).
		Order("name").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListCategoryNames returns all category names in name order.
func (r *GormRepository) ListCategoryNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// FirstInCategory returns the first product (by name) in the named category.
func (r *GormRepository) FirstInCategory(ctx context.Context, categoryName string) (*models.Product, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("lower(name) = lower(?)", categoryName).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var product models.Product
	err = r.withAssociations(ctx).
		Where("is_active").
		Where("category_id = ?", category.ID).
		Order("name").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ItemSales sums the quantity sold for a product since the given time.
func (r *GormRepository) ItemSales(ctx context.Context, productID uuid.UUID, since time.Time) (int64, error) {
	var total *int64
	err := r.db.WithContext(ctx).
		Model(&models.SalesRecord{}).
		Select("SUM(quantity)").
		Where("product_id = ? AND sold_at >= ?", productID, since).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// CategoryStats aggregates stock, demand rate and low-stock count for
// one category. The sales rate is the mean units per sale across the
// category's sales records since the given time.
func (r *GormRepository) CategoryStats(ctx context.Context, categoryID uuid.UUID, lowStockThreshold int, since time.Time) (*CategoryStats, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
		return nil, err
	}

	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN inventories ON inventories.product_id = products.id").
		Where("products.is_active AND products.category_id = ?", categoryID)

	var row struct {
		TotalStock *int64
		ItemCount  int64
	}
	err := base.Session(&gorm.Session{}).
		Select("SUM(inventories.stock_quantity) AS total_stock, COUNT(products.id) AS item_count").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	avgSales, err := r.windowedAvgSales(ctx, &categoryID, since)
	if err != nil {
		return nil, err
	}

	var lowStock int64
	err = base.Session(&gorm.Session{}).
		Where("inventories.stock_quantity < ?", lowStockThreshold).
		Count(&lowStock).Error
	if err != nil {
		return nil, err
	}

	stats := &CategoryStats{
		Name:          category.Name,
		AvgDailySales: avgSales,
		LowStockCount: lowStock,
		ItemCount:     row.ItemCount,
	}
	if row.TotalStock != nil {
		stats.TotalStock = *row.TotalStock
	}
	return stats, nil
}

// windowedAvgSales computes the mean units per sales record since the
// given time, optionally scoped to one category.
func (r *GormRepository) windowedAvgSales(ctx context.Context, categoryID *uuid.UUID, since time.Time) (float64, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.SalesRecord{}).
		Select("AVG(sales_records.quantity)").
		Joins("JOIN products ON products.id = sales_records.product_id").
		Where("products.is_active AND sales_records.sold_at >= ?", since)
	if categoryID != nil {
		tx = tx.Where("products.category_id = ?", *categoryID)
	}

	var avg *float64
	if err := tx.Scan(&avg).Error; err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// OverviewStats aggregates stock health across the whole catalog. The
// sales rate is the mean units per sale across all sales records since
// the given time. The low-stock count includes out-of-stock rows.
func (r *GormRepository) OverviewStats(ctx context.Context, lowStockThreshold, topCategories int, since time.Time) (*OverviewStats, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN inventories ON inventories.product_id = products.id").
		Where("products.is_active")

	var row struct {
		TotalStock    *int64
		TotalProducts int64
	}
	err := base.Session(&gorm.Session{}).
		Select("SUM(inventories.stock_quantity) AS total_stock, COUNT(products.id) AS total_products").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	avgSales, err := r.windowedAvgSales(ctx, nil, since)
	if err != nil {
		return nil, err
	}

	var lowStock int64
	err = base.Session(&gorm.Session{}).
		Where("inventories.stock_quantity < ?", lowStockThreshold).
		Count(&lowStock).Error
	if err != nil {
		return nil, err
	}

	var outOfStock int64
	err = base.Session(&gorm.Session{}).
		Where("inventories.stock_quantity = 0").
		Count(&outOfStock).Error
	if err != nil {
		return nil, err
	}

	var top []CategoryStock
	err = r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.name AS name, COALESCE(SUM(inventories.stock_quantity), 0) AS stock").
		Joins("JOIN products ON products.category_id = categories.id AND products.is_active").
		Joins("JOIN inventories ON inventories.product_id = products.id").
		Group("categories.name").
		Order("stock DESC, categories.name").
		Limit(topCategories).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}

	stats := &OverviewStats{
		TotalProducts:   row.TotalProducts,
		AvgDailySales:   avgSales,
		LowStockCount:   lowStock,
		OutOfStockCount: outOfStock,
		TopCategories:   top,
	}
	if row.TotalStock != nil {
		stats.TotalStock = *row.TotalStock
	}
	return stats, nil
}

func (r *GormRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Supplier").
		Preload("Inventory")
}
