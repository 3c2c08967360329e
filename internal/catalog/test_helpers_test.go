package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := []string{
		`CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  contact_email TEXT,
  lead_time_days INTEGER NOT NULL DEFAULT 7,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  category_id TEXT NOT NULL,
  supplier_id TEXT,
  tags TEXT,
  price_cents INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE inventories (
  product_id TEXT PRIMARY KEY,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  average_daily_sales NUMERIC NOT NULL DEFAULT 0,
  reorder_level INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`,
		`CREATE TABLE sales_records (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  sold_at DATETIME NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func mustCreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func mustCreateSupplier(t *testing.T, db *gorm.DB, name string) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{ID: uuid.New(), Name: name, LeadTimeDays: 5}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return supplier
}

type productSpec struct {
	name     string
	sku      string
	category *models.Category
	supplier *models.Supplier
	stock    int
	avgSales float64
	inactive bool
}

func mustCreateProduct(t *testing.T, db *gorm.DB, spec productSpec) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:         uuid.New(),
		SKU:        spec.sku,
		Name:       spec.name,
		CategoryID: spec.category.ID,
		Tags:       pq.StringArray{},
		IsActive:   !spec.inactive,
	}
	if spec.supplier != nil {
		product.SupplierID = &spec.supplier.ID
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product %q: %v", spec.name, err)
	}
	if spec.inactive {
		// GORM omits zero-valued fields with a default tag on insert, so
		// is_active=false must be persisted explicitly.
		if err := db.Model(product).Update("is_active", false).Error; err != nil {
			t.Fatalf("mark product %q inactive: %v", spec.name, err)
		}
	}

	inventory := &models.Inventory{
		ProductID:         product.ID,
		StockQuantity:     spec.stock,
		AverageDailySales: decimal.NewFromFloat(spec.avgSales),
	}
	if err := db.Create(inventory).Error; err != nil {
		t.Fatalf("create inventory for %q: %v", spec.name, err)
	}
	return product
}

func mustCreateSale(t *testing.T, db *gorm.DB, productID uuid.UUID, quantity int, soldAt time.Time) {
	t.Helper()
	record := &models.SalesRecord{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  quantity,
		SoldAt:    soldAt,
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("create sales record: %v", err)
	}
}
