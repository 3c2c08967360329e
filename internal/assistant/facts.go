package assistant

import (
	"context"
	"math"
	"time"

	"github.com/stockwise-ai/stockwise-backend/internal/catalog"
	"github.com/stockwise-ai/stockwise-backend/internal/trends"
	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
)

// forecastFloor keeps the days-of-stock projection finite when the
// sales rate is zero.
const forecastFloor = 0.01

// Facts is the authoritative data computed from the catalog for one
// query. Exactly one of the per-intent fields is set. Facts feed the
// prompt and later repair null values in the model's answer.
type Facts struct {
	Intent Intent
	Found  bool

	Item     *ItemFacts
	Category *CategoryFacts
	Overview *OverviewFacts
	Trend    *TrendFacts
}

type ItemFacts struct {
	Name              string
	CurrentStock      int
	AverageDailySales float64

	// ForecastDays is days of stock remaining at the current sales
	// rate. Nil when both stock and sales are zero.
	ForecastDays *float64
	Supplier     *SupplierFacts
}

// SupplierFacts is the sourcing side-fact attached to item prompts.
type SupplierFacts struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type CategoryFacts struct {
	Name              string
	TotalStock        int64
	AverageDailySales float64
	LowStockItems     int64
	ProductCount      int64
}

type OverviewFacts struct {
	TotalStock        int64
	TotalProducts     int64
	AverageDailySales float64
	LowStockItems     int64
	OutOfStockItems   int64
	TopCategories     []catalog.CategoryStock
	RestockNeeded     bool
}

type TrendFacts struct {
	Season  string
	Entries []trends.Entry
}

// Aggregator computes Facts per intent from the catalog and trend
// stores. All reads are scoped to trailing windows from the injected
// clock.
type Aggregator struct {
	catalog catalog.Repository
	trends  *trends.Provider
	cfg     config.AssistantConfig
	now     func() time.Time
}

func NewAggregator(repo catalog.Repository, provider *trends.Provider, cfg config.AssistantConfig) *Aggregator {
	return &Aggregator{catalog: repo, trends: provider, cfg: cfg, now: time.Now}
}

// ItemFacts computes stock and demand facts for one product. The
// sales rate is derived from the trailing sales window; when the
// window has no sales the stored per-product rate is used instead.
func (a *Aggregator) ItemFacts(ctx context.Context, product *models.Product) (*Facts, error) {
	stock := 0
	storedRate := 0.0
	if product.Inventory != nil {
		stock = product.Inventory.StockQuantity
		storedRate = product.Inventory.AverageDailySales.InexactFloat64()
	}

	since := a.now().AddDate(0, 0, -a.cfg.SalesWindowDays)
	units, err := a.catalog.ItemSales(ctx, product.ID, since)
	if err != nil {
		return nil, err
	}
	avgSales := storedRate
	if units > 0 && a.cfg.SalesWindowDays > 0 {
		avgSales = round1(float64(units) / float64(a.cfg.SalesWindowDays))
	}

	item := &ItemFacts{
		Name:              product.Name,
		CurrentStock:      stock,
		AverageDailySales: avgSales,
	}
	if stock > 0 || avgSales > 0 {
		days := round1(float64(stock) / math.Max(avgSales, forecastFloor))
		item.ForecastDays = &days
	}
	if product.Supplier != nil {
		item.Supplier = &SupplierFacts{Name: product.Supplier.Name}
		if product.Supplier.ContactEmail != nil {
			item.Supplier.Email = *product.Supplier.ContactEmail
		}
	}

	return &Facts{Intent: IntentItem, Found: true, Item: item}, nil
}

// CategoryFacts aggregates stock and demand across the product's
// category.
func (a *Aggregator) CategoryFacts(ctx context.Context, product *models.Product) (*Facts, error) {
	since := a.now().AddDate(0, 0, -a.cfg.SalesWindowDays)
	stats, err := a.catalog.CategoryStats(ctx, product.CategoryID, a.cfg.LowStockThreshold, since)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return a.NotFound(product.Name), nil
	}
	return &Facts{
		Intent: IntentCategory,
		Found:  true,
		Category: &CategoryFacts{
			Name:              stats.Name,
			TotalStock:        stats.TotalStock,
			AverageDailySales: round1(stats.AvgDailySales),
			LowStockItems:     stats.LowStockCount,
			ProductCount:      stats.ItemCount,
		},
	}, nil
}

// OverviewFacts aggregates the whole catalog.
func (a *Aggregator) OverviewFacts(ctx context.Context) (*Facts, error) {
	since := a.now().AddDate(0, 0, -a.cfg.SalesWindowDays)
	stats, err := a.catalog.OverviewStats(ctx, a.cfg.LowStockThreshold, a.cfg.TopCategories, since)
	if err != nil {
		return nil, err
	}
	return &Facts{
		Intent: IntentOverview,
		Found:  true,
		Overview: &OverviewFacts{
			TotalStock:        stats.TotalStock,
			TotalProducts:     stats.TotalProducts,
			AverageDailySales: round1(stats.AvgDailySales),
			LowStockItems:     stats.LowStockCount,
			OutOfStockItems:   stats.OutOfStockCount,
			TopCategories:     stats.TopCategories,
			RestockNeeded:     stats.LowStockCount > 0 || stats.OutOfStockCount > 0,
		},
	}, nil
}

// TrendFacts pulls recent trend entries for the season inferred from
// the query. An empty entry list is still a valid trend fact set.
func (a *Aggregator) TrendFacts(ctx context.Context, query string) (*Facts, error) {
	season := trends.SeasonForQuery(query)
	entries, err := a.trends.EntriesForSeason(ctx, season)
	if err != nil {
		return nil, err
	}
	return &Facts{
		Intent: IntentTrend,
		Found:  true,
		Trend:  &TrendFacts{Season: season, Entries: entries},
	}, nil
}

// NotFound builds the facts for a query no catalog tier matched. The
// raw query stands in for the item name so the answer can echo it.
func (a *Aggregator) NotFound(query string) *Facts {
	return &Facts{
		Intent: IntentItem,
		Found:  false,
		Item:   &ItemFacts{Name: query},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
