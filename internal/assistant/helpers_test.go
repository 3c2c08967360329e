package assistant

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/stockwise-ai/stockwise-backend/internal/catalog"
	"github.com/stockwise-ai/stockwise-backend/internal/trends"
	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
	"github.com/stockwise-ai/stockwise-backend/pkg/logger"
	"github.com/stockwise-ai/stockwise-backend/pkg/metrics"
)

func testAssistantConfig() config.AssistantConfig {
	return config.AssistantConfig{
		MaxQueryLen:       500,
		SalesWindowDays:   30,
		TrendWindowDays:   30,
		LowStockThreshold: 10,
		FuzzyCutoff:       0.3,
		CategoryCutoff:    0.4,
		MaxFuzzyRows:      100,
		TopCategories:     5,
		TrendCacheTTL:     time.Hour,
	}
}

func testProduct(name, sku string, stock int, avgSales float64) *models.Product {
	catID := uuid.New()
	return &models.Product{
		ID:         uuid.New(),
		SKU:        sku,
		Name:       name,
		CategoryID: catID,
		Category:   &models.Category{ID: catID, Name: "General"},
		IsActive:   true,
		Inventory: &models.Inventory{
			StockQuantity:     stock,
			AverageDailySales: decimal.NewFromFloat(avgSales),
		},
	}
}

// fakeCatalog is an in-memory catalog.Repository. Each tier reads the
// same product slice; ranked search is stubbed separately since it
// needs full-text support.
type fakeCatalog struct {
	products      []*models.Product
	ranked        *models.Product
	categoryStats map[uuid.UUID]*catalog.CategoryStats
	overview      *catalog.OverviewStats
	sales         map[uuid.UUID]int64
	err           error
}

func (f *fakeCatalog) SearchBySubstring(_ context.Context, query string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	q := strings.ToLower(query)
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) SearchRanked(context.Context, string, float64) (*models.Product, error) {
	return f.ranked, f.err
}

func (f *fakeCatalog) ListNamePairs(_ context.Context, limit int) ([]catalog.NamePair, error) {
	pairs := make([]catalog.NamePair, 0, len(f.products))
	for _, p := range f.products {
		if len(pairs) == limit {
			break
		}
		pairs = append(pairs, catalog.NamePair{Name: p.Name, SKU: p.SKU})
	}
	return pairs, nil
}

func (f *fakeCatalog) FindExact(_ context.Context, value string) (*models.Product, error) {
	for _, p := range f.products {
		if strings.EqualFold(p.Name, value) || strings.EqualFold(p.SKU, value) {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ListCategoryNames(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	for _, p := range f.products {
		if p.Category != nil && !seen[p.Category.Name] {
			seen[p.Category.Name] = true
			names = append(names, p.Category.Name)
		}
	}
	return names, nil
}

func (f *fakeCatalog) FirstInCategory(_ context.Context, categoryName string) (*models.Product, error) {
	for _, p := range f.products {
		if p.Category != nil && strings.EqualFold(p.Category.Name, categoryName) {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ItemSales(_ context.Context, productID uuid.UUID, _ time.Time) (int64, error) {
	return f.sales[productID], nil
}

func (f *fakeCatalog) CategoryStats(_ context.Context, categoryID uuid.UUID, _ int, _ time.Time) (*catalog.CategoryStats, error) {
	return f.categoryStats[categoryID], nil
}

func (f *fakeCatalog) OverviewStats(context.Context, int, int, time.Time) (*catalog.OverviewStats, error) {
	if f.overview != nil {
		return f.overview, nil
	}
	return &catalog.OverviewStats{}, nil
}

type fakeTrendRepo struct {
	records []models.Trend
	err     error
}

func (f *fakeTrendRepo) ListTopBySeason(context.Context, string, time.Time, int) ([]models.Trend, error) {
	return f.records, f.err
}

// fakeModel scripts Generate responses.
type fakeModel struct {
	output string
	err    error
	calls  int
	prompt string
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.output, f.err
}

func newTestAggregator(repo catalog.Repository, trendRepo trends.Repository) *Aggregator {
	cfg := testAssistantConfig()
	provider := trends.NewProvider(trendRepo, trends.NewMemoryCache(cfg.TrendCacheTTL), cfg.TrendWindowDays)
	return NewAggregator(repo, provider, cfg)
}

func newTestService(repo catalog.Repository, trendRepo trends.Repository, model Generator) *Service {
	cfg := testAssistantConfig()
	return NewService(
		NewResolver(repo, cfg),
		newTestAggregator(repo, trendRepo),
		model,
		metrics.NewPipelineMetrics(prometheus.NewRegistry()),
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	)
}
