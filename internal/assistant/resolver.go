package assistant

import (
	"context"
	"strings"

	"github.com/stockwise-ai/stockwise-backend/internal/catalog"
	"github.com/stockwise-ai/stockwise-backend/pkg/config"
	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
	"github.com/stockwise-ai/stockwise-backend/pkg/strutil"
)

// Resolver finds the catalog product a free-form query is talking
// about. Four tiers, each tried only when the previous one comes up
// empty: substring match, ranked full-text search, approximate string
// similarity over a bounded sample, and finally a fuzzy match against
// category names. Resolution is read-only and deterministic for a
// fixed catalog snapshot.
type Resolver struct {
	repo           catalog.Repository
	fuzzyCutoff    float64
	categoryCutoff float64
	maxFuzzyRows   int
}

func NewResolver(repo catalog.Repository, cfg config.AssistantConfig) *Resolver {
	return &Resolver{
		repo:           repo,
		fuzzyCutoff:    cfg.FuzzyCutoff,
		categoryCutoff: cfg.CategoryCutoff,
		maxFuzzyRows:   cfg.MaxFuzzyRows,
	}
}

// Resolve returns the best-matching product, or nil when nothing in
// the catalog plausibly matches.
func (r *Resolver) Resolve(ctx context.Context, query string) (*models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	product, err := r.repo.SearchBySubstring(ctx, query)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return product, nil
	}

	product, err = r.repo.SearchRanked(ctx, query, r.fuzzyCutoff)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return product, nil
	}

	product, err = r.resolveBySimilarity(ctx, query)
	if err != nil {
		return nil, err
	}
	if product != nil {
		return product, nil
	}

	return r.resolveByCategory(ctx, query)
}

// resolveBySimilarity compares the query against a bounded sample of
// (name, sku) pairs and re-queries the catalog for an exact match on
// the accepted string.
func (r *Resolver) resolveBySimilarity(ctx context.Context, query string) (*models.Product, error) {
	pairs, err := r.repo.ListNamePairs(ctx, r.maxFuzzyRows)
	if err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(pairs)*2)
	for _, pair := range pairs {
		if pair.Name != "" {
			refs = append(refs, strings.ToLower(pair.Name))
		}
		if pair.SKU != "" {
			refs = append(refs, strings.ToLower(pair.SKU))
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}

	matches := strutil.CloseMatches(strings.ToLower(query), refs, 1, r.fuzzyCutoff)
	if len(matches) == 0 {
		return nil, nil
	}
	return r.repo.FindExact(ctx, matches[0].Value)
}

// resolveByCategory treats the query as a possible category name and
// returns any product in the best-matching category.
func (r *Resolver) resolveByCategory(ctx context.Context, query string) (*models.Product, error) {
	names, err := r.repo.ListCategoryNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(names))
	byLower := make(map[string]string, len(names))
	for i, name := range names {
		lowered[i] = strings.ToLower(name)
		byLower[lowered[i]] = name
	}

	matches := strutil.CloseMatches(strings.ToLower(query), lowered, 1, r.categoryCutoff)
	if len(matches) == 0 {
		return nil, nil
	}
	return r.repo.FirstInCategory(ctx, byLower[matches[0].Value])
}
