package trends

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/stockwise-ai/stockwise-backend/pkg/db/models"
)

// SeasonGeneral is the catch-all season when the query names none.
const SeasonGeneral = "General"

const (
	recordCap         = 10
	keywordsPerRecord = 2
	entryCap          = 5
)

// Entry is one expanded trend keyword with its ranking signal.
type Entry struct {
	Keyword  string  `json:"keyword"`
	HotScore float64 `json:"hot_score"`
	Category string  `json:"category"`
}

// SeasonForQuery infers the trend season from query text.
func SeasonForQuery(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "christmas"):
		return "Christmas"
	case strings.Contains(q, "summer"):
		return "Summer"
	case strings.Contains(q, "winter"):
		return "Winter"
	default:
		return SeasonGeneral
	}
}

// Provider resolves the top trend entries for a season, consulting the
// cache first.
type Provider struct {
	repo       Repository
	cache      Cache
	windowDays int
	now        func() time.Time
}

// NewProvider wires a trend provider over the repository and cache.
func NewProvider(repo Repository, cache Cache, windowDays int) *Provider {
	return &Provider{
		repo:       repo,
		cache:      cache,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// EntriesForSeason returns up to five trend entries for the season,
// hottest first. Each stored record contributes at most two keywords;
// records are read hot-score descending, capped at ten, before the
// expanded entries are re-sorted and capped.
func (p *Provider) EntriesForSeason(ctx context.Context, season string) ([]Entry, error) {
	if cached, ok := p.cache.Get(ctx, season); ok {
		return cached, nil
	}

	since := p.now().AddDate(0, 0, -p.windowDays)
	records, err := p.repo.ListTopBySeason(ctx, season, since, recordCap)
	if err != nil {
		return nil, err
	}

	entries := expand(records)
	p.cache.Set(ctx, season, entries)
	return entries, nil
}

func expand(records []models.Trend) []Entry {
	entries := make([]Entry, 0, len(records)*keywordsPerRecord)
	for _, record := range records {
		category := "General"
		if record.Category != nil {
			category = record.Category.Name
		}

		count := 0
		for _, keyword := range strings.Split(record.Keywords, ",") {
			keyword = strings.TrimSpace(keyword)
			if keyword == "" {
				continue
			}
			entries = append(entries, Entry{
				Keyword:  keyword,
				HotScore: record.HotScore,
				Category: category,
			})
			count++
			if count == keywordsPerRecord {
				break
			}
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].HotScore > entries[j].HotScore
	})
	if len(entries) > entryCap {
		entries = entries[:entryCap]
	}
	return entries
}
