// Package assistant implements the inventory question-answering
// pipeline: classify the query, resolve catalog facts, prompt the
// model, and validate or replace its answer.
package assistant

import (
	"strings"

	"github.com/stockwise-ai/stockwise-backend/pkg/strutil"
)

// Intent is the resolved query type. Exactly one applies per query.
type Intent string

const (
	IntentOverview Intent = "overview"
	IntentTrend    Intent = "trend"
	IntentCategory Intent = "category"
	IntentItem     Intent = "item"
)

var overviewPhrases = []string{
	"total stock",
	"all stock",
	"overall stock",
	"stock in general",
	"entire inventory",
	"whole inventory",
	"all inventory",
}

var trendVerbs = []string{"predict", "trend", "forecast", "prediction"}

var seasonWords = []string{
	"season", "holiday", "christmas", "winter",
	"summer", "spring", "fall", "autumn",
}

// Phrases that pin a seasonal query back to a stock question, e.g.
// "Christmas stock for red sweaters".
var stockAskPhrases = []string{"stock for", "inventory for", "how much", "how many"}

var categoryKeywords = []string{"category", "all in", "total", "group"}

const categorySimilarityCutoff = 0.6

// Classify maps a sanitized query to its intent by strict precedence:
// overview beats trend beats category beats item. Item is the default
// and is confirmed or downgraded to not-found by the resolver.
func Classify(query string) Intent {
	q := strings.ToLower(query)

	if containsAny(q, overviewPhrases) {
		return IntentOverview
	}

	strongTrend := containsAny(q, trendVerbs)
	seasonal := containsAny(q, seasonWords)
	if strongTrend || (seasonal && !containsAny(q, stockAskPhrases)) {
		return IntentTrend
	}

	if containsAny(q, categoryKeywords) || categorySimilarity(q) > categorySimilarityCutoff {
		return IntentCategory
	}

	return IntentItem
}

func containsAny(query string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(query, phrase) {
			return true
		}
	}
	return false
}

func categorySimilarity(query string) float64 {
	best := 0.0
	for _, keyword := range categoryKeywords {
		if score := strutil.Ratio(query, keyword); score > best {
			best = score
		}
	}
	return best
}
