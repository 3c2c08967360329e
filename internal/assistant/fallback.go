package assistant

import (
	"fmt"
	"strconv"
)

// Days of cover below which an item needs restocking.
const restockHorizonDays = 3

// Fallback produces a deterministic, schema-conformant answer without
// calling the model. Used when the model is unavailable, its output
// fails validation, or nothing in the catalog matched the query.
func Fallback(facts *Facts) any {
	switch facts.Intent {
	case IntentTrend:
		return trendFallback(facts.Trend)
	case IntentOverview:
		return BuildOverviewAnswer(facts.Overview)
	case IntentCategory:
		return categoryFallback(facts)
	default:
		return itemFallback(facts)
	}
}

func itemFallback(facts *Facts) ItemAnswer {
	var item ItemFacts
	if facts.Item != nil {
		item = *facts.Item
	}
	restock, rec := restockDecision(facts.Found, float64(item.CurrentStock), item.AverageDailySales, false)
	return ItemAnswer{
		Item:              item.Name,
		CurrentStock:      item.CurrentStock,
		AverageDailySales: item.AverageDailySales,
		RestockNeeded:     restock,
		Recommendation:    rec,
	}
}

func categoryFallback(facts *Facts) CategoryAnswer {
	var cat CategoryFacts
	if facts.Category != nil {
		cat = *facts.Category
	}
	restock, rec := restockDecision(facts.Found, float64(cat.TotalStock), cat.AverageDailySales, true)
	return CategoryAnswer{
		Category:          cat.Name,
		TotalStock:        cat.TotalStock,
		AverageDailySales: cat.AverageDailySales,
		RestockNeeded:     restock,
		Recommendation:    rec,
	}
}

// restockDecision applies the 3-day-cover rule with its edge cases:
// zero stock with no sales history is a new item that must be
// reordered, while positive stock with no sales history just needs
// monitoring.
func restockDecision(found bool, stock, avgSales float64, isCategory bool) (bool, string) {
	if !found {
		return false, "Item not found in inventory. Please verify the product name."
	}
	if stock == 0 && avgSales == 0 {
		return true, "New item out of stock—reorder immediately."
	}
	if avgSales == 0 {
		return false, "No sales history—monitor for demand."
	}
	if stock == 0 {
		if isCategory {
			return true, "All out of stock—reorder category items."
		}
		return true, "Out of stock—reorder ASAP."
	}
	if stock/avgSales < restockHorizonDays {
		if isCategory {
			return true, "Aggregate low stock—reorder from supplier."
		}
		return true, "Run out soon—reorder ASAP."
	}
	return false, "Stock sufficient."
}

func trendFallback(facts *TrendFacts) TrendAnswer {
	if facts == nil || len(facts.Entries) == 0 {
		return TrendAnswer{
			PredictedTrends:    []PredictedTrend{},
			RestockSuggestions: []string{"Monitor seasonal trends and adjust inventory accordingly"},
			OverallPrediction:  "No specific trend data available. Monitor market for emerging patterns.",
		}
	}

	predicted := make([]PredictedTrend, 0, len(facts.Entries))
	suggestions := make([]string, 0, 3)
	for _, entry := range facts.Entries {
		predicted = append(predicted, PredictedTrend{
			Keyword:    entry.Keyword,
			HotScore:   entry.HotScore,
			Suggestion: fmt.Sprintf("Stock items related to %s", entry.Keyword),
		})
		if len(suggestions) < 3 {
			suggestions = append(suggestions, fmt.Sprintf("Consider stocking %s", entry.Keyword))
		}
	}
	return TrendAnswer{
		PredictedTrends:    predicted,
		RestockSuggestions: suggestions,
		OverallPrediction:  "Trending items detected with high demand potential",
	}
}

// BuildOverviewAnswer synthesizes the whole-inventory answer directly
// from Facts. The model is never consulted for overview queries.
func BuildOverviewAnswer(facts *OverviewFacts) OverviewAnswer {
	var o OverviewFacts
	if facts != nil {
		o = *facts
	}

	summary := fmt.Sprintf("%d products with %s total units. ", o.TotalProducts, groupDigits(o.TotalStock))
	switch {
	case o.OutOfStockItems > 0:
		summary += fmt.Sprintf("%d items need restocking, %d are out of stock.", o.LowStockItems, o.OutOfStockItems)
	case o.LowStockItems > 0:
		summary += fmt.Sprintf("%d items need restocking.", o.LowStockItems)
	default:
		summary += "All items adequately stocked."
	}

	var recommendation string
	switch {
	case o.OutOfStockItems > 0:
		recommendation = fmt.Sprintf("%d items low, %d out of stock—urgent restocking required.", o.LowStockItems, o.OutOfStockItems)
	case o.LowStockItems > 0:
		recommendation = fmt.Sprintf("%d items running low—review and reorder soon.", o.LowStockItems)
	default:
		recommendation = "Inventory levels healthy—no immediate action needed."
	}

	top := make([]TopCategory, 0, len(o.TopCategories))
	for _, cat := range o.TopCategories {
		name := cat.Name
		if name == "" {
			name = "Uncategorized"
		}
		top = append(top, TopCategory{Category: name, Stock: cat.Stock})
	}

	return OverviewAnswer{
		QueryType:         overviewQueryType,
		TotalStock:        o.TotalStock,
		TotalProducts:     o.TotalProducts,
		AverageDailySales: o.AverageDailySales,
		LowStockItems:     o.LowStockItems,
		OutOfStockItems:   o.OutOfStockItems,
		TopCategories:     top,
		RestockNeeded:     o.RestockNeeded,
		Recommendation:    recommendation,
		Summary:           summary,
	}
}

// groupDigits renders n with thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
