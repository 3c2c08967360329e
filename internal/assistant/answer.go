package assistant

// Answer shapes returned to the client. Field names match the schemas
// the model is instructed to emit, so validated model output and
// deterministic fallbacks serialize identically.

type ItemAnswer struct {
	Item              string  `json:"item"`
	CurrentStock      int     `json:"current_stock"`
	AverageDailySales float64 `json:"average_daily_sales"`
	RestockNeeded     bool    `json:"restock_needed"`
	Recommendation    string  `json:"recommendation"`
}

type CategoryAnswer struct {
	Category          string  `json:"category"`
	TotalStock        int64   `json:"total_stock"`
	AverageDailySales float64 `json:"average_daily_sales"`
	RestockNeeded     bool    `json:"restock_needed"`
	Recommendation    string  `json:"recommendation"`
	LowStockItems     int64   `json:"low_stock_items"`
}

type PredictedTrend struct {
	Keyword    string  `json:"keyword"`
	HotScore   float64 `json:"hot_score"`
	Suggestion string  `json:"suggestion"`
}

type TrendAnswer struct {
	PredictedTrends    []PredictedTrend `json:"predicted_trends"`
	RestockSuggestions []string         `json:"restock_suggestions"`
	OverallPrediction  string           `json:"overall_prediction"`
}

type OverviewAnswer struct {
	QueryType         string                `json:"query_type"`
	TotalStock        int64                 `json:"total_stock"`
	TotalProducts     int64                 `json:"total_products"`
	AverageDailySales float64               `json:"average_daily_sales"`
	LowStockItems     int64                 `json:"low_stock_items"`
	OutOfStockItems   int64                 `json:"out_of_stock_items"`
	TopCategories     []TopCategory         `json:"top_categories,omitempty"`
	RestockNeeded     bool                  `json:"restock_needed"`
	Recommendation    string                `json:"recommendation"`
	Summary           string                `json:"summary"`
}

type TopCategory struct {
	Category string `json:"category"`
	Stock    int64  `json:"stock"`
}

const overviewQueryType = "general_inventory"
