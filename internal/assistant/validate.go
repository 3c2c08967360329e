package assistant

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrEmptyOutput means the model returned nothing usable.
	ErrEmptyOutput = errors.New("empty model output")
	// ErrNoCandidate means no parseable JSON object was found.
	ErrNoCandidate = errors.New("no JSON object in model output")
	// ErrNoValidAnswer means candidates parsed but none survived the
	// leak scan and schema checks.
	ErrNoValidAnswer = errors.New("no candidate passed validation")
)

// leakMarkers are conversational fragments that must never appear
// inside a structured answer. Matched case-insensitively against
// every string value in a candidate.
var leakMarkers = []string{
	"i'm sorry",
	"i am sorry",
	"i apologize",
	"i cannot",
	"as an ai",
	"as a language model",
	"here is",
	"here's",
	"assistant:",
}

// leakScanDepth bounds the recursive walk over candidate values so
// adversarial nesting cannot stall the pipeline.
const leakScanDepth = 10

// ValidateModelOutput extracts a structured answer from raw model
// text. Extraction tries balanced-brace spans (last span first), then
// brace counting from the first opening brace, then the naive
// first-to-last substring. Each parsed candidate is rejected if any
// string value carries a conversational leak or if its schema's
// required fields are absent; surviving candidates get null numeric
// fields overwritten from Facts.
func ValidateModelOutput(raw string, facts *Facts) (map[string]any, error) {
	text := cleanupModelOutput(raw)
	if text == "" {
		return nil, ErrEmptyOutput
	}

	candidates := extractCandidates(text)
	if len(candidates) == 0 {
		return nil, ErrNoCandidate
	}

	for _, candidate := range candidates {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		if containsLeak(parsed, 0) {
			continue
		}
		schema, ok := discriminateSchema(parsed)
		if !ok {
			continue
		}
		mergeSafeguards(parsed, schema, facts)
		return parsed, nil
	}
	return nil, ErrNoValidAnswer
}

// boilerplatePrefixes are conversational openers the model tends to
// emit before the JSON. Stripped repeatedly from the front of the
// text, case-insensitively.
var boilerplatePrefixes = []string{
	"sure!",
	"sure,",
	"certainly!",
	"of course!",
	"here is the json:",
	"here's the json:",
	"here is the answer:",
	"here's the answer:",
	"i'm sorry, but",
	"i apologize, but",
	"assistant:",
}

// cleanupModelOutput strips markdown fences, known conversational
// prefixes and surrounding whitespace. Remaining prose around the
// JSON is left for the extractor.
func cleanupModelOutput(raw string) string {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	raw = strings.TrimSpace(raw)

	for stripped := true; stripped; {
		stripped = false
		lower := strings.ToLower(raw)
		for _, prefix := range boilerplatePrefixes {
			if strings.HasPrefix(lower, prefix) {
				raw = strings.TrimSpace(raw[len(prefix):])
				stripped = true
				break
			}
		}
	}
	return raw
}

// extractCandidates returns JSON object candidates in the order they
// should be tried. Balanced spans come back last-first since the last
// object the model emits is usually the most complete.
func extractCandidates(text string) []string {
	spans := balancedSpans(text)
	candidates := make([]string, 0, len(spans)+2)
	for i := len(spans) - 1; i >= 0; i-- {
		candidates = append(candidates, spans[i])
	}

	if span := braceCountSpan(text); span != "" {
		candidates = append(candidates, span)
	}

	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start != -1 && end > start {
		candidates = append(candidates, text[start:end+1])
	}
	return candidates
}

// balancedSpans scans left to right tracking brace depth and string
// literals, collecting every top-level {...} span whose braces
// balance. Braces inside JSON strings do not count.
func balancedSpans(text string) []string {
	var spans []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				spans = append(spans, text[start:i+1])
				start = -1
			}
		}
	}
	return spans
}

// braceCountSpan takes the substring from the first opening brace to
// the point where depth first returns to zero, ignoring string
// literals entirely. Cruder than balancedSpans but tolerant of
// unterminated strings earlier in the text.
func braceCountSpan(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// containsLeak walks the candidate recursively looking for
// conversational fragments inside string values. The walk is
// depth-bounded; anything nested deeper is treated as a leak since
// well-formed answers are shallow.
func containsLeak(value any, depth int) bool {
	if depth > leakScanDepth {
		return true
	}
	switch v := value.(type) {
	case string:
		lower := strings.ToLower(v)
		for _, marker := range leakMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	case map[string]any:
		for _, nested := range v {
			if containsLeak(nested, depth+1) {
				return true
			}
		}
	case []any:
		for _, nested := range v {
			if containsLeak(nested, depth+1) {
				return true
			}
		}
	}
	return false
}

type answerSchema int

const (
	schemaKindItem answerSchema = iota
	schemaKindCategory
	schemaKindTrend
	schemaKindOverview
)

// discriminateSchema decides which answer schema a candidate claims
// and verifies its required fields are present.
func discriminateSchema(parsed map[string]any) (answerSchema, bool) {
	if trendsVal, ok := parsed["predicted_trends"]; ok {
		entries, ok := trendsVal.([]any)
		if !ok {
			return 0, false
		}
		for _, entry := range entries {
			m, ok := entry.(map[string]any)
			if !ok {
				return 0, false
			}
			if _, ok := m["keyword"]; !ok {
				return 0, false
			}
			if _, ok := m["hot_score"]; !ok {
				return 0, false
			}
		}
		return schemaKindTrend, true
	}

	if qt, ok := parsed["query_type"].(string); ok && qt == overviewQueryType {
		required := []string{"total_stock", "total_products", "average_daily_sales", "low_stock_items", "restock_needed"}
		return schemaKindOverview, hasKeys(parsed, required)
	}

	if _, ok := parsed["category"]; ok {
		required := []string{"total_stock", "average_daily_sales", "restock_needed", "recommendation", "low_stock_items"}
		return schemaKindCategory, hasKeys(parsed, required)
	}

	if _, ok := parsed["item"]; ok {
		required := []string{"current_stock", "average_daily_sales", "restock_needed", "recommendation"}
		return schemaKindItem, hasKeys(parsed, required)
	}

	return 0, false
}

func hasKeys(parsed map[string]any, keys []string) bool {
	for _, key := range keys {
		if _, ok := parsed[key]; !ok {
			return false
		}
	}
	return true
}

// mergeSafeguards overwrites null or missing numeric fields with the
// authoritative values from Facts. A model must never invent a number
// to stand in for one it dropped.
func mergeSafeguards(parsed map[string]any, schema answerSchema, facts *Facts) {
	switch schema {
	case schemaKindItem:
		var item ItemFacts
		if facts != nil && facts.Item != nil {
			item = *facts.Item
		}
		fillNumber(parsed, "current_stock", float64(item.CurrentStock))
		fillNumber(parsed, "average_daily_sales", item.AverageDailySales)
	case schemaKindCategory:
		var cat CategoryFacts
		if facts != nil && facts.Category != nil {
			cat = *facts.Category
		}
		fillNumber(parsed, "total_stock", float64(cat.TotalStock))
		fillNumber(parsed, "average_daily_sales", cat.AverageDailySales)
		fillNumber(parsed, "low_stock_items", float64(cat.LowStockItems))
	case schemaKindOverview:
		var overview OverviewFacts
		if facts != nil && facts.Overview != nil {
			overview = *facts.Overview
		}
		fillNumber(parsed, "total_stock", float64(overview.TotalStock))
		fillNumber(parsed, "total_products", float64(overview.TotalProducts))
		fillNumber(parsed, "average_daily_sales", overview.AverageDailySales)
		fillNumber(parsed, "low_stock_items", float64(overview.LowStockItems))
		fillNumber(parsed, "out_of_stock_items", float64(overview.OutOfStockItems))
	}
}

func fillNumber(parsed map[string]any, key string, authoritative float64) {
	value, ok := parsed[key]
	if !ok || value == nil {
		parsed[key] = authoritative
		return
	}
	if _, isNumber := value.(float64); !isNumber {
		parsed[key] = authoritative
	}
}
