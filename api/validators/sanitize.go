package validators

import (
	"html"
	"strings"

	pkgerrors "github.com/stockwise-ai/stockwise-backend/pkg/errors"
)

// SanitizeQuery prepares untrusted query text for the pipeline:
// trims, enforces the length cap, and escapes HTML so the text can be
// echoed back in answers safely. Over-length input is rejected rather
// than truncated so the caller learns about it.
func SanitizeQuery(input string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query too long").
			WithDetails(map[string]any{"max_length": maxLen})
	}
	return html.EscapeString(trimmed), nil
}
