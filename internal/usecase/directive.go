package usecase

import (
	"encoding/json"
	"regexp"

	"autoservice-agent/internal/domain"
)

// directivePattern scans for a brace-delimited object carrying a "function"
// key anywhere inside the response text. The model is not contract-bound to
// emit pure JSON, so this stays a permissive scan rather than a strict
// document parse; tightening it breaks responses that mix prose with JSON.
var directivePattern = regexp.MustCompile(`(?s)\{.*"function":.*\}`)

// ParseDirective extracts a single backend directive from a fully-accumulated
// model response. It returns nil for plain conversational text and for
// near-matches that fail to decode as well-formed JSON. Only the first match
// is considered. Pure function: no side effects, no I/O.
func ParseDirective(text string) *domain.Directive {
	match := directivePattern.FindString(text)
	if match == "" {
		return nil
	}

	var d domain.Directive
	if err := json.Unmarshal([]byte(match), &d); err != nil {
		return nil
	}
	return &d
}
