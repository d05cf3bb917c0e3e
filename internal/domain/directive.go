package domain

// Directive is a structured action request embedded in otherwise free-text
// model output. It is constructed once per response and discarded after
// dispatch; it is never persisted.
type Directive struct {
	Function  string         `json:"function"`
	Arguments map[string]any `json:"arguments"`
}
