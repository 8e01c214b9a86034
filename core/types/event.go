package types

// Event represents a typed event emitted during route execution and
// governance transitions.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
