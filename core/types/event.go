package types

// Event represents a structured state change recorded by a committed
// operation. Attributes are flat string pairs so downstream consumers (RPC,
// indexers) can forward them without schema knowledge.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
