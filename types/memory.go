package types

import "encoding/json"

// Memory is one input record for the clusterer. Identity fields are kept as
// raw JSON so they round-trip with whatever type the host sent.
type Memory struct {
	ID        json.RawMessage `json:"id"`
	Content   json.RawMessage `json:"content"`
	CreatedAt json.RawMessage `json:"created_at"`
	Embedding []float64       `json:"embedding"`
}

// MemoryPoint is a memory projected onto the plane with its cluster label.
type MemoryPoint struct {
	ID        json.RawMessage `json:"id"`
	Content   json.RawMessage `json:"content"`
	CreatedAt json.RawMessage `json:"created_at"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Cluster   int             `json:"cluster"`
}
