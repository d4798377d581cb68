// Package cluster lays out memory embeddings on a plane and groups them.
package cluster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jerry-desk/bridgecli/types"
	"gonum.org/v1/gonum/mat"
)

const (
	// Seed fixes k-means initialisation so repeated runs agree
	Seed = 42

	// MinRecords is the smallest input that is projected; smaller inputs
	// are echoed back unchanged
	MinRecords = 3

	maxClusters = 5
)

// ClusterCount returns min(5, n/2) for more than 5 records, else 1.
func ClusterCount(n int) int {
	if n > maxClusters {
		return min(maxClusters, n/2)
	}
	return 1
}

// DecodeArray splits a JSON array into its raw elements. Blank input
// decodes to an empty slice.
func DecodeArray(input []byte) ([]json.RawMessage, error) {
	input = bytes.TrimSpace(input)
	if len(input) == 0 {
		return []json.RawMessage{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(input, &items); err != nil {
		return nil, fmt.Errorf("invalid memory payload: %w", err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}

// memoryInput mirrors types.Memory with nullable embedding elements so a
// null inside the vector is rejected instead of decoding as 0.
type memoryInput struct {
	ID        json.RawMessage `json:"id"`
	Content   json.RawMessage `json:"content"`
	CreatedAt json.RawMessage `json:"created_at"`
	Embedding []*float64      `json:"embedding"`
}

// DecodeMemories parses raw records, requiring every field the layout needs.
func DecodeMemories(items []json.RawMessage) ([]types.Memory, error) {
	memories := make([]types.Memory, len(items))
	for i, item := range items {
		var in memoryInput
		if err := json.Unmarshal(item, &in); err != nil {
			return nil, fmt.Errorf("memory %d: %w", i, err)
		}
		m, err := in.memory()
		if err != nil {
			return nil, fmt.Errorf("memory %d: %w", i, err)
		}
		memories[i] = m
	}
	return memories, nil
}

func (in memoryInput) memory() (types.Memory, error) {
	switch {
	case len(in.ID) == 0:
		return types.Memory{}, errors.New("missing field 'id'")
	case len(in.Content) == 0:
		return types.Memory{}, errors.New("missing field 'content'")
	case len(in.CreatedAt) == 0:
		return types.Memory{}, errors.New("missing field 'created_at'")
	case in.Embedding == nil:
		return types.Memory{}, errors.New("missing field 'embedding'")
	}

	embedding := make([]float64, len(in.Embedding))
	for j, v := range in.Embedding {
		if v == nil {
			return types.Memory{}, fmt.Errorf("embedding element %d is null", j)
		}
		embedding[j] = *v
	}

	return types.Memory{
		ID:        in.ID,
		Content:   in.Content,
		CreatedAt: in.CreatedAt,
		Embedding: embedding,
	}, nil
}

// Points projects every memory to 2-D and assigns it a cluster label.
// Callers handle the fewer-than-MinRecords case themselves.
func Points(memories []types.Memory) ([]types.MemoryPoint, error) {
	n := len(memories)
	if n < MinRecords {
		return nil, fmt.Errorf("need at least %d memories, got %d", MinRecords, n)
	}

	d := len(memories[0].Embedding)
	data := make([]float64, 0, n*d)
	for i, m := range memories {
		if len(m.Embedding) != d {
			return nil, fmt.Errorf("inhomogeneous embeddings: memory %d has %d dimensions, expected %d", i, len(m.Embedding), d)
		}
		data = append(data, m.Embedding...)
	}
	if d == 0 {
		return nil, errors.New("embeddings are empty")
	}

	x := mat.NewDense(n, d, data)

	projected, err := Project(x)
	if err != nil {
		return nil, fmt.Errorf("projection failed: %w", err)
	}

	labels, err := KMeans(x, ClusterCount(n), Seed)
	if err != nil {
		return nil, fmt.Errorf("clustering failed: %w", err)
	}

	points := make([]types.MemoryPoint, n)
	for i, m := range memories {
		points[i] = types.MemoryPoint{
			ID:        m.ID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			X:         projected.At(i, 0),
			Y:         projected.At(i, 1),
			Cluster:   labels[i],
		}
	}
	return points, nil
}
