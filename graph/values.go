package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// ToJSON converts driver values into types encoding/json can render.
// Graph entities become maps, temporal values become ISO 8601 strings.
func ToJSON(v any) any {
	switch val := v.(type) {
	case dbtype.Node:
		return nodeJSON(val)
	case dbtype.Relationship:
		return relationshipJSON(val)
	case dbtype.Path:
		nodes := make([]any, len(val.Nodes))
		for i, n := range val.Nodes {
			nodes[i] = nodeJSON(n)
		}
		rels := make([]any, len(val.Relationships))
		for i, r := range val.Relationships {
			rels[i] = relationshipJSON(r)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case dbtype.Point2D:
		return map[string]any{"srid": val.SpatialRefId, "x": val.X, "y": val.Y}
	case dbtype.Point3D:
		return map[string]any{"srid": val.SpatialRefId, "x": val.X, "y": val.Y, "z": val.Z}
	case dbtype.Date:
		return val.Time().Format("2006-01-02")
	case dbtype.LocalTime:
		return val.Time().Format("15:04:05.999999999")
	case dbtype.LocalDateTime:
		return val.Time().Format("2006-01-02T15:04:05.999999999")
	case dbtype.Time:
		return val.Time().Format("15:04:05.999999999Z07:00")
	case dbtype.Duration:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToJSON(item)
		}
		return out
	case map[string]any:
		return propsJSON(val)
	default:
		return v
	}
}

func nodeJSON(n dbtype.Node) map[string]any {
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return map[string]any{
		"element_id": n.ElementId,
		"labels":     labels,
		"properties": propsJSON(n.Props),
	}
}

func relationshipJSON(r dbtype.Relationship) map[string]any {
	return map[string]any{
		"element_id":       r.ElementId,
		"type":             r.Type,
		"start_element_id": r.StartElementId,
		"end_element_id":   r.EndElementId,
		"properties":       propsJSON(r.Props),
	}
}

func propsJSON(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = ToJSON(v)
	}
	return out
}

// ParseParams decodes the optional JSON parameter argument. Empty or falsy
// values such as [], false, 0 and "" mean no parameters. Integral numbers
// become int64 so they are usable where Cypher expects an integer.
func ParseParams(raw string) (map[string]any, error) {
	raw = string(bytes.TrimSpace([]byte(raw)))
	if raw == "" || raw == "null" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON parameters: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON parameters: trailing data")
	}

	if isEmptyValue(decoded) {
		return map[string]any{}, nil
	}

	params, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parameters must be a JSON object, got %T", decoded)
	}
	return normalizeNumbers(params).(map[string]any), nil
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case string:
		return val == ""
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	case []any:
		return len(val) == 0
	}
	return false
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case []any:
		for i, item := range val {
			val[i] = normalizeNumbers(item)
		}
		return val
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeNumbers(item)
		}
		return val
	default:
		return v
	}
}
