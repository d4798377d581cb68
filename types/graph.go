package types

import (
	"bytes"
	"encoding/json"
)

// Counters reports what a write query changed. Missing values stay zero.
type Counters struct {
	NodesCreated         int `json:"nodes_created"`
	RelationshipsCreated int `json:"relationships_created"`
	PropertiesSet        int `json:"properties_set"`
}

// GraphRecord is one result row. It encodes as a JSON object whose keys
// follow the RETURN clause order.
type GraphRecord struct {
	Keys   []string
	Values []any
}

// Map returns the row as an unordered map
func (r GraphRecord) Map() map[string]any {
	m := make(map[string]any, len(r.Keys))
	for i, key := range r.Keys {
		m[key] = r.value(i)
	}
	return m
}

func (r GraphRecord) value(i int) any {
	if i < len(r.Values) {
		return r.Values[i]
	}
	return nil
}

func (r GraphRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.value(i))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GraphResult is the single JSON document printed by the neo4j bridge.
type GraphResult struct {
	Success  bool
	Error    string
	Records  []GraphRecord
	Counters Counters
}

type graphSuccess struct {
	Success  bool             `json:"success"`
	Records  []GraphRecord `json:"records"`
	Counters Counters      `json:"counters"`
}

type graphFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON emits {success, records, counters} on success and
// {success, error} otherwise. records is always an array on success.
func (r GraphResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(graphFailure{Success: false, Error: r.Error})
	}

	records := r.Records
	if records == nil {
		records = []GraphRecord{}
	}
	return json.Marshal(graphSuccess{Success: true, Records: records, Counters: r.Counters})
}
