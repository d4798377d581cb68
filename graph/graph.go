// Package graph runs a single Cypher query against Neo4j and materializes
// the result as JSON-friendly values.
package graph

import (
	"context"
	"fmt"

	"github.com/jerry-desk/bridgecli/types"
)

// Settings holds the connection parameters for one invocation.
type Settings struct {
	URI      string
	User     string
	Password string
	Database string
}

// Driver abstracts the Neo4j driver capabilities used here so tests can
// provide fakes without a running database.
type Driver interface {
	NewSession(ctx context.Context, database string) Session
	Close(ctx context.Context) error
}

type Session interface {
	Run(ctx context.Context, query string, params map[string]any) (Result, error)
	Close(ctx context.Context) error
}

type Result interface {
	Next(ctx context.Context) bool
	Record() *Record
	Err() error
	Consume(ctx context.Context) (types.Counters, error)
}

// Record is one result row with its column names in query order.
type Record struct {
	Keys   []string
	Values []any
}

// Connector creates a driver for the given settings.
type Connector func(settings Settings) (Driver, error)

// Query opens a fresh driver and session, runs cypher once and collects
// every record. The session and driver are closed on every path, including
// a panic unwinding through here.
func Query(ctx context.Context, connect Connector, settings Settings, cypher string, params map[string]any) types.GraphResult {
	driver, err := connect(settings)
	if err != nil {
		return failure(err)
	}
	closeCtx := context.WithoutCancel(ctx)
	defer driver.Close(closeCtx)

	session := driver.NewSession(ctx, settings.Database)
	defer session.Close(closeCtx)

	if params == nil {
		params = map[string]any{}
	}

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return failure(err)
	}

	records := []types.GraphRecord{}
	for result.Next(ctx) {
		rec := result.Record()
		if rec == nil {
			continue
		}
		row := types.GraphRecord{Keys: rec.Keys, Values: make([]any, len(rec.Keys))}
		for i := range rec.Keys {
			if i < len(rec.Values) {
				row.Values[i] = ToJSON(rec.Values[i])
			}
		}
		records = append(records, row)
	}
	if err := result.Err(); err != nil {
		return failure(err)
	}

	counters, err := result.Consume(ctx)
	if err != nil {
		return failure(fmt.Errorf("failed to consume result: %w", err))
	}

	return types.GraphResult{
		Success:  true,
		Records:  records,
		Counters: counters,
	}
}

func failure(err error) types.GraphResult {
	return types.GraphResult{Success: false, Error: err.Error()}
}
