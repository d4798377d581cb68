package graph

import (
	"context"
	"fmt"

	"github.com/jerry-desk/bridgecli/types"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Connect adapts the official Neo4j Go driver to Driver. No network I/O
// happens until the first query runs.
func Connect(settings Settings) (Driver, error) {
	driver, err := neo4j.NewDriverWithContext(settings.URI, neo4j.BasicAuth(settings.User, settings.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return &driverWrapper{driver: driver}, nil
}

type driverWrapper struct {
	driver neo4j.DriverWithContext
}

func (d *driverWrapper) NewSession(ctx context.Context, database string) Session {
	return &sessionWrapper{session: d.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: database})}
}

func (d *driverWrapper) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

type sessionWrapper struct {
	session neo4j.SessionWithContext
}

func (s *sessionWrapper) Run(ctx context.Context, query string, params map[string]any) (Result, error) {
	res, err := s.session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return &resultWrapper{result: res}, nil
}

func (s *sessionWrapper) Close(ctx context.Context) error {
	return s.session.Close(ctx)
}

type resultWrapper struct {
	result neo4j.ResultWithContext
}

func (r *resultWrapper) Next(ctx context.Context) bool {
	return r.result.Next(ctx)
}

func (r *resultWrapper) Record() *Record {
	rec := r.result.Record()
	if rec == nil {
		return nil
	}
	return &Record{Keys: rec.Keys, Values: rec.Values}
}

func (r *resultWrapper) Err() error {
	return r.result.Err()
}

func (r *resultWrapper) Consume(ctx context.Context) (types.Counters, error) {
	summary, err := r.result.Consume(ctx)
	if err != nil {
		return types.Counters{}, err
	}
	if summary == nil || summary.Counters() == nil {
		return types.Counters{}, nil
	}

	counters := summary.Counters()
	return types.Counters{
		NodesCreated:         counters.NodesCreated(),
		RelationshipsCreated: counters.RelationshipsCreated(),
		PropertiesSet:        counters.PropertiesSet(),
	}, nil
}
