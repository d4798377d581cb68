package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jerry-desk/bridgecli/cluster"
	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/memorydb"
	"github.com/jerry-desk/bridgecli/types"
)

// ClusterRequest represents the parameters for the memory clusterer
type ClusterRequest struct {
	Input  []byte `json:"-"`                 // raw JSON array, used when DSN is empty
	DSN    string `json:"dsn,omitempty"`     // read memories from this database instead
	FromDB bool   `json:"from_db,omitempty"` // use the configured memory database
	Limit  int    `json:"limit,omitempty"`   // rows to load from DSN
}

// ApplyClusterDefaults fills the row limit and, when FromDB is set without
// an explicit DSN, the configured memory database.
func ApplyClusterDefaults(req *ClusterRequest, cfg config.MemoryConfig) {
	if req.Limit <= 0 {
		req.Limit = cfg.Limit
	}
	if req.FromDB && req.DSN == "" {
		req.DSN = cfg.DSN
	}
}

type clusterOutcome struct {
	output []byte
	err    error
}

// ClusterCommand returns the JSON array to print. A non-nil error means the
// layout failed; the caller applies the failure policy.
func ClusterCommand(ctx context.Context, req ClusterRequest) ([]byte, error) {
	outcome := Guard(func() clusterOutcome {
		out, err := clusterLayout(ctx, req)
		return clusterOutcome{output: out, err: err}
	}, func(err error) clusterOutcome {
		return clusterOutcome{err: err}
	})
	return outcome.output, outcome.err
}

func clusterLayout(ctx context.Context, req ClusterRequest) ([]byte, error) {
	if req.FromDB && req.DSN == "" {
		return nil, errors.New("no memory database configured (set MEMORY_DSN or pass --dsn)")
	}

	if req.DSN != "" {
		memories, err := loadMemories(ctx, req.DSN, req.Limit)
		if err != nil {
			return nil, err
		}
		if len(memories) < cluster.MinRecords {
			return json.Marshal(memories)
		}
		return layoutMemories(memories)
	}

	items, err := cluster.DecodeArray(req.Input)
	if err != nil {
		return nil, err
	}
	if len(items) < cluster.MinRecords {
		// too few points for a projection, echo the input back
		return json.Marshal(items)
	}

	memories, err := cluster.DecodeMemories(items)
	if err != nil {
		return nil, err
	}
	return layoutMemories(memories)
}

func loadMemories(ctx context.Context, dsn string, limit int) ([]types.Memory, error) {
	db, err := memorydb.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return memorydb.Load(ctx, db, limit)
}

func layoutMemories(memories []types.Memory) ([]byte, error) {
	points, err := cluster.Points(memories)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("failed to encode points: %w", err)
	}
	return out, nil
}
