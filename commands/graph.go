package commands

import (
	"context"
	"errors"
	"time"

	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/graph"
	"github.com/jerry-desk/bridgecli/types"
	"github.com/jerry-desk/bridgecli/utils"
)

// ErrNoQuery is the fatal precondition of the neo4j bridge
var ErrNoQuery = errors.New("No query provided")

// GraphSettings maps the loaded configuration onto driver settings
func GraphSettings(cfg config.Neo4jConfig) graph.Settings {
	return graph.Settings{
		URI:      cfg.URI,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
	}
}

// GraphRequest represents the parameters for a Cypher query
type GraphRequest struct {
	Query    string         `json:"query"`
	Params   string         `json:"-"` // raw JSON object, empty means no parameters
	Settings graph.Settings `json:"-"`
	Timeout  time.Duration  `json:"-"`
}

// graphConnector is replaced in tests
var graphConnector graph.Connector = graph.Connect

// GraphCommand runs one query. A missing query is returned as a fatal
// ExitError; everything else is reported inside the result.
func GraphCommand(ctx context.Context, req GraphRequest) (types.GraphResult, error) {
	if req.Query == "" {
		return types.GraphResult{}, NewExitError(NewErrorBody(ErrNoQuery), ErrNoQuery)
	}

	log := utils.Log("neo4j").WithField("uri", req.Settings.URI)

	params, err := graph.ParseParams(req.Params)
	if err != nil {
		return types.GraphResult{Success: false, Error: err.Error()}, nil
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := time.Now()
	result := Guard(func() types.GraphResult {
		return graph.Query(ctx, graphConnector, req.Settings, req.Query, params)
	}, func(err error) types.GraphResult {
		log.Warnf("recovered from panic: %v", err)
		return types.GraphResult{Success: false, Error: err.Error()}
	})

	log.WithField("success", result.Success).Debugf("query finished in %s", time.Since(start))
	return result, nil
}
