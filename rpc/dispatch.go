package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jerry-desk/bridgecli/commands"
	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/desktop"
	"github.com/jerry-desk/bridgecli/utils"
)

// HandlerFunc is the signature for method handlers. The returned value is
// printed as-is; an *commands.ExitError makes the caller exit with status 1.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Request is the single document read from stdin
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ClusterParams represents the parameters for memory.cluster
type ClusterParams struct {
	Memories json.RawMessage `json:"memories,omitempty"`
	DSN      string          `json:"dsn,omitempty"`
	FromDB   bool            `json:"from_db,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Strict   bool            `json:"strict,omitempty"`
}

// GraphParams represents the parameters for graph.query
type GraphParams struct {
	Query  string          `json:"query"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Dispatcher routes one method call to the matching bridge
type Dispatcher struct {
	Config *config.Config

	// RequireDesktop is commands.RequireDesktop unless replaced in tests
	RequireDesktop func() (desktop.Controller, error)
}

func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		Config:         cfg,
		RequireDesktop: commands.RequireDesktop,
	}
}

// GetMethodRegistry returns a map of method names to handler functions
func (d *Dispatcher) GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"desktop.capture":  d.desktopHandler(commands.ActionCapture),
		"desktop.mouse":    d.desktopHandler(commands.ActionMouse),
		"desktop.keyboard": d.desktopHandler(commands.ActionKeyboard),
		"desktop.test":     d.desktopHandler(commands.ActionTest),
		"memory.cluster":   d.handleMemoryCluster,
		"graph.query":      d.handleGraphQuery,
	}
}

// Execute dispatches a method call using the registry
func (d *Dispatcher) Execute(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	registry := d.GetMethodRegistry()

	handler, exists := registry[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	utils.Log("rpc").WithField("method", method).Debug("dispatching")
	return handler(ctx, params)
}

// Handle decodes one request and returns the document to print. Only fatal
// preconditions are returned as errors; every other failure becomes a
// {success:false, error} document.
func (d *Dispatcher) Handle(ctx context.Context, input []byte) (interface{}, error) {
	var req Request
	if err := json.Unmarshal(input, &req); err != nil {
		return commands.NewErrorBody(fmt.Errorf("invalid request: %w", err)), nil
	}

	if req.Method == "" {
		return commands.NewErrorBody(errors.New("'method' is required")), nil
	}

	result, err := d.Execute(ctx, req.Method, req.Params)
	if err != nil {
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			return nil, err
		}
		return commands.NewErrorBody(err), nil
	}

	return result, nil
}

func (d *Dispatcher) desktopHandler(action string) HandlerFunc {
	return func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		ctrl, err := d.RequireDesktop()
		if err != nil {
			return nil, err
		}

		var req commands.DesktopRequest
		if len(params) > 0 {
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("invalid parameters: %v. Expected fields: subaction, x, y, text, key", err)
			}
		}

		req.Action = action
		commands.ApplyDesktopDefaults(&req, d.Config.Desktop)
		return commands.DesktopCommand(ctrl, req), nil
	}
}

func (d *Dispatcher) handleMemoryCluster(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p ClusterParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return clusterFailure(p.Strict, fmt.Errorf("invalid parameters: %w", err))
		}
	}

	req := commands.ClusterRequest{
		Input:  p.Memories,
		DSN:    p.DSN,
		FromDB: p.FromDB,
		Limit:  p.Limit,
	}
	commands.ApplyClusterDefaults(&req, d.Config.Memory)

	output, err := commands.ClusterCommand(ctx, req)
	if err != nil {
		return clusterFailure(p.Strict, err)
	}

	return json.RawMessage(output), nil
}

func clusterFailure(strict bool, err error) (interface{}, error) {
	utils.Log("cluster").Errorf("clustering failed: %v", err)
	if strict {
		return nil, commands.NewExitError(commands.NewErrorBody(err), err)
	}
	return json.RawMessage("[]"), nil
}

func (d *Dispatcher) handleGraphQuery(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p GraphParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid parameters: %v. Expected fields: query, params", err)
		}
	}

	req := commands.GraphRequest{
		Query:    p.Query,
		Params:   string(p.Params),
		Settings: commands.GraphSettings(d.Config.Neo4j),
		Timeout:  d.Config.Neo4j.Timeout,
	}

	result, err := commands.GraphCommand(ctx, req)
	if err != nil {
		return nil, err
	}
	return result, nil
}
