package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/graph"
	"github.com/jerry-desk/bridgecli/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDriver struct {
	session *stubSession
	closed  bool
}

func (d *stubDriver) NewSession(context.Context, string) graph.Session { return d.session }

func (d *stubDriver) Close(context.Context) error {
	d.closed = true
	return nil
}

type stubSession struct {
	params      map[string]any
	hasDeadline bool
	err         error
	panics      bool
	closed      bool
}

func (s *stubSession) Run(ctx context.Context, _ string, params map[string]any) (graph.Result, error) {
	s.params = params
	_, s.hasDeadline = ctx.Deadline()
	if s.panics {
		panic(errors.New("nil pointer in driver"))
	}
	if s.err != nil {
		return nil, s.err
	}
	return &stubResult{}, nil
}

func (s *stubSession) Close(context.Context) error {
	s.closed = true
	return nil
}

type stubResult struct{ done bool }

func (r *stubResult) Next(context.Context) bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}

func (r *stubResult) Record() *graph.Record {
	return &graph.Record{Keys: []string{"ok"}, Values: []any{true}}
}

func (r *stubResult) Err() error { return nil }

func (r *stubResult) Consume(context.Context) (types.Counters, error) {
	return types.Counters{PropertiesSet: 1}, nil
}

func useDriver(t *testing.T, d *stubDriver) {
	t.Helper()
	orig := graphConnector
	graphConnector = func(graph.Settings) (graph.Driver, error) { return d, nil }
	t.Cleanup(func() { graphConnector = orig })
}

func TestGraphCommand_NoQueryIsFatal(t *testing.T) {
	d := &stubDriver{session: &stubSession{}}
	useDriver(t, d)

	_, err := GraphCommand(context.Background(), GraphRequest{})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ErrorBody{Success: false, Error: "No query provided"}, exitErr.Payload)
	assert.False(t, d.closed, "no connection should be attempted")
}

func TestGraphCommand_Success(t *testing.T) {
	session := &stubSession{}
	d := &stubDriver{session: session}
	useDriver(t, d)

	res, err := GraphCommand(context.Background(), GraphRequest{Query: "MATCH (n) RETURN n LIMIT $n", Params: `{"n": 5}`})
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.Len(t, res.Records, 1)
	assert.Equal(t, map[string]any{"ok": true}, res.Records[0].Map())
	assert.Equal(t, 1, res.Counters.PropertiesSet)
	assert.Equal(t, map[string]any{"n": int64(5)}, session.params)
	assert.True(t, d.closed)
}

func TestGraphCommand_EmptyArrayParams(t *testing.T) {
	for _, raw := range []string{"[]", "null", ""} {
		session := &stubSession{}
		useDriver(t, &stubDriver{session: session})

		res, err := GraphCommand(context.Background(), GraphRequest{Query: "MATCH (n) RETURN count(n)", Params: raw})
		require.NoError(t, err)
		assert.True(t, res.Success, raw)
		assert.Equal(t, map[string]any{}, session.params, raw)
	}
}

func TestGraphCommand_TimeoutIsOptIn(t *testing.T) {
	session := &stubSession{}
	useDriver(t, &stubDriver{session: session})

	_, err := GraphCommand(context.Background(), GraphRequest{Query: "RETURN 1", Settings: GraphSettings(config.Default().Neo4j)})
	require.NoError(t, err)
	assert.False(t, session.hasDeadline)

	_, err = GraphCommand(context.Background(), GraphRequest{Query: "RETURN 1", Timeout: time.Minute})
	require.NoError(t, err)
	assert.True(t, session.hasDeadline)
}

func TestGraphSettings(t *testing.T) {
	s := GraphSettings(config.Neo4jConfig{URI: "bolt://db:7687", User: "u", Password: "p", Database: "jerry"})
	assert.Equal(t, graph.Settings{URI: "bolt://db:7687", User: "u", Password: "p", Database: "jerry"}, s)
}

func TestGraphCommand_BadParamsIsOperationFailure(t *testing.T) {
	d := &stubDriver{session: &stubSession{}}
	useDriver(t, d)

	res, err := GraphCommand(context.Background(), GraphRequest{Query: "RETURN 1", Params: `{"n":`})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "invalid JSON parameters")
}

func TestGraphCommand_QueryFailure(t *testing.T) {
	d := &stubDriver{session: &stubSession{err: errors.New("ConnectivityError: connection refused")}}
	useDriver(t, d)

	res, err := GraphCommand(context.Background(), GraphRequest{Query: "RETURN 1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "ConnectivityError: connection refused", res.Error)
	assert.True(t, d.closed)
}

func TestGraphCommand_PanicClosesConnection(t *testing.T) {
	session := &stubSession{panics: true}
	d := &stubDriver{session: session}
	useDriver(t, d)

	res, err := GraphCommand(context.Background(), GraphRequest{Query: "RETURN 1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "nil pointer in driver", res.Error)
	assert.True(t, session.closed)
	assert.True(t, d.closed)
}
