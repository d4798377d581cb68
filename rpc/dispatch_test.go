package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/jerry-desk/bridgecli/commands"
	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/desktop"
	"github.com/jerry-desk/bridgecli/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubController struct {
	calls []string
}

func (s *stubController) ScreenSize() (int, int, error) { return 1920, 1080, nil }

func (s *stubController) Capture() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 3)), nil
}

func (s *stubController) Move(x, y int) error {
	s.calls = append(s.calls, fmt.Sprintf("move:%d,%d", x, y))
	return nil
}

func (s *stubController) Click(x, y int, button string, double bool) error {
	s.calls = append(s.calls, fmt.Sprintf("click:%s:%d,%d", button, x, y))
	return nil
}

func (s *stubController) Type(text string, interval time.Duration) error {
	s.calls = append(s.calls, "type:"+text)
	return nil
}

func (s *stubController) KeyTap(key string) error {
	s.calls = append(s.calls, "key:"+key)
	return nil
}

func newTestDispatcher(ctrl desktop.Controller) *Dispatcher {
	d := NewDispatcher(config.Default())
	d.RequireDesktop = func() (desktop.Controller, error) { return ctrl, nil }
	return d
}

func handleJSON(t *testing.T, d *Dispatcher, input string) (string, error) {
	t.Helper()
	result, err := d.Handle(context.Background(), []byte(input))
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(result)
	require.NoError(t, err)
	return string(out), nil
}

func TestGetMethodRegistry(t *testing.T) {
	registry := NewDispatcher(config.Default()).GetMethodRegistry()

	for _, method := range []string{
		"desktop.capture", "desktop.mouse", "desktop.keyboard", "desktop.test",
		"memory.cluster", "graph.query",
	} {
		assert.Contains(t, registry, method)
	}
	assert.Len(t, registry, 6)
}

func TestHandle_MethodNotFound(t *testing.T) {
	out, err := handleJSON(t, newTestDispatcher(&stubController{}), `{"method":"desktop.scroll"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"method not found: desktop.scroll"}`, out)
}

func TestHandle_InvalidRequest(t *testing.T) {
	d := newTestDispatcher(&stubController{})

	out, err := handleJSON(t, d, `{"method":`)
	require.NoError(t, err)
	assert.Contains(t, out, `"success":false`)
	assert.Contains(t, out, "invalid request")

	out, err = handleJSON(t, d, `{"params":{}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"'method' is required"}`, out)
}

func TestHandle_DesktopTest(t *testing.T) {
	out, err := handleJSON(t, newTestDispatcher(&stubController{}), `{"method":"desktop.test"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Dependencies verified","screen_size":[1920,1080]}`, out)
}

func TestHandle_DesktopMouse(t *testing.T) {
	ctrl := &stubController{}
	out, err := handleJSON(t, newTestDispatcher(ctrl),
		`{"method":"desktop.mouse","params":{"subaction":"right_click","x":10,"y":20}}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"success":true`)
	assert.Equal(t, []string{"click:right:10,20"}, ctrl.calls)
}

func TestHandle_DesktopMouseUnknownSubAction(t *testing.T) {
	ctrl := &stubController{}
	out, err := handleJSON(t, newTestDispatcher(ctrl),
		`{"method":"desktop.mouse","params":{"subaction":"wiggle","x":1,"y":1}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Unknown mouse action: wiggle"}`, out)
	assert.Empty(t, ctrl.calls)
}

func TestHandle_DesktopActionComesFromMethod(t *testing.T) {
	ctrl := &stubController{}
	// an action inside params must not redirect the call
	out, err := handleJSON(t, newTestDispatcher(ctrl),
		`{"method":"desktop.keyboard","params":{"action":"mouse","key":"enter"}}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"success":true`)
	assert.Equal(t, []string{"key:enter"}, ctrl.calls)
}

func TestHandle_DesktopCapture(t *testing.T) {
	out, err := handleJSON(t, newTestDispatcher(&stubController{}), `{"method":"desktop.capture"}`)
	require.NoError(t, err)

	var result types.DesktopResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 4, result.Width)
	assert.Equal(t, 3, result.Height)
	assert.NotEmpty(t, result.Image)
}

func TestHandle_DesktopBadParams(t *testing.T) {
	out, err := handleJSON(t, newTestDispatcher(&stubController{}), `{"method":"desktop.mouse","params":{"x":"left"}}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"success":false`)
	assert.Contains(t, out, "invalid parameters")
}

func TestHandle_DesktopMissingBackendIsFatal(t *testing.T) {
	d := NewDispatcher(config.Default())
	missing := commands.NewExitError(types.MissingDependency{Error: "Missing dependency: robotgo"}, errors.New("robotgo"))
	d.RequireDesktop = func() (desktop.Controller, error) { return nil, missing }

	_, err := d.Handle(context.Background(), []byte(`{"method":"desktop.test"}`))

	var exitErr *commands.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, missing, exitErr)
}

func TestHandle_MemoryClusterEcho(t *testing.T) {
	out, err := handleJSON(t, newTestDispatcher(nil),
		`{"method":"memory.cluster","params":{"memories":[{"id":1,"content":"a"}]}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"content":"a"}]`, out)
}

func TestHandle_MemoryClusterLayout(t *testing.T) {
	var items []string
	for i := 0; i < 8; i++ {
		items = append(items, fmt.Sprintf(`{"id":%d,"content":"m%d","created_at":"2026-01-01","embedding":[%d,%d,1]}`, i, i, i, i%3))
	}
	input := `{"method":"memory.cluster","params":{"memories":[` + strings.Join(items, ",") + `]}}`

	out, err := handleJSON(t, newTestDispatcher(nil), input)
	require.NoError(t, err)

	var points []types.MemoryPoint
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	require.Len(t, points, 8)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Cluster, 0)
		assert.Less(t, p.Cluster, 4)
	}
}

func TestHandle_MemoryClusterFailureIsEmptyArray(t *testing.T) {
	input := `{"method":"memory.cluster","params":{"memories":[{"id":1},{"id":2},{"id":3}]}}`

	out, err := handleJSON(t, newTestDispatcher(nil), input)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestHandle_MemoryClusterStrictFailureIsFatal(t *testing.T) {
	input := `{"method":"memory.cluster","params":{"strict":true,"memories":[{"id":1},{"id":2},{"id":3}]}}`

	_, err := newTestDispatcher(nil).Handle(context.Background(), []byte(input))

	var exitErr *commands.ExitError
	require.ErrorAs(t, err, &exitErr)
	body, ok := exitErr.Payload.(commands.ErrorBody)
	require.True(t, ok)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestHandle_GraphQueryNoQueryIsFatal(t *testing.T) {
	_, err := newTestDispatcher(nil).Handle(context.Background(), []byte(`{"method":"graph.query","params":{}}`))

	var exitErr *commands.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, commands.NewErrorBody(commands.ErrNoQuery), exitErr.Payload)
}

func TestHandle_GraphQueryBadParams(t *testing.T) {
	out, err := handleJSON(t, newTestDispatcher(nil),
		`{"method":"graph.query","params":{"query":"RETURN $n","params":[1,2]}}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"success":false`)
}
