package commands

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/desktop"
	"github.com/jerry-desk/bridgecli/types"
	"github.com/jerry-desk/bridgecli/utils"
)

const (
	ActionCapture  = "capture"
	ActionMouse    = "mouse"
	ActionKeyboard = "keyboard"
	ActionTest     = "test"
)

// DesktopActions lists the accepted --action values
var DesktopActions = []string{ActionCapture, ActionMouse, ActionKeyboard, ActionTest}

// DesktopRequest represents the parameters for a desktop action
type DesktopRequest struct {
	Action    string `json:"action"`
	SubAction string `json:"subaction,omitempty"`
	X         *int   `json:"x,omitempty"`
	Y         *int   `json:"y,omitempty"`
	Text      string `json:"text,omitempty"`
	Key       string `json:"key,omitempty"`

	Quality      int           `json:"quality,omitempty"`  // JPEG quality for capture
	MaxSide      int           `json:"max_side,omitempty"` // downscale capture when > 0
	SaveDir      string        `json:"save_dir,omitempty"` // also write capture to this directory
	TypeInterval time.Duration `json:"-"`
}

// ApplyDesktopDefaults fills capture and typing options left unset
func ApplyDesktopDefaults(req *DesktopRequest, cfg config.DesktopConfig) {
	if req.Quality == 0 {
		req.Quality = cfg.Quality
	}
	if req.MaxSide == 0 {
		req.MaxSide = cfg.MaxSide
	}
	if req.SaveDir == "" {
		req.SaveDir = cfg.SaveDir
	}
	if req.TypeInterval == 0 {
		req.TypeInterval = cfg.TypeInterval
	}
}

// newController is replaced in tests
var newController = desktop.New

// RequireDesktop returns the automation backend or a fatal ExitError when it
// is missing. It must run before any action is dispatched.
func RequireDesktop() (desktop.Controller, error) {
	ctrl, err := newController()
	if err != nil {
		return nil, NewExitError(types.MissingDependency{
			Error: fmt.Sprintf("Missing dependency: %v", err),
			Hint:  "Rebuild bridgecli with CGO_ENABLED=1 and the X11/libpng development headers installed",
		}, err)
	}
	return ctrl, nil
}

// ValidateDesktopAction checks the --action discriminator
func ValidateDesktopAction(action string) error {
	for _, a := range DesktopActions {
		if action == a {
			return nil
		}
	}
	err := fmt.Errorf("invalid action '%s', expected one of %v", action, DesktopActions)
	return NewExitError(NewErrorBody(err), err)
}

// DesktopCommand performs one desktop action. Failures are reported in the
// result, never returned or panicked.
func DesktopCommand(ctrl desktop.Controller, req DesktopRequest) *types.DesktopResult {
	log := utils.Log("desktop").WithField("action", req.Action)
	log.Debugf("dispatching %s", req.SubAction)

	return Guard(func() *types.DesktopResult {
		switch req.Action {
		case ActionTest:
			return testDesktop(ctrl)
		case ActionCapture:
			return captureScreen(ctrl, req)
		case ActionMouse:
			return mouseAction(ctrl, req)
		case ActionKeyboard:
			return keyboardAction(ctrl, req)
		}
		return desktopFailure(errors.New("No action performed"))
	}, func(err error) *types.DesktopResult {
		log.Warnf("recovered from panic: %v", err)
		return desktopFailure(err)
	})
}

func desktopFailure(err error) *types.DesktopResult {
	return &types.DesktopResult{Success: false, Error: err.Error()}
}

func testDesktop(ctrl desktop.Controller) *types.DesktopResult {
	width, height, err := ctrl.ScreenSize()
	if err != nil {
		return desktopFailure(err)
	}

	return &types.DesktopResult{
		Success:    true,
		Message:    "Dependencies verified",
		ScreenSize: []int{width, height},
	}
}

func captureScreen(ctrl desktop.Controller, req DesktopRequest) *types.DesktopResult {
	img, err := ctrl.Capture()
	if err != nil {
		return desktopFailure(err)
	}

	imageBytes, err := utils.EncodeJpeg(img, req.Quality, req.MaxSide)
	if err != nil {
		return desktopFailure(fmt.Errorf("error encoding screenshot: %w", err))
	}

	bounds := img.Bounds()
	result := &types.DesktopResult{
		Success: true,
		Image:   base64.StdEncoding.EncodeToString(imageBytes),
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
	}

	if req.SaveDir != "" {
		filePath, err := saveCapture(req.SaveDir, imageBytes)
		if err != nil {
			return desktopFailure(err)
		}
		result.FilePath = filePath
	}

	return result
}

func saveCapture(dir string, imageBytes []byte) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid save directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating save directory: %w", err)
	}

	finalPath := filepath.Join(dir, fmt.Sprintf("desktop-%s.jpg", uuid.NewString()))
	if err := os.WriteFile(finalPath, imageBytes, 0o600); err != nil {
		return "", fmt.Errorf("error writing file: %w", err)
	}

	return finalPath, nil
}

func mouseAction(ctrl desktop.Controller, req DesktopRequest) *types.DesktopResult {
	var button string
	var double bool

	switch req.SubAction {
	case "move":
	case "click":
		button = "left"
	case "double_click":
		button, double = "left", true
	case "right_click":
		button = "right"
	default:
		return desktopFailure(fmt.Errorf("Unknown mouse action: %s", req.SubAction))
	}

	if req.X == nil || req.Y == nil {
		return desktopFailure(fmt.Errorf("x and y coordinates are required for mouse action %s", req.SubAction))
	}

	// negative values address displays left of or above the primary one
	x, y := *req.X, *req.Y

	var err error
	if button == "" {
		err = ctrl.Move(x, y)
	} else {
		err = ctrl.Click(x, y, button, double)
	}
	if err != nil {
		return desktopFailure(err)
	}

	return &types.DesktopResult{
		Success: true,
		Message: fmt.Sprintf("Mouse %s at (%d,%d)", req.SubAction, x, y),
	}
}

func keyboardAction(ctrl desktop.Controller, req DesktopRequest) *types.DesktopResult {
	switch {
	case req.Text != "":
		interval := req.TypeInterval
		if interval <= 0 {
			interval = 100 * time.Millisecond
		}
		if err := ctrl.Type(req.Text, interval); err != nil {
			return desktopFailure(err)
		}
		return &types.DesktopResult{Success: true, Message: fmt.Sprintf("Typed %d characters", len([]rune(req.Text)))}

	case req.Key != "":
		if err := ctrl.KeyTap(req.Key); err != nil {
			return desktopFailure(err)
		}
		return &types.DesktopResult{Success: true, Message: fmt.Sprintf("Pressed key '%s'", req.Key)}
	}

	return desktopFailure(errors.New("No text or key provided for keyboard action"))
}
