package desktop

import (
	"errors"
	"image"
	"os"
	"runtime"
	"strings"
	"time"
)

var (
	// ErrUnavailable means the binary was built without the native backend
	ErrUnavailable = errors.New("desktop automation backend not compiled in (build with CGO_ENABLED=1)")

	// ErrNoDisplay is returned instead of calling into X11 without a display
	ErrNoDisplay = errors.New("no display available (DISPLAY is not set)")
)

// Controller is the OS automation capability used by the desktop bridge.
type Controller interface {
	ScreenSize() (width, height int, err error)
	Capture() (image.Image, error)
	Move(x, y int) error
	Click(x, y int, button string, double bool) error
	Type(text string, interval time.Duration) error
	KeyTap(key string) error
}

// New returns the native controller, or ErrUnavailable.
func New() (Controller, error) {
	return newController()
}

// Available reports whether the native backend is compiled in.
func Available() bool {
	return backendAvailable
}

// HasDisplay reports whether a display server is reachable. Only Linux needs
// an explicit check; macOS and Windows always have a session display.
func HasDisplay() bool {
	if runtime.GOOS != "linux" {
		return true
	}
	return os.Getenv("DISPLAY") != ""
}

var keyAliases = map[string]string{
	"return":     "enter",
	"escape":     "esc",
	"del":        "delete",
	"pgup":       "pageup",
	"pgdn":       "pagedown",
	"win":        "cmd",
	"command":    "cmd",
	"option":     "alt",
	"ctrlleft":   "lctrl",
	"ctrlright":  "rctrl",
	"altleft":    "lalt",
	"altright":   "ralt",
	"shiftleft":  "lshift",
	"shiftright": "rshift",
	"spacebar":   "space",
}

// NormalizeKey maps common key spellings onto the names the backend expects.
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" && key != "" {
		return "space"
	}
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}
