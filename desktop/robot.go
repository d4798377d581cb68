//go:build cgo

package desktop

import (
	"fmt"
	"image"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

const backendAvailable = true

type robotController struct{}

func newController() (Controller, error) {
	return &robotController{}, nil
}

func (r *robotController) ready() error {
	if !HasDisplay() {
		return ErrNoDisplay
	}
	return nil
}

func (r *robotController) ScreenSize() (int, int, error) {
	if err := r.ready(); err != nil {
		return 0, 0, err
	}

	width, height := robotgo.GetScreenSize()
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid screen size %dx%d", width, height)
	}
	return width, height, nil
}

func (r *robotController) Capture() (image.Image, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	if screenshot.NumActiveDisplays() < 1 {
		return nil, fmt.Errorf("no active displays found")
	}

	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display: %w", err)
	}
	return img, nil
}

func (r *robotController) Move(x, y int) error {
	if err := r.ready(); err != nil {
		return err
	}
	robotgo.Move(x, y)
	return nil
}

func (r *robotController) Click(x, y int, button string, double bool) error {
	if err := r.ready(); err != nil {
		return err
	}
	robotgo.Move(x, y)
	robotgo.Click(button, double)
	return nil
}

func (r *robotController) Type(text string, interval time.Duration) error {
	if err := r.ready(); err != nil {
		return err
	}
	for _, ch := range text {
		robotgo.TypeStr(string(ch))
		time.Sleep(interval)
	}
	return nil
}

func (r *robotController) KeyTap(key string) error {
	if err := r.ready(); err != nil {
		return err
	}
	return robotgo.KeyTap(NormalizeKey(key))
}
