//go:build !cgo

package desktop

const backendAvailable = false

func newController() (Controller, error) {
	return nil, ErrUnavailable
}
