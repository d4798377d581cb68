package commands

import (
	"fmt"
)

// ExitError is returned for fatal preconditions. The CLI prints Payload as
// the only JSON document and exits with status 1.
type ExitError struct {
	Payload interface{}
	Err     error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError wraps err with the JSON payload that reports it.
func NewExitError(payload interface{}, err error) *ExitError {
	return &ExitError{Payload: payload, Err: err}
}

// ErrorBody is the generic {success:false, error} document.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewErrorBody creates a failure document from err
func NewErrorBody(err error) ErrorBody {
	return ErrorBody{Success: false, Error: err.Error()}
}

// Guard runs fn and turns a panic inside it into the value built by onPanic,
// so no bridge ever crashes past its JSON output.
func Guard[T any](fn func() T, onPanic func(err error) T) (result T) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			result = onPanic(err)
		}
	}()
	return fn()
}
