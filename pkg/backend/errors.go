package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every failure returned by Client is a *FetchError
// wrapping one of these or a transport error.
var (
	// ErrHTTPStatus means the backend answered with a non-2xx status.
	ErrHTTPStatus = errors.New("http error")
	// ErrBackendStatus means the envelope status was not "success".
	ErrBackendStatus = errors.New("backend reported failure")
	// ErrMalformedResponse means the body was not a valid envelope.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrResponseTooLarge means the body exceeded the configured limit.
	ErrResponseTooLarge = errors.New("backend response too large")
)

// FetchError describes a failed backend call.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case errors.Is(e.Err, ErrHTTPStatus):
		return fmt.Sprintf("%s: HTTP error! status: %d", e.Endpoint, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
	default:
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
