package apiclient

import (
	"errors"
	"fmt"
)

// ErrTransport marks failures where no HTTP response was received.
var ErrTransport = errors.New("transport error")

// RequestError is returned when the backend answered with a non-2xx status.
type RequestError struct {
	StatusCode int
	// Body is the best-effort rendering of the error payload; empty when it
	// could not be read or parsed.
	Body string
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("Request failed with status %d", e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsRequestError reports whether err carries a *RequestError.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}
