package remote

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRemoteAPI = errors.New("remote api error")
	ErrTransport = errors.New("transport error")
)

// APIError is a non-2xx answer from a collaborator.
type APIError struct {
	Service    string
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d, body: %s", e.Service, e.Operation, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return ErrRemoteAPI
}

// IsNotFound reports whether err carries a 404 answer, meaning the
// referenced remote object no longer exists.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Transport wraps a network level failure reaching service.
func Transport(service, operation string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", service, operation, ErrTransport, err)
}
