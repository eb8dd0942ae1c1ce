package errors

import (
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

const SessionExpiredMessage = "Session expired. Please login again."

var (
	ErrFileNotExists = os.ErrNotExist

	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrSessionExpired = errors.New(SessionExpiredMessage)

	As        = errors.As
	Errorf    = errors.Errorf
	Is        = errors.Is
	New       = errors.New
	WithStack = errors.WithStack
	Wrap      = errors.Wrap
	Wrapf     = errors.Wrapf
)

// HTTPError is returned for any non-OK response that is not recovered through a token refresh.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
	Details    map[string]any
}

func NewHTTPError(statusCode int, status, message string) *HTTPError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", statusCode, statusText(statusCode, status))
	}

	return &HTTPError{
		StatusCode: statusCode,
		Status:     status,
		Message:    message,
	}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap maps well-known status codes onto the sentinel errors so callers can use errors.Is.
func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// statusText strips the numeric prefix net/http puts on Response.Status ("404 Not Found").
func statusText(statusCode int, status string) string {
	prefix := fmt.Sprintf("%d ", statusCode)
	if len(status) > len(prefix) && status[:len(prefix)] == prefix {
		return status[len(prefix):]
	}
	if status != "" {
		return status
	}

	return http.StatusText(statusCode)
}
