package qdrant

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vectl/vectl/pkg/vecdb"
)

// Error represents a Qdrant API failure.
//
// Unwrap maps the failure onto the vecdb sentinel errors, so callers
// classify with errors.Is:
//
//	if errors.Is(err, vecdb.ErrNotFound) { ... }
type Error struct {
	// HTTPStatus is the HTTP status code. Zero for transport failures.
	HTTPStatus int

	// Msg is the server error message or transport error text.
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.HTTPStatus == 0 {
		return fmt.Sprintf("qdrant: %s", e.Msg)
	}
	return fmt.Sprintf("qdrant: %s (http %d)", e.Msg, e.HTTPStatus)
}

// Unwrap maps the failure to a vecdb sentinel.
func (e *Error) Unwrap() error {
	switch {
	case e.HTTPStatus == http.StatusNotFound:
		return vecdb.ErrNotFound
	case e.HTTPStatus == http.StatusConflict:
		return vecdb.ErrExists
	case e.HTTPStatus == http.StatusBadRequest && strings.Contains(strings.ToLower(e.Msg), "dimension"):
		return vecdb.ErrDimensionMismatch
	case e.HTTPStatus == 0 || e.HTTPStatus >= http.StatusInternalServerError ||
		e.HTTPStatus == http.StatusTooManyRequests:
		return vecdb.ErrUnavailable
	default:
		return nil
	}
}

// Retryable reports whether the request can be retried.
func (e *Error) Retryable() bool {
	return errors.Is(e, vecdb.ErrUnavailable)
}

// AsError extracts *Error from an error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// parseError parses a non-200 response body.
//
// Qdrant reports errors as {"status":{"error":"..."},"time":...}.
func parseError(body []byte, httpStatus int) error {
	var resp struct {
		Status struct {
			Error string `json:"error"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Status.Error != "" {
		return &Error{HTTPStatus: httpStatus, Msg: resp.Status.Error}
	}
	return &Error{HTTPStatus: httpStatus, Msg: strings.TrimSpace(string(body))}
}
