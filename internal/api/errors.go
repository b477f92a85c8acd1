package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoSession is returned by protected calls when no session token is stored.
// No request is sent in that case.
var ErrNoSession = errors.New("not signed in")

var errEmptyBody = errors.New("empty response body")

// Error is a non-2xx response. Message is the server-provided text, if any.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d %s", e.Status, http.StatusText(e.Status))
}

// newError reads {"error": "..."} or {"message": "..."}; "error" wins when both are set.
func newError(status int, body []byte) *Error {
	e := &Error{Status: status}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}
	for _, raw := range []json.RawMessage{payload.Error, payload.Message} {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			e.Message = strings.TrimSpace(s)
			return e
		}
	}
	return e
}

// MessageOr returns the server-provided message carried by err, else fallback.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
