// ABOUTME: Error types returned by the SafePulse API client
// ABOUTME: Backend rejections keep status and body; refresh failures are distinct

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrNoRefreshToken is the cause of a RefreshError when no refresh token is
// stored.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// APIError is a non-2xx backend response, surfaced verbatim.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}

// RefreshError reports a failed token refresh. The session has been cleared
// by the time a caller sees it.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return "session expired: token refresh failed: " + e.Err.Error()
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsSessionExpired reports whether err means the officer must log in again.
func IsSessionExpired(err error) bool {
	var refreshErr *RefreshError
	return errors.As(err, &refreshErr) || IsStatus(err, http.StatusUnauthorized)
}

// ErrorResponse represents the error bodies the backend produces.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}

func newAPIError(req *Request, resp *Response) *APIError {
	return &APIError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Body),
		Body:       resp.Body,
	}
}

// errorMessage extracts a human-readable message from an error body. It
// understands {"error": ...}, {"detail": ...} and field error maps such as
// {"password": ["Passwords do not match."]}.
func errorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Error != "" && errResp.Details != "":
			return errResp.Error + ": " + errResp.Details
		case errResp.Error != "":
			return errResp.Error
		case errResp.Detail != "":
			return errResp.Detail
		case errResp.Message != "":
			return errResp.Message
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			msg := flattenMessages(fields[k])
			if msg == "" {
				continue
			}
			if k == "non_field_errors" {
				parts = append(parts, msg)
			} else {
				parts = append(parts, k+": "+msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return flattenMessages(body)
}

func flattenMessages(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, " ")
	}
	return ""
}
