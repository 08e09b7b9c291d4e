package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("request rejected by backend")
	ErrServer       = errors.New("backend failure")
	ErrNetwork      = errors.New("network failure")
)

// ResponseError is a non-2xx backend answer. Body is kept exactly as received.
type ResponseError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrValidation:
		return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusUnauthorized
	case ErrServer:
		return e.StatusCode >= 500
	}
	return false
}

// Message extracts a human readable message from the backend body: the
// message or error field of a JSON object, a JSON string, or the raw text.
// A leading "Error: " is dropped.
func (e *ResponseError) Message() string {
	body := bytes.TrimSpace(e.Body)

	var msg string
	var obj map[string]any
	var str string
	switch {
	case len(body) == 0:
	case json.Unmarshal(body, &obj) == nil:
		for _, key := range []string{"message", "error"} {
			if v, ok := obj[key].(string); ok && v != "" {
				msg = v
				break
			}
		}
	case json.Unmarshal(body, &str) == nil:
		msg = str
	default:
		msg = string(body)
	}

	msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(msg), "Error: "))
	if msg == "" {
		return http.StatusText(e.StatusCode)
	}
	return msg
}

// NetworkError is a request that never produced a response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
