package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// fallbackMessage is used when an error body carries nothing readable
const fallbackMessage = "Request failed"

// ErrUnexpectedShape is matched (errors.Is) by every *ShapeError
var ErrUnexpectedShape = errors.New("unexpected response shape")

// RequestError is returned for any response outside the 2xx range
type RequestError struct {
	StatusCode int
	Message    string
	// Body is the raw JSON error body, nil when absent or unparseable
	Body json.RawMessage
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// ShapeError is returned when a 2xx body does not match the expected schema
type ShapeError struct {
	Method string
	URL    string
	Err    error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response shape from %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrUnexpectedShape
}

// newRequestError builds the error for a non-2xx response. The message is
// taken from body.message, else body.errors[].msg joined by ", ", else the
// fallback.
func newRequestError(status int, raw []byte) *RequestError {
	reqErr := &RequestError{StatusCode: status, Message: fallbackMessage}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return reqErr
	}
	reqErr.Body = json.RawMessage(bytes.Clone(raw))

	obj, ok := body.(map[string]any)
	if !ok {
		return reqErr
	}

	if msg, ok := obj["message"]; ok && msg != nil {
		reqErr.Message = stringify(msg)
		return reqErr
	}

	if list, ok := obj["errors"].([]any); ok {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			entry, _ := item.(map[string]any)
			if msg, ok := entry["msg"]; ok && msg != nil {
				msgs = append(msgs, stringify(msg))
			} else {
				msgs = append(msgs, "")
			}
		}
		reqErr.Message = strings.Join(msgs, ", ")
	}

	return reqErr
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
