package astria

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
)

// Kind is the closed vocabulary every failure is reduced to. Callers branch
// on Kind and never on message text.
type Kind string

const (
	KindAuth           Kind = "AUTH"
	KindNotFound       Kind = "NOT_FOUND"
	KindValidation     Kind = "VALIDATION"
	KindRateLimit      Kind = "RATE_LIMIT"
	KindNetwork        Kind = "NETWORK"
	KindTimeout        Kind = "TIMEOUT"
	KindAPI            Kind = "API_ERROR"
	KindPollingTimeout Kind = "POLLING_TIMEOUT"
	KindSDK            Kind = "SDK_ERROR"
	KindUnknown        Kind = "UNKNOWN"
)

// Error is the single typed error that crosses package boundaries. An Error
// is flat: it never wraps another Error, and annotation only appends to the
// message.
type Error struct {
	Kind       Kind
	Message    string
	Details    any
	HTTPStatus int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates a typed error for a failure raised locally, outside the
// transport layer.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Annotate appends contextual text to the message without touching the kind,
// details or status. It returns the same error to allow chaining.
func (e *Error) Annotate(note string) *Error {
	note = strings.TrimSpace(note)
	if note == "" {
		return e
	}
	if e.Message == "" {
		e.Message = note
		return e
	}
	e.Message = fmt.Sprintf("%s (%s)", e.Message, note)
	return e
}

// Classify reduces any raw failure to an *Error. Already-classified errors
// pass through untouched, so Classify(Classify(x)) == Classify(x).
func Classify(err error) *Error {
	if err == nil {
		return &Error{Kind: KindUnknown, Message: "unknown failure"}
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	var failure *httpFailure
	if errors.As(err, &failure) {
		e := &Error{
			Kind:       kindForStatus(failure.Status),
			Message:    extractMessage(failure.Body, failure.Status),
			Details:    decodePayload(failure.Body),
			HTTPStatus: failure.Status,
		}
		if e.Kind == KindAuth {
			e.Annotate("check that your Astria API key is valid")
		}
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindSDK, Message: "request canceled"}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: "request timed out: " + err.Error()}
		}
		return &Error{Kind: KindNetwork, Message: "connection failed: " + err.Error()}
	}
	return &Error{Kind: KindSDK, Message: err.Error()}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusTooManyRequests:
		return KindRateLimit
	default:
		return KindAPI
	}
}

// extractMessage pulls a human-readable message out of the service's error
// payload. The service answers with several shapes: a bare string, an object
// with an error or message field, a Rails-style errors node, or an arbitrary
// field-keyed object whose values are strings or arrays of strings. Specific
// single-message fields win over field-keyed extraction, which wins over the
// generic fallback.
func extractMessage(body []byte, status int) string {
	fallback := fmt.Sprintf("API error (%d)", status)
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}
	var node any
	if err := json.Unmarshal([]byte(text), &node); err != nil {
		return text
	}
	switch v := node.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case map[string]any:
		if s, ok := stringField(v, "error"); ok {
			return s
		}
		if s, ok := stringField(v, "message"); ok {
			return s
		}
		if raw, ok := v["errors"]; ok {
			switch errs := raw.(type) {
			case map[string]any:
				if msg := joinFieldErrors(errs); msg != "" {
					return msg
				}
			case []any:
				if msg := strings.Join(stringItems(errs), ", "); msg != "" {
					return msg
				}
			}
		}
		if msg := joinFieldErrors(v); msg != "" {
			return msg
		}
	}
	return fallback
}

func stringField(m map[string]any, key string) (string, bool) {
	if raw, ok := m[key]; ok {
		if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

// joinFieldErrors renders {field: ["a", "b"]} as "field: a, b" and joins
// multiple fields with "; " in sorted field order.
func joinFieldErrors(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", k, strings.TrimSpace(v)))
			}
		case []any:
			if msgs := stringItems(v); len(msgs) > 0 {
				parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(msgs, ", ")))
			}
		}
	}
	return strings.Join(parts, "; ")
}

func stringItems(items []any) []string {
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func decodePayload(body []byte) any {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil
	}
	var node any
	if err := json.Unmarshal([]byte(text), &node); err != nil {
		return text
	}
	return node
}
