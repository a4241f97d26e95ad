package models

import (
	"bytes"
	"encoding/json"
)

// Result is the outcome of one probe: either a value or an error message.
type Result[T any] struct {
	Value T
	Err   string
}

// OK wraps a successful probe value
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail records a failed probe. An empty message is replaced so the
// serialized error is never blank.
func Fail[T any](msg string) Result[T] {
	if msg == "" {
		msg = "unknown error"
	}
	return Result[T]{Err: msg}
}

// Failed reports whether the probe produced an error instead of a value
func (r Result[T]) Failed() bool {
	return r.Err != ""
}

type errorPayload struct {
	Error *string `json:"error"`
}

// MarshalJSON emits the value, or {"error": msg} for a failed probe
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return marshalRaw(errorPayload{Error: &r.Err})
	}
	return marshalRaw(r.Value)
}

// marshalRaw encodes v without HTML escaping so values like "AT&T" stay readable
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON accepts either shape produced by MarshalJSON
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	*r = Result[T]{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return err
		}
		if raw, ok := probe["error"]; ok && len(probe) == 1 {
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil {
				r.Err = msg
				return nil
			}
		}
	}
	return json.Unmarshal(data, &r.Value)
}
