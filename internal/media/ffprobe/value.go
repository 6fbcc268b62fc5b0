package ffprobe

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is an optional scalar from an ffprobe report. ffprobe emits most
// numerics as strings but some (width, height, channels) as JSON numbers, so
// both encodings are kept as their textual form. A JSON null or a missing key
// leaves the value absent.
type Value struct {
	text  string
	valid bool
}

// Text returns a present Value holding s.
func Text(s string) Value {
	return Value{text: s, valid: true}
}

// Present reports whether the field was supplied with a non-blank value.
func (v Value) Present() bool {
	return v.valid && strings.TrimSpace(v.text) != ""
}

// String returns the trimmed textual form, or "" when absent.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	return strings.TrimSpace(v.text)
}

// UnmarshalJSON accepts strings, numbers, and booleans. Composite values are
// kept verbatim so decoding never fails on an unexpected shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = Value{text: s, valid: true}
		return nil
	}
	*v = Value{text: string(trimmed), valid: true}
	return nil
}

// MarshalJSON renders the value as a JSON string, or null when absent.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.text)
}
