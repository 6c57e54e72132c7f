package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalValue encodes a record as compact JSON for storage.
//
// The encoding must be deterministic: Remove matches stored bytes exactly, so
// re-encoding a decoded record has to reproduce the bytes that were inserted.
// Struct fields encode in declaration order, HTML escaping is disabled and the
// encoder's trailing newline is dropped.
func MarshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalValue decodes a stored JSON record into v.
func UnmarshalValue(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return nil
}
