package changecache

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalJSON produces a deterministic JSON encoding of v:
// - Object keys sorted lexicographically
// - No insignificant whitespace
// - No HTML escaping
// - Numbers kept in their original textual form
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}

	// Round-trip through generic values so map keys come back sorted
	// regardless of how the caller's type orders them.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(generic); err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}

	// Remove trailing newline added by Encode
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	return result, nil
}

// PrettyJSON indents canonical JSON for human-readable diffs.
func PrettyJSON(canonical []byte) string {
	if len(canonical) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return string(canonical)
	}
	buf.WriteByte('\n')
	return buf.String()
}
