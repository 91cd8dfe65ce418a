package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RedactRecord replaces the binary payload fields of a raw submission with a
// "captured" flag so the record can be stored without the photo or audio data.
// Photos that were sent empty are dropped from the redacted copy.
func RedactRecord(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("redact: %w", err)
	}
	if photos, ok := record["photos"]; ok {
		redacted := map[string]any{}
		if m, ok := photos.(map[string]any); ok {
			for key, v := range m {
				if truthy(v) {
					redacted[key] = map[string]bool{"captured": true}
				}
			}
		}
		record["photos"] = redacted
	}
	if audio, ok := record["audio"]; ok {
		record["audio"] = map[string]bool{"captured": truthy(audio)}
	}
	return json.MarshalIndent(record, "", "  ")
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		return t.String() != "0"
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}
