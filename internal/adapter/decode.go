package adapter

import (
	"encoding/json"
	"fmt"
)

// The exporter serializes every closed vocabulary (types, constants, values,
// instructions) as a single-key object: {"Variant": {...fields...}} or
// {"Variant": null} for payload-free variants. oneKey peels that envelope.
func oneKey(data []byte) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("expected a single-variant object, got %d keys", len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, nil // unreachable
}
