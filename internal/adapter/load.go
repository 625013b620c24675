package adapter

import (
	"encoding/json"
	"os"

	"girder/internal/fault"
)

// Decode parses an exported module from its JSON encoding.
func Decode(data []byte) (*Module, error) {
	var m Module
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fault.Loading("malformed adapter module: %v", err)
	}
	return &m, nil
}

// Load reads and decodes an exported module file.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Loading("cannot read adapter module %s: %v", path, err)
	}
	return Decode(data)
}
