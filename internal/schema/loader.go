package schema

import (
	"encoding/json"
	"fmt"
)

// Load parses a raw JSON schema document into the in-memory model.
// It performs no validation beyond structural shape; semantic checks
// belong to the validate package.
func Load(data []byte) (*Schema, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("schema document is empty")
	}

	var doc Schema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing schema document: %w", err)
	}

	if doc.Tables == nil {
		return nil, fmt.Errorf("schema document has no 'tables' array")
	}

	return &doc, nil
}
