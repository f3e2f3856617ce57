// Package rulefile reads recurrence rules from JSON, JSONC and YAML files.
//
// A file holds either a bare rule:
//
//	frequency: weekly
//	interval: 2
//	start_date: "2025-01-06"
//	days_of_week: [1, 3]
//
// or a rule together with its window:
//
//	{
//	  // comments and trailing commas are allowed in JSON files
//	  "rule": {"frequency": "daily", "interval": 1, "start_date": "2025-01-01"},
//	  "range_start": "2025-01-01",
//	  "range_end": "2025-01-31",
//	}
package rulefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Syntax is the encoding of a rule file
type Syntax int

const (
	JSON Syntax = iota // JSON with comments and trailing commas
	YAML
)

// SyntaxFromPath guesses the syntax from the file extension. Anything that
// is not .yaml or .yml is read as JSON.
func SyntaxFromPath(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// ReadFile reads and parses the rule file at path
func ReadFile(path string) (recurrence.ExpandRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recurrence.ExpandRequest{}, fmt.Errorf("failed to read rule file: %w", err)
	}
	req, err := Parse(data, SyntaxFromPath(path))
	if err != nil {
		return recurrence.ExpandRequest{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// Parse decodes data. A document without a top-level "rule" key is taken to be
// the rule itself, and the window is left empty.
func Parse(data []byte, syntax Syntax) (recurrence.ExpandRequest, error) {
	if syntax == JSON {
		data = jsonc.ToJSON(data)
	}

	var probe map[string]any
	if err := unmarshal(data, syntax, &probe); err != nil {
		return recurrence.ExpandRequest{}, err
	}
	if len(probe) == 0 {
		return recurrence.ExpandRequest{}, fmt.Errorf("empty rule file")
	}

	var req recurrence.ExpandRequest
	if _, ok := probe["rule"]; ok {
		if err := unmarshal(data, syntax, &req); err != nil {
			return recurrence.ExpandRequest{}, err
		}
		return req, nil
	}
	if err := unmarshal(data, syntax, &req.Rule); err != nil {
		return recurrence.ExpandRequest{}, err
	}
	return req, nil
}

func unmarshal(data []byte, syntax Syntax, v any) error {
	if syntax == YAML {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("parsing YAML: %w", err)
		}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
