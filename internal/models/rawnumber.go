package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RawNumber keeps a numeric field as the text it was written with. Files may
// spell quantities and rates either as numbers or as strings.
type RawNumber string

// UnmarshalYAML accepts any scalar.
func (n *RawNumber) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number, got a collection", node.Line)
	}
	if node.ShortTag() == "!!null" {
		*n = ""
		return nil
	}
	*n = RawNumber(node.Value)
	return nil
}

// UnmarshalJSON accepts a JSON number, string or null.
func (n *RawNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = RawNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = RawNumber(num.String())
	return nil
}
