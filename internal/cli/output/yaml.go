package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// PrintYAML writes data as YAML. API types only carry json tags, so data is
// converted through JSON first; keys follow those tags and keep their order.
func PrintYAML(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	blockStyle(&doc)

	return encodeYAML(w, &doc)
}

// PrintRawYAML writes data with its own yaml tags, as used for config files.
func PrintRawYAML(w io.Writer, data any) error {
	return encodeYAML(w, data)
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer func() { _ = encoder.Close() }()
	return encoder.Encode(v)
}

// blockStyle drops the flow and quoting styles inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
