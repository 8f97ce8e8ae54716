package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// DecodeJSON parses JSON extended with comments and trailing commas.
func DecodeJSON(data []byte) (Node, error) {
	stripped := jsonc.ToJSON(data)

	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Node{}, fmt.Errorf("parse JSON: %w", err)
	}
	if dec.More() {
		return Node{}, errors.New("parse JSON: trailing data after document")
	}
	return FromAny(raw)
}

// DecodeYAML parses a YAML document.
func DecodeYAML(data []byte) (Node, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Node{}, fmt.Errorf("parse YAML: %w", err)
	}
	return FromAny(raw)
}

// Load reads a document from disk. Files ending in .yaml or .yml are parsed
// as YAML; everything else as JSONC.
func Load(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Node{}, fmt.Errorf("read document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Node{}, fmt.Errorf("%s: document is empty", path)
	}

	var node Node
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		node, err = DecodeYAML(data)
	default:
		node, err = DecodeJSON(data)
	}
	if err != nil {
		return Node{}, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}
