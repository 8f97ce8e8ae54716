package cli

import (
	"fmt"
	"strings"

	"vidcompose/internal/codec"
	"vidcompose/internal/template"
	"vidcompose/pkg/document"
)

// bindingFlags are shared by the commands that resolve a template.
type bindingFlags struct {
	file string
	sets []string
}

// load reads the bindings file, if any, and layers --set values on top.
func (f bindingFlags) load() (template.Bindings, error) {
	out := template.Bindings{}
	if f.file != "" {
		doc, err := codec.LoadDocument(f.file)
		if err != nil {
			return nil, fmt.Errorf("load bindings: %w", err)
		}
		if doc.Kind() != document.KindMap {
			return nil, fmt.Errorf("bindings file must hold a map, got %s", doc.Kind())
		}
		for _, name := range doc.Keys() {
			value, _ := doc.Get(name)
			out[name] = value
		}
	}
	sets, err := parseSets(f.sets)
	if err != nil {
		return nil, err
	}
	for name, value := range sets {
		out[name] = value
	}
	for name := range out {
		if !template.ValidIdentifier(name) {
			return nil, fmt.Errorf("binding name %q is not a valid identifier", name)
		}
	}
	return out, nil
}

// parseSets reads name=value pairs. Values are read as YAML scalars, so
// 120 binds a number and true a boolean; anything else binds the raw text.
func parseSets(pairs []string) (template.Bindings, error) {
	out := template.Bindings{}
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q (want name=value)", pair)
		}
		out[name] = scalarValue(raw)
	}
	return out, nil
}

func scalarValue(raw string) document.Node {
	if strings.TrimSpace(raw) == "" {
		return document.String(raw)
	}
	n, err := document.DecodeYAML([]byte(raw))
	if err != nil || !n.IsScalar() || n.IsNull() {
		return document.String(raw)
	}
	return n
}
