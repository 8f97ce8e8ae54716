package template

import (
	"fmt"
	"sort"

	"vidcompose/pkg/document"
)

// Bindings maps variable names to the scalar values substituted for them.
type Bindings map[string]document.Node

// UndefinedVariableError reports a placeholder with no binding.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

// InvalidBindingError reports a binding whose value is not a scalar.
type InvalidBindingError struct {
	Name string
	Kind document.Kind
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("binding %q must be a scalar, got %s", e.Name, e.Kind)
}

// Merge returns a new Bindings with the entries of overlay layered on top
// of base.
func Merge(base, overlay Bindings) Bindings {
	out := make(Bindings, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// Resolve substitutes bindings into every placeholder of doc.
//
// A string that is exactly one placeholder takes the bound value with its
// own type, so "${duration}" bound to 120 becomes the number 120. A
// placeholder embedded in other text is replaced by the value's textual
// form and the field stays a string. Substitution is a single pass: text
// coming from a bound value is never scanned for further placeholders.
//
// Resolve fails with *UndefinedVariableError for the first referenced
// variable without a binding and returns no partial document.
func Resolve(doc document.Node, bindings Bindings) (document.Node, error) {
	for _, name := range ExtractOrdered(doc) {
		value, ok := bindings[name]
		if !ok {
			return document.Node{}, &UndefinedVariableError{Name: name}
		}
		if !value.IsScalar() {
			return document.Node{}, &InvalidBindingError{Name: name, Kind: value.Kind()}
		}
	}
	return substitute(doc, bindings), nil
}

func substitute(n document.Node, bindings Bindings) document.Node {
	switch n.Kind() {
	case document.KindString:
		s, _ := n.Str()
		return substituteString(s, bindings)
	case document.KindSequence:
		items := n.Items()
		for i, item := range items {
			items[i] = substitute(item, bindings)
		}
		return document.Sequence(items...)
	case document.KindMap:
		entries := n.Entries()
		for k, v := range entries {
			entries[k] = substitute(v, bindings)
		}
		return document.Map(entries)
	default:
		return n
	}
}

func substituteString(s string, bindings Bindings) document.Node {
	if name, ok := soleToken(s); ok {
		return bindings[name]
	}
	out := placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := token[2 : len(token)-1]
		return bindings[name].Text()
	})
	return document.String(out)
}

// EmbeddedPlaceholders reports, per binding, the placeholder names that
// appear inside bound string values. Resolve inserts such text verbatim;
// callers use this to surface the fact to authors.
func EmbeddedPlaceholders(bindings Bindings) map[string][]string {
	out := map[string][]string{}
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if found := ExtractOrdered(bindings[name]); len(found) > 0 {
			out[name] = found
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
