// Package template extracts ${name} placeholders from documents and
// substitutes caller-supplied bindings back into them.
package template

import (
	"regexp"
	"sort"

	"vidcompose/pkg/document"
)

// placeholderPattern matches a single ${identifier} token.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// identifierPattern matches a bare identifier.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// VarSet is an unordered set of variable names.
type VarSet map[string]struct{}

// Add inserts name into the set.
func (s VarSet) Add(name string) { s[name] = struct{}{} }

// Has reports whether name is in the set.
func (s VarSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Minus returns the members of s that are not in other.
func (s VarSet) Minus(other VarSet) VarSet {
	out := make(VarSet)
	for name := range s {
		if !other.Has(name) {
			out.Add(name)
		}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s VarSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ValidIdentifier reports whether name can appear inside a placeholder.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Extract returns every variable referenced by a placeholder in any string
// scalar of doc. Map keys and non-string scalars are ignored, as are
// malformed tokens such as "${" without a closing brace.
func Extract(doc document.Node) VarSet {
	out := make(VarSet)
	for _, name := range ExtractOrdered(doc) {
		out.Add(name)
	}
	return out
}

// ExtractOrdered returns referenced variables in first-occurrence order,
// visiting map entries in sorted key order.
func ExtractOrdered(doc document.Node) []string {
	var (
		names []string
		seen  = make(VarSet)
	)
	document.Walk(doc, func(_ document.Path, n document.Node) bool {
		s, ok := n.Str()
		if !ok {
			return true
		}
		for _, name := range tokens(s) {
			if seen.Has(name) {
				continue
			}
			seen.Add(name)
			names = append(names, name)
		}
		return true
	})
	return names
}

func tokens(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// soleToken returns the identifier when s consists of exactly one
// placeholder and nothing else.
func soleToken(s string) (string, bool) {
	loc := placeholderPattern.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] != len(s) {
		return "", false
	}
	return s[loc[2]:loc[3]], true
}
