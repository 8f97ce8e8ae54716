// Package document implements the generic map / sequence / scalar tree used
// for templates, resolved edit documents, and plan payloads.
//
// A Node is an immutable value. Constructors copy their inputs, and accessors
// that return collections return copies, so a Node can be shared freely once
// built.
package document

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the shape of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a single document value. The zero Node is null.
type Node struct {
	kind Kind
	b    bool
	n    float64
	s    string
	seq  []Node
	m    map[string]Node
}

// Null returns the null scalar.
func Null() Node { return Node{} }

// Bool returns a boolean scalar.
func Bool(v bool) Node { return Node{kind: KindBool, b: v} }

// Number returns a numeric scalar.
func Number(v float64) Node { return Node{kind: KindNumber, n: v} }

// String returns a string scalar.
func String(v string) Node { return Node{kind: KindString, s: v} }

// Sequence returns an ordered list of nodes.
func Sequence(items ...Node) Node {
	seq := make([]Node, len(items))
	copy(seq, items)
	return Node{kind: KindSequence, seq: seq}
}

// Map returns a map node holding a copy of entries.
func Map(entries map[string]Node) Node {
	m := make(map[string]Node, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Node{kind: KindMap, m: m}
}

// Kind reports the node's shape.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether the node is the null scalar.
func (n Node) IsNull() bool { return n.kind == KindNull }

// IsScalar reports whether the node is a null, bool, number, or string.
func (n Node) IsScalar() bool {
	return n.kind != KindSequence && n.kind != KindMap
}

// Str returns the string value when the node is a string.
func (n Node) Str() (string, bool) {
	if n.kind != KindString {
		return "", false
	}
	return n.s, true
}

// Num returns the numeric value when the node is a number.
func (n Node) Num() (float64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	return n.n, true
}

// Boolean returns the boolean value when the node is a bool.
func (n Node) Boolean() (bool, bool) {
	if n.kind != KindBool {
		return false, false
	}
	return n.b, true
}

// Len returns the number of items in a sequence or entries in a map.
func (n Node) Len() int {
	switch n.kind {
	case KindSequence:
		return len(n.seq)
	case KindMap:
		return len(n.m)
	default:
		return 0
	}
}

// Items returns a copy of the sequence items. Non-sequences return nil.
func (n Node) Items() []Node {
	if n.kind != KindSequence {
		return nil
	}
	out := make([]Node, len(n.seq))
	copy(out, n.seq)
	return out
}

// Index returns the i-th sequence item.
func (n Node) Index(i int) (Node, bool) {
	if n.kind != KindSequence || i < 0 || i >= len(n.seq) {
		return Node{}, false
	}
	return n.seq[i], true
}

// Get returns the value stored under key when the node is a map.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindMap {
		return Node{}, false
	}
	v, ok := n.m[key]
	return v, ok
}

// Has reports whether a map node contains key.
func (n Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Keys returns the map keys in sorted order.
func (n Node) Keys() []string {
	if n.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(n.m))
	for k := range n.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the map entries.
func (n Node) Entries() map[string]Node {
	if n.kind != KindMap {
		return nil
	}
	out := make(map[string]Node, len(n.m))
	for k, v := range n.m {
		out[k] = v
	}
	return out
}

// With returns a copy of the map node with key set to value.
func (n Node) With(key string, value Node) Node {
	entries := n.Entries()
	if entries == nil {
		entries = map[string]Node{}
	}
	entries[key] = value
	return Node{kind: KindMap, m: entries}
}

// Without returns a copy of the map node with key removed.
func (n Node) Without(key string) Node {
	if n.kind != KindMap {
		return n
	}
	entries := n.Entries()
	delete(entries, key)
	return Node{kind: KindMap, m: entries}
}

// GetString returns the string stored under key.
func (n Node) GetString(key string) (string, bool) {
	v, ok := n.Get(key)
	if !ok {
		return "", false
	}
	return v.Str()
}

// GetNumber returns the number stored under key.
func (n Node) GetNumber(key string) (float64, bool) {
	v, ok := n.Get(key)
	if !ok {
		return 0, false
	}
	return v.Num()
}

// GetBool returns the boolean stored under key.
func (n Node) GetBool(key string) (bool, bool) {
	v, ok := n.Get(key)
	if !ok {
		return false, false
	}
	return v.Boolean()
}

// Text renders a scalar as text: strings verbatim, numbers in their
// shortest form, booleans as true/false, and null as "null". Collections
// render as their kind name.
func (n Node) Text() string {
	switch n.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(n.b)
	case KindNumber:
		return formatNumber(n.n)
	case KindString:
		return n.s
	default:
		return n.kind.String()
	}
}

// Equal reports deep equality.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindNull:
		return true
	case KindBool:
		return n.b == other.b
	case KindNumber:
		return n.n == other.n
	case KindString:
		return n.s == other.s
	case KindSequence:
		if len(n.seq) != len(other.seq) {
			return false
		}
		for i := range n.seq {
			if !n.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(n.m) != len(other.m) {
			return false
		}
		for k, v := range n.m {
			ov, ok := other.m[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// String implements fmt.Stringer for debugging output.
func (n Node) String() string {
	switch n.kind {
	case KindString:
		return strconv.Quote(n.s)
	case KindSequence:
		out := "["
		for i, item := range n.seq {
			if i > 0 {
				out += ", "
			}
			out += item.String()
		}
		return out + "]"
	case KindMap:
		out := "{"
		for i, k := range n.Keys() {
			if i > 0 {
				out += ", "
			}
			out += strconv.Quote(k) + ": " + n.m[k].String()
		}
		return out + "}"
	default:
		return n.Text()
	}
}

func formatNumber(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
