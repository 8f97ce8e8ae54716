package document

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FromAny converts decoded JSON/YAML values into a Node. Supported inputs are
// nil, bool, the Go integer and float kinds, json.Number, string, []any,
// map[string]any, and map[any]any with string keys.
func FromAny(v any) (Node, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case Node:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int8:
		return Number(float64(val)), nil
	case int16:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case uint:
		return Number(float64(val)), nil
	case uint8:
		return Number(float64(val)), nil
	case uint16:
		return Number(float64(val)), nil
	case uint32:
		return Number(float64(val)), nil
	case uint64:
		return Number(float64(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Node{}, fmt.Errorf("parse number %q: %w", val.String(), err)
		}
		return Number(f), nil
	case []any:
		seq := make([]Node, 0, len(val))
		for i, item := range val {
			child, err := FromAny(item)
			if err != nil {
				return Node{}, fmt.Errorf("[%d]: %w", i, err)
			}
			seq = append(seq, child)
		}
		return Node{kind: KindSequence, seq: seq}, nil
	case map[string]any:
		m := make(map[string]Node, len(val))
		for k, item := range val {
			child, err := FromAny(item)
			if err != nil {
				return Node{}, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = child
		}
		return Node{kind: KindMap, m: m}, nil
	case map[any]any:
		m := make(map[string]Node, len(val))
		for k, item := range val {
			key, ok := k.(string)
			if !ok {
				return Node{}, fmt.Errorf("map key %v is %T, want string", k, k)
			}
			child, err := FromAny(item)
			if err != nil {
				return Node{}, fmt.Errorf("%s: %w", key, err)
			}
			m[key] = child
		}
		return Node{kind: KindMap, m: m}, nil
	default:
		return Node{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// ToAny converts the node back into plain Go values suitable for any
// encoder: nil, bool, float64, string, []any, and map[string]any.
func (n Node) ToAny() any {
	switch n.kind {
	case KindNull:
		return nil
	case KindBool:
		return n.b
	case KindNumber:
		return n.n
	case KindString:
		return n.s
	case KindSequence:
		out := make([]any, len(n.seq))
		for i, item := range n.seq {
			out[i] = item.ToAny()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(n.m))
		for k, v := range n.m {
			out[k] = v.ToAny()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes the node as plain JSON.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToAny())
}

// MarshalYAML lets yaml.v3 encode nodes as plain values.
func (n Node) MarshalYAML() (any, error) {
	return n.ToAny(), nil
}

// Walk visits every node depth-first, parents before children. Map entries
// are visited in sorted key order. Returning false from fn skips the
// node's children.
func Walk(root Node, fn func(path Path, n Node) bool) {
	walk(nil, root, fn)
}

func walk(path Path, n Node, fn func(Path, Node) bool) {
	if !fn(path, n) {
		return
	}
	switch n.kind {
	case KindSequence:
		for i, item := range n.seq {
			walk(path.Index(i), item, fn)
		}
	case KindMap:
		keys := make([]string, 0, len(n.m))
		for k := range n.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(path.Key(k), n.m[k], fn)
		}
	}
}
