// Package effects models the effect chains and animations attached to
// timeline elements. Effects are recorded, not executed: a Spec names an
// operation and its parameters, and Expand describes how structural
// effects turn one element into a stack of layers for the renderer.
package effects

import (
	"fmt"
	"strings"

	"vidcompose/pkg/document"
)

// Kind names an effect operation.
type Kind string

const (
	FadeIn     Kind = "fadein"
	FadeOut    Kind = "fadeout"
	Blur       Kind = "blur"
	ColorGrade Kind = "colorgrade"
	Distortion Kind = "distortion"
	Vignette   Kind = "vignette"
	Glitch     Kind = "glitch"
	Equalizer  Kind = "equalizer"
	Filter     Kind = "filter"
	Compressor Kind = "compressor"
	Glow       Kind = "glow"
	Outline    Kind = "outline"
	Shadow     Kind = "shadow"
)

// Class separates in-place transforms from effects that restructure the
// element into several layers.
type Class int

const (
	ClassUnknown Class = iota
	ClassFrameTransform
	ClassStructural
)

func (c Class) String() string {
	switch c {
	case ClassFrameTransform:
		return "frame_transform"
	case ClassStructural:
		return "structural"
	default:
		return "unknown"
	}
}

// Spec is one entry of an effect chain. Unrecognised kinds are kept as-is
// with ClassUnknown so the execution stage decides what to do with them.
type Spec struct {
	Kind   Kind
	Params map[string]document.Node
}

// Chain is an ordered list of effects; each consumes the output of the
// previous one.
type Chain []Spec

// NewSpec builds a Spec holding a copy of params.
func NewSpec(kind Kind, params map[string]document.Node) Spec {
	cp := make(map[string]document.Node, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return Spec{Kind: kind, Params: cp}
}

// Class reports how the effect composes.
func (s Spec) Class() Class {
	schema, ok := effectSchemas[s.Kind]
	if !ok {
		return ClassUnknown
	}
	return schema.Class
}

// Known reports whether the kind is part of the recognised set.
func (s Spec) Known() bool {
	_, ok := effectSchemas[s.Kind]
	return ok
}

// Param returns a parameter, falling back to the schema default.
func (s Spec) Param(name string) (document.Node, bool) {
	if v, ok := s.Params[name]; ok {
		return v, true
	}
	return schemaDefault(effectSchemas[s.Kind], name)
}

// Float returns a numeric parameter or its default.
func (s Spec) Float(name string) (float64, bool) {
	v, ok := s.Param(name)
	if !ok {
		return 0, false
	}
	return v.Num()
}

// Text returns a string parameter or its default.
func (s Spec) Text(name string) (string, bool) {
	v, ok := s.Param(name)
	if !ok {
		return "", false
	}
	return v.Str()
}

// Pair returns a two-number parameter such as an offset, or its default.
func (s Spec) Pair(name string) (Point, bool) {
	v, ok := s.Param(name)
	if !ok {
		return Point{}, false
	}
	return pairOf(v)
}

// Check reports parameter problems against the kind's schema. Unknown
// kinds have no schema and always pass.
func (s Spec) Check() []string {
	schema, ok := effectSchemas[s.Kind]
	if !ok {
		return nil
	}
	return schema.check(s.Params)
}

// Node renders the spec back into its document form.
func (s Spec) Node() document.Node {
	entries := make(map[string]document.Node, len(s.Params)+1)
	for k, v := range s.Params {
		entries[k] = v
	}
	entries["type"] = document.String(string(s.Kind))
	return document.Map(entries)
}

func (s Spec) String() string {
	return fmt.Sprintf("%s%s", s.Kind, document.Map(s.Params))
}

// ParseSpec reads an effect entry: a map whose "type" field names the kind
// and whose other fields are parameters.
func ParseSpec(n document.Node) (Spec, error) {
	if n.Kind() != document.KindMap {
		return Spec{}, fmt.Errorf("effect must be a map, got %s", n.Kind())
	}
	kind, ok := n.GetString("type")
	if !ok || strings.TrimSpace(kind) == "" {
		return Spec{}, fmt.Errorf("effect is missing a type")
	}
	return Spec{
		Kind:   Kind(strings.ToLower(strings.TrimSpace(kind))),
		Params: n.Without("type").Entries(),
	}, nil
}

// ParseChain reads a sequence of effect entries. Entries that cannot be
// parsed are skipped and reported by index.
func ParseChain(n document.Node) (Chain, []error) {
	if n.IsNull() {
		return nil, nil
	}
	if n.Kind() != document.KindSequence {
		return nil, []error{fmt.Errorf("effects must be a sequence, got %s", n.Kind())}
	}
	var (
		chain Chain
		errs  []error
	)
	for i, item := range n.Items() {
		spec, err := ParseSpec(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("effects[%d]: %w", i, err))
			continue
		}
		chain = append(chain, spec)
	}
	return chain, errs
}

// Clone returns a copy of the chain. Parameter maps are shared; Specs are
// never mutated in place.
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	copy(out, c)
	return out
}

// Kinds lists the chain's kinds in order.
func (c Chain) Kinds() []Kind {
	out := make([]Kind, len(c))
	for i, s := range c {
		out[i] = s.Kind
	}
	return out
}
