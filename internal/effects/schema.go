package effects

import (
	"fmt"
	"sort"

	"vidcompose/pkg/document"
)

// ParamType constrains a parameter value.
type ParamType int

const (
	TypeAny ParamType = iota
	TypeNumber
	TypeString
	TypePair
)

func (t ParamType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypePair:
		return "[x, y] pair"
	default:
		return "any"
	}
}

// Param describes one parameter of an effect or animation.
type Param struct {
	Name     string
	Type     ParamType
	Required bool
	Default  document.Node
}

// Schema describes a known effect or animation kind.
type Schema struct {
	Class  Class
	Params []Param
}

func num(v float64) document.Node { return document.Number(v) }

var effectSchemas = map[Kind]Schema{
	FadeIn:  {Class: ClassFrameTransform, Params: []Param{{Name: "duration", Type: TypeNumber, Required: true}}},
	FadeOut: {Class: ClassFrameTransform, Params: []Param{{Name: "duration", Type: TypeNumber, Required: true}}},
	Blur:    {Class: ClassFrameTransform, Params: []Param{{Name: "radius", Type: TypeNumber, Default: num(5)}}},
	ColorGrade: {Class: ClassFrameTransform, Params: []Param{
		{Name: "brightness", Type: TypeNumber, Default: num(1)},
		{Name: "contrast", Type: TypeNumber, Default: num(1)},
		{Name: "saturation", Type: TypeNumber, Default: num(1)},
	}},
	Distortion: {Class: ClassFrameTransform, Params: []Param{{Name: "amount", Type: TypeNumber, Default: num(0.5)}}},
	Vignette:   {Class: ClassFrameTransform, Params: []Param{{Name: "strength", Type: TypeNumber, Default: num(0.5)}}},
	Glitch:     {Class: ClassFrameTransform, Params: []Param{{Name: "intensity", Type: TypeNumber, Default: num(0.5)}}},
	Equalizer: {Class: ClassFrameTransform, Params: []Param{
		{Name: "low", Type: TypeNumber, Default: num(0)},
		{Name: "mid", Type: TypeNumber, Default: num(0)},
		{Name: "high", Type: TypeNumber, Default: num(0)},
	}},
	Filter: {Class: ClassFrameTransform, Params: []Param{{Name: "name", Type: TypeString, Required: true}}},
	Compressor: {Class: ClassFrameTransform, Params: []Param{
		{Name: "threshold", Type: TypeNumber, Default: num(-20)},
		{Name: "ratio", Type: TypeNumber, Default: num(4)},
	}},
	Glow: {Class: ClassStructural, Params: []Param{
		{Name: "color", Type: TypeString, Required: true},
		{Name: "radius", Type: TypeNumber, Default: num(5)},
	}},
	Outline: {Class: ClassStructural, Params: []Param{
		{Name: "color", Type: TypeString, Required: true},
		{Name: "width", Type: TypeNumber, Default: num(2)},
	}},
	Shadow: {Class: ClassStructural, Params: []Param{
		{Name: "color", Type: TypeString, Default: document.String("black")},
		{Name: "offset", Type: TypePair, Default: document.Sequence(num(5), num(5))},
		{Name: "opacity", Type: TypeNumber, Default: num(0.5)},
	}},
}

// KnownEffects lists the recognised effect kinds in lexical order.
func KnownEffects() []Kind {
	out := make([]Kind, 0, len(effectSchemas))
	for k := range effectSchemas {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func schemaDefault(s Schema, name string) (document.Node, bool) {
	for _, p := range s.Params {
		if p.Name == name && p.Default.Kind() != document.KindNull {
			return p.Default, true
		}
	}
	return document.Node{}, false
}

func (s Schema) check(params map[string]document.Node) []string {
	var problems []string
	for _, p := range s.Params {
		v, ok := params[p.Name]
		if !ok {
			if p.Required {
				problems = append(problems, fmt.Sprintf("parameter %q is required", p.Name))
			}
			continue
		}
		if !p.Type.accepts(v) {
			problems = append(problems, fmt.Sprintf("parameter %q must be a %s, got %s", p.Name, p.Type, v.Kind()))
		}
	}
	return problems
}

func (t ParamType) accepts(v document.Node) bool {
	switch t {
	case TypeNumber:
		return v.Kind() == document.KindNumber
	case TypeString:
		return v.Kind() == document.KindString
	case TypePair:
		_, ok := pairOf(v)
		return ok
	default:
		return true
	}
}

func pairOf(v document.Node) (Point, bool) {
	if v.Kind() != document.KindSequence || v.Len() != 2 {
		return Point{}, false
	}
	first, _ := v.Index(0)
	second, _ := v.Index(1)
	x, ok1 := first.Num()
	y, ok2 := second.Num()
	if !ok1 || !ok2 {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}
