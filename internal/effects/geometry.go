package effects

import (
	"fmt"
	"strings"

	"vidcompose/pkg/document"
)

// Point is a pixel coordinate or offset.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is a pixel extent.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Axis places an element along one dimension: either centred, or at a
// fraction of the canvas extent.
type Axis struct {
	Centered bool    `json:"centered,omitempty" yaml:"centered,omitempty"`
	Frac     float64 `json:"frac,omitempty" yaml:"frac,omitempty"`
}

// Position places an element on the canvas.
type Position struct {
	X Axis `json:"x" yaml:"x"`
	Y Axis `json:"y" yaml:"y"`
}

// Center is the default placement.
var Center = Position{X: Axis{Centered: true}, Y: Axis{Centered: true}}

var positionKeywords = map[string]Position{
	"center":        Center,
	"top-center":    {X: Axis{Centered: true}, Y: Axis{Frac: 0.1}},
	"bottom-center": {X: Axis{Centered: true}, Y: Axis{Frac: 0.9}},
	"top-left":      {X: Axis{Frac: 0.1}, Y: Axis{Frac: 0.1}},
	"top-right":     {X: Axis{Frac: 0.9}, Y: Axis{Frac: 0.1}},
	"bottom-left":   {X: Axis{Frac: 0.1}, Y: Axis{Frac: 0.9}},
	"bottom-right":  {X: Axis{Frac: 0.9}, Y: Axis{Frac: 0.9}},
}

// ParsePosition reads a keyword such as "top-left" or an [x, y] pair of
// canvas fractions. A null node yields Center.
func ParsePosition(n document.Node) (Position, error) {
	switch n.Kind() {
	case document.KindNull:
		return Center, nil
	case document.KindString:
		s, _ := n.Str()
		pos, ok := positionKeywords[strings.ToLower(strings.TrimSpace(s))]
		if !ok {
			return Center, fmt.Errorf("unknown position %q", s)
		}
		return pos, nil
	case document.KindSequence:
		p, ok := pairOf(n)
		if !ok {
			return Center, fmt.Errorf("position must be two numbers")
		}
		return Position{X: Axis{Frac: p.X}, Y: Axis{Frac: p.Y}}, nil
	default:
		return Center, fmt.Errorf("position must be a keyword or [x, y], got %s", n.Kind())
	}
}

// Resolve returns the element's top-left corner in pixels.
func (p Position) Resolve(canvas, elem Size) Point {
	return Point{
		X: p.X.resolve(canvas.W, elem.W),
		Y: p.Y.resolve(canvas.H, elem.H),
	}
}

func (a Axis) resolve(extent, elem float64) float64 {
	if a.Centered {
		return (extent - elem) / 2
	}
	return a.Frac * extent
}
