package effects

import (
	"fmt"
	"math"
	"strings"

	"vidcompose/pkg/document"
)

// AnimationKind names a placement animation.
type AnimationKind string

const (
	Bounce     AnimationKind = "bounce"
	Scroll     AnimationKind = "scroll"
	Typewriter AnimationKind = "typewriter"
)

// Scroll directions.
const (
	LeftToRight = "left_to_right"
	RightToLeft = "right_to_left"
)

var animationSchemas = map[AnimationKind]Schema{
	Bounce: {Params: []Param{
		{Name: "duration", Type: TypeNumber, Required: true},
		{Name: "height", Type: TypeNumber, Default: num(20)},
	}},
	Scroll: {Params: []Param{
		{Name: "duration", Type: TypeNumber, Required: true},
		{Name: "direction", Type: TypeString, Required: true},
	}},
	Typewriter: {Params: []Param{
		{Name: "duration", Type: TypeNumber, Required: true},
	}},
}

// Animation attaches a time-parameterised placement to an element. Unknown
// kinds are preserved and place the element statically.
type Animation struct {
	Kind   AnimationKind
	Params map[string]document.Node
}

// ParseAnimation reads an animation entry keyed by "type".
func ParseAnimation(n document.Node) (Animation, error) {
	if n.Kind() != document.KindMap {
		return Animation{}, fmt.Errorf("animation must be a map, got %s", n.Kind())
	}
	kind, ok := n.GetString("type")
	if !ok || strings.TrimSpace(kind) == "" {
		return Animation{}, fmt.Errorf("animation is missing a type")
	}
	return Animation{
		Kind:   AnimationKind(strings.ToLower(strings.TrimSpace(kind))),
		Params: n.Without("type").Entries(),
	}, nil
}

// Known reports whether the kind is recognised.
func (a Animation) Known() bool {
	_, ok := animationSchemas[a.Kind]
	return ok
}

// Check reports parameter problems against the kind's schema.
func (a Animation) Check() []string {
	schema, ok := animationSchemas[a.Kind]
	if !ok {
		return nil
	}
	problems := schema.check(a.Params)
	if a.Kind == Scroll {
		if dir, ok := a.Params["direction"]; ok {
			if s, _ := dir.Str(); s != "" && s != LeftToRight && s != RightToLeft {
				problems = append(problems, fmt.Sprintf("direction %q must be %s or %s", s, LeftToRight, RightToLeft))
			}
		}
	}
	return problems
}

// Node renders the animation back into its document form.
func (a Animation) Node() document.Node {
	entries := make(map[string]document.Node, len(a.Params)+1)
	for k, v := range a.Params {
		entries[k] = v
	}
	entries["type"] = document.String(string(a.Kind))
	return document.Map(entries)
}

func (a Animation) float(name string) (float64, bool) {
	v, ok := a.Params[name]
	if !ok {
		v, ok = schemaDefault(animationSchemas[a.Kind], name)
	}
	if !ok {
		return 0, false
	}
	return v.Num()
}

// Duration returns the animation's own duration, or fallback when it is
// missing or not positive.
func (a Animation) Duration(fallback float64) float64 {
	if d, ok := a.float("duration"); ok && d > 0 {
		return d
	}
	return fallback
}

// PlacementFunc maps elapsed time within an element's interval to the
// element's top-left corner.
type PlacementFunc func(t float64) Point

// Placement returns the animated position of an element whose static
// placement is base. span is the element's interval length and stands in
// for a missing duration.
func (a Animation) Placement(base Position, canvas, elem Size, span float64) PlacementFunc {
	origin := base.Resolve(canvas, elem)
	duration := a.Duration(span)
	if duration <= 0 {
		return func(float64) Point { return origin }
	}

	switch a.Kind {
	case Bounce:
		height, _ := a.float("height")
		return func(t float64) Point {
			offset := height * math.Abs(math.Sin(t*math.Pi/duration))
			return Point{X: origin.X, Y: origin.Y - offset}
		}
	case Scroll:
		dir, _ := a.Params["direction"].Str()
		switch dir {
		case LeftToRight:
			return func(t float64) Point {
				return Point{X: -elem.W + t*elem.W/duration, Y: origin.Y}
			}
		case RightToLeft:
			return func(t float64) Point {
				return Point{X: canvas.W + elem.W - t*elem.W/duration, Y: origin.Y}
			}
		}
	}
	return func(float64) Point { return origin }
}

// Reveal is a character-reveal schedule: unit i is visible during
// [i*Step, (i+1)*Step).
type Reveal struct {
	Units int
	Step  float64
}

// Reveal returns the schedule for revealing units sub-units of text over
// the animation's duration. Elements that are not text reveal as a single
// unit. Only typewriter animations produce more than one window.
func (a Animation) Reveal(units int, span float64) Reveal {
	if units < 1 {
		units = 1
	}
	duration := a.Duration(span)
	if a.Kind != Typewriter {
		return Reveal{Units: 1, Step: duration}
	}
	return Reveal{Units: units, Step: duration / float64(units)}
}

// Window returns the visibility interval of unit i.
func (r Reveal) Window(i int) (start, end float64) {
	start = float64(i) * r.Step
	return start, start + r.Step
}

// Visible reports whether unit i is shown at elapsed time t.
func (r Reveal) Visible(i int, t float64) bool {
	if i < 0 || i >= r.Units {
		return false
	}
	start, end := r.Window(i)
	return t >= start && t < end
}
