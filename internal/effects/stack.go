package effects

import "vidcompose/pkg/document"

// Role tells the renderer where a layer came from.
type Role int

const (
	// RoleOriginal is the declared element itself, always the top layer.
	RoleOriginal Role = iota
	// RoleDuplicate is a copy of the element derived by a structural effect.
	RoleDuplicate
	// RoleFill is a solid colour layer sized to the element.
	RoleFill
)

func (r Role) String() string {
	switch r {
	case RoleOriginal:
		return "original"
	case RoleDuplicate:
		return "duplicate"
	case RoleFill:
		return "fill"
	default:
		return "unknown"
	}
}

// Layer is one entry of an expanded element.
type Layer struct {
	Role    Role    `json:"role"`
	From    Kind    `json:"from,omitempty"`
	Offset  Point   `json:"offset"`
	Opacity float64 `json:"opacity"`
	Tint    string  `json:"tint,omitempty"`
	Effects Chain   `json:"effects,omitempty"`
}

// Stack lists layers bottom to top.
type Stack []Layer

// Top returns the topmost layer, which is always the original element.
func (s Stack) Top() Layer {
	if len(s) == 0 {
		return Layer{}
	}
	return s[len(s)-1]
}

// Derived returns every layer except the original.
func (s Stack) Derived() []Layer {
	if len(s) <= 1 {
		return nil
	}
	out := make([]Layer, len(s)-1)
	copy(out, s[:len(s)-1])
	return out
}

// Subject describes the element a chain is applied to. Outline and shadow
// redraw text and have no effect on other elements.
type Subject struct {
	Text bool
}

const glowTintOpacity = 0.3

// Expand applies chain to a single element and returns the resulting
// layer stack.
//
// Frame transforms and unknown kinds append to the original layer in chain
// order. A structural effect inserts derived layers directly beneath the
// original; every effect after it still applies to the original only.
// Glow blurs the element as it stands at that point in the chain, so its
// duplicate carries the transforms declared before the glow. Outline and
// shadow redraw the text from scratch and carry none.
func Expand(chain Chain, subject Subject) Stack {
	stack := Stack{{Role: RoleOriginal, Opacity: 1}}
	top := func() *Layer { return &stack[len(stack)-1] }

	for _, spec := range chain {
		if spec.Class() != ClassStructural {
			top().Effects = append(top().Effects, spec)
			continue
		}

		derived := deriveLayers(spec, *top(), subject)
		if len(derived) == 0 {
			continue
		}
		original := *top()
		stack = append(stack[:len(stack)-1], derived...)
		stack = append(stack, original)
	}
	return stack
}

func deriveLayers(spec Spec, original Layer, subject Subject) []Layer {
	switch spec.Kind {
	case Glow:
		color, _ := spec.Text("color")
		radius, _ := spec.Float("radius")
		blurred := original.Effects.Clone()
		blurred = append(blurred, NewSpec(Blur, map[string]document.Node{"radius": document.Number(radius)}))
		return []Layer{
			{Role: RoleDuplicate, From: Glow, Opacity: 1, Effects: blurred},
			{Role: RoleFill, From: Glow, Opacity: glowTintOpacity, Tint: color},
		}
	case Outline:
		if !subject.Text {
			return nil
		}
		color, _ := spec.Text("color")
		width, _ := spec.Float("width")
		offsets := []Point{{X: -width}, {X: width}, {Y: -width}, {Y: width}}
		layers := make([]Layer, 0, len(offsets))
		for _, off := range offsets {
			layers = append(layers, Layer{Role: RoleDuplicate, From: Outline, Offset: off, Opacity: 1, Tint: color})
		}
		return layers
	case Shadow:
		if !subject.Text {
			return nil
		}
		color, _ := spec.Text("color")
		offset, _ := spec.Pair("offset")
		opacity, _ := spec.Float("opacity")
		return []Layer{{Role: RoleDuplicate, From: Shadow, Offset: offset, Opacity: opacity, Tint: color}}
	}
	return nil
}
