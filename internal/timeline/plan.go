// Package timeline compiles a resolved edit document into a composition
// plan: a concatenated main track, independent overlays, and mixed audio,
// each element carrying its source interval, placement, and effect chain.
package timeline

import (
	"vidcompose/internal/assets"
	"vidcompose/internal/effects"
)

// Kind is the element's source type.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindGIF   Kind = "gif"
	KindText  Kind = "text"
	KindAudio Kind = "audio"
)

// Canvas is the output frame.
type Canvas struct {
	Width  int
	Height int
	FPS    float64
}

// Size returns the canvas extent.
func (c Canvas) Size() effects.Size {
	return effects.Size{W: float64(c.Width), H: float64(c.Height)}
}

// Interval is a half-open span [Start, End) in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Span returns End - Start.
func (i Interval) Span() float64 { return i.End - i.Start }

// Segment is one repetition of a looped source, placed at Offset seconds
// from the element's start.
type Segment struct {
	Source Interval
	Offset float64
}

// Loop lists the repetitions that fill an element whose span exceeds its
// source. Segments are contiguous and only the last may be truncated.
type Loop struct {
	Count    int
	Segments []Segment
}

// Style describes how a text element is drawn.
type Style struct {
	Font       string
	FontSize   float64
	Color      string
	Background *Fill
}

// Fill is a solid colour area.
type Fill struct {
	Color    string
	Opacity  float64
	Duration float64
}

// Element is one placed item of the plan.
type Element struct {
	Kind Kind
	// Index is the element's position in its document section.
	Index int
	Asset assets.Ref
	Text  string
	// Source is the interval taken from the asset. For a looped element it
	// runs from the in-point for the whole span and Loop holds the actual
	// source cuts.
	Source Interval
	// Offset is where the element starts on the output timeline.
	Offset    float64
	Loop      *Loop
	Position  effects.Position
	Size      *effects.Size
	Opacity   float64
	Volume    float64
	Style     *Style
	Effects   effects.Chain
	Animation *effects.Animation
}

// Span is the element's length on the output timeline.
func (e Element) Span() float64 { return e.Source.Span() }

// End is the element's end on the output timeline.
func (e Element) End() float64 { return e.Offset + e.Span() }

// Layers expands the element's effect chain into its drawing stack.
func (e Element) Layers() effects.Stack {
	return effects.Expand(e.Effects, effects.Subject{Text: e.Kind == KindText})
}

// Placement returns the element's top-left corner over time. elem is the
// drawn size, which for text is only known to the renderer.
func (e Element) Placement(canvas Canvas, elem effects.Size) effects.PlacementFunc {
	if e.Animation == nil {
		origin := e.Position.Resolve(canvas.Size(), elem)
		return func(float64) effects.Point { return origin }
	}
	return e.Animation.Placement(e.Position, canvas.Size(), elem, e.Span())
}

// Reveal returns the element's reveal schedule. Text reveals one
// character at a time under a typewriter animation.
func (e Element) Reveal() effects.Reveal {
	units := 1
	if e.Kind == KindText {
		units = len([]rune(e.Text))
	}
	if e.Animation == nil {
		return effects.Reveal{Units: 1, Step: e.Span()}
	}
	return e.Animation.Reveal(units, e.Span())
}

// Plan is the compiled composition.
type Plan struct {
	Canvas    Canvas
	MainTrack []Element
	Overlays  []Element
	Audio     []Element
	// Background is set when the main track is empty.
	Background *Fill
}

// Duration is the length of the main track, or of the background fill.
func (p Plan) Duration() float64 {
	if p.Background != nil {
		return p.Background.Duration
	}
	if len(p.MainTrack) == 0 {
		return 0
	}
	return p.MainTrack[len(p.MainTrack)-1].End()
}
