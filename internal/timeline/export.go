package timeline

import (
	"vidcompose/internal/effects"
	"vidcompose/pkg/document"
)

// Node renders the plan as a document tree for encoding. Each element
// carries its expanded layer stack so the renderer needs no knowledge of
// structural effects.
func (p Plan) Node() document.Node {
	entries := map[string]document.Node{
		"canvas": document.Map(map[string]document.Node{
			"width":  document.Number(float64(p.Canvas.Width)),
			"height": document.Number(float64(p.Canvas.Height)),
			"fps":    document.Number(p.Canvas.FPS),
		}),
		"duration":   document.Number(p.Duration()),
		"main_track": elementList(p.MainTrack),
		"overlays":   overlayList(p.Overlays, p.Canvas),
		"audio":      elementList(p.Audio),
	}
	if p.Background != nil {
		entries["background"] = p.Background.node()
	}
	return document.Map(entries)
}

func elementList(els []Element) document.Node {
	items := make([]document.Node, len(els))
	for i, el := range els {
		items[i] = el.Node()
	}
	return document.Sequence(items...)
}

// overlayList adds the resolved top-left corner at the element's first and
// last instant for overlays whose drawn size is known.
func overlayList(els []Element, canvas Canvas) document.Node {
	items := make([]document.Node, len(els))
	for i, el := range els {
		n := el.Node()
		if el.Size != nil {
			place := el.Placement(canvas, *el.Size)
			n = n.With("placement", document.Map(map[string]document.Node{
				"start": pointNode(place(0)),
				"end":   pointNode(place(el.Span())),
			}))
		}
		items[i] = n
	}
	return document.Sequence(items...)
}

// Node renders a single element.
func (e Element) Node() document.Node {
	m := map[string]document.Node{
		"kind":   document.String(string(e.Kind)),
		"index":  document.Number(float64(e.Index)),
		"offset": document.Number(e.Offset),
		"source": e.Source.node(),
	}
	if e.Asset.Name != "" {
		m["asset"] = document.String(e.Asset.Name)
	}
	if e.Kind == KindText {
		m["text"] = document.String(e.Text)
	}
	if e.Loop != nil {
		segs := make([]document.Node, len(e.Loop.Segments))
		for i, s := range e.Loop.Segments {
			segs[i] = document.Map(map[string]document.Node{
				"source": s.Source.node(),
				"offset": document.Number(s.Offset),
			})
		}
		m["loop"] = document.Map(map[string]document.Node{
			"count":    document.Number(float64(e.Loop.Count)),
			"segments": document.Sequence(segs...),
		})
	}
	if e.Kind == KindAudio {
		m["volume"] = document.Number(e.Volume)
	} else {
		m["opacity"] = document.Number(e.Opacity)
		m["position"] = positionNode(e.Position)
	}
	if e.Size != nil {
		m["size"] = document.Map(map[string]document.Node{
			"w": document.Number(e.Size.W),
			"h": document.Number(e.Size.H),
		})
	}
	if e.Style != nil {
		style := map[string]document.Node{
			"font":      document.String(e.Style.Font),
			"font_size": document.Number(e.Style.FontSize),
			"color":     document.String(e.Style.Color),
		}
		if e.Style.Background != nil {
			style["background"] = e.Style.Background.node()
		}
		m["style"] = document.Map(style)
	}
	if len(e.Effects) > 0 {
		m["effects"] = chainNode(e.Effects)
		m["layers"] = stackNode(e.Layers())
	}
	if e.Animation != nil {
		m["animation"] = e.Animation.Node()
	}
	return document.Map(m)
}

func (i Interval) node() document.Node {
	return document.Map(map[string]document.Node{
		"start": document.Number(i.Start),
		"end":   document.Number(i.End),
	})
}

func (f Fill) node() document.Node {
	m := map[string]document.Node{
		"color":   document.String(f.Color),
		"opacity": document.Number(f.Opacity),
	}
	if f.Duration > 0 {
		m["duration"] = document.Number(f.Duration)
	}
	return document.Map(m)
}

func axisNode(a effects.Axis) document.Node {
	if a.Centered {
		return document.String("center")
	}
	return document.Number(a.Frac)
}

func pointNode(p effects.Point) document.Node {
	return document.Map(map[string]document.Node{
		"x": document.Number(p.X),
		"y": document.Number(p.Y),
	})
}

func positionNode(p effects.Position) document.Node {
	return document.Map(map[string]document.Node{
		"x": axisNode(p.X),
		"y": axisNode(p.Y),
	})
}

func chainNode(chain effects.Chain) document.Node {
	items := make([]document.Node, len(chain))
	for i, spec := range chain {
		items[i] = spec.Node()
	}
	return document.Sequence(items...)
}

func stackNode(stack effects.Stack) document.Node {
	items := make([]document.Node, len(stack))
	for i, layer := range stack {
		m := map[string]document.Node{
			"role":    document.String(layer.Role.String()),
			"opacity": document.Number(layer.Opacity),
			"offset": document.Map(map[string]document.Node{
				"x": document.Number(layer.Offset.X),
				"y": document.Number(layer.Offset.Y),
			}),
		}
		if layer.From != "" {
			m["from"] = document.String(string(layer.From))
		}
		if layer.Tint != "" {
			m["tint"] = document.String(layer.Tint)
		}
		if len(layer.Effects) > 0 {
			m["effects"] = chainNode(layer.Effects)
		}
		items[i] = document.Map(m)
	}
	return document.Sequence(items...)
}
