package timeline

import (
	"context"
	"fmt"
	"math"

	"vidcompose/internal/assets"
	"vidcompose/internal/effects"
	"vidcompose/internal/validate"
	"vidcompose/pkg/document"
)

// Defaults applied when neither the options nor the document set a value.
const (
	DefaultWidth            = 1920
	DefaultHeight           = 1080
	DefaultFPS              = 24
	DefaultFallbackDuration = 30
	DefaultFallbackColor    = "black"
	DefaultFont             = "Arial.ttf"
	DefaultFontSize         = 48
	DefaultTextColor        = "white"
)

// loopEpsilon drops float residue at the end of a loop.
const loopEpsilon = 1e-9

// Logger keeps the subset of log.Logger used by the compiler.
type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Options tunes compilation.
type Options struct {
	// Canvas is used for any dimension the document's output section
	// leaves unset.
	Canvas Canvas
	// FallbackDuration and FallbackColor describe the background used
	// when no main-track element survives.
	FallbackDuration float64
	FallbackColor    string
	Assets           assets.CheckOptions
	Logger           Logger
}

// DefaultOptions returns the standard compiler settings.
func DefaultOptions() Options {
	return Options{
		Canvas:           Canvas{Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS},
		FallbackDuration: DefaultFallbackDuration,
		FallbackColor:    DefaultFallbackColor,
		Assets:           assets.CheckOptions{Concurrency: 4},
	}
}

func (o Options) withDefaults() Options {
	if o.Canvas.Width <= 0 {
		o.Canvas.Width = DefaultWidth
	}
	if o.Canvas.Height <= 0 {
		o.Canvas.Height = DefaultHeight
	}
	if o.Canvas.FPS <= 0 {
		o.Canvas.FPS = DefaultFPS
	}
	if o.FallbackDuration <= 0 {
		o.FallbackDuration = DefaultFallbackDuration
	}
	if o.FallbackColor == "" {
		o.FallbackColor = DefaultFallbackColor
	}
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
	if o.Assets.Logger == nil {
		o.Assets.Logger = o.Logger
	}
	return o
}

// Compile checks every referenced asset against catalog, then builds the
// plan. Problems local to one element drop that element and add a warning;
// the returned error is reserved for a malformed root or a cancelled
// context.
func Compile(ctx context.Context, doc document.Node, catalog assets.Catalog, opts Options) (Plan, validate.Report, error) {
	opts = opts.withDefaults()
	if doc.Kind() != document.KindMap {
		return Plan{}, nil, fmt.Errorf("compile: document must be a map, got %s", doc.Kind())
	}

	found, err := assets.Check(ctx, assets.Required(doc), catalog, opts.Assets)
	if err != nil {
		return Plan{}, nil, fmt.Errorf("compile: %w", err)
	}

	c := &compiler{
		found:  found,
		logger: opts.Logger,
		plan:   Plan{Canvas: canvasFor(doc, opts.Canvas)},
	}
	c.compileMainTrack(doc)
	c.compileOverlays(doc)
	c.compileAudio(doc)

	if len(c.plan.MainTrack) == 0 {
		c.plan.Background = &Fill{Color: opts.FallbackColor, Opacity: 1, Duration: opts.FallbackDuration}
		c.warn(validate.CodeEmptyMainTrack, validate.SectionEditing, "no main-track element compiled; using a %gs %s background", opts.FallbackDuration, opts.FallbackColor)
	}
	c.logger.Printf("compiled plan: main=%d overlays=%d audio=%d duration=%.2fs warnings=%d",
		len(c.plan.MainTrack), len(c.plan.Overlays), len(c.plan.Audio), c.plan.Duration(), len(c.report))
	return c.plan, c.report, nil
}

type compiler struct {
	found  assets.Result
	logger Logger
	plan   Plan
	report validate.Report
}

func (c *compiler) warn(code validate.Code, subject, format string, args ...any) {
	issue := validate.Warnf(code, subject, format, args...)
	c.report = append(c.report, issue)
	c.logger.Printf("%s", issue)
}

func canvasFor(doc document.Node, base Canvas) Canvas {
	out, ok := doc.Get(validate.SectionOutput)
	if !ok {
		return base
	}
	if w, ok := out.GetNumber("width"); ok && w > 0 {
		base.Width = int(w)
	}
	if h, ok := out.GetNumber("height"); ok && h > 0 {
		base.Height = int(h)
	}
	if fps, ok := out.GetNumber("fps"); ok && fps > 0 {
		base.FPS = fps
	}
	return base
}

func sectionEntries(doc document.Node, section string) []document.Node {
	list, ok := doc.Get(section)
	if !ok || list.Kind() != document.KindSequence {
		return nil
	}
	return list.Items()
}

func (c *compiler) compileMainTrack(doc document.Node) {
	offset := 0.0
	for i, entry := range sectionEntries(doc, validate.SectionEditing) {
		at := fmt.Sprintf("%s[%d]", validate.SectionEditing, i)
		if entry.Kind() != document.KindMap {
			continue
		}
		ref, source, ok := c.lookup(entry, assets.Video, at)
		if !ok {
			continue
		}

		el := Element{Kind: KindVideo, Index: i, Asset: ref, Opacity: 1, Position: effects.Center}
		if loop, _ := entry.GetBool("loop"); loop {
			el.Source, el.Loop, ok = c.loopInterval(entry, source, at)
		} else {
			el.Source, ok = c.clampInterval(entry, source, at)
		}
		if !ok {
			continue
		}
		c.decorate(&el, entry)
		el.Offset = offset
		offset += el.Span()
		c.plan.MainTrack = append(c.plan.MainTrack, el)
	}
}

func (c *compiler) compileOverlays(doc document.Node) {
	for i, entry := range sectionEntries(doc, validate.SectionOverlays) {
		at := fmt.Sprintf("%s[%d]", validate.SectionOverlays, i)
		if entry.Kind() != document.KindMap {
			continue
		}
		kind, _ := entry.GetString("type")
		el := Element{Kind: Kind(kind), Index: i, Opacity: 1}
		el.Offset, _ = entry.GetNumber("start_time")

		var ok bool
		switch el.Kind {
		case KindVideo:
			var source assets.Entry
			if el.Asset, source, ok = c.lookup(entry, assets.Video, at); ok {
				el.Source, ok = c.clampInterval(entry, source, at)
			}
		case KindGIF:
			var source assets.Entry
			if el.Asset, source, ok = c.lookup(entry, assets.GIF, at); ok {
				el.Source, el.Loop, ok = c.gifInterval(entry, source, at)
			}
		case KindImage:
			if el.Asset, _, ok = c.lookup(entry, assets.Image, at); ok {
				el.Source, ok = c.declaredSpan(entry, at)
			}
		case KindText:
			el.Text, _ = entry.GetString("text")
			el.Style = textStyle(entry)
			el.Source, ok = c.declaredSpan(entry, at)
		default:
			c.warn(validate.CodeUnknownType, at, "overlay type %q is not supported; skipped", kind)
		}
		if !ok {
			continue
		}

		el.Position = effects.Center
		if raw, has := entry.Get("position"); has {
			if pos, err := effects.ParsePosition(raw); err == nil {
				el.Position = pos
			}
		}
		if raw, has := entry.Get("size"); has {
			if frac, ok := pair(raw); ok {
				el.Size = &effects.Size{W: frac.X * float64(c.plan.Canvas.Width), H: frac.Y * float64(c.plan.Canvas.Height)}
			}
		}
		if op, has := entry.GetNumber("opacity"); has {
			el.Opacity = op
		}
		c.decorate(&el, entry)
		c.plan.Overlays = append(c.plan.Overlays, el)
	}
}

func (c *compiler) compileAudio(doc document.Node) {
	for i, entry := range sectionEntries(doc, validate.SectionAudio) {
		at := fmt.Sprintf("%s[%d]", validate.SectionAudio, i)
		if entry.Kind() != document.KindMap {
			continue
		}
		ref, source, ok := c.lookup(entry, assets.Audio, at)
		if !ok {
			continue
		}
		interval, ok := c.clampInterval(entry, source, at)
		if !ok {
			continue
		}
		el := Element{Kind: KindAudio, Index: i, Asset: ref, Source: interval, Volume: 1}
		if v, has := entry.GetNumber("volume"); has {
			el.Volume = v
		}
		el.Offset, _ = entry.GetNumber("offset")
		c.decorate(&el, entry)
		c.plan.Audio = append(c.plan.Audio, el)
	}
}

// lookup resolves the element's asset. A missing asset name or an asset the
// catalog could not find drops the element.
func (c *compiler) lookup(entry document.Node, cat assets.Category, at string) (assets.Ref, assets.Entry, bool) {
	name, _ := entry.GetString("asset")
	if name == "" {
		c.warn(validate.CodeMissingAsset, at, "%s element has no asset; skipped", cat)
		return assets.Ref{}, assets.Entry{}, false
	}
	ref := assets.Ref{Category: cat, Name: name}
	source, ok := c.found.Found(ref)
	if !ok {
		reason := c.found.Missing[ref]
		if reason == "" {
			reason = "not in catalog"
		}
		c.warn(validate.CodeAssetNotFound, at, "%s asset %q not found (%s); skipped", cat, name, reason)
		return ref, assets.Entry{}, false
	}
	return ref, source, true
}

// clampInterval reads [start_time, end_time) and clamps it to the source.
// A missing end_time means the end of the source.
func (c *compiler) clampInterval(entry document.Node, source assets.Entry, at string) (Interval, bool) {
	start, _ := entry.GetNumber("start_time")
	end, hasEnd := entry.GetNumber("end_time")
	duration, known := source.KnownDuration()

	if !hasEnd {
		if !known {
			c.warn(validate.CodeInvalidInterval, at, "no end_time and the source duration is unknown; skipped")
			return Interval{}, false
		}
		end = duration
	}
	if start < 0 {
		c.warn(validate.CodeInvalidInterval, at, "start_time %gs is negative; skipped", start)
		return Interval{}, false
	}
	if known && start >= duration {
		c.warn(validate.CodeInvalidInterval, at, "start_time %gs is at or past the source end %gs; skipped", start, duration)
		return Interval{}, false
	}
	if start >= end {
		c.warn(validate.CodeInvalidInterval, at, "start_time %gs is not before end_time %gs; skipped", start, end)
		return Interval{}, false
	}
	if known && end > duration {
		c.warn(validate.CodeClampedInterval, at, "end_time %gs clamped to the source duration %gs", end, duration)
		end = duration
	}
	return Interval{Start: start, End: end}, true
}

// loopInterval fills the requested span by repeating the source. The first
// repetition starts at start_time and later ones at the source beginning.
// Spans that fit the source are clamped as usual.
func (c *compiler) loopInterval(entry document.Node, source assets.Entry, at string) (Interval, *Loop, bool) {
	start, _ := entry.GetNumber("start_time")
	end, hasEnd := entry.GetNumber("end_time")
	duration, known := source.KnownDuration()
	if !hasEnd || !known || end <= duration {
		interval, ok := c.clampInterval(entry, source, at)
		return interval, nil, ok
	}
	if start < 0 {
		c.warn(validate.CodeInvalidInterval, at, "start_time %gs is negative; skipped", start)
		return Interval{}, nil, false
	}
	if start >= duration {
		c.warn(validate.CodeInvalidInterval, at, "start_time %gs is at or past the source end %gs; skipped", start, duration)
		return Interval{}, nil, false
	}
	span := end - start
	return Interval{Start: start, End: end}, loopSegments(start, span, duration), true
}

// gifInterval plays [0, span) of the source, looping when the span is
// longer than the source.
func (c *compiler) gifInterval(entry document.Node, source assets.Entry, at string) (Interval, *Loop, bool) {
	duration, known := source.KnownDuration()
	start, _ := entry.GetNumber("start_time")
	if start < 0 {
		c.warn(validate.CodeInvalidInterval, at, "start_time %gs is negative; skipped", start)
		return Interval{}, nil, false
	}
	end, hasEnd := entry.GetNumber("end_time")
	if !hasEnd {
		if !known {
			c.warn(validate.CodeInvalidInterval, at, "no end_time and the source duration is unknown; skipped")
			return Interval{}, nil, false
		}
		end = start + duration
	}
	span := end - start
	if span <= 0 {
		c.warn(validate.CodeInvalidInterval, at, "start_time %gs is not before end_time %gs; skipped", start, end)
		return Interval{}, nil, false
	}
	if known && span > duration {
		return Interval{Start: 0, End: span}, loopSegments(0, span, duration), true
	}
	return Interval{Start: 0, End: span}, nil, true
}

// declaredSpan is used by elements without a timed source.
func (c *compiler) declaredSpan(entry document.Node, at string) (Interval, bool) {
	start, _ := entry.GetNumber("start_time")
	if start < 0 {
		c.warn(validate.CodeInvalidInterval, at, "start_time %gs is negative; skipped", start)
		return Interval{}, false
	}
	end, hasEnd := entry.GetNumber("end_time")
	if !hasEnd || end <= start {
		c.warn(validate.CodeInvalidInterval, at, "needs an end_time after start_time %gs; skipped", start)
		return Interval{}, false
	}
	return Interval{Start: 0, End: end - start}, true
}

// loopSegments covers span seconds with repetitions of a source of the
// given duration. The first repetition starts at from, the rest at 0. Each
// one begins exactly where the previous ends and the last is cut to the
// remaining span.
func loopSegments(from, span, duration float64) *Loop {
	var segments []Segment
	for offset := 0.0; span-offset > loopEpsilon; from = 0 {
		length := math.Min(duration-from, span-offset)
		segments = append(segments, Segment{
			Source: Interval{Start: from, End: from + length},
			Offset: offset,
		})
		offset += length
	}
	return &Loop{Count: len(segments), Segments: segments}
}

// decorate attaches the effect chain and animation as declared. Entries
// that fail to parse are reported by validation and left out here.
func (c *compiler) decorate(el *Element, entry document.Node) {
	if raw, ok := entry.Get("effects"); ok {
		el.Effects, _ = effects.ParseChain(raw)
	}
	if raw, ok := entry.Get("animation"); ok && !raw.IsNull() {
		if anim, err := effects.ParseAnimation(raw); err == nil {
			el.Animation = &anim
		}
	}
}

func textStyle(entry document.Node) *Style {
	style := &Style{Font: DefaultFont, FontSize: DefaultFontSize, Color: DefaultTextColor}
	if font, ok := entry.GetString("font"); ok && font != "" {
		style.Font = font
	}
	if size, ok := entry.GetNumber("font_size"); ok && size > 0 {
		style.FontSize = size
	}
	if color, ok := entry.GetString("color"); ok && color != "" {
		style.Color = color
	}
	if bg, ok := entry.Get("background"); ok && bg.Kind() == document.KindMap {
		fill := &Fill{Color: DefaultFallbackColor, Opacity: 1}
		if color, ok := bg.GetString("color"); ok && color != "" {
			fill.Color = color
		}
		if op, ok := bg.GetNumber("opacity"); ok {
			fill.Opacity = op
		}
		style.Background = fill
	}
	return style
}

func pair(n document.Node) (effects.Point, bool) {
	if n.Kind() != document.KindSequence || n.Len() != 2 {
		return effects.Point{}, false
	}
	x, _ := n.Index(0)
	y, _ := n.Index(1)
	xv, okX := x.Num()
	yv, okY := y.Num()
	if !okX || !okY {
		return effects.Point{}, false
	}
	return effects.Point{X: xv, Y: yv}, true
}
