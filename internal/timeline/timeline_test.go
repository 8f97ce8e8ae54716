package timeline

import (
	"context"
	"math"
	"testing"

	"vidcompose/internal/assets"
	"vidcompose/internal/effects"
	"vidcompose/internal/validate"
	"vidcompose/pkg/document"
)

func mustYAML(t *testing.T, src string) document.Node {
	t.Helper()
	doc, err := document.DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	return doc
}

func video(name string, d float64) (assets.Ref, assets.Entry) {
	return assets.Ref{Category: assets.Video, Name: name}, assets.Entry{Exists: true, Duration: d, HasDuration: true}
}

func catalogOf(entries ...any) assets.MapCatalog {
	out := assets.MapCatalog{}
	for i := 0; i+1 < len(entries); i += 2 {
		out[entries[i].(assets.Ref)] = entries[i+1].(assets.Entry)
	}
	return out
}

func compile(t *testing.T, src string, catalog assets.Catalog) (Plan, validate.Report) {
	t.Helper()
	plan, report, err := Compile(context.Background(), mustYAML(t, src), catalog, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return plan, report
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestClampEndToSourceDuration(t *testing.T) {
	ref, entry := video("intro", 10)
	plan, report := compile(t, `
editing:
  - {asset: intro, start_time: 2, end_time: 15}
`, catalogOf(ref, entry))

	if len(plan.MainTrack) != 1 {
		t.Fatalf("expected one element, got %d", len(plan.MainTrack))
	}
	got := plan.MainTrack[0].Source
	if got.Start != 2 || got.End != 10 {
		t.Fatalf("interval = %+v, want [2, 10)", got)
	}
	clamped := report.WithCode(validate.CodeClampedInterval)
	if len(clamped) != 1 || clamped[0].Level != validate.SeverityWarning {
		t.Fatalf("expected one clamp warning, got %v", report)
	}
	if report.HasErrors() {
		t.Fatalf("clamping must not be an error: %v", report)
	}
}

func TestInvalidIntervalsDropElement(t *testing.T) {
	ref, entry := video("intro", 10)
	plan, report := compile(t, `
editing:
  - {asset: intro, start_time: 12, end_time: 15}
  - {asset: intro, start_time: 5, end_time: 5}
  - {asset: intro, start_time: 1, end_time: 4}
`, catalogOf(ref, entry))

	if len(plan.MainTrack) != 1 || plan.MainTrack[0].Index != 2 {
		t.Fatalf("only the third element should survive, got %+v", plan.MainTrack)
	}
	if n := len(report.WithCode(validate.CodeInvalidInterval)); n != 2 {
		t.Fatalf("expected 2 invalid_interval warnings, got %d: %v", n, report)
	}
}

func TestMainTrackConcatenates(t *testing.T) {
	a, ae := video("a", 10)
	b, be := video("b", 10)
	plan, _ := compile(t, `
editing:
  - {asset: a, start_time: 0, end_time: 4}
  - {asset: b, start_time: 1, end_time: 3.5}
  - {asset: a, start_time: 6}
`, catalogOf(a, ae, b, be))

	if len(plan.MainTrack) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(plan.MainTrack))
	}
	for k := 1; k < len(plan.MainTrack); k++ {
		prev, cur := plan.MainTrack[k-1], plan.MainTrack[k]
		if !near(cur.Offset, prev.Offset+prev.Span()) {
			t.Fatalf("element %d offset %g, want %g", k, cur.Offset, prev.Offset+prev.Span())
		}
	}
	if last := plan.MainTrack[2].Source; last.End != 10 {
		t.Fatalf("missing end_time should run to the source end, got %+v", last)
	}
	if !near(plan.Duration(), 4+2.5+4) {
		t.Fatalf("duration = %g", plan.Duration())
	}
}

func TestLoopPolicy(t *testing.T) {
	ref, entry := video("short", 3)
	plan, report := compile(t, `
editing:
  - {asset: short, start_time: 0, end_time: 10, loop: true}
`, catalogOf(ref, entry))

	if len(plan.MainTrack) != 1 {
		t.Fatalf("expected one element, got %d (%v)", len(plan.MainTrack), report)
	}
	el := plan.MainTrack[0]
	if el.Loop == nil {
		t.Fatalf("expected a loop plan")
	}
	if el.Loop.Count != 4 || len(el.Loop.Segments) != 4 {
		t.Fatalf("loops = %d, want ceil(10/3) = 4", el.Loop.Count)
	}
	if !near(el.Span(), 10) {
		t.Fatalf("span = %g, want 10", el.Span())
	}

	total := 0.0
	for k, seg := range el.Loop.Segments {
		if seg.Source.Start != 0 {
			t.Fatalf("segment %d should start at the source beginning", k)
		}
		if !near(seg.Offset, total) {
			t.Fatalf("seam %d: offset %g, want %g", k, seg.Offset, total)
		}
		total += seg.Source.Span()
	}
	if !near(total, 10) {
		t.Fatalf("segments sum to %g, want 10", total)
	}
	if last := el.Loop.Segments[3].Source; !near(last.End, 1) {
		t.Fatalf("last segment should be truncated to 1s, got %+v", last)
	}
	if len(report.WithCode(validate.CodeClampedInterval)) != 0 {
		t.Fatalf("looped element must not be clamped: %v", report)
	}
}

func TestLoopSegmentsExactMultiple(t *testing.T) {
	loop := loopSegments(0, 9, 3)
	if loop.Count != 3 {
		t.Fatalf("count = %d, want 3", loop.Count)
	}
	loop = loopSegments(0, 0.3*3, 0.3)
	if loop.Count != 3 {
		t.Fatalf("float residue should not add a tail: count = %d", loop.Count)
	}
}

func TestLoopKeepsInPoint(t *testing.T) {
	ref, entry := video("short", 3)
	plan, report := compile(t, `
editing:
  - {asset: short, start_time: 1, end_time: 10, loop: true}
  - {asset: short, start_time: 4, end_time: 10, loop: true}
`, catalogOf(ref, entry))

	if len(plan.MainTrack) != 1 {
		t.Fatalf("expected one element, got %d (%v)", len(plan.MainTrack), report)
	}
	el := plan.MainTrack[0]
	if el.Source.Start != 1 || !near(el.Span(), 9) {
		t.Fatalf("source = %+v, want in-point 1 and span 9", el.Source)
	}
	want := []Segment{
		{Source: Interval{Start: 1, End: 3}, Offset: 0},
		{Source: Interval{Start: 0, End: 3}, Offset: 2},
		{Source: Interval{Start: 0, End: 3}, Offset: 5},
		{Source: Interval{Start: 0, End: 1}, Offset: 8},
	}
	if el.Loop == nil || len(el.Loop.Segments) != len(want) {
		t.Fatalf("loop = %+v, want %d segments", el.Loop, len(want))
	}
	for k, seg := range el.Loop.Segments {
		w := want[k]
		if !near(seg.Offset, w.Offset) || !near(seg.Source.Start, w.Source.Start) || !near(seg.Source.End, w.Source.End) {
			t.Fatalf("segment %d = %+v, want %+v", k, seg, w)
		}
	}
	invalid := report.WithCode(validate.CodeInvalidInterval)
	if len(invalid) != 1 || invalid[0].Subject != "editing[1]" {
		t.Fatalf("start past the source end should be rejected: %v", report)
	}
}

func TestNegativeOverlayStartRejected(t *testing.T) {
	gif := assets.Ref{Category: assets.GIF, Name: "spinner"}
	logo := assets.Ref{Category: assets.Image, Name: "logo"}
	plan, report := compile(t, `
editing: []
overlays:
  - {type: text, text: hi, start_time: -2, end_time: 3}
  - {type: image, asset: logo, start_time: -1, end_time: 3}
  - {type: gif, asset: spinner, start_time: -2, end_time: 3}
  - {type: text, text: ok, start_time: 0, end_time: 3}
`, catalogOf(gif, assets.Entry{Exists: true, Duration: 1, HasDuration: true}, logo, assets.Entry{Exists: true}))

	if len(plan.Overlays) != 1 || plan.Overlays[0].Index != 3 {
		t.Fatalf("only the last overlay should survive, got %+v", plan.Overlays)
	}
	for _, el := range plan.Overlays {
		if el.Offset < 0 {
			t.Fatalf("overlay %d has negative offset %g", el.Index, el.Offset)
		}
	}
	if n := len(report.WithCode(validate.CodeInvalidInterval)); n != 3 {
		t.Fatalf("expected 3 invalid_interval warnings, got %d: %v", n, report)
	}
}

func TestMissingOverlayAssetIsLocal(t *testing.T) {
	intro, introEntry := video("intro", 10)
	music := assets.Ref{Category: assets.Audio, Name: "music"}
	logo := assets.Ref{Category: assets.Image, Name: "logo"}
	catalog := catalogOf(
		intro, introEntry,
		music, assets.Entry{Exists: true, Duration: 60, HasDuration: true},
		logo, assets.Entry{Exists: true},
	)

	plan, report := compile(t, `
editing:
  - {asset: intro, start_time: 0, end_time: 5}
overlays:
  - {type: image, asset: logo, start_time: 0, end_time: 3, position: top-right}
  - {type: gif, asset: spinner, start_time: 1, end_time: 4}
  - {type: text, text: hello, start_time: 0, end_time: 2}
audio:
  - {asset: music, start_time: 0, end_time: 5}
`, catalog)

	if len(plan.MainTrack) != 1 || len(plan.Audio) != 1 {
		t.Fatalf("main/audio should compile: %+v", plan)
	}
	if len(plan.Overlays) != 2 {
		t.Fatalf("expected 2 overlays, got %d", len(plan.Overlays))
	}
	if plan.Overlays[0].Kind != KindImage || plan.Overlays[1].Kind != KindText {
		t.Fatalf("overlay order not preserved: %s, %s", plan.Overlays[0].Kind, plan.Overlays[1].Kind)
	}
	missing := report.WithCode(validate.CodeAssetNotFound)
	if len(missing) != 1 || missing[0].Subject != "overlays[1]" {
		t.Fatalf("expected one asset_not_found warning for overlays[1], got %v", report)
	}
	if len(report) != 1 {
		t.Fatalf("expected exactly one warning, got %v", report)
	}
}

func TestOverlayTiming(t *testing.T) {
	gif := assets.Ref{Category: assets.GIF, Name: "spin"}
	clip, clipEntry := video("clip", 8)
	catalog := catalogOf(
		gif, assets.Entry{Exists: true, Duration: 1.5, HasDuration: true},
		clip, clipEntry,
	)
	plan, report := compile(t, `
editing: []
overlays:
  - {type: gif, asset: spin, start_time: 2, end_time: 6}
  - {type: gif, asset: spin, start_time: 0, end_time: 1}
  - {type: video, asset: clip, start_time: 3, end_time: 20, size: [0.5, 0.25], opacity: 0.8}
  - {type: sticker, asset: x}
`, catalog)

	if len(plan.Overlays) != 3 {
		t.Fatalf("expected 3 overlays, got %d: %v", len(plan.Overlays), report)
	}
	looped := plan.Overlays[0]
	if looped.Offset != 2 || looped.Loop == nil || looped.Loop.Count != 3 || !near(looped.Span(), 4) {
		t.Fatalf("looped gif = %+v", looped)
	}
	short := plan.Overlays[1]
	if short.Loop != nil || short.Source.End != 1 {
		t.Fatalf("short gif should play [0,1): %+v", short)
	}
	vid := plan.Overlays[2]
	if vid.Source.End != 8 || vid.Offset != 3 || vid.Opacity != 0.8 {
		t.Fatalf("video overlay = %+v", vid)
	}
	if vid.Size == nil || vid.Size.W != 960 || vid.Size.H != 270 {
		t.Fatalf("size should scale to the canvas: %+v", vid.Size)
	}
	if len(report.WithCode(validate.CodeUnknownType)) != 1 {
		t.Fatalf("unknown overlay type should warn: %v", report)
	}
}

func TestEmptyMainTrackUsesBackground(t *testing.T) {
	plan, report := compile(t, `
editing: []
output: {width: 1280, height: 720, fps: 30}
`, assets.MapCatalog{})

	if plan.Background == nil || plan.Background.Duration != DefaultFallbackDuration || plan.Background.Color != "black" {
		t.Fatalf("expected fallback background, got %+v", plan.Background)
	}
	if plan.Canvas.Width != 1280 || plan.Canvas.Height != 720 || plan.Canvas.FPS != 30 {
		t.Fatalf("canvas = %+v", plan.Canvas)
	}
	if len(report.WithCode(validate.CodeEmptyMainTrack)) != 1 {
		t.Fatalf("expected empty_main_track warning: %v", report)
	}
}

func TestAudioDefaults(t *testing.T) {
	music := assets.Ref{Category: assets.Audio, Name: "music"}
	plan, _ := compile(t, `
editing: []
audio:
  - {asset: music, start_time: 4}
  - {asset: music, start_time: 0, end_time: 10, volume: 0.25}
`, catalogOf(music, assets.Entry{Exists: true, Duration: 30, HasDuration: true}))

	if len(plan.Audio) != 2 {
		t.Fatalf("expected 2 audio elements, got %d", len(plan.Audio))
	}
	if a := plan.Audio[0]; a.Source.End != 30 || a.Volume != 1 {
		t.Fatalf("defaults not applied: %+v", a)
	}
	if a := plan.Audio[1]; a.Volume != 0.25 {
		t.Fatalf("volume = %g", a.Volume)
	}
}

func TestEffectsCarriedThrough(t *testing.T) {
	plan, _ := compile(t, `
editing: []
overlays:
  - type: text
    text: Title
    start_time: 0
    end_time: 4
    font_size: 72
    color: gold
    effects:
      - {type: glow, color: gold}
      - {type: fadein, duration: 1}
      - {type: sparkle, amount: 3}
    animation: {type: typewriter, duration: 2}
`, assets.MapCatalog{})

	if len(plan.Overlays) != 1 {
		t.Fatalf("expected one overlay")
	}
	el := plan.Overlays[0]
	kinds := el.Effects.Kinds()
	if len(kinds) != 3 || kinds[0] != effects.Glow || kinds[1] != effects.FadeIn || kinds[2] != "sparkle" {
		t.Fatalf("chain = %v", kinds)
	}
	if el.Style == nil || el.Style.FontSize != 72 || el.Style.Color != "gold" || el.Style.Font != DefaultFont {
		t.Fatalf("style = %+v", el.Style)
	}

	layers := el.Layers()
	top := layers.Top()
	if len(top.Effects) != 2 || top.Effects[0].Kind != effects.FadeIn {
		t.Fatalf("fadein should apply to the original: %+v", top.Effects)
	}
	for _, layer := range layers.Derived() {
		for _, spec := range layer.Effects {
			if spec.Kind == effects.FadeIn {
				t.Fatalf("fadein leaked onto a derived layer")
			}
		}
	}

	reveal := el.Reveal()
	if reveal.Units != 5 || !near(reveal.Step, 0.4) {
		t.Fatalf("reveal = %+v", reveal)
	}
}

func TestPlanNode(t *testing.T) {
	ref, entry := video("intro", 10)
	plan, _ := compile(t, `
editing:
  - {asset: intro, start_time: 0, end_time: 4, effects: [{type: fadeout, duration: 1}]}
`, catalogOf(ref, entry))

	n := plan.Node()
	main, _ := n.Get("main_track")
	first, ok := main.Index(0)
	if !ok {
		t.Fatalf("main_track missing")
	}
	if name, _ := first.GetString("asset"); name != "intro" {
		t.Fatalf("asset = %q", name)
	}
	layers, _ := first.Get("layers")
	if layers.Len() != 1 {
		t.Fatalf("expected a single layer, got %d", layers.Len())
	}
	if d, _ := n.GetNumber("duration"); d != 4 {
		t.Fatalf("duration = %g", d)
	}
}

func TestPlanNodeOverlayPlacement(t *testing.T) {
	logo := assets.Ref{Category: assets.Image, Name: "logo"}
	plan, _ := compile(t, `
editing: []
overlays:
  - {type: image, asset: logo, start_time: 0, end_time: 4, size: [0.5, 0.25]}
  - {type: image, asset: logo, start_time: 0, end_time: 4, size: [0.5, 0.25], animation: {type: scroll, direction: left_to_right, duration: 4}}
  - {type: text, text: hi, start_time: 0, end_time: 4}
`, catalogOf(logo, assets.Entry{Exists: true}))

	overlays, _ := plan.Node().Get("overlays")
	if overlays.Len() != 3 {
		t.Fatalf("expected 3 overlays, got %d", overlays.Len())
	}
	corner := func(el document.Node, at string) (float64, float64) {
		t.Helper()
		place, ok := el.Get("placement")
		if !ok {
			t.Fatalf("placement missing from %v", el)
		}
		p, _ := place.Get(at)
		x, _ := p.GetNumber("x")
		y, _ := p.GetNumber("y")
		return x, y
	}

	static, _ := overlays.Index(0)
	for _, at := range []string{"start", "end"} {
		if x, y := corner(static, at); x != 480 || y != 405 {
			t.Fatalf("%s corner = (%g, %g), want centred (480, 405)", at, x, y)
		}
	}
	scrolled, _ := overlays.Index(1)
	if x, _ := corner(scrolled, "start"); x != -960 {
		t.Fatalf("scroll should enter from off-canvas left, x = %g", x)
	}
	if x, _ := corner(scrolled, "end"); x != 0 {
		t.Fatalf("scroll should finish at x = 0, got %g", x)
	}
	text, _ := overlays.Index(2)
	if text.Has("placement") {
		t.Fatalf("text has no known drawn size and must not carry a placement")
	}
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ref, entry := video("intro", 10)
	_, _, err := Compile(ctx, mustYAML(t, "editing: [{asset: intro}]"), catalogOf(ref, entry), DefaultOptions())
	if err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}
