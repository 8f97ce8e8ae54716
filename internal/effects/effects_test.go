package effects

import (
	"math"
	"reflect"
	"testing"

	"vidcompose/pkg/document"
)

func spec(kind Kind, params map[string]document.Node) Spec {
	return NewSpec(kind, params)
}

func TestClassification(t *testing.T) {
	tests := []struct {
		kind Kind
		want Class
	}{
		{FadeIn, ClassFrameTransform},
		{Blur, ClassFrameTransform},
		{Equalizer, ClassFrameTransform},
		{Compressor, ClassFrameTransform},
		{Glow, ClassStructural},
		{Outline, ClassStructural},
		{Shadow, ClassStructural},
		{Kind("sparkle"), ClassUnknown},
	}
	for _, tt := range tests {
		if got := spec(tt.kind, nil).Class(); got != tt.want {
			t.Errorf("%s: class = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestExpandGlowThenFadeIn(t *testing.T) {
	chain := Chain{
		spec(Glow, map[string]document.Node{"color": document.String("gold")}),
		spec(FadeIn, map[string]document.Node{"duration": document.Number(1)}),
	}
	stack := Expand(chain, Subject{})

	if len(stack) != 3 {
		t.Fatalf("stack has %d layers, want 3: %+v", len(stack), stack)
	}
	top := stack.Top()
	if top.Role != RoleOriginal {
		t.Fatalf("top role = %s, want original", top.Role)
	}
	if got := top.Effects.Kinds(); !reflect.DeepEqual(got, []Kind{FadeIn}) {
		t.Fatalf("top effects = %v, want [fadein]", got)
	}

	for _, layer := range stack.Derived() {
		for _, e := range layer.Effects {
			if e.Kind == FadeIn {
				t.Fatalf("derived %s layer received fadein", layer.Role)
			}
		}
	}

	dup := stack[0]
	if dup.Role != RoleDuplicate || dup.From != Glow {
		t.Fatalf("bottom layer = %+v, want glow duplicate", dup)
	}
	if got := dup.Effects.Kinds(); !reflect.DeepEqual(got, []Kind{Blur}) {
		t.Fatalf("glow duplicate effects = %v, want [blur]", got)
	}
	if r, _ := dup.Effects[0].Float("radius"); r != 5 {
		t.Fatalf("blur radius = %v, want default 5", r)
	}
	tint := stack[1]
	if tint.Role != RoleFill || tint.Tint != "gold" || tint.Opacity != 0.3 {
		t.Fatalf("tint layer = %+v", tint)
	}
}

func TestExpandGlowInheritsEarlierTransforms(t *testing.T) {
	chain := Chain{
		spec(ColorGrade, nil),
		spec(Glow, map[string]document.Node{"color": document.String("red"), "radius": document.Number(8)}),
		spec(Vignette, nil),
	}
	stack := Expand(chain, Subject{})
	if got := stack[0].Effects.Kinds(); !reflect.DeepEqual(got, []Kind{ColorGrade, Blur}) {
		t.Fatalf("duplicate effects = %v, want [colorgrade blur]", got)
	}
	if got := stack.Top().Effects.Kinds(); !reflect.DeepEqual(got, []Kind{ColorGrade, Vignette}) {
		t.Fatalf("original effects = %v, want [colorgrade vignette]", got)
	}
}

func TestExpandOutlineAndShadowOnText(t *testing.T) {
	chain := Chain{
		spec(Shadow, nil),
		spec(Outline, map[string]document.Node{"color": document.String("black"), "width": document.Number(3)}),
		spec(FadeOut, map[string]document.Node{"duration": document.Number(2)}),
	}
	stack := Expand(chain, Subject{Text: true})
	if len(stack) != 6 {
		t.Fatalf("stack has %d layers, want 6", len(stack))
	}
	shadow := stack[0]
	if shadow.From != Shadow || shadow.Offset != (Point{X: 5, Y: 5}) || shadow.Opacity != 0.5 || shadow.Tint != "black" {
		t.Fatalf("shadow layer = %+v", shadow)
	}
	wantOffsets := []Point{{X: -3}, {X: 3}, {Y: -3}, {Y: 3}}
	for i, want := range wantOffsets {
		layer := stack[1+i]
		if layer.From != Outline || layer.Offset != want {
			t.Fatalf("outline layer %d = %+v, want offset %+v", i, layer, want)
		}
		if len(layer.Effects) != 0 {
			t.Fatalf("outline layer %d carries effects %v", i, layer.Effects.Kinds())
		}
	}
	if got := stack.Top().Effects.Kinds(); !reflect.DeepEqual(got, []Kind{FadeOut}) {
		t.Fatalf("top effects = %v", got)
	}
}

func TestExpandOutlineIgnoredForNonText(t *testing.T) {
	stack := Expand(Chain{spec(Outline, map[string]document.Node{"color": document.String("white")})}, Subject{})
	if len(stack) != 1 {
		t.Fatalf("stack has %d layers, want 1", len(stack))
	}
}

func TestExpandKeepsUnknownInOrder(t *testing.T) {
	chain := Chain{spec(Blur, nil), spec(Kind("sparkle"), nil), spec(Glitch, nil)}
	stack := Expand(chain, Subject{})
	want := []Kind{Blur, Kind("sparkle"), Glitch}
	if got := stack.Top().Effects.Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("effects = %v, want %v", got, want)
	}
}

func TestSpecCheck(t *testing.T) {
	if problems := spec(FadeIn, nil).Check(); len(problems) != 1 {
		t.Fatalf("fadein without duration: %v", problems)
	}
	bad := spec(Shadow, map[string]document.Node{"offset": document.String("5,5")})
	if problems := bad.Check(); len(problems) != 1 {
		t.Fatalf("shadow with string offset: %v", problems)
	}
	if problems := spec(Kind("sparkle"), nil).Check(); problems != nil {
		t.Fatalf("unknown kind problems = %v", problems)
	}
}

func TestParseChain(t *testing.T) {
	doc := document.Sequence(
		document.Map(map[string]document.Node{"type": document.String("FadeIn"), "duration": document.Number(1)}),
		document.String("oops"),
		document.Map(map[string]document.Node{"duration": document.Number(1)}),
	)
	chain, errs := ParseChain(doc)
	if len(chain) != 1 || chain[0].Kind != FadeIn {
		t.Fatalf("chain = %+v", chain)
	}
	if len(errs) != 2 {
		t.Fatalf("errs = %v, want 2", errs)
	}
	if _, ok := chain[0].Params["type"]; ok {
		t.Fatal("type leaked into params")
	}
}

func TestParsePosition(t *testing.T) {
	canvas := Size{W: 1000, H: 500}
	elem := Size{W: 100, H: 50}

	pos, err := ParsePosition(document.String("bottom-center"))
	if err != nil {
		t.Fatal(err)
	}
	if got := pos.Resolve(canvas, elem); got != (Point{X: 450, Y: 450}) {
		t.Fatalf("bottom-center = %+v", got)
	}

	pos, err = ParsePosition(document.Sequence(document.Number(0.25), document.Number(0.5)))
	if err != nil {
		t.Fatal(err)
	}
	if got := pos.Resolve(canvas, elem); got != (Point{X: 250, Y: 250}) {
		t.Fatalf("pair = %+v", got)
	}

	if _, err := ParsePosition(document.String("middle-ish")); err == nil {
		t.Fatal("expected error for unknown keyword")
	}
}

func TestBouncePlacement(t *testing.T) {
	anim := Animation{Kind: Bounce, Params: map[string]document.Node{"duration": document.Number(2)}}
	place := anim.Placement(Position{X: Axis{Frac: 0.5}, Y: Axis{Frac: 0.5}}, Size{W: 200, H: 100}, Size{}, 10)

	if p := place(0); p != (Point{X: 100, Y: 50}) {
		t.Fatalf("t=0: %+v", p)
	}
	if p := place(1); math.Abs(p.Y-30) > 1e-9 {
		t.Fatalf("t=1: y = %v, want 30 (default height 20)", p.Y)
	}
	if p := place(2); math.Abs(p.Y-50) > 1e-9 {
		t.Fatalf("t=2: y = %v, want 50", p.Y)
	}
}

func TestScrollPlacement(t *testing.T) {
	canvas := Size{W: 1920, H: 1080}
	elem := Size{W: 400, H: 100}
	ltr := Animation{Kind: Scroll, Params: map[string]document.Node{
		"duration":  document.Number(4),
		"direction": document.String(LeftToRight),
	}}
	place := ltr.Placement(Center, canvas, elem, 4)
	if p := place(0); p.X != -400 || p.Y != 490 {
		t.Fatalf("ltr t=0: %+v", p)
	}
	if p := place(4); p.X != 0 {
		t.Fatalf("ltr t=4: %+v", p)
	}

	rtl := Animation{Kind: Scroll, Params: map[string]document.Node{
		"duration":  document.Number(4),
		"direction": document.String(RightToLeft),
	}}
	if p := rtl.Placement(Center, canvas, elem, 4)(2); p.X != 1920+400-200 {
		t.Fatalf("rtl t=2: %+v", p)
	}
}

func TestUnknownAnimationIsStatic(t *testing.T) {
	anim := Animation{Kind: "wobble"}
	if anim.Known() {
		t.Fatal("wobble should be unknown")
	}
	place := anim.Placement(Center, Size{W: 100, H: 100}, Size{W: 10, H: 10}, 5)
	if place(0) != place(3) {
		t.Fatal("unknown animation moved")
	}
}

func TestTypewriterReveal(t *testing.T) {
	anim := Animation{Kind: Typewriter, Params: map[string]document.Node{"duration": document.Number(2)}}
	reveal := anim.Reveal(4, 10)
	if reveal.Step != 0.5 {
		t.Fatalf("step = %v, want 0.5", reveal.Step)
	}
	for i := 0; i < 4; i++ {
		start, end := reveal.Window(i)
		if !reveal.Visible(i, start) {
			t.Fatalf("unit %d hidden at its start %v", i, start)
		}
		if reveal.Visible(i, end) {
			t.Fatalf("unit %d visible at its end %v", i, end)
		}
		for j := 0; j < 4; j++ {
			if j != i && reveal.Visible(j, start) {
				t.Fatalf("unit %d visible during unit %d's window", j, i)
			}
		}
	}
	if reveal.Visible(4, 1.9) {
		t.Fatal("out-of-range unit visible")
	}

	single := anim.Reveal(0, 10)
	if single.Units != 1 || single.Step != 2 {
		t.Fatalf("non-text reveal = %+v", single)
	}
}

func TestAnimationCheck(t *testing.T) {
	anim := Animation{Kind: Scroll, Params: map[string]document.Node{
		"duration":  document.Number(1),
		"direction": document.String("diagonal"),
	}}
	if problems := anim.Check(); len(problems) != 1 {
		t.Fatalf("problems = %v", problems)
	}
}
