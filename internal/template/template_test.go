package template

import (
	"errors"
	"reflect"
	"testing"

	"vidcompose/pkg/document"
)

func sampleTemplate() document.Node {
	return document.Map(map[string]document.Node{
		"editing": document.Sequence(
			document.Map(map[string]document.Node{
				"asset":    document.String("${clip}"),
				"end_time": document.String("${duration}"),
				"loop":     document.String("${loop}"),
			}),
		),
		"overlays": document.Sequence(
			document.Map(map[string]document.Node{
				"type": document.String("text"),
				"text": document.String("Presented by: ${name} (${name}, ${year})"),
			}),
		),
		"note": document.String("cost is $5 and ${ unclosed"),
		"n":    document.Number(3),
	})
}

func TestExtract(t *testing.T) {
	got := Extract(sampleTemplate()).Sorted()
	want := []string{"clip", "duration", "loop", "name", "year"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractIgnoresMalformedTokens(t *testing.T) {
	doc := document.Sequence(
		document.String("${"),
		document.String("${1abc}"),
		document.String("$name"),
		document.String("${a-b}"),
		document.Bool(true),
	)
	if got := Extract(doc); len(got) != 0 {
		t.Fatalf("Extract = %v, want empty", got.Sorted())
	}
}

func TestExtractOrderedFollowsSortedTraversal(t *testing.T) {
	doc := document.Map(map[string]document.Node{
		"b": document.String("${second} ${first}"),
		"a": document.String("${first}"),
	})
	got := ExtractOrdered(doc)
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractOrdered = %v, want %v", got, want)
	}
}

func fullBindings() Bindings {
	return Bindings{
		"clip":     document.String("intro"),
		"duration": document.Number(120),
		"loop":     document.Bool(true),
		"name":     document.String("Ada"),
		"year":     document.Number(1843),
	}
}

func TestResolvePreservesTypeForSoleToken(t *testing.T) {
	out, err := Resolve(sampleTemplate(), fullBindings())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	editing, _ := out.Get("editing")
	entry, _ := editing.Index(0)

	end, ok := entry.Get("end_time")
	if !ok || end.Kind() != document.KindNumber {
		t.Fatalf("end_time kind = %s, want number", end.Kind())
	}
	if v, _ := end.Num(); v != 120 {
		t.Fatalf("end_time = %v, want 120", v)
	}
	if loop, ok := entry.GetBool("loop"); !ok || !loop {
		t.Fatalf("loop = %v (%v), want bool true", loop, ok)
	}
	if asset, _ := entry.GetString("asset"); asset != "intro" {
		t.Fatalf("asset = %q, want intro", asset)
	}
}

func TestResolveEmbeddedTokensStayText(t *testing.T) {
	doc := document.String("Presented by: ${name}")
	out, err := Resolve(doc, Bindings{"name": document.String("Ada")})
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := out.Str(); !ok || s != "Presented by: Ada" {
		t.Fatalf("got %v, want string %q", out, "Presented by: Ada")
	}

	out, err = Resolve(sampleTemplate(), fullBindings())
	if err != nil {
		t.Fatal(err)
	}
	overlays, _ := out.Get("overlays")
	overlay, _ := overlays.Index(0)
	if text, _ := overlay.GetString("text"); text != "Presented by: Ada (Ada, 1843)" {
		t.Fatalf("text = %q", text)
	}
}

func TestResolveLeavesNoPlaceholders(t *testing.T) {
	out, err := Resolve(sampleTemplate(), fullBindings())
	if err != nil {
		t.Fatal(err)
	}
	if left := Extract(out); len(left) != 0 {
		t.Fatalf("placeholders survived: %v", left.Sorted())
	}
}

func TestResolveMissingBinding(t *testing.T) {
	for _, missing := range Extract(sampleTemplate()).Sorted() {
		bindings := fullBindings()
		delete(bindings, missing)

		_, err := Resolve(sampleTemplate(), bindings)
		var undefined *UndefinedVariableError
		if !errors.As(err, &undefined) {
			t.Fatalf("missing %s: err = %v, want UndefinedVariableError", missing, err)
		}
		if undefined.Name != missing {
			t.Fatalf("missing %s: error names %q", missing, undefined.Name)
		}
	}
}

func TestResolveDoesNotRescanBoundValues(t *testing.T) {
	doc := document.Map(map[string]document.Node{
		"a": document.String("${x}"),
		"b": document.String("say ${x}"),
	})
	bindings := Bindings{
		"x": document.String(`${y} "quoted" \ done`),
	}
	out, err := Resolve(doc, bindings)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a, _ := out.GetString("a"); a != `${y} "quoted" \ done` {
		t.Fatalf("a = %q", a)
	}
	if b, _ := out.GetString("b"); b != `say ${y} "quoted" \ done` {
		t.Fatalf("b = %q", b)
	}

	embedded := EmbeddedPlaceholders(bindings)
	if !reflect.DeepEqual(embedded, map[string][]string{"x": {"y"}}) {
		t.Fatalf("EmbeddedPlaceholders = %v", embedded)
	}
}

func TestResolveRejectsCollectionBinding(t *testing.T) {
	_, err := Resolve(document.String("${x}"), Bindings{"x": document.Sequence()})
	var invalid *InvalidBindingError
	if !errors.As(err, &invalid) || invalid.Name != "x" {
		t.Fatalf("err = %v, want InvalidBindingError for x", err)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	doc := sampleTemplate()
	before := doc.String()
	if _, err := Resolve(doc, fullBindings()); err != nil {
		t.Fatal(err)
	}
	if doc.String() != before {
		t.Fatal("Resolve mutated its input")
	}
}

func TestDeclaredShapes(t *testing.T) {
	tests := []struct {
		name     string
		block    document.Node
		names    []string
		defaults map[string]document.Node
		invalid  []string
	}{
		{
			name: "map with defaults",
			block: document.Map(map[string]document.Node{
				"title":    document.String("Hello"),
				"duration": document.Map(map[string]document.Node{"default": document.Number(10), "description": document.String("seconds")}),
				"bare":     document.Null(),
			}),
			names:    []string{"bare", "duration", "title"},
			defaults: map[string]document.Node{"title": document.String("Hello"), "duration": document.Number(10)},
		},
		{
			name:     "sequence of names",
			block:    document.Sequence(document.String("a"), document.String("b"), document.String("9bad")),
			names:    []string{"a", "b"},
			defaults: map[string]document.Node{},
			invalid:  []string{"9bad"},
		},
		{
			name: "sequence of maps",
			block: document.Sequence(
				document.Map(map[string]document.Node{"name": document.String("a"), "default": document.Bool(false)}),
			),
			names:    []string{"a"},
			defaults: map[string]document.Node{"a": document.Bool(false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, invalid := Declared(tt.block)
			if !reflect.DeepEqual(invalid, tt.invalid) {
				t.Fatalf("invalid = %v, want %v", invalid, tt.invalid)
			}
			if got := DeclaredSet(tt.block).Sorted(); !reflect.DeepEqual(got, tt.names) {
				t.Fatalf("names = %v, want %v", got, tt.names)
			}
			defaults := Defaults(tt.block)
			if len(defaults) != len(tt.defaults) {
				t.Fatalf("defaults = %v, want %v", defaults, tt.defaults)
			}
			for k, want := range tt.defaults {
				if got, ok := defaults[k]; !ok || !got.Equal(want) {
					t.Fatalf("default %s = %v, want %v", k, got, want)
				}
			}
		})
	}
}

func TestMergeOverlayWins(t *testing.T) {
	merged := Merge(Bindings{"a": document.Number(1), "b": document.Number(2)}, Bindings{"b": document.Number(3)})
	if v, _ := merged["b"].Num(); v != 3 {
		t.Fatalf("b = %v, want 3", v)
	}
	if v, _ := merged["a"].Num(); v != 1 {
		t.Fatalf("a = %v, want 1", v)
	}
}
