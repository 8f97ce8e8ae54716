package assets

import (
	"sort"

	"vidcompose/pkg/document"
)

// Document keys the resolver understands.
const (
	tableKey   = "assets"
	editingKey = "editing"
	typeKey    = "type"
	assetKey   = "asset"
)

// Use records one reference site. The same asset may be used many times.
type Use struct {
	Ref  Ref
	Path document.Path
}

// Requirements collects the assets a document references.
type Requirements struct {
	ByCategory map[Category]map[string]struct{}
	Uses       []Use
}

// Names returns the distinct names required for category, sorted.
func (r Requirements) Names(c Category) []string {
	set := r.ByCategory[c]
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Refs returns every distinct reference ordered by category table order,
// then name.
func (r Requirements) Refs() []Ref {
	var out []Ref
	for _, c := range Categories() {
		for _, name := range r.Names(c) {
			out = append(out, Ref{Category: c, Name: name})
		}
	}
	return out
}

// Has reports whether ref is required.
func (r Requirements) Has(ref Ref) bool {
	_, ok := r.ByCategory[ref.Category][ref.Name]
	return ok
}

func (r *Requirements) add(ref Ref, path document.Path) {
	if r.ByCategory == nil {
		r.ByCategory = map[Category]map[string]struct{}{}
	}
	if r.ByCategory[ref.Category] == nil {
		r.ByCategory[ref.Category] = map[string]struct{}{}
	}
	r.ByCategory[ref.Category][ref.Name] = struct{}{}
	r.Uses = append(r.Uses, Use{Ref: ref, Path: path})
}

// Required walks doc depth-first and collects asset references. A map
// contributes its "asset" string when its category is known, either from
// its own "type" field or from an enclosing key naming a category. The
// main-track section implies video. The declared asset table is not a
// reference site and is skipped.
func Required(doc document.Node) Requirements {
	var reqs Requirements
	if doc.Kind() != document.KindMap {
		return reqs
	}
	for _, key := range doc.Keys() {
		if key == tableKey {
			continue
		}
		child, _ := doc.Get(key)
		cat, ok := categoryForKey(key)
		visit(&reqs, document.Path{}.Key(key), child, cat, ok)
	}
	return reqs
}

func categoryForKey(key string) (Category, bool) {
	if key == editingKey {
		return Video, true
	}
	return ParseCategory(key)
}

func visit(reqs *Requirements, path document.Path, n document.Node, cat Category, known bool) {
	switch n.Kind() {
	case document.KindSequence:
		for i, item := range n.Items() {
			visit(reqs, path.Index(i), item, cat, known)
		}
	case document.KindMap:
		if t, ok := n.GetString(typeKey); ok {
			cat, known = ParseCategory(t)
		}
		if known {
			if name, ok := n.GetString(assetKey); ok && name != "" {
				reqs.add(Ref{Category: cat, Name: name}, path)
			}
		}
		for _, key := range n.Keys() {
			child, _ := n.Get(key)
			childCat, childKnown := cat, known
			if c, ok := ParseCategory(key); ok {
				childCat, childKnown = c, true
			}
			visit(reqs, path.Key(key), child, childCat, childKnown)
		}
	}
}

// Declaration is one entry of the declared asset table.
type Declaration struct {
	Ref         Ref
	Path        string
	Duration    float64
	HasDuration bool
}

// Table indexes declared assets by reference.
type Table map[Ref]Declaration

// Declared reads the document's asset table:
//
//	assets:
//	  videos: [{name: intro, path: media/intro.mp4, duration: 12}]
//	  audios: [{name: music, path: media/music.mp3}]
func Declared(doc document.Node) Table {
	table := Table{}
	block, ok := doc.Get(tableKey)
	if !ok || block.Kind() != document.KindMap {
		return table
	}
	for _, key := range block.Keys() {
		cat, ok := ParseCategory(key)
		if !ok {
			continue
		}
		list, _ := block.Get(key)
		for _, entry := range list.Items() {
			name, _ := entry.GetString("name")
			path, _ := entry.GetString("path")
			if name == "" || path == "" {
				continue
			}
			decl := Declaration{Ref: Ref{Category: cat, Name: name}, Path: path}
			if d, ok := entry.GetNumber("duration"); ok && d > 0 {
				decl.Duration = d
				decl.HasDuration = true
			}
			table[decl.Ref] = decl
		}
	}
	return table
}
