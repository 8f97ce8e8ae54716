package document

import (
	"strconv"
	"strings"
)

// Path locates a node inside a document, e.g. overlays[2].effects[0].
type Path []PathElem

// PathElem is either a map key or a sequence index.
type PathElem struct {
	Key   string
	Index int
	IsKey bool
}

// Key returns a new path extended by a map key.
func (p Path) Key(key string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathElem{Key: key, IsKey: true})
}

// Index returns a new path extended by a sequence index.
func (p Path) Index(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, PathElem{Index: i})
}

// Root returns the first key of the path, or "" for the document root.
func (p Path) Root() string {
	if len(p) == 0 || !p[0].IsKey {
		return ""
	}
	return p[0].Key
}

func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, elem := range p {
		if elem.IsKey {
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(elem.Key)
			continue
		}
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(elem.Index))
		b.WriteByte(']')
	}
	return b.String()
}
