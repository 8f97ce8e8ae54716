package assets

import (
	"context"
)

// Entry is a catalog answer.
type Entry struct {
	Exists      bool    `json:"exists" yaml:"exists"`
	Duration    float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	HasDuration bool    `json:"has_duration,omitempty" yaml:"has_duration,omitempty"`
}

// KnownDuration returns the duration when the catalog knows one.
func (e Entry) KnownDuration() (float64, bool) {
	if !e.Exists || !e.HasDuration || e.Duration <= 0 {
		return 0, false
	}
	return e.Duration, true
}

// Catalog answers whether an asset exists and, for timed categories, how
// long it is. A missing asset is reported as Entry{Exists: false} with a
// nil error; errors mean the lookup itself failed.
type Catalog interface {
	Lookup(ctx context.Context, ref Ref) (Entry, error)
}

// Logger keeps the subset of log.Logger used by catalogs.
type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// MapCatalog is an in-memory catalog.
type MapCatalog map[Ref]Entry

// Lookup implements Catalog.
func (m MapCatalog) Lookup(ctx context.Context, ref Ref) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	return m[ref], nil
}

// TableCatalog answers from the durations declared in the asset table.
// Declared assets exist; only those with a declared duration have one.
func TableCatalog(table Table) MapCatalog {
	out := make(MapCatalog, len(table))
	for ref, decl := range table {
		out[ref] = Entry{Exists: true, Duration: decl.Duration, HasDuration: decl.HasDuration}
	}
	return out
}

var (
	_ Catalog = MapCatalog(nil)
	_ Catalog = (*ProbeCatalog)(nil)
)
