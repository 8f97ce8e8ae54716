package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"vidcompose/internal/validate"
)

// CheckOptions bounds catalog lookups.
type CheckOptions struct {
	// Timeout applies to each lookup. Zero means no per-lookup timeout.
	Timeout time.Duration
	// Concurrency caps in-flight lookups. Zero or less means one at a time.
	Concurrency int
	Logger      Logger
}

// Result holds the catalog answers for every required asset.
type Result struct {
	Entries map[Ref]Entry
	// Missing maps each unavailable asset to the reason.
	Missing map[Ref]string
	// Order lists the checked refs in category table order, then name.
	Order []Ref
}

// Found returns the entry for ref when the asset is available.
func (r Result) Found(ref Ref) (Entry, bool) {
	if _, missing := r.Missing[ref]; missing {
		return Entry{}, false
	}
	e, ok := r.Entries[ref]
	return e, ok && e.Exists
}

// Issues reports every unavailable asset as an error keyed by category
// and name.
func (r Result) Issues() validate.Report {
	var report validate.Report
	for _, ref := range r.Order {
		reason, missing := r.Missing[ref]
		if !missing {
			continue
		}
		report = append(report, validate.Errorf(validate.CodeAssetNotFound, ref.String(), "%s asset %q not found: %s", ref.Category, ref.Name, reason))
	}
	return report
}

// Check looks up every distinct required asset. Lookups run concurrently
// and are all joined before Check returns. A failed lookup, or one that
// finishes after its deadline whatever it answered, marks that asset
// missing. The only error returned is the parent
// context's, when it is cancelled.
func Check(ctx context.Context, reqs Requirements, catalog Catalog, opts CheckOptions) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}

	refs := reqs.Refs()
	entries := make([]Entry, len(refs))
	failures := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, ref := range refs {
		g.Go(func() error {
			lookupCtx := ctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				lookupCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
				defer cancel()
			}
			entries[i], failures[i] = catalog.Lookup(lookupCtx, ref)
			if failures[i] == nil && errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
				failures[i] = lookupCtx.Err()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("asset lookups: %w", err)
	}

	res := Result{
		Entries: make(map[Ref]Entry, len(refs)),
		Missing: map[Ref]string{},
		Order:   refs,
	}
	for i, ref := range refs {
		switch err := failures[i]; {
		case errors.Is(err, context.DeadlineExceeded):
			res.Missing[ref] = fmt.Sprintf("lookup timed out after %s", opts.Timeout)
		case err != nil:
			res.Missing[ref] = err.Error()
		case !entries[i].Exists:
			res.Missing[ref] = "not in catalog"
		default:
			res.Entries[ref] = entries[i]
		}
		if reason, missing := res.Missing[ref]; missing {
			logger.Printf("asset %s missing: %s", ref, reason)
		} else if d, ok := entries[i].KnownDuration(); ok {
			logger.Printf("asset %s found: duration=%.2fs", ref, d)
		} else {
			logger.Printf("asset %s found", ref)
		}
	}
	return res, nil
}
