// Package link orchestrates evidence linking: it flattens a field mapping,
// matches every field value against the document text in parallel, and
// assembles a deterministic EvidenceResult.
package link

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phototype/evidence-mcp/internal/document"
	"github.com/phototype/evidence-mcp/internal/fieldmap"
	"github.com/phototype/evidence-mcp/internal/match"
	"github.com/phototype/evidence-mcp/pkg/types"
)

// Config tunes one linking run.
type Config struct {
	Match              match.Config
	MaxResultsPerField int           // default 3
	Concurrency        int           // default runtime.NumCPU()
	Deadline           time.Duration // 0 = none
}

// DefaultMaxResultsPerField caps the ranked spans kept per field.
const DefaultMaxResultsPerField = 3

// overlapMergeFraction: spans of one field overlapping by more than this
// share of the shorter span collapse into the higher-scoring one.
const overlapMergeFraction = 0.5

func (c Config) withDefaults() Config {
	if c.MaxResultsPerField <= 0 {
		c.MaxResultsPerField = DefaultMaxResultsPerField
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
	return c
}

// Link resolves evidence spans for every leaf of the field mapping against
// the document text.
//
// Fields are matched independently against the shared immutable document in
// a bounded worker group; results are assembled in flattening order, so the
// output is byte-identical regardless of concurrency. Every flattened path
// is present in the result, with an empty span list when nothing matched.
// Unsupported leaves are reported as skipped, never as failures. When the
// deadline elapses, the fields processed so far are returned with
// Truncated set instead of an error.
func Link(ctx context.Context, doc *document.Text, mapping fieldmap.Node, cfg Config) (*types.EvidenceResult, error) {
	if doc == nil || doc.Len() == 0 {
		return nil, document.ErrEmptyDocument
	}
	cfg = cfg.withDefaults()

	cancel := func() {}
	if cfg.Deadline > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Deadline)
	}
	defer cancel()

	entries := fieldmap.Flatten(mapping)
	matcher := match.NewMatcher(doc, cfg.Match)

	type fieldOutcome struct {
		spans []types.EvidenceSpan
		done  bool
	}
	outcomes := make([]fieldOutcome, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, entry := range entries {
		if entry.Unsupported {
			outcomes[i] = fieldOutcome{done: true}
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				// Deadline hit; leave the field unprocessed.
				return nil
			}
			spans, err := linkField(doc, matcher, entry, cfg)
			if err != nil {
				return err
			}
			outcomes[i] = fieldOutcome{spans: spans, done: true}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := types.NewEvidenceResult()
	for i, entry := range entries {
		path := entry.Path.String()
		if entry.Unsupported {
			slog.Warn("skipping unsupported field value", "path", path)
			result.MarkSkipped(path)
			continue
		}
		if !outcomes[i].done {
			result.Truncated = true
			continue
		}
		result.Add(path, outcomes[i].spans)
	}
	return result, nil
}

// linkField matches one field value, merges near-duplicate spans, truncates
// to the per-field cap, and fills in page numbers.
func linkField(doc *document.Text, matcher *match.Matcher, entry fieldmap.Entry, cfg Config) ([]types.EvidenceSpan, error) {
	spans := matcher.Match(entry.Value)
	spans = mergeOverlaps(spans)
	if len(spans) > cfg.MaxResultsPerField {
		spans = spans[:cfg.MaxResultsPerField]
	}
	for i := range spans {
		page, err := doc.PageOf(spans[i].Start)
		if err != nil {
			// Matcher offsets come from the document itself, so this is a
			// bug, not bad input.
			return nil, err
		}
		spans[i].Page = page
	}
	return spans, nil
}

// mergeOverlaps collapses spans overlapping by more than half of the shorter
// span into the higher-scoring (earlier-ranked) one. Input must already be
// ranked best-first.
func mergeOverlaps(spans []types.EvidenceSpan) []types.EvidenceSpan {
	var kept []types.EvidenceSpan
	for _, s := range spans {
		merged := false
		for _, k := range kept {
			shorter := s.Len()
			if k.Len() < shorter {
				shorter = k.Len()
			}
			if shorter > 0 && float64(s.Overlap(k)) > overlapMergeFraction*float64(shorter) {
				merged = true
				break
			}
		}
		if !merged {
			kept = append(kept, s)
		}
	}
	return kept
}
