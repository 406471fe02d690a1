package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TermResolver maps free-text category/tag names to remote term IDs with
// create-if-missing semantics.
//
// Resolution is read-then-create without a local cache: every name lookup
// re-queries the remote store. Two rapid resolutions of the same missing
// name could race into duplicate terms; in practice the write delay
// serializes them, and the remote set is re-read for every row anyway.
type TermResolver struct {
	api API
}

// NewTermResolver creates a TermResolver over the given API.
func NewTermResolver(api API) *TermResolver {
	return &TermResolver{api: api}
}

// resolve returns the ID of the term with the exact (case-insensitive) name
// in the taxonomy, creating the term when no existing one matches.
func (r *TermResolver) resolve(ctx context.Context, name, taxonomy string) (int64, error) {
	terms, err := r.api.SearchTerms(ctx, taxonomy, name)
	if err != nil {
		return 0, fmt.Errorf("searching for term %q: %w", name, err)
	}

	// The server search is fuzzy; only an exact name match counts.
	for _, t := range terms {
		if strings.EqualFold(t.Name, name) {
			return t.ID, nil
		}
	}

	term, err := r.api.CreateTerm(ctx, taxonomy, name)
	if err != nil {
		return 0, fmt.Errorf("creating term %q: %w", name, err)
	}
	return term.ID, nil
}

// ResolveList resolves a comma-separated name list into term IDs, in input
// order. Blank entries are dropped. A name that fails to resolve is skipped
// with a warning; term failures never fail the row.
func (r *TermResolver) ResolveList(ctx context.Context, csvNames, taxonomy string) []int64 {
	var ids []int64
	for _, name := range strings.Split(csvNames, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		id, err := r.resolve(ctx, name, taxonomy)
		if err != nil {
			slog.Warn("skipping unresolved term", "taxonomy", taxonomy, "name", name, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
