package importer

import (
	"context"
	"fmt"

	"github.com/hoanghai1803/csvpress/internal/models"
	"github.com/hoanghai1803/csvpress/internal/wordpress"
)

// Compile-time check that the real client satisfies the importer's view.
var _ API = (*wordpress.Client)(nil)

// Observer receives progress events at state-machine transitions. The engine
// has no opinion on delivery; pass nil to discard events.
type Observer func(models.Event)

// Engine reconciles one input row at a time against the remote site:
// validate, resolve terms and media, reject duplicate titles, then create or
// update depending on whether the slug already exists. Steps run strictly
// in sequence; the first terminal failure short-circuits the rest.
type Engine struct {
	api     API
	terms   *TermResolver
	media   *MediaResolver
	dup     DuplicateChecker
	observe Observer

	defaultStatus string
}

// NewEngine wires an Engine from its collaborators. observer may be nil.
func NewEngine(api API, dup DuplicateChecker, uploadsDir, defaultStatus string, observer Observer) *Engine {
	if observer == nil {
		observer = func(models.Event) {}
	}
	return &Engine{
		api:           api,
		terms:         NewTermResolver(api),
		media:         NewMediaResolver(api, uploadsDir),
		dup:           dup,
		observe:       observer,
		defaultStatus: defaultStatus,
	}
}

// ImportRow runs the full per-row pipeline and returns exactly one result.
// A failed row has Error set and no Action; it never aborts the batch.
func (e *Engine) ImportRow(ctx context.Context, row models.InputRow) models.RowResult {
	result := models.RowResult{
		RowNumber: row.Number,
		Title:     row.Title,
	}

	fail := func(err error) models.RowResult {
		result.Error = err.Error()
		e.observe(models.Event{
			Type:      models.EventError,
			Message:   fmt.Sprintf("Row %d failed: %s", row.Number, result.Error),
			RowNumber: row.Number,
			Title:     row.Title,
			Error:     result.Error,
		})
		return result
	}

	// Validating
	payload, err := MapRow(row, e.defaultStatus)
	if err != nil {
		return fail(err)
	}

	// ResolvingTerms: failures inside resolution are skips, not row errors.
	if row.Categories != "" {
		payload.Categories = e.terms.ResolveList(ctx, row.Categories, wordpress.TaxonomyCategories)
	}
	if row.Tags != "" {
		payload.Tags = e.terms.ResolveList(ctx, row.Tags, wordpress.TaxonomyTags)
	}

	// ResolvingMedia: path takes precedence over URL; failure means no
	// featured image, never a row error.
	if ref := featuredImageRef(row); ref != "" {
		payload.Featured = e.media.Resolve(ctx, ref)
	}

	// CheckingDuplicate: a reused title blocks the row even with a fresh
	// slug. This runs for every row and is independent of slug idempotency.
	dupID, err := e.dup.FindDuplicate(ctx, payload.Title)
	if err != nil {
		return fail(err)
	}
	if dupID != 0 {
		return fail(fmt.Errorf("Duplicate title: post %d already has this title", dupID))
	}

	// CheckingSlug: an existing slug makes this an update, otherwise create.
	var target *models.RemotePost
	if payload.Slug != "" {
		target, err = e.api.FindPostBySlug(ctx, payload.Slug)
		if err != nil {
			return fail(err)
		}
	}

	// Writing
	var post *models.RemotePost
	if target != nil {
		post, err = e.api.UpdatePost(ctx, target.ID, payload)
		result.Action = models.ActionUpdated
	} else {
		post, err = e.api.CreatePost(ctx, payload)
		result.Action = models.ActionCreated
	}
	if err != nil {
		result.Action = ""
		return fail(err)
	}

	result.PostID = post.ID
	result.Status = post.Status
	e.observe(models.Event{
		Type:      models.EventSuccess,
		Message:   fmt.Sprintf("Row %d %s post %d", row.Number, result.Action, post.ID),
		RowNumber: row.Number,
		PostID:    post.ID,
		Title:     row.Title,
	})
	return result
}

// featuredImageRef picks the row's featured image reference; a local path
// takes precedence over a URL when both are given.
func featuredImageRef(row models.InputRow) string {
	if row.FeaturedImagePath != "" {
		return row.FeaturedImagePath
	}
	return row.FeaturedImageURL
}
