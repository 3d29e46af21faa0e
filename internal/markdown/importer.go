package markdown

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	ErrPostsServiceRequired = errors.New("markdown importer: posts service is required")
	ErrPermalinkMissing     = errors.New("markdown importer: front matter permalink is required")
	ErrLocaleMissing        = errors.New("markdown importer: locale could not be determined")
)

// ImporterConfig encapsulates dependencies required to persist markdown
// documents as posts.
type ImporterConfig struct {
	Posts  interfaces.PostsService
	Logger interfaces.Logger
}

// Importer converts markdown documents into post records. Each document maps
// onto one post keyed by permalink and locale.
type Importer struct {
	posts  interfaces.PostsService
	logger interfaces.Logger
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	return &Importer{
		posts:  cfg.Posts,
		logger: cfg.Logger,
	}
}

// ImportDocument imports a single markdown document.
func (i *Importer) ImportDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.posts == nil {
		return nil, ErrPostsServiceRequired
	}
	acc := newImportAccumulator()
	if err := i.applyDocument(ctx, doc, opts, acc); err != nil {
		acc.addError(err)
	}
	return acc.result(), firstError(acc.errors)
}

// ImportDocuments imports a slice of documents in a stable locale/path order.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.posts == nil {
		return nil, ErrPostsServiceRequired
	}

	acc := newImportAccumulator()
	for _, doc := range sortDocuments(docs) {
		if err := i.applyDocument(ctx, doc, opts, acc); err != nil {
			acc.addError(err)
		}
	}
	return acc.result(), firstError(acc.errors)
}

// SyncDocuments imports all provided documents and optionally deletes posts
// whose source files have disappeared.
func (i *Importer) SyncDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	if i.posts == nil {
		return nil, ErrPostsServiceRequired
	}

	imported, err := i.ImportDocuments(ctx, docs, opts.ImportOptions)
	acc := newSyncAccumulator()
	acc.merge(imported)
	if err != nil {
		return acc.result(), err
	}

	if opts.DeleteOrphaned {
		if err := i.deleteOrphaned(ctx, docs, opts, acc); err != nil {
			acc.addError(err)
		}
	}

	return acc.result(), firstError(acc.errors)
}

func (i *Importer) applyDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions, acc *importAccumulator) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	permalink := strings.TrimSpace(doc.FrontMatter.Permalink)
	existing, err := i.posts.GetByPermalink(ctx, permalink, doc.Locale)
	if err != nil && !errors.Is(err, interfaces.ErrPostNotFound) {
		return fmt.Errorf("markdown importer: post lookup %s: %w", permalink, err)
	}

	if existing == nil {
		if opts.DryRun {
			acc.skip(uuid.Nil)
			return nil
		}

		record, createErr := i.posts.Create(ctx, buildCreateRequest(doc, opts))
		if createErr != nil {
			return fmt.Errorf("markdown importer: create post %s: %w", permalink, createErr)
		}
		i.debug("markdown import created post", "permalink", permalink, "locale", doc.Locale)
		acc.created(record.ID)
		return nil
	}

	if !opts.UpdateExisting {
		acc.skip(existing.ID)
		return nil
	}
	if bytes.Equal(existing.Checksum, doc.Checksum) {
		acc.skip(existing.ID)
		return nil
	}
	if opts.DryRun {
		acc.skip(existing.ID)
		return nil
	}

	updated, updateErr := i.posts.Update(ctx, buildUpdateRequest(existing, doc, opts))
	if updateErr != nil {
		return fmt.Errorf("markdown importer: update post %s: %w", permalink, updateErr)
	}
	i.debug("markdown import updated post", "permalink", permalink, "locale", doc.Locale)
	acc.updated(updated.ID)
	return nil
}

// deleteOrphaned removes markdown-sourced posts that no longer have a file on
// disk. Posts created through the API carry no source path and are left
// untouched. Presence is resolved through the posts service so permalink
// normalization cannot desynchronize the comparison.
func (i *Importer) deleteOrphaned(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions, acc *syncAccumulator) error {
	records, err := i.posts.List(ctx, interfaces.PostListOptions{IncludeDrafts: true})
	if err != nil {
		return fmt.Errorf("markdown importer: list posts: %w", err)
	}

	present := make(map[uuid.UUID]struct{}, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		record, lookupErr := i.posts.GetByPermalink(ctx, doc.FrontMatter.Permalink, doc.Locale)
		if lookupErr != nil {
			if errors.Is(lookupErr, interfaces.ErrPostNotFound) {
				continue
			}
			return fmt.Errorf("markdown importer: post lookup %s: %w", doc.FrontMatter.Permalink, lookupErr)
		}
		present[record.ID] = struct{}{}
	}

	for _, record := range records {
		if record.SourcePath == "" {
			continue
		}
		if _, ok := present[record.ID]; ok {
			continue
		}
		if opts.DryRun {
			acc.deleted++
			continue
		}
		if err := i.posts.Delete(ctx, interfaces.PostDeleteRequest{ID: record.ID, DeletedBy: opts.AuthorID}); err != nil {
			return fmt.Errorf("markdown importer: delete post %s: %w", record.Permalink, err)
		}
		i.debug("markdown sync deleted orphaned post", "permalink", record.Permalink, "locale", record.Locale)
		acc.deleted++
	}

	return nil
}

func (i *Importer) debug(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Debug(msg, args...)
	}
}

func validateDocument(doc *interfaces.Document) error {
	if doc == nil {
		return errors.New("markdown importer: nil document")
	}
	if strings.TrimSpace(doc.FrontMatter.Permalink) == "" {
		return fmt.Errorf("%w: %s", ErrPermalinkMissing, doc.FilePath)
	}
	if strings.TrimSpace(doc.Locale) == "" {
		return fmt.Errorf("%w: %s", ErrLocaleMissing, doc.FilePath)
	}
	return nil
}

func buildCreateRequest(doc *interfaces.Document, opts interfaces.ImportOptions) interfaces.PostCreateRequest {
	return interfaces.PostCreateRequest{
		Title:       documentTitle(doc),
		Permalink:   strings.TrimSpace(doc.FrontMatter.Permalink),
		Layout:      documentLayout(doc),
		Summary:     strings.TrimSpace(doc.FrontMatter.Summary),
		Tags:        append([]string(nil), doc.FrontMatter.Tags...),
		Author:      strings.TrimSpace(doc.FrontMatter.Author),
		Locale:      doc.Locale,
		Source:      string(doc.Body),
		HTML:        string(doc.BodyHTML),
		SourcePath:  doc.FilePath,
		Checksum:    doc.Checksum,
		Draft:       doc.FrontMatter.Draft,
		PublishedAt: publishedAt(doc),
		CreatedBy:   opts.AuthorID,
		Meta:        documentMeta(doc),
	}
}

func buildUpdateRequest(existing *interfaces.PostRecord, doc *interfaces.Document, opts interfaces.ImportOptions) interfaces.PostUpdateRequest {
	return interfaces.PostUpdateRequest{
		ID:          existing.ID,
		Title:       documentTitle(doc),
		Permalink:   strings.TrimSpace(doc.FrontMatter.Permalink),
		Layout:      documentLayout(doc),
		Summary:     strings.TrimSpace(doc.FrontMatter.Summary),
		Tags:        append([]string(nil), doc.FrontMatter.Tags...),
		Author:      strings.TrimSpace(doc.FrontMatter.Author),
		Source:      string(doc.Body),
		HTML:        string(doc.BodyHTML),
		SourcePath:  doc.FilePath,
		Checksum:    doc.Checksum,
		Draft:       doc.FrontMatter.Draft,
		PublishedAt: publishedAt(doc),
		UpdatedBy:   opts.AuthorID,
		Meta:        documentMeta(doc),
	}
}

func documentTitle(doc *interfaces.Document) string {
	if title := strings.TrimSpace(doc.FrontMatter.Title); title != "" {
		return title
	}
	return fallbackTitle(doc.FrontMatter.Permalink)
}

func documentLayout(doc *interfaces.Document) string {
	if layout := strings.TrimSpace(doc.FrontMatter.Layout); layout != "" {
		return layout
	}
	return "post"
}

func publishedAt(doc *interfaces.Document) *time.Time {
	if doc.FrontMatter.Draft || doc.FrontMatter.Date.IsZero() {
		return nil
	}
	at := doc.FrontMatter.Date.UTC()
	return &at
}

func fallbackTitle(permalink string) string {
	trimmed := strings.Trim(strings.TrimSpace(permalink), "/")
	if trimmed == "" {
		return "Untitled"
	}
	segments := strings.Split(trimmed, "/")
	words := strings.FieldsFunc(segments[len(segments)-1], func(r rune) bool {
		return r == '-' || r == '_'
	})
	for idx, word := range words {
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}

func documentMeta(doc *interfaces.Document) map[string]any {
	meta := map[string]any{
		"source":   "markdown",
		"path":     doc.FilePath,
		"checksum": hex.EncodeToString(doc.Checksum),
	}
	if !doc.LastModified.IsZero() {
		meta["modified"] = doc.LastModified.UTC().Format(time.RFC3339)
	}
	if len(doc.Diagrams) > 0 {
		meta["diagrams"] = len(doc.Diagrams)
	}
	if len(doc.AssetRefs) > 0 {
		meta["assets"] = append([]string(nil), doc.AssetRefs...)
	}
	if len(doc.FrontMatter.Custom) > 0 {
		meta["custom"] = cloneMap(doc.FrontMatter.Custom)
	}
	return meta
}

func sortDocuments(docs []*interfaces.Document) []*interfaces.Document {
	sorted := append([]*interfaces.Document(nil), docs...)
	slices.SortFunc(sorted, func(a, b *interfaces.Document) int {
		if a == nil || b == nil {
			return 0
		}
		if cmp := strings.Compare(a.Locale, b.Locale); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return sorted
}

type importAccumulator struct {
	createdIDs []uuid.UUID
	updatedIDs []uuid.UUID
	skippedIDs []uuid.UUID
	errors     []error
}

func newImportAccumulator() *importAccumulator {
	return &importAccumulator{
		createdIDs: []uuid.UUID{},
		updatedIDs: []uuid.UUID{},
		skippedIDs: []uuid.UUID{},
		errors:     []error{},
	}
}

func (a *importAccumulator) created(id uuid.UUID) {
	if id != uuid.Nil {
		a.createdIDs = append(a.createdIDs, id)
	}
}

func (a *importAccumulator) updated(id uuid.UUID) {
	if id != uuid.Nil {
		a.updatedIDs = append(a.updatedIDs, id)
	}
}

func (a *importAccumulator) skip(id uuid.UUID) {
	if id != uuid.Nil {
		a.skippedIDs = append(a.skippedIDs, id)
	}
}

func (a *importAccumulator) addError(err error) {
	if err != nil {
		a.errors = append(a.errors, err)
	}
}

func (a *importAccumulator) result() *interfaces.ImportResult {
	return &interfaces.ImportResult{
		CreatedPostIDs: a.createdIDs,
		UpdatedPostIDs: a.updatedIDs,
		SkippedPostIDs: a.skippedIDs,
		Errors:         a.errors,
	}
}

type syncAccumulator struct {
	created int
	updated int
	deleted int
	skipped int
	errors  []error
}

func newSyncAccumulator() *syncAccumulator {
	return &syncAccumulator{
		errors: []error{},
	}
}

func (s *syncAccumulator) merge(res *interfaces.ImportResult) {
	if res == nil {
		return
	}
	s.created += len(res.CreatedPostIDs)
	s.updated += len(res.UpdatedPostIDs)
	s.skipped += len(res.SkippedPostIDs)
	s.errors = append(s.errors, res.Errors...)
}

func (s *syncAccumulator) addError(err error) {
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

func (s *syncAccumulator) result() *interfaces.SyncResult {
	return &interfaces.SyncResult{
		Created: s.created,
		Updated: s.updated,
		Deleted: s.deleted,
		Skipped: s.skipped,
		Errors:  s.errors,
	}
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
