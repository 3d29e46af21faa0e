package posts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Service exposes post management use-cases. The package implementation is
// the canonical interfaces.PostsService.
type Service = interfaces.PostsService

var (
	ErrTitleRequired     = errors.New("posts: title is required")
	ErrPermalinkRequired = errors.New("posts: permalink is required")
	ErrPermalinkInvalid  = errors.New("posts: permalink contains invalid segments")
	ErrPostIDRequired    = errors.New("posts: post id required")
)

// Repository abstracts storage operations for post records.
type Repository interface {
	Create(ctx context.Context, record *Post) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetByPermalink(ctx context.Context, permalink, locale string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	Update(ctx context.Context, record *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// Unwrap lets callers branch with errors.Is(err, interfaces.ErrPostNotFound).
func (e *NotFoundError) Unwrap() error {
	return interfaces.ErrPostNotFound
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// IDGenerator derives a post identifier from its permalink and locale.
type IDGenerator func(permalink, locale string) uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithDefaultLocale sets the locale assumed when requests omit one.
func WithDefaultLocale(locale string) ServiceOption {
	return func(s *service) {
		if code := strings.ToLower(strings.TrimSpace(locale)); code != "" {
			s.defaultLocale = code
		}
	}
}

// service implements Service.
type service struct {
	posts         Repository
	now           func() time.Time
	id            IDGenerator
	defaultLocale string
}

// NewService constructs a posts service backed by the supplied repository.
func NewService(posts Repository, opts ...ServiceOption) Service {
	s := &service{
		posts:         posts,
		now:           time.Now,
		id:            identity.PostUUID,
		defaultLocale: "en",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create registers a new post after normalizing its permalink and checking
// locale-scoped uniqueness.
func (s *service) Create(ctx context.Context, req interfaces.PostCreateRequest) (*interfaces.PostRecord, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	permalink, err := NormalizePermalink(req.Permalink)
	if err != nil {
		return nil, err
	}

	locale := s.chooseLocale(req.Locale)

	if existing, err := s.posts.GetByPermalink(ctx, permalink, locale); err == nil && existing != nil {
		return nil, interfaces.ErrPermalinkTaken
	} else if err != nil && !errors.Is(err, interfaces.ErrPostNotFound) {
		return nil, err
	}

	now := s.now().UTC()

	record := &Post{
		ID:          s.id(permalink, locale),
		Title:       title,
		Permalink:   permalink,
		Layout:      chooseLayout(req.Layout),
		Summary:     strings.TrimSpace(req.Summary),
		Tags:        cloneTags(req.Tags),
		Author:      strings.TrimSpace(req.Author),
		Locale:      locale,
		Source:      req.Source,
		HTML:        req.HTML,
		SourcePath:  req.SourcePath,
		Checksum:    cloneBytes(req.Checksum),
		Draft:       req.Draft,
		PublishedAt: cloneTimePtr(req.PublishedAt),
		CreatedBy:   req.CreatedBy,
		UpdatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		Meta:        cloneMap(req.Meta),
	}

	created, err := s.posts.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	return recordFrom(created), nil
}

// Update replaces the mutable fields of an existing post. The locale is fixed
// at create time; moving a post between locales means recreating it.
func (s *service) Update(ctx context.Context, req interfaces.PostUpdateRequest) (*interfaces.PostRecord, error) {
	if req.ID == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	permalink, err := NormalizePermalink(req.Permalink)
	if err != nil {
		return nil, err
	}

	record, err := s.posts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if permalink != record.Permalink {
		if existing, err := s.posts.GetByPermalink(ctx, permalink, record.Locale); err == nil && existing != nil && existing.ID != record.ID {
			return nil, interfaces.ErrPermalinkTaken
		} else if err != nil && !errors.Is(err, interfaces.ErrPostNotFound) {
			return nil, err
		}
	}

	record.Title = title
	record.Permalink = permalink
	record.Layout = chooseLayout(req.Layout)
	record.Summary = strings.TrimSpace(req.Summary)
	record.Tags = cloneTags(req.Tags)
	record.Author = strings.TrimSpace(req.Author)
	record.Source = req.Source
	record.HTML = req.HTML
	record.SourcePath = req.SourcePath
	record.Checksum = cloneBytes(req.Checksum)
	record.Draft = req.Draft
	record.PublishedAt = cloneTimePtr(req.PublishedAt)
	record.UpdatedAt = s.now().UTC()
	record.Meta = cloneMap(req.Meta)
	if req.UpdatedBy != uuid.Nil {
		record.UpdatedBy = req.UpdatedBy
	}

	updated, err := s.posts.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	return recordFrom(updated), nil
}

// Get fetches a post by identifier.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*interfaces.PostRecord, error) {
	if id == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordFrom(record), nil
}

// GetByPermalink resolves a post by its normalized permalink within a locale.
// Raw front-matter permalinks round-trip: lookup normalizes the same way
// Create does.
func (s *service) GetByPermalink(ctx context.Context, permalink string, locale string) (*interfaces.PostRecord, error) {
	normalized, err := NormalizePermalink(permalink)
	if err != nil {
		return nil, err
	}

	record, err := s.posts.GetByPermalink(ctx, normalized, s.chooseLocale(locale))
	if err != nil {
		return nil, err
	}
	return recordFrom(record), nil
}

// List returns posts matching the supplied options, ordered by published date
// descending with permalink and locale as tie-breakers.
func (s *service) List(ctx context.Context, opts interfaces.PostListOptions) ([]*interfaces.PostRecord, error) {
	records, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	locale := strings.ToLower(strings.TrimSpace(opts.Locale))
	layout := strings.ToLower(strings.TrimSpace(opts.Layout))
	tag := strings.TrimSpace(opts.Tag)

	out := make([]*interfaces.PostRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		if record.Draft && !opts.IncludeDrafts {
			continue
		}
		if locale != "" && record.Locale != locale {
			continue
		}
		if layout != "" && record.Layout != layout {
			continue
		}
		if tag != "" && !hasTag(record.Tags, tag) {
			continue
		}
		out = append(out, recordFrom(record))
	}

	sortRecords(out)
	return out, nil
}

// Delete removes a post.
func (s *service) Delete(ctx context.Context, req interfaces.PostDeleteRequest) error {
	if req.ID == uuid.Nil {
		return ErrPostIDRequired
	}
	return s.posts.Delete(ctx, req.ID)
}

// Publish clears the draft flag and stamps the published date. A zero time
// publishes now.
func (s *service) Publish(ctx context.Context, id uuid.UUID, at time.Time) (*interfaces.PostRecord, error) {
	if id == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if at.IsZero() {
		at = s.now()
	}
	published := at.UTC()

	record.Draft = false
	record.PublishedAt = &published
	record.UpdatedAt = s.now().UTC()

	updated, err := s.posts.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	return recordFrom(updated), nil
}

// Unpublish returns a post to draft state and clears its published date.
func (s *service) Unpublish(ctx context.Context, id uuid.UUID) (*interfaces.PostRecord, error) {
	if id == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record.Draft = true
	record.PublishedAt = nil
	record.UpdatedAt = s.now().UTC()

	updated, err := s.posts.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	return recordFrom(updated), nil
}

// NormalizePermalink canonicalizes a permalink into its stored form: leading
// slash, slugified lowercase segments, trailing slash preserved. The root
// permalink "/" is valid and reserved for the home document.
func NormalizePermalink(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrPermalinkRequired
	}
	if trimmed == "/" {
		return "/", nil
	}

	trailing := strings.HasSuffix(trimmed, "/")
	segments := strings.Split(strings.Trim(trimmed, "/"), "/")
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		normalized, err := slug.Normalize(segment)
		if err != nil || normalized == "" {
			return "", fmt.Errorf("%w: %q", ErrPermalinkInvalid, segment)
		}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return "/", nil
	}

	permalink := "/" + strings.Join(out, "/")
	if trailing {
		permalink += "/"
	}
	return permalink, nil
}

func (s *service) chooseLocale(locale string) string {
	code := strings.ToLower(strings.TrimSpace(locale))
	if code == "" {
		return s.defaultLocale
	}
	return code
}

func chooseLayout(layout string) string {
	layout = strings.TrimSpace(layout)
	if layout == "" {
		return "post"
	}
	return strings.ToLower(layout)
}

func hasTag(tags []string, tag string) bool {
	for _, candidate := range tags {
		if strings.EqualFold(strings.TrimSpace(candidate), tag) {
			return true
		}
	}
	return false
}

func sortRecords(records []*interfaces.PostRecord) {
	slices.SortFunc(records, func(a, b *interfaces.PostRecord) int {
		at := publishedOrZero(a)
		bt := publishedOrZero(b)
		if at.After(bt) {
			return -1
		}
		if bt.After(at) {
			return 1
		}
		if cmp := strings.Compare(a.Permalink, b.Permalink); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.Locale, b.Locale)
	})
}

func publishedOrZero(record *interfaces.PostRecord) time.Time {
	if record == nil || record.PublishedAt == nil {
		return time.Time{}
	}
	return *record.PublishedAt
}

func recordFrom(record *Post) *interfaces.PostRecord {
	if record == nil {
		return nil
	}
	return &interfaces.PostRecord{
		ID:          record.ID,
		Title:       record.Title,
		Permalink:   record.Permalink,
		Layout:      record.Layout,
		Summary:     record.Summary,
		Tags:        cloneTags(record.Tags),
		Author:      record.Author,
		Locale:      record.Locale,
		Source:      record.Source,
		HTML:        record.HTML,
		SourcePath:  record.SourcePath,
		Checksum:    cloneBytes(record.Checksum),
		Draft:       record.Draft,
		PublishedAt: cloneTimePtr(record.PublishedAt),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
		Meta:        cloneMap(record.Meta),
	}
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	return append([]string(nil), tags...)
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	return append([]byte(nil), value...)
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
