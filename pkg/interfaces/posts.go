package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrPostNotFound signals a read for a post that does not exist.
	// Implementations wrap it so callers can branch with errors.Is.
	ErrPostNotFound = errors.New("post not found")
	// ErrPermalinkTaken signals a create or update that would leave two posts
	// sharing a permalink within the same locale.
	ErrPermalinkTaken = errors.New("permalink already in use")
)

// PostsService abstracts the post store so markdown imports and site builds
// can provision or update records without depending on internal
// implementations.
type PostsService interface {
	Create(ctx context.Context, req PostCreateRequest) (*PostRecord, error)
	Update(ctx context.Context, req PostUpdateRequest) (*PostRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*PostRecord, error)
	GetByPermalink(ctx context.Context, permalink string, locale string) (*PostRecord, error)
	List(ctx context.Context, opts PostListOptions) ([]*PostRecord, error)
	Delete(ctx context.Context, req PostDeleteRequest) error
	Publish(ctx context.Context, id uuid.UUID, at time.Time) (*PostRecord, error)
	Unpublish(ctx context.Context, id uuid.UUID) (*PostRecord, error)
}

// PostListOptions filters List reads. The zero value lists every published
// post across all locales.
type PostListOptions struct {
	Locale        string
	Layout        string
	Tag           string
	IncludeDrafts bool
}

// PostCreateRequest captures the details required to create a post.
type PostCreateRequest struct {
	Title       string
	Permalink   string
	Layout      string
	Summary     string
	Tags        []string
	Author      string
	Locale      string
	Source      string
	HTML        string
	SourcePath  string
	Checksum    []byte
	Draft       bool
	PublishedAt *time.Time
	CreatedBy   uuid.UUID
	Meta        map[string]any
}

// PostUpdateRequest replaces the mutable fields of an existing post.
type PostUpdateRequest struct {
	ID          uuid.UUID
	Title       string
	Permalink   string
	Layout      string
	Summary     string
	Tags        []string
	Author      string
	Source      string
	HTML        string
	SourcePath  string
	Checksum    []byte
	Draft       bool
	PublishedAt *time.Time
	UpdatedBy   uuid.UUID
	Meta        map[string]any
}

// PostDeleteRequest captures the information required to remove a post.
type PostDeleteRequest struct {
	ID        uuid.UUID
	DeletedBy uuid.UUID
}

// PostRecord reflects the persisted state returned by the posts service.
type PostRecord struct {
	ID          uuid.UUID
	Title       string
	Permalink   string
	Layout      string
	Summary     string
	Tags        []string
	Author      string
	Locale      string
	Source      string
	HTML        string
	SourcePath  string
	Checksum    []byte
	Draft       bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Meta        map[string]any
}
