// Package posts exposes the public posts contract so hosts can create and
// query records without importing internal packages.
package posts

import (
	internalposts "github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-slug"
)

// Service exposes post management capabilities.
type Service = internalposts.Service

// Record is the stable public view of a stored post.
type Record = interfaces.PostRecord

// CreateRequest captures the details required to create a post.
type CreateRequest = interfaces.PostCreateRequest

// UpdateRequest captures a sparse post update.
type UpdateRequest = interfaces.PostUpdateRequest

// DeleteRequest identifies the post to remove.
type DeleteRequest = interfaces.PostDeleteRequest

// ListOptions filters post listings. The zero value lists every published
// post across all locales.
type ListOptions = interfaces.PostListOptions

// IDGenerator derives deterministic post identifiers from permalink and locale.
type IDGenerator = internalposts.IDGenerator

// NotFoundError describes a missing post and unwraps to ErrNotFound.
type NotFoundError = internalposts.NotFoundError

var (
	// ErrNotFound signals a read for a post that does not exist.
	ErrNotFound = interfaces.ErrPostNotFound
	// ErrPermalinkTaken signals a write that would leave two posts sharing a
	// permalink within the same locale.
	ErrPermalinkTaken = interfaces.ErrPermalinkTaken
	// ErrTitleRequired rejects posts without a title.
	ErrTitleRequired = internalposts.ErrTitleRequired
	// ErrPermalinkRequired rejects posts without a permalink.
	ErrPermalinkRequired = internalposts.ErrPermalinkRequired
	// ErrPermalinkInvalid rejects permalinks whose segments fail slug rules.
	ErrPermalinkInvalid = internalposts.ErrPermalinkInvalid
)

// NormalizePermalink lowercases, slugifies, and canonicalizes a permalink
// path. The root permalink "/" passes through unchanged.
func NormalizePermalink(raw string) (string, error) {
	return internalposts.NormalizePermalink(raw)
}

// NormalizeSlug applies the default slug normalization rules to a single
// path segment.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether the value already satisfies the slug rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}
