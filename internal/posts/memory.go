package posts

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for embedded sites and tests.
type MemoryRepository struct {
	mu             sync.RWMutex
	posts          map[uuid.UUID]*Post
	permalinkIndex map[string]uuid.UUID
}

// NewMemoryRepository creates an empty in-memory post repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:          make(map[uuid.UUID]*Post),
		permalinkIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts the supplied post.
func (m *MemoryRepository) Create(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := clonePost(record)
	m.posts[copied.ID] = copied
	m.permalinkIndex[permalinkKey(copied.Permalink, copied.Locale)] = copied.ID
	return clonePost(copied), nil
}

// GetByID retrieves a post by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.posts[id]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: id.String()}
	}
	return clonePost(rec), nil
}

// GetByPermalink retrieves a post by permalink within a locale, returning
// NotFoundError when absent.
func (m *MemoryRepository) GetByPermalink(_ context.Context, permalink, locale string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.permalinkIndex[permalinkKey(permalink, locale)]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: permalink}
	}
	return clonePost(m.posts[id]), nil
}

// List returns every stored post.
func (m *MemoryRepository) List(_ context.Context) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Post, 0, len(m.posts))
	for _, rec := range m.posts {
		out = append(out, clonePost(rec))
	}
	return out, nil
}

// Update replaces a stored post, keeping the permalink index in step.
func (m *MemoryRepository) Update(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.posts[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: record.ID.String()}
	}
	delete(m.permalinkIndex, permalinkKey(current.Permalink, current.Locale))

	copied := clonePost(record)
	m.posts[copied.ID] = copied
	m.permalinkIndex[permalinkKey(copied.Permalink, copied.Locale)] = copied.ID
	return clonePost(copied), nil
}

// Delete removes a post by identifier.
func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.posts[id]
	if !ok {
		return &NotFoundError{Resource: "post", Key: id.String()}
	}
	delete(m.permalinkIndex, permalinkKey(current.Permalink, current.Locale))
	delete(m.posts, id)
	return nil
}

func permalinkKey(permalink, locale string) string {
	return strings.ToLower(strings.TrimSpace(locale)) + "::" + strings.TrimSpace(permalink)
}

func clonePost(src *Post) *Post {
	if src == nil {
		return nil
	}

	copied := *src
	copied.Tags = cloneTags(src.Tags)
	copied.Checksum = cloneBytes(src.Checksum)
	copied.PublishedAt = cloneTimePtr(src.PublishedAt)
	copied.Meta = cloneMap(src.Meta)
	return &copied
}
