package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is the canonical record behind every rendered page. Markdown imports
// and API callers both land here; SourcePath and Checksum are only set for
// records that originate from a markdown file.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Title       string         `bun:"title,notnull" json:"title"`
	Permalink   string         `bun:"permalink,notnull" json:"permalink"`
	Layout      string         `bun:"layout,notnull,default:'post'" json:"layout"`
	Summary     string         `bun:"summary" json:"summary,omitempty"`
	Tags        []string       `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Author      string         `bun:"author" json:"author,omitempty"`
	Locale      string         `bun:"locale,notnull,default:'en'" json:"locale"`
	Source      string         `bun:"source" json:"source,omitempty"`
	HTML        string         `bun:"html" json:"html,omitempty"`
	SourcePath  string         `bun:"source_path" json:"source_path,omitempty"`
	Checksum    []byte         `bun:"checksum" json:"checksum,omitempty"`
	Draft       bool           `bun:"draft,notnull,default:false" json:"draft"`
	PublishedAt *time.Time     `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedBy   uuid.UUID      `bun:"created_by,type:uuid" json:"created_by"`
	UpdatedBy   uuid.UUID      `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Meta        map[string]any `bun:"meta,type:jsonb" json:"meta,omitempty"`
}
