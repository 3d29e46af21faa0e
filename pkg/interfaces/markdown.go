package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations keep parser instances reusable and expose extension toggles
// so hosts can tailor rendering without rewriting the core service.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
	// DiagramLanguages lists the fenced code block languages that are treated
	// as diagram fragments and emitted as passthrough containers for a
	// client-side viewer. Defaults to mermaid, flowchart, sequence.
	DiagramLanguages []string
}

// DiagramKind classifies a diagram fragment by sniffing the first token of
// its source. The source itself is never interpreted.
type DiagramKind string

const (
	DiagramFlowchart DiagramKind = "flowchart"
	DiagramSequence  DiagramKind = "sequence"
	DiagramGeneric   DiagramKind = "mermaid"
)

// Diagram is a textual diagram definition embedded in a document body. The
// engine extracts and re-emits these fragments; rendering them is the
// responsibility of an external viewer.
type Diagram struct {
	Index  int
	Kind   DiagramKind
	Source string
}

// MarkdownService exposes the high-level file workflows: load Markdown
// documents, convert them into HTML, and synchronise them with stored posts.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
	ExtractDiagrams(markdown []byte) []Diagram
	Import(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error)
	ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error)
	Sync(ctx context.Context, dir string, opts SyncOptions) (*SyncResult, error)
}

// Document represents a Markdown file with parsed metadata and content. The
// struct is shared between the interfaces package and internal implementations
// so consumers can depend on a stable contract.
type Document struct {
	FilePath     string
	Locale       string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	Diagrams     []Diagram
	AssetRefs    []string
	LastModified time.Time
	// Checksum stores a digest of the original file content (SHA-256) so sync
	// workflows can detect changes without re-importing unchanged files.
	Checksum []byte
}

// FrontMatter models metadata extracted from Markdown files. Layout, title,
// and permalink are the canonical publishing fields; everything else stays
// flexible through the Custom map.
type FrontMatter struct {
	Layout    string         `yaml:"layout" json:"layout"`
	Title     string         `yaml:"title" json:"title"`
	Permalink string         `yaml:"permalink" json:"permalink"`
	Summary   string         `yaml:"summary" json:"summary"`
	Tags      []string       `yaml:"tags" json:"tags"`
	Author    string         `yaml:"author" json:"author"`
	Date      time.Time      `yaml:"date" json:"date"`
	Draft     bool           `yaml:"draft" json:"draft"`
	Custom    map[string]any `yaml:",inline" json:"custom"`
	Raw       map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive      *bool
	Pattern        string
	LocalePatterns map[string]string
	Parser         ParseOptions
}

// ImportOptions controls how Markdown documents are converted into posts.
type ImportOptions struct {
	AuthorID       uuid.UUID
	UpdateExisting bool
	DryRun         bool
}

// SyncOptions extends ImportOptions to handle update/delete semantics for
// repeated synchronisation runs.
type SyncOptions struct {
	ImportOptions
	DeleteOrphaned bool
}

// ImportResult reports the outcome of a single import operation, exposing
// counts and IDs so callers can audit behaviour or trigger follow-up actions.
type ImportResult struct {
	CreatedPostIDs []uuid.UUID
	UpdatedPostIDs []uuid.UUID
	SkippedPostIDs []uuid.UUID
	Errors         []error
}

// SyncResult summarises a bulk sync run across many files.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Errors  []error
}
