package integrity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/internal/schema"
	"github.com/goliatone/go-press/internal/validation"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	// ErrIntegrity reports that one or more content checks failed during a
	// strict run. The full report travels alongside the error.
	ErrIntegrity = errors.New("integrity: content verification failed")
	// ErrMarkdownRequired indicates the service was constructed without a
	// markdown dependency.
	ErrMarkdownRequired = errors.New("integrity: markdown service is required")
	// ErrContentUnavailable reports that no content filesystem was supplied.
	ErrContentUnavailable = errors.New("integrity: content filesystem unavailable")
)

const integrityFailedCode = "CONTENT_INTEGRITY_FAILED"

// Check names, in execution order.
const (
	CheckFrontMatter       = "front_matter"
	CheckPermalinks        = "permalinks"
	CheckAssets            = "assets"
	CheckRenderDeterminism = "render_determinism"
)

// Issue pins one finding to the document it was observed in.
type Issue struct {
	Path   string `json:"path,omitempty"`
	Detail string `json:"detail"`
}

// Check reports the outcome of a single verification pass.
type Check struct {
	Name   string  `json:"name"`
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues,omitempty"`
}

// Report aggregates every check of one verification run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Checks      []Check   `json:"checks"`
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	if r == nil {
		return false
	}
	for _, check := range r.Checks {
		if !check.Passed {
			return false
		}
	}
	return true
}

// Find returns the named check, or nil when the run never executed it.
func (r *Report) Find(name string) *Check {
	if r == nil {
		return nil
	}
	for i := range r.Checks {
		if r.Checks[i].Name == name {
			return &r.Checks[i]
		}
	}
	return nil
}

// Config controls verification defaults. Options may override the content
// location per run.
type Config struct {
	ContentDir string
	Pattern    string
	Recursive  bool
	Strict     bool
	// MaxIssues caps the findings recorded per check; zero keeps everything.
	MaxIssues int
}

// Options adjusts a single verification run.
type Options struct {
	ContentDir string
	Pattern    string
	// Strict overrides Config.Strict when set.
	Strict *bool
}

// Dependencies carries the collaborating services.
type Dependencies struct {
	Markdown interfaces.MarkdownService
	// Content is the filesystem documents are discovered in. Paths handed to
	// the markdown service are relative to its root.
	Content fs.FS
	// Assets resolves referenced files. The assets check is skipped when nil.
	Assets AssetResolverService
	Logger interfaces.Logger
}

// AssetResolverService is the slice of the assets service the checks need.
type AssetResolverService interface {
	Resolve(ref string) (string, error)
	ResolveFrom(baseDir, ref string) (string, error)
}

// Service verifies content integrity ahead of a build.
type Service interface {
	Run(ctx context.Context, opts Options) (*Report, error)
}

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

// NewService wires an integrity service over the supplied dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return &service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

// Run executes the checks in order: front matter, permalinks, assets, render
// determinism. Later checks still run when earlier ones fail so one report
// carries every finding. In strict mode a failed report also yields
// ErrIntegrity.
func (s *service) Run(ctx context.Context, opts Options) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.deps.Markdown == nil {
		return nil, ErrMarkdownRequired
	}
	if s.deps.Content == nil {
		return nil, ErrContentUnavailable
	}

	contentDir := strings.TrimSpace(opts.ContentDir)
	if contentDir == "" {
		contentDir = strings.TrimSpace(s.cfg.ContentDir)
	}
	if contentDir == "" {
		contentDir = "."
	}
	pattern := strings.TrimSpace(opts.Pattern)
	if pattern == "" {
		pattern = strings.TrimSpace(s.cfg.Pattern)
	}
	if pattern == "" {
		pattern = "*.md"
	}

	paths, err := s.listDocuments(ctx, contentDir, pattern)
	if err != nil {
		return nil, fmt.Errorf("integrity: list documents: %w", err)
	}

	report := &Report{GeneratedAt: s.now().UTC()}

	docs, frontMatter := s.checkFrontMatter(ctx, paths)
	report.Checks = append(report.Checks, frontMatter)
	report.Checks = append(report.Checks, s.checkPermalinks(docs))
	report.Checks = append(report.Checks, s.checkAssets(docs))
	report.Checks = append(report.Checks, s.checkRenderDeterminism(ctx, docs))

	if s.deps.Logger != nil {
		for _, check := range report.Checks {
			if !check.Passed {
				s.deps.Logger.Warn("integrity check failed", "check", check.Name, "issues", len(check.Issues))
			}
		}
	}

	strict := s.cfg.Strict
	if opts.Strict != nil {
		strict = *opts.Strict
	}
	if strict && !report.OK() {
		return report, goerrors.Wrap(ErrIntegrity, goerrors.CategoryValidation, "content integrity checks failed").
			WithTextCode(integrityFailedCode)
	}
	return report, nil
}

// listDocuments enumerates candidate files the way the markdown loader does:
// base-name globs unless the pattern carries a separator, recursion per
// config.
func (s *service) listDocuments(ctx context.Context, dir, pattern string) ([]string, error) {
	root := path.Clean(strings.TrimSpace(dir))
	if root == "" {
		root = "."
	}

	var out []string
	err := fs.WalkDir(s.deps.Content, root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && p == root {
				return fs.SkipAll
			}
			return walkErr
		}
		if entry.IsDir() {
			if !s.cfg.Recursive && path.Clean(p) != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if matchesPattern(p, pattern) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func matchesPattern(p, pattern string) bool {
	target := p
	if !strings.Contains(pattern, "/") {
		target = path.Base(p)
	}
	match, err := path.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}

// checkFrontMatter loads every document and validates its front matter
// against the canonical post schema. Documents that load cleanly feed the
// remaining checks even when their metadata has findings.
func (s *service) checkFrontMatter(ctx context.Context, paths []string) ([]*interfaces.Document, Check) {
	check := Check{Name: CheckFrontMatter, Passed: true}
	frontMatterSchema := schema.FrontMatterSchema()

	var docs []*interfaces.Document
	for _, p := range paths {
		doc, err := s.deps.Markdown.Load(ctx, p, interfaces.LoadOptions{})
		if err != nil {
			s.addIssue(&check, Issue{Path: p, Detail: err.Error()})
			continue
		}
		docs = append(docs, doc)

		payload := doc.FrontMatter.Raw
		if payload == nil {
			payload = map[string]any{}
		}
		if err := validation.ValidatePayload(frontMatterSchema, payload); err != nil {
			for _, issue := range validation.Issues(err) {
				detail := issue.Message
				if issue.Location != "" {
					detail = issue.Location + ": " + issue.Message
				}
				s.addIssue(&check, Issue{Path: p, Detail: detail})
			}
		}
	}
	return docs, check
}

// checkPermalinks verifies that every document can be addressed and that no
// two documents of the same locale claim the same normalized permalink.
func (s *service) checkPermalinks(docs []*interfaces.Document) Check {
	check := Check{Name: CheckPermalinks, Passed: true}
	seen := map[string]string{}

	for _, doc := range docs {
		raw := strings.TrimSpace(doc.FrontMatter.Permalink)
		if raw == "" {
			s.addIssue(&check, Issue{Path: doc.FilePath, Detail: "missing permalink front matter"})
			continue
		}
		permalink, err := posts.NormalizePermalink(raw)
		if err != nil {
			s.addIssue(&check, Issue{Path: doc.FilePath, Detail: fmt.Sprintf("invalid permalink %q: %v", raw, err)})
			continue
		}
		key := permalink + "::" + strings.ToLower(strings.TrimSpace(doc.Locale))
		if other, ok := seen[key]; ok {
			s.addIssue(&check, Issue{
				Path:   doc.FilePath,
				Detail: fmt.Sprintf("permalink %q already used by %s", permalink, other),
			})
			continue
		}
		seen[key] = doc.FilePath
	}
	return check
}

// checkAssets confirms every referenced local asset resolves to a file,
// trying the document directory first the way the published page would.
func (s *service) checkAssets(docs []*interfaces.Document) Check {
	check := Check{Name: CheckAssets, Passed: true}
	if s.deps.Assets == nil {
		return check
	}

	for _, doc := range docs {
		baseDir := path.Dir(doc.FilePath)
		for _, ref := range doc.AssetRefs {
			if _, err := s.deps.Assets.ResolveFrom(baseDir, ref); err != nil {
				s.addIssue(&check, Issue{
					Path:   doc.FilePath,
					Detail: fmt.Sprintf("asset %q does not resolve: %v", ref, err),
				})
			}
		}
	}
	return check
}

// checkRenderDeterminism renders each document body twice and compares the
// bytes. Parsers that leak state between runs or embed wall-clock values
// surface here.
func (s *service) checkRenderDeterminism(ctx context.Context, docs []*interfaces.Document) Check {
	check := Check{Name: CheckRenderDeterminism, Passed: true}

	for _, doc := range docs {
		first, err := s.deps.Markdown.Render(ctx, doc.Body, interfaces.ParseOptions{})
		if err != nil {
			s.addIssue(&check, Issue{Path: doc.FilePath, Detail: fmt.Sprintf("render failed: %v", err)})
			continue
		}
		second, err := s.deps.Markdown.Render(ctx, doc.Body, interfaces.ParseOptions{})
		if err != nil {
			s.addIssue(&check, Issue{Path: doc.FilePath, Detail: fmt.Sprintf("second render failed: %v", err)})
			continue
		}
		if !bytes.Equal(first, second) {
			s.addIssue(&check, Issue{Path: doc.FilePath, Detail: "repeated renders produced different bytes"})
		}
	}
	return check
}

// addIssue records a finding, honoring the per-check cap.
func (s *service) addIssue(check *Check, issue Issue) {
	check.Passed = false
	if s.cfg.MaxIssues > 0 && len(check.Issues) >= s.cfg.MaxIssues {
		return
	}
	check.Issues = append(check.Issues, issue)
}
