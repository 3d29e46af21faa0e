package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-press/internal/assets"
	"github.com/goliatone/go-press/internal/destinations"
	"github.com/goliatone/go-press/internal/themes"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errRendererRequired = errors.New("generator: template renderer is required")
	errTemplateRequired = errors.New("generator: template is required for rendering")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	BaseURL         string
	Title           string
	Description     string
	Author          string
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	Workers         int
	DefaultLocale   string
	Locales         []string
	Destination     string
	Theming         ThemingConfig
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	Locales     []string
	PostIDs     []uuid.UUID
	Drafts      bool
	DryRun      bool
	Destination string
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	FeedsBuilt    int
	Locales       []string
	OutputDir     string
	Destination   string
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Posts        interfaces.PostsService
	Themes       themes.Service
	Renderer     interfaces.TemplateRenderer
	Storage      interfaces.StorageProvider
	Assets       assets.Service
	ThemeAssets  AssetResolver
	Destinations destinations.Service
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return &service{
		cfg:           cfg,
		deps:          deps,
		themeSelector: newThemeSelector(cfg.Theming, nil),
		now:           time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg           Config
	deps          Dependencies
	themeSelector *themeSelector
	now           func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}

	start := time.Now()

	outputRoot, destination, err := s.resolveOutputRoot(ctx, opts.Destination)
	if err != nil {
		return nil, err
	}
	baseDir := strings.Trim(strings.TrimSpace(outputRoot), "/")

	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		Locales:     make([]string, 0, len(buildCtx.Locales)),
		OutputDir:   outputRoot,
		Destination: destination,
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(buildCtx.Pages)),
	}
	for _, spec := range buildCtx.Locales {
		result.Locales = append(result.Locales, spec.Code)
	}

	siteMeta := SiteMetadata{
		BaseURL:       strings.TrimRight(s.cfg.BaseURL, "/"),
		Title:         s.cfg.Title,
		Description:   s.cfg.Description,
		Author:        s.cfg.Author,
		DefaultLocale: buildCtx.DefaultLocale,
		Locales:       append([]LocaleSpec(nil), buildCtx.Locales...),
		Metadata:      map[string]any{},
	}

	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(buildCtx.Pages))
		errorsSlice []error
		pageKeys    = map[string]struct{}{}
		assetKeys   = map[string]struct{}{}
	)

	var manifest *buildManifest
	if s.cfg.CleanBuild {
		// A clean build ignores previous outputs, so nothing is skipped.
		manifest = newBuildManifest()
	} else {
		loaded, manifestErr := s.loadManifest(ctx, baseDir)
		if manifestErr != nil {
			errorsSlice = append(errorsSlice, manifestErr)
		}
		manifest = loaded
	}
	if manifest == nil {
		manifest = newBuildManifest()
	}

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.diagnostic.PostID != uuid.Nil {
			pageKeys[manifest.pageKey(outcome.diagnostic.PostID, outcome.diagnostic.Locale)] = struct{}{}
		}
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		rendered = append(rendered, outcome.page)
	}

	workerCount := s.effectiveWorkerCount(len(buildCtx.Locales))
	if workerCount <= 1 || len(buildCtx.Pages) <= 1 {
		for _, page := range buildCtx.Pages {
			select {
			case <-ctx.Done():
				collect(renderOutcome{
					diagnostic: RenderDiagnostic{
						PostID:    page.Post.ID,
						Locale:    page.Locale.Code,
						Permalink: page.Post.Permalink,
						Err:       ctx.Err(),
					},
					err: ctx.Err(),
				})
				return result, ctx.Err()
			default:
				outcome := s.renderPage(ctx, siteMeta, buildCtx, page, manifest, baseDir)
				collect(outcome)
			}
		}
	} else {
		if err := s.renderConcurrently(ctx, siteMeta, buildCtx, workerCount, manifest, baseDir, collect); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if opts.DryRun {
		result.Rendered = rendered
		result.Duration = time.Since(start)
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	writer := newArtifactWriter(s.deps.Storage)
	if err := s.persistPages(ctx, writer, buildCtx, rendered, baseDir); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	if s.cfg.CopyAssets {
		themeSummary, err := s.copyThemeAssets(ctx, writer, buildCtx, manifest, baseDir, assetKeys)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.AssetsBuilt += themeSummary.Built
			result.AssetsSkipped += themeSummary.Skipped
		}

		siteSummary, err := s.copySiteAssets(ctx, writer, manifest, baseDir, assetKeys)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.AssetsBuilt += siteSummary.Built
			result.AssetsSkipped += siteSummary.Skipped
		}
	}

	if s.cfg.GenerateFeeds {
		docs := s.buildFeedDocuments(buildCtx)
		written, err := s.writeFeeds(ctx, writer, siteMeta, docs, baseDir)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		result.FeedsBuilt = written
	}

	if s.cfg.GenerateSitemap {
		sitemapPages := s.mergeRenderedForSitemap(buildCtx, rendered, manifest)
		if err := s.writeSitemap(ctx, writer, buildCtx, sitemapPages, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer, buildCtx, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if len(errorsSlice) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		for _, page := range rendered {
			if page.PostID == uuid.Nil || strings.TrimSpace(page.Checksum) == "" {
				continue
			}
			manifest.setPage(manifestPage{
				PostID:       page.PostID.String(),
				Locale:       page.Locale,
				Permalink:    page.Permalink,
				Output:       page.Output,
				Template:     page.Template,
				Hash:         page.Metadata.Hash,
				Checksum:     page.Checksum,
				LastModified: page.Metadata.LastModified,
				RenderedAt:   buildCtx.GeneratedAt,
			})
		}
		// Only a full build sees the whole site; a scoped build must not
		// prune entries outside its scope.
		if len(opts.PostIDs) == 0 && len(opts.Locales) == 0 {
			manifest.prunePages(pageKeys)
			if s.cfg.CopyAssets {
				manifest.pruneAssets(assetKeys)
			}
		}
		if err := s.persistManifest(ctx, writer, manifest, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// Clean removes every build artifact under the resolved output root.
func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	outputRoot, _, err := s.resolveOutputRoot(ctx, "")
	if err != nil {
		return err
	}
	baseDir := strings.Trim(strings.TrimSpace(outputRoot), "/")

	writer := newArtifactWriter(s.deps.Storage)
	entries, err := writer.List(ctx, baseDir)
	if err != nil {
		return fmt.Errorf("generator: list output: %w", err)
	}

	if baseDir != "" {
		return writer.Remove(ctx, baseDir)
	}

	var errs []error
	for _, entry := range entries {
		if err := writer.Remove(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// resolveOutputRoot picks the directory builds write to. A named destination
// profile must resolve; with no name the default profile applies when one
// exists, otherwise the configured output directory.
func (s *service) resolveOutputRoot(ctx context.Context, destination string) (string, string, error) {
	name := strings.TrimSpace(destination)
	if name == "" {
		name = strings.TrimSpace(s.cfg.Destination)
	}

	if s.deps.Destinations == nil {
		if name != "" {
			return "", "", fmt.Errorf("generator: destination %q requires a destinations service", name)
		}
		return s.cfg.OutputDir, "", nil
	}

	profile, err := s.deps.Destinations.Resolve(ctx, name)
	if err != nil {
		if name == "" && errors.Is(err, destinations.ErrNoDefaultDestination) {
			return s.cfg.OutputDir, "", nil
		}
		return "", "", fmt.Errorf("generator: resolve destination: %w", err)
	}

	root := strings.TrimSpace(profile.Config.DSN)
	if root == "" {
		root = s.cfg.OutputDir
	}
	return root, profile.Name, nil
}

func (s *service) renderConcurrently(
	ctx context.Context,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	workers int,
	manifest *buildManifest,
	baseDir string,
	collect func(renderOutcome),
) error {
	grouped := groupPagesByLocale(buildCtx.Pages)
	if len(grouped) == 0 {
		return nil
	}

	jobs := make(chan []*PageData)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				for _, page := range batch {
					select {
					case <-ctx.Done():
						collect(renderOutcome{
							diagnostic: RenderDiagnostic{
								PostID:    page.Post.ID,
								Locale:    page.Locale.Code,
								Permalink: page.Post.Permalink,
								Err:       ctx.Err(),
							},
							err: ctx.Err(),
						})
						return
					default:
						outcome := s.renderPage(ctx, siteMeta, buildCtx, page, manifest, baseDir)
						collect(outcome)
					}
				}
			}
		}()
	}

	for _, locale := range buildCtx.Locales {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- grouped[locale.Code]:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (s *service) renderPage(
	ctx context.Context,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	data *PageData,
	manifest *buildManifest,
	baseDir string,
) renderOutcome {
	permalink := strings.TrimSpace(data.Post.Permalink)
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			PostID:    data.Post.ID,
			Locale:    data.Locale.Code,
			Permalink: permalink,
		},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	templateName := strings.TrimSpace(data.TemplateName)
	if templateName == "" {
		err := fmt.Errorf("generator: post %s locale %s missing template: %w", data.Post.ID, data.Locale.Code, errTemplateRequired)
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}
	outcome.diagnostic.Template = templateName

	destRel := buildOutputPath(permalink, data.Locale.Code, buildCtx.DefaultLocale)
	output := joinOutputPath(baseDir, destRel)

	if s.cfg.Incremental && manifest.shouldSkipPage(data.Post.ID, data.Locale.Code, data.Metadata.Hash, output) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	templateCtx := TemplateContext{
		Site: siteMeta,
		Page: PageRenderingContext{
			Post:     data.Post,
			Kind:     data.Kind,
			Template: data.Template,
			Theme:    data.Theme,
			Locale:   data.Locale,
			Metadata: data.Metadata,
		},
		Posts: data.Posts,
		Build: BuildMetadata{
			ContentUpdatedAt: buildCtx.ContentUpdatedAt,
			Options:          buildCtx.Options,
		},
		Theme:   buildThemeContext(data.ThemeSelection, s.cfg.Theming),
		Helpers: newTemplateHelpers(siteMeta.DefaultLocale, data.Locale, siteMeta.BaseURL, buildCtx.Routes),
	}

	start := time.Now()
	renderedHTML, err := s.deps.Renderer.RenderTemplate(templateName, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for post %s (%s): %w", templateName, data.Post.ID, data.Locale.Code, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		PostID:    data.Post.ID,
		Locale:    data.Locale.Code,
		Permalink: permalink,
		Output:    output,
		Template:  templateName,
		HTML:      renderedHTML,
		Metadata:  data.Metadata,
		Duration:  duration,
		Checksum:  computeHashFromString(renderedHTML),
	}
	return outcome
}

func (s *service) persistPages(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	pages []RenderedPage,
	baseDir string,
) error {
	if len(pages) == 0 {
		return nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return err
		}
	}
	for i := range pages {
		fullPath := pages[i].Output
		if strings.TrimSpace(fullPath) == "" {
			fullPath = joinOutputPath(baseDir, buildOutputPath(pages[i].Permalink, pages[i].Locale, buildCtx.DefaultLocale))
			pages[i].Output = fullPath
		}
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}

		metadata := map[string]string{
			"post_id":   pages[i].PostID.String(),
			"permalink": pages[i].Permalink,
			"template":  pages[i].Template,
		}
		if s.cfg.Incremental {
			metadata["incremental"] = "true"
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Locale:      pages[i].Locale,
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    pages[i].Checksum,
			Metadata:    metadata,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

type assetCopySummary struct {
	Built   int
	Skipped int
}

const (
	assetKindTheme = "theme"
	assetKindSite  = "site"
)

func (s *service) copyThemeAssets(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	manifest *buildManifest,
	baseDir string,
	assetKeys map[string]struct{},
) (assetCopySummary, error) {
	summary := assetCopySummary{}
	if s.deps.ThemeAssets == nil {
		return summary, nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return summary, err
		}
	}
	seen := map[string]struct{}{}
	for _, page := range buildCtx.Pages {
		theme := page.Theme
		if theme == nil {
			continue
		}
		for _, asset := range collectThemeAssets(theme, page.ThemeSelection) {
			if _, ok := seen[asset]; ok {
				continue
			}
			seen[asset] = struct{}{}
			if assetKeys != nil {
				assetKeys[manifest.assetKey(assetKindTheme, asset)] = struct{}{}
			}
			reader, err := s.deps.ThemeAssets.Open(asset)
			if err != nil {
				return summary, err
			}
			data, err := io.ReadAll(reader)
			_ = reader.Close()
			if err != nil {
				return summary, err
			}
			resolved, err := s.deps.ThemeAssets.ResolvePath(asset)
			if err != nil {
				return summary, err
			}
			resolved = strings.TrimLeft(strings.TrimSpace(resolved), "/")
			if resolved == "" {
				resolved = strings.TrimLeft(strings.TrimSpace(asset), "/")
			}
			destRel := path.Join("assets", resolved)
			fullPath := joinOutputPath(baseDir, destRel)
			checksum := computeHash(data)
			if s.cfg.Incremental && manifest.shouldSkipAsset(assetKindTheme, asset, checksum, fullPath) {
				summary.Skipped++
				continue
			}
			if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
				return summary, err
			}
			req := writeFileRequest{
				Path:        fullPath,
				Content:     bytes.NewReader(data),
				Size:        int64(len(data)),
				Category:    categoryAsset,
				ContentType: detectAssetContentType(destRel),
				Checksum:    checksum,
				Metadata: map[string]string{
					"kind":  assetKindTheme,
					"asset": asset,
					"theme": theme.Name,
				},
			}
			if err := writer.WriteFile(ctx, req); err != nil {
				return summary, err
			}
			summary.Built++
			manifest.setAsset(manifestAsset{
				Key:      manifest.assetKey(assetKindTheme, asset),
				Kind:     assetKindTheme,
				Source:   asset,
				Output:   fullPath,
				Checksum: checksum,
				Size:     int64(len(data)),
				CopiedAt: s.now(),
			})
		}
	}
	return summary, nil
}

// copySiteAssets mirrors the content tree's static files into the output,
// preserving their relative paths so references inside rendered pages keep
// working.
func (s *service) copySiteAssets(
	ctx context.Context,
	writer artifactWriter,
	manifest *buildManifest,
	baseDir string,
	assetKeys map[string]struct{},
) (assetCopySummary, error) {
	summary := assetCopySummary{}
	if s.deps.Assets == nil {
		return summary, nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return summary, err
		}
	}

	err := s.deps.Assets.CopyAll(ctx, func(ctx context.Context, srcPath string, r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("generator: read asset %s: %w", srcPath, err)
		}
		if assetKeys != nil {
			assetKeys[manifest.assetKey(assetKindSite, srcPath)] = struct{}{}
		}
		fullPath := joinOutputPath(baseDir, strings.TrimLeft(srcPath, "/"))
		checksum := computeHash(data)
		if s.cfg.Incremental && manifest.shouldSkipAsset(assetKindSite, srcPath, checksum, fullPath) {
			summary.Skipped++
			return nil
		}
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(srcPath),
			Checksum:    checksum,
			Metadata: map[string]string{
				"kind":  assetKindSite,
				"asset": srcPath,
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
		summary.Built++
		manifest.setAsset(manifestAsset{
			Key:      manifest.assetKey(assetKindSite, srcPath),
			Kind:     assetKindSite,
			Source:   srcPath,
			Output:   fullPath,
			Checksum: checksum,
			Size:     int64(len(data)),
			CopiedAt: s.now(),
		})
		return nil
	})
	if err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *service) mergeRenderedForSitemap(
	buildCtx *BuildContext,
	rendered []RenderedPage,
	manifest *buildManifest,
) []RenderedPage {
	if buildCtx == nil || manifest == nil {
		return append([]RenderedPage(nil), rendered...)
	}

	renderedByKey := make(map[string]RenderedPage, len(rendered))
	for _, page := range rendered {
		renderedByKey[manifest.pageKey(page.PostID, page.Locale)] = page
	}

	sitemap := make([]RenderedPage, 0, len(buildCtx.Pages))
	for _, data := range buildCtx.Pages {
		key := manifest.pageKey(data.Post.ID, data.Locale.Code)
		if page, ok := renderedByKey[key]; ok {
			sitemap = append(sitemap, page)
			continue
		}
		if entry, ok := manifest.lookupPage(data.Post.ID, data.Locale.Code); ok {
			sitemap = append(sitemap, RenderedPage{
				PostID:    data.Post.ID,
				Locale:    data.Locale.Code,
				Permalink: entry.Permalink,
				Output:    entry.Output,
				Template:  entry.Template,
				Metadata: DependencyMetadata{
					Hash:         entry.Hash,
					LastModified: entry.LastModified,
				},
				Checksum: entry.Checksum,
			})
			continue
		}
		sitemap = append(sitemap, RenderedPage{
			PostID:    data.Post.ID,
			Locale:    data.Locale.Code,
			Permalink: data.Post.Permalink,
			Template:  data.TemplateName,
			Metadata:  data.Metadata,
		})
	}
	return sitemap
}

func (s *service) loadManifest(ctx context.Context, baseDir string) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	target := joinOutputPath(baseDir, manifestFileName)
	if strings.TrimSpace(target) == "" {
		return newBuildManifest(), nil
	}
	rows, err := s.deps.Storage.Query(ctx, storageOpRead, target)
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return newBuildManifest(), nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("generator: scan manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest, baseDir string) error {
	if manifest == nil {
		return nil
	}
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := joinOutputPath(baseDir, manifestFileName)
	if strings.TrimSpace(target) == "" {
		return nil
	}
	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, writer, dirCache, path.Dir(target)); err != nil {
		return err
	}
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	req := writeFileRequest{
		Path:        target,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    metadata,
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) writeSitemap(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	pages []RenderedPage,
	baseDir string,
) error {
	content := buildSitemap(buildCtx.Routes, pages)
	fullPath := joinOutputPath(baseDir, "sitemap.xml")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": buildCtx.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) writeRobots(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	baseDir string,
) error {
	content := buildRobots(buildCtx.Routes, s.cfg.GenerateSitemap)
	fullPath := joinOutputPath(baseDir, "robots.txt")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": buildCtx.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) effectiveWorkerCount(localeCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if localeCount > 0 && workers > localeCount {
		return localeCount
	}
	return workers
}

func groupPagesByLocale(pages []*PageData) map[string][]*PageData {
	grouped := make(map[string][]*PageData, len(pages))
	for _, page := range pages {
		if page == nil {
			continue
		}
		code := page.Locale.Code
		grouped[code] = append(grouped[code], page)
	}
	return grouped
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
