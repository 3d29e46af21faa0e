package di_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	activitylog "github.com/goliatone/go-press/internal/activity"
	"github.com/goliatone/go-press/internal/di"
	ditesting "github.com/goliatone/go-press/internal/di/testing"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/internal/themes"
	pressactivity "github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/pkg/storage"
)

func TestNewContainerDefaults(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if container.Logger() == nil {
		t.Fatalf("expected default logger")
	}

	ctx := context.Background()

	postsSvc := container.PostsService()
	if postsSvc == nil {
		t.Fatalf("expected posts service")
	}
	created, err := postsSvc.Create(ctx, interfaces.PostCreateRequest{
		Title:     "Hello",
		Permalink: "/hello/",
		Layout:    "post",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fetched, err := postsSvc.GetByPermalink(ctx, created.Permalink, created.Locale)
	if err != nil {
		t.Fatalf("GetByPermalink: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, fetched.ID)
	}

	if svc := container.MarkdownService(); svc != nil {
		t.Fatalf("expected markdown service to be nil when the feature is disabled")
	}
	if svc := container.IntegrityService(); svc != nil {
		t.Fatalf("expected integrity service to be nil when the feature is disabled")
	}
	if reg := container.SchemaRegistry(); reg != nil {
		t.Fatalf("expected schema registry to be nil when the feature is disabled")
	}
	if container.BunDB() != nil {
		t.Fatalf("expected no database for the memory driver")
	}

	themeSvc := container.ThemeService()
	if themeSvc == nil {
		t.Fatalf("expected theme service")
	}
	if _, err := themeSvc.ListThemes(ctx); !errors.Is(err, themes.ErrFeatureDisabled) {
		t.Fatalf("expected ErrFeatureDisabled from disabled theme service, got %v", err)
	}

	if _, err := container.GeneratorService().Build(ctx, generator.BuildOptions{}); !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}

	if container.DestinationsService() == nil {
		t.Fatalf("expected destinations service")
	}

	emitter := container.ActivityEmitter()
	if emitter == nil {
		t.Fatalf("expected activity emitter")
	}
	if emitter.Enabled() {
		t.Fatalf("expected activity emitter to report disabled by default")
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Enabled = true

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrGeneratorFeatureRequired) {
		t.Fatalf("expected ErrGeneratorFeatureRequired, got %v", err)
	}
}

func TestContainerPostsServiceUsesOverrides(t *testing.T) {
	fixedTime := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	fixedID := uuid.MustParse("7a9f8f3e-6f42-4f2b-9d0e-2f4b5c6d7e8f")

	container, err := di.NewContainer(runtimeconfig.DefaultConfig(),
		di.WithClock(func() time.Time { return fixedTime }),
		di.WithIDGenerator(func(string, string) uuid.UUID { return fixedID }),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	record, err := container.PostsService().Create(context.Background(), interfaces.PostCreateRequest{
		Title:     "Deterministic",
		Permalink: "/deterministic/",
		Layout:    "post",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.ID != fixedID {
		t.Fatalf("expected injected id %s, got %s", fixedID, record.ID)
	}
	if !record.CreatedAt.Equal(fixedTime) {
		t.Fatalf("expected injected clock %s, got %s", fixedTime, record.CreatedAt)
	}
}

func TestContainerBuildsMarkdownServiceFromContentFS(t *testing.T) {
	contentFS := fstest.MapFS{
		"hello.md": &fstest.MapFile{Data: []byte(`---
title: Hello
permalink: /hello/
layout: post
---

# Hello

Body copy.
`)},
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Markdown = true
	cfg.Markdown.Enabled = true

	container, err := di.NewContainer(cfg, di.WithContentFS(contentFS))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	svc := container.MarkdownService()
	if svc == nil {
		t.Fatalf("expected markdown service when the feature is enabled")
	}

	doc, err := svc.Load(context.Background(), "hello.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.FrontMatter.Title != "Hello" {
		t.Fatalf("expected title Hello, got %q", doc.FrontMatter.Title)
	}
	if !strings.Contains(string(doc.BodyHTML), "Body copy.") {
		t.Fatalf("expected rendered body, got %q", doc.BodyHTML)
	}
}

func TestNewContainerFailsWhenContentDirMissing(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Markdown = true
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = "testdata/does-not-exist"

	if _, err := di.NewContainer(cfg); err == nil {
		t.Fatalf("expected error for missing content directory")
	}
}

func TestContainerActivityEmitterFanOut(t *testing.T) {
	capture := &pressactivity.CaptureHook{}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Activity = true
	cfg.Activity.Enabled = true

	container, err := di.NewContainer(cfg, di.WithActivityHooks(pressactivity.Hooks{capture}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	emitter := container.ActivityEmitter()
	if !emitter.Enabled() {
		t.Fatalf("expected activity emitter to be enabled")
	}

	if err := emitter.Emit(context.Background(), pressactivity.Event{Verb: "post.published"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if len(capture.Events) != 1 {
		t.Fatalf("expected one captured event, got %d", len(capture.Events))
	}
	event := capture.Events[0]
	if event.Channel != "press" {
		t.Fatalf("expected configured channel, got %q", event.Channel)
	}
	if event.OccurredAt.IsZero() {
		t.Fatalf("expected emit to stamp OccurredAt")
	}
}

func TestContainerActivityDisabledWithoutEnable(t *testing.T) {
	capture := &pressactivity.CaptureHook{}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Activity = true

	container, err := di.NewContainer(cfg, di.WithActivityHooks(pressactivity.Hooks{capture}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	emitter := container.ActivityEmitter()
	if emitter.Enabled() {
		t.Fatalf("expected emitter to stay disabled without activity.enabled")
	}
	if err := emitter.Emit(context.Background(), pressactivity.Event{Verb: "post.published"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events through a disabled emitter, got %d", len(capture.Events))
	}
}

func TestContainerForwardsActivityToSink(t *testing.T) {
	sink := activitylog.NewMemorySink()
	actorID := uuid.New()

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Activity = true
	cfg.Activity.Enabled = true

	container, err := di.NewContainer(cfg, di.WithActivitySink(sink))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	err = container.ActivityEmitter().Emit(context.Background(), pressactivity.Event{
		Verb:       "post.published",
		ActorID:    actorID.String(),
		ObjectType: "post",
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	records := sink.Records()
	if len(records) != 1 {
		t.Fatalf("expected one sink record, got %d", len(records))
	}
	if records[0].Verb != "post.published" {
		t.Fatalf("expected verb to survive mapping, got %q", records[0].Verb)
	}
	if records[0].ActorID != actorID {
		t.Fatalf("expected actor id %s, got %s", actorID, records[0].ActorID)
	}
}

func TestContainerSeedsDestinationProfiles(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Destinations = true
	cfg.Destinations.Profiles = []storage.Profile{
		{
			Name:     "dist",
			Provider: "fs",
			Config:   storage.Config{Driver: "fs", DSN: "file://dist"},
			Default:  true,
		},
		{
			Name:     "preview",
			Provider: "fs",
			Config:   storage.Config{Driver: "fs", DSN: "file://preview"},
		},
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	svc := container.DestinationsService()

	profile, err := svc.Get(ctx, "dist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !profile.Default {
		t.Fatalf("expected dist to be the default profile")
	}

	resolved, err := svc.Resolve(ctx, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Name != "dist" {
		t.Fatalf("expected default resolution to dist, got %q", resolved.Name)
	}

	if _, err := svc.Get(ctx, "preview"); err != nil {
		t.Fatalf("Get preview: %v", err)
	}
}

func TestContainerBootstrapsThemeSeeds(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Themes = true
	cfg.Themes.Enabled = true

	seed := themes.ThemeSeed{
		Theme: themes.RegisterThemeInput{
			Name:      "chronicle",
			Version:   "1.0.0",
			ThemePath: "themes/chronicle",
			Activate:  true,
		},
		Templates: []themes.RegisterTemplateInput{
			{Name: "Post", Slug: "post", TemplatePath: "templates/post.html"},
			{Name: "Home", Slug: "home", TemplatePath: "templates/home.html"},
		},
	}

	container, err := di.NewContainer(cfg, di.WithThemeSeeds(seed))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	svc := container.ThemeService()

	theme, err := svc.GetThemeByName(ctx, "chronicle")
	if err != nil {
		t.Fatalf("GetThemeByName: %v", err)
	}
	if !theme.IsActive {
		t.Fatalf("expected seeded theme to be active")
	}

	templates, err := svc.ListTemplates(ctx, theme.ID)
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected two seeded templates, got %d", len(templates))
	}
}

type recordingSchemaRegistry struct {
	names []string
}

func (r *recordingSchemaRegistry) Register(_ context.Context, name string, _ map[string]any) error {
	r.names = append(r.names, name)
	return nil
}

func TestContainerPublishesPostSchema(t *testing.T) {
	registry := &recordingSchemaRegistry{}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.SchemaRegistry = true

	container, err := di.NewContainer(cfg, di.WithSchemaRegistry(registry))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if len(registry.names) != 1 || registry.names[0] != "post" {
		t.Fatalf("expected the post projection to be registered, got %#v", registry.names)
	}

	defaulted, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = defaulted.Close() })
	if defaulted.SchemaRegistry() == nil {
		t.Fatalf("expected a default schema registry when the feature is enabled")
	}
}

type staticRenderer struct {
	body string
}

func (r staticRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r staticRenderer) RenderTemplate(name string, _ any, out ...io.Writer) (string, error) {
	rendered := "<html><!-- " + name + " -->" + r.body + "</html>"
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (r staticRenderer) RenderString(templateContent string, _ any, _ ...io.Writer) (string, error) {
	return templateContent, nil
}

func (staticRenderer) RegisterFilter(string, func(any, any) (any, error)) error { return nil }

func (staticRenderer) GlobalContext(any) error { return nil }

func TestContainerGeneratorBuildWritesThroughStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Generator = true
	cfg.Generator.Enabled = true
	cfg.Generator.OutputDir = "dist"
	cfg.Generator.CopyAssets = false
	cfg.Generator.GenerateSitemap = false
	cfg.Generator.GenerateFeeds = false
	cfg.Site.Title = "Press"
	cfg.Site.BaseURL = "https://example.test"

	container, storageSpy, err := ditesting.NewGeneratorContainer(cfg,
		di.WithTemplateRenderer(staticRenderer{body: "page"}),
	)
	if err != nil {
		t.Fatalf("NewGeneratorContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	ctx := context.Background()
	if _, err := container.PostsService().Create(ctx, interfaces.PostCreateRequest{
		Title:     "Hello",
		Permalink: "/hello/",
		Layout:    "post",
		HTML:      "<p>hi</p>",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	result, err := container.GeneratorService().Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt == 0 {
		t.Fatalf("expected pages to be built, got %#v", result)
	}

	paths := storageSpy.WrittenPaths()
	found := false
	for _, path := range paths {
		if path == "dist/hello/index.html" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected dist/hello/index.html among %v", paths)
	}

	artifact, ok := storageSpy.Artifact("dist/hello/index.html")
	if !ok {
		t.Fatalf("expected artifact bytes for the rendered page")
	}
	if !strings.Contains(string(artifact), "page") {
		t.Fatalf("expected rendered body in artifact, got %q", artifact)
	}
}

func TestContainerOpensSQLiteWhenPersistenceEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Persistence = true
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = "file:di_container_persistence?mode=memory&cache=shared"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	if container.BunDB() == nil {
		t.Fatalf("expected an owned database handle")
	}

	ctx := context.Background()
	created, err := container.PostsService().Create(ctx, interfaces.PostCreateRequest{
		Title:     "Persisted",
		Permalink: "/persisted/",
		Layout:    "post",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	fetched, err := container.PostsService().Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched.Title != "Persisted" {
		t.Fatalf("expected persisted title, got %q", fetched.Title)
	}
}
