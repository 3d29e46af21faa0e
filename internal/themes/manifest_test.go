package themes_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-press/internal/themes"
)

const chronicleManifest = `{
  "name": "chronicle",
  "version": "1.2.0",
  "tokens": {"color-accent": "#0f766e"},
  "assets": {"base_path": "assets", "styles": ["site.css"]},
  "templates": [
    {"name": "Post", "slug": "post", "path": "post.html"},
    {"name": "Home", "slug": "home", "path": "home.html"}
  ]
}`

func TestParseManifest(t *testing.T) {
	manifest, err := themes.ParseManifest(strings.NewReader(chronicleManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if manifest.Name != "chronicle" || manifest.Version != "1.2.0" {
		t.Fatalf("unexpected manifest header %#v", manifest)
	}
	if len(manifest.Templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(manifest.Templates))
	}
	if manifest.Tokens["color-accent"] != "#0f766e" {
		t.Fatalf("expected token to survive parsing, got %#v", manifest.Tokens)
	}
}

func TestManifestToSeed(t *testing.T) {
	manifest, err := themes.ParseManifest(strings.NewReader(chronicleManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	seed, err := themes.ManifestToSeed("themes/chronicle", manifest)
	if err != nil {
		t.Fatalf("manifest to seed: %v", err)
	}
	if seed.Theme.ThemePath != "themes/chronicle" {
		t.Fatalf("expected cleaned theme path, got %q", seed.Theme.ThemePath)
	}
	if len(seed.Templates) != 2 {
		t.Fatalf("expected 2 template inputs, got %d", len(seed.Templates))
	}
	if seed.Templates[0].Slug != "post" || seed.Templates[0].TemplatePath != "post.html" {
		t.Fatalf("unexpected template input %#v", seed.Templates[0])
	}
}

func TestManifestToSeedRejectsIncompleteTemplates(t *testing.T) {
	manifest := &themes.Manifest{
		Name:      "broken",
		Version:   "0.1.0",
		Templates: []themes.ManifestTemplate{{Name: "Post", Slug: "post"}},
	}
	if _, err := themes.ManifestToSeed("themes/broken", manifest); err == nil {
		t.Fatalf("expected error for template without path")
	}
}

func TestSeedFromDirAndBootstrap(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "theme.json"), []byte(chronicleManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	seed, err := themes.SeedFromDir(dir)
	if err != nil {
		t.Fatalf("seed from dir: %v", err)
	}
	seed.Theme.Activate = true

	svc := themes.NewService(
		themes.NewMemoryThemeRepository(),
		themes.NewMemoryTemplateRepository(),
	)
	ctx := context.Background()
	if err := themes.Bootstrap(ctx, svc, []themes.ThemeSeed{seed}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	active, err := svc.ActiveTheme(ctx)
	if err != nil {
		t.Fatalf("active theme: %v", err)
	}
	if active.Name != "chronicle" {
		t.Fatalf("expected chronicle active, got %q", active.Name)
	}

	name, err := svc.ResolveTemplate(ctx, "home")
	if err != nil {
		t.Fatalf("resolve home: %v", err)
	}
	if name != "home.html" {
		t.Fatalf("expected home.html, got %q", name)
	}

	// A second bootstrap with the same seed must be a no-op.
	if err := themes.Bootstrap(ctx, svc, []themes.ThemeSeed{seed}); err != nil {
		t.Fatalf("repeat bootstrap: %v", err)
	}
	all, err := svc.ListThemes(ctx)
	if err != nil {
		t.Fatalf("list themes: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single theme after repeat bootstrap, got %d", len(all))
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := themes.LoadManifest(filepath.Join(t.TempDir(), "theme.json")); err == nil {
		t.Fatalf("expected error for missing manifest")
	} else if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped os.ErrNotExist, got %v", err)
	}
}
