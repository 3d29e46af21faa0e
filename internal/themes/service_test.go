package themes_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/internal/themes"
)

func newThemeService(t *testing.T) themes.Service {
	t.Helper()
	return themes.NewService(
		themes.NewMemoryThemeRepository(),
		themes.NewMemoryTemplateRepository(),
		themes.WithNow(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }),
	)
}

func registerChronicle(t *testing.T, svc themes.Service) *themes.Theme {
	t.Helper()
	theme, err := svc.RegisterTheme(context.Background(), themes.RegisterThemeInput{
		Name:      "chronicle",
		Version:   "1.0.0",
		ThemePath: "themes/chronicle",
	})
	if err != nil {
		t.Fatalf("register theme: %v", err)
	}
	return theme
}

func TestRegisterThemeDeterministicID(t *testing.T) {
	svc := newThemeService(t)

	theme := registerChronicle(t, svc)
	if theme.ID != identity.ThemeUUID("themes/chronicle") {
		t.Fatalf("expected deterministic theme id, got %s", theme.ID)
	}
	if theme.IsActive {
		t.Fatalf("new themes must start inactive")
	}
	if !theme.CreatedAt.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at %s", theme.CreatedAt)
	}
}

func TestRegisterThemeValidation(t *testing.T) {
	svc := newThemeService(t)
	ctx := context.Background()

	if _, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{Version: "1.0.0", ThemePath: "x"}); !errors.Is(err, themes.ErrThemeNameRequired) {
		t.Fatalf("expected ErrThemeNameRequired, got %v", err)
	}
	if _, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{Name: "a", ThemePath: "x"}); !errors.Is(err, themes.ErrThemeVersionRequired) {
		t.Fatalf("expected ErrThemeVersionRequired, got %v", err)
	}
	if _, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{Name: "a", Version: "1.0.0"}); !errors.Is(err, themes.ErrThemePathRequired) {
		t.Fatalf("expected ErrThemePathRequired, got %v", err)
	}

	registerChronicle(t, svc)
	if _, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{
		Name:      "chronicle",
		Version:   "2.0.0",
		ThemePath: "themes/chronicle-v2",
	}); !errors.Is(err, themes.ErrThemeExists) {
		t.Fatalf("expected ErrThemeExists, got %v", err)
	}
}

func TestRegisterTemplateDeterministicID(t *testing.T) {
	svc := newThemeService(t)
	ctx := context.Background()

	theme := registerChronicle(t, svc)
	template, err := svc.RegisterTemplate(ctx, themes.RegisterTemplateInput{
		ThemeID:      theme.ID,
		Name:         "Post",
		Slug:         "Post",
		TemplatePath: "post.html",
	})
	if err != nil {
		t.Fatalf("register template: %v", err)
	}
	if template.Slug != "post" {
		t.Fatalf("expected canonical slug, got %q", template.Slug)
	}
	if template.ID != identity.TemplateUUID(theme.ID, "post") {
		t.Fatalf("expected deterministic template id, got %s", template.ID)
	}

	if _, err := svc.RegisterTemplate(ctx, themes.RegisterTemplateInput{
		ThemeID:      theme.ID,
		Name:         "Post Again",
		Slug:         "post",
		TemplatePath: "post2.html",
	}); !errors.Is(err, themes.ErrTemplateSlugConflict) {
		t.Fatalf("expected ErrTemplateSlugConflict, got %v", err)
	}
}

func TestActivateThemeRequiresTemplates(t *testing.T) {
	svc := newThemeService(t)
	ctx := context.Background()

	theme := registerChronicle(t, svc)
	if _, err := svc.ActivateTheme(ctx, theme.ID); !errors.Is(err, themes.ErrThemeActivationMissingTemplates) {
		t.Fatalf("expected ErrThemeActivationMissingTemplates, got %v", err)
	}
}

func TestActivateThemeIsExclusive(t *testing.T) {
	svc := newThemeService(t)
	ctx := context.Background()

	first := registerChronicle(t, svc)
	second, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{
		Name:      "plain",
		Version:   "1.0.0",
		ThemePath: "themes/plain",
	})
	if err != nil {
		t.Fatalf("register second theme: %v", err)
	}
	for _, theme := range []*themes.Theme{first, second} {
		if _, err := svc.RegisterTemplate(ctx, themes.RegisterTemplateInput{
			ThemeID:      theme.ID,
			Name:         "Post",
			Slug:         "post",
			TemplatePath: "post.html",
		}); err != nil {
			t.Fatalf("register template for %s: %v", theme.Name, err)
		}
	}

	if _, err := svc.ActivateTheme(ctx, first.ID); err != nil {
		t.Fatalf("activate first: %v", err)
	}
	if _, err := svc.ActivateTheme(ctx, second.ID); err != nil {
		t.Fatalf("activate second: %v", err)
	}

	active, err := svc.ActiveTheme(ctx)
	if err != nil {
		t.Fatalf("active theme: %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("expected %s active, got %s", second.Name, active.Name)
	}

	refreshed, err := svc.GetTheme(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first theme: %v", err)
	}
	if refreshed.IsActive {
		t.Fatalf("activating a theme must deactivate the previous one")
	}
}

func TestActiveThemeNoneRegistered(t *testing.T) {
	svc := newThemeService(t)

	if _, err := svc.ActiveTheme(context.Background()); !errors.Is(err, themes.ErrNoActiveTheme) {
		t.Fatalf("expected ErrNoActiveTheme, got %v", err)
	}
}

func TestResolveTemplate(t *testing.T) {
	svc := newThemeService(t)
	ctx := context.Background()

	// Without an active theme every layout falls back to its own name.
	name, err := svc.ResolveTemplate(ctx, "post")
	if err != nil {
		t.Fatalf("resolve without theme: %v", err)
	}
	if name != "post.html" {
		t.Fatalf("expected fallback post.html, got %q", name)
	}

	theme := registerChronicle(t, svc)
	if _, err := svc.RegisterTemplate(ctx, themes.RegisterTemplateInput{
		ThemeID:      theme.ID,
		Name:         "Post",
		Slug:         "post",
		TemplatePath: "article.html",
	}); err != nil {
		t.Fatalf("register template: %v", err)
	}
	if _, err := svc.ActivateTheme(ctx, theme.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	name, err = svc.ResolveTemplate(ctx, "Post")
	if err != nil {
		t.Fatalf("resolve registered layout: %v", err)
	}
	if name != "article.html" {
		t.Fatalf("expected article.html, got %q", name)
	}

	name, err = svc.ResolveTemplate(ctx, "gallery")
	if err != nil {
		t.Fatalf("resolve unknown layout: %v", err)
	}
	if name != "gallery.html" {
		t.Fatalf("expected gallery.html fallback, got %q", name)
	}

	if _, err := svc.ResolveTemplate(ctx, "   "); !errors.Is(err, themes.ErrLayoutRequired) {
		t.Fatalf("expected ErrLayoutRequired, got %v", err)
	}
}

func TestActiveSummaryResolvesAssets(t *testing.T) {
	svc := newThemeService(t)
	ctx := context.Background()

	base := "assets"
	theme, err := svc.RegisterTheme(ctx, themes.RegisterThemeInput{
		Name:      "chronicle",
		Version:   "1.0.0",
		ThemePath: "themes/chronicle",
		Config: themes.ThemeConfig{
			Assets: &themes.ThemeAssets{
				BasePath: &base,
				Styles:   []string{"site.css"},
				Images:   []string{"logo.svg"},
			},
			Tokens: map[string]string{"color-accent": "#0f766e"},
		},
	})
	if err != nil {
		t.Fatalf("register theme: %v", err)
	}
	if _, err := svc.RegisterTemplate(ctx, themes.RegisterTemplateInput{
		ThemeID:      theme.ID,
		Name:         "Post",
		Slug:         "post",
		TemplatePath: "post.html",
	}); err != nil {
		t.Fatalf("register template: %v", err)
	}
	if _, err := svc.ActivateTheme(ctx, theme.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	summary, err := svc.ActiveSummary(ctx)
	if err != nil {
		t.Fatalf("active summary: %v", err)
	}
	if len(summary.Assets.Styles) != 1 || summary.Assets.Styles[0] != "assets/site.css" {
		t.Fatalf("expected resolved styles, got %#v", summary.Assets.Styles)
	}
	if len(summary.Assets.Images) != 1 || summary.Assets.Images[0] != "assets/logo.svg" {
		t.Fatalf("expected resolved images, got %#v", summary.Assets.Images)
	}
	if summary.Theme.Config.Tokens["color-accent"] != "#0f766e" {
		t.Fatalf("expected design tokens on active summary, got %#v", summary.Theme.Config.Tokens)
	}
}

func TestUpdateAndDeleteTemplate(t *testing.T) {
	svc := newThemeService(t)
	ctx := context.Background()

	theme := registerChronicle(t, svc)
	template, err := svc.RegisterTemplate(ctx, themes.RegisterTemplateInput{
		ThemeID:      theme.ID,
		Name:         "Post",
		Slug:         "post",
		TemplatePath: "post.html",
	})
	if err != nil {
		t.Fatalf("register template: %v", err)
	}

	newPath := "post_v2.html"
	updated, err := svc.UpdateTemplate(ctx, themes.UpdateTemplateInput{
		TemplateID:   template.ID,
		TemplatePath: &newPath,
	})
	if err != nil {
		t.Fatalf("update template: %v", err)
	}
	if updated.TemplatePath != newPath {
		t.Fatalf("expected %q, got %q", newPath, updated.TemplatePath)
	}

	if err := svc.DeleteTemplate(ctx, template.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	if _, err := svc.GetTemplate(ctx, template.ID); !errors.Is(err, themes.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}
