package press_test

import (
	"context"
	"errors"
	"testing"

	press "github.com/goliatone/go-press"
	"github.com/goliatone/go-press/posts"
)

func TestNewModuleDefaults(t *testing.T) {
	module, err := press.New(press.DefaultConfig())
	if err != nil {
		t.Fatalf("press.New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	ctx := context.Background()

	record, err := module.Posts().Create(ctx, posts.CreateRequest{
		Title:     "First",
		Permalink: "/First Post/",
		Layout:    "post",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Permalink != "/first-post/" {
		t.Fatalf("expected normalized permalink, got %q", record.Permalink)
	}

	if module.Markdown() != nil {
		t.Fatal("expected markdown to be disabled by default")
	}
	if module.Integrity() != nil {
		t.Fatal("expected integrity to be disabled by default")
	}
	if module.Generator() == nil {
		t.Fatal("expected a generator stand-in even when disabled")
	}
	if module.Themes() == nil {
		t.Fatal("expected a theme service stand-in even when disabled")
	}
	if module.Activity() == nil {
		t.Fatal("expected an activity emitter")
	}
	if module.Activity().Enabled() {
		t.Fatal("expected activity to be disabled by default")
	}
	if module.DefaultLocale() != "en" {
		t.Fatalf("expected default locale en, got %q", module.DefaultLocale())
	}
}

func TestNewModuleRejectsInvalidConfig(t *testing.T) {
	cfg := press.DefaultConfig()
	cfg.Generator.Enabled = true

	if _, err := press.New(cfg); !errors.Is(err, press.ErrGeneratorFeatureRequired) {
		t.Fatalf("expected ErrGeneratorFeatureRequired, got %v", err)
	}
}

func TestModuleNilGuards(t *testing.T) {
	var module *press.Module

	if module.Posts() != nil {
		t.Fatal("expected nil posts service from nil module")
	}
	if module.Markdown() != nil {
		t.Fatal("expected nil markdown service from nil module")
	}
	if module.Locales() != nil {
		t.Fatal("expected nil locales from nil module")
	}
	if err := module.Close(); err != nil {
		t.Fatalf("expected nil module Close to succeed, got %v", err)
	}
}

func TestNormalizePermalinkHelpers(t *testing.T) {
	normalized, err := posts.NormalizePermalink("/Blog/Hello World/")
	if err != nil {
		t.Fatalf("NormalizePermalink: %v", err)
	}
	if normalized != "/blog/hello-world/" {
		t.Fatalf("expected /blog/hello-world/, got %q", normalized)
	}

	if _, err := posts.NormalizePermalink("   "); !errors.Is(err, posts.ErrPermalinkRequired) {
		t.Fatalf("expected ErrPermalinkRequired, got %v", err)
	}

	if !posts.IsValidSlug("hello-world") {
		t.Fatal("expected hello-world to be a valid slug")
	}
}
