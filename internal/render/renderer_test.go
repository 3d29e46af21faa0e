package render_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/render"
)

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write template %s: %v", name, err)
		}
	}
	return dir
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	if _, err := render.New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestRenderTemplateByBaseName(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"post.html": `<article>{{ safeHTML .Body }}</article>`,
	})

	renderer, err := render.New(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.RenderTemplate("post.html", map[string]any{
		"Body": `<p>hello &amp; welcome</p>`,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != `<article><p>hello &amp; welcome</p></article>` {
		t.Fatalf("safeHTML must pass markup through unescaped, got %q", out)
	}
}

func TestRenderTemplateMissingName(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"post.html": `ok`})

	renderer, err := render.New(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := renderer.RenderTemplate("home.html", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestRenderTemplateToWriter(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"post.html": `hi {{ .Name }}`})

	renderer, err := render.New(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	var buf bytes.Buffer
	out, err := renderer.Render("post.html", map[string]any{"Name": "press"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("writer variant must not duplicate output, got %q", out)
	}
	if buf.String() != "hi press" {
		t.Fatalf("unexpected writer content %q", buf.String())
	}
}

func TestRenderStringWithFormatDate(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"post.html": `unused`})

	renderer, err := render.New(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	published := time.Date(2018, 7, 19, 8, 30, 0, 0, time.UTC)
	out, err := renderer.RenderString(`{{ formatDate .At "2006-01-02" }}`, map[string]any{"At": &published})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "2018-07-19" {
		t.Fatalf("expected formatted date, got %q", out)
	}

	out, err = renderer.RenderString(`{{ formatDate .At "2006-01-02" }}`, map[string]any{"At": (*time.Time)(nil)})
	if err != nil {
		t.Fatalf("render nil date: %v", err)
	}
	if out != "" {
		t.Fatalf("nil dates must render empty, got %q", out)
	}
}

func TestRegisterFilterBeforeFirstRender(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"post.html": `{{ shout .Title }}`,
	})

	renderer, err := render.New(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if err := renderer.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return strings.ToUpper(input.(string)), nil
	}); err != nil {
		t.Fatalf("register filter: %v", err)
	}

	out, err := renderer.RenderTemplate("post.html", map[string]any{"Title": "quiet"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "QUIET" {
		t.Fatalf("expected filter output, got %q", out)
	}

	if err := renderer.RegisterFilter("late", func(input any, _ any) (any, error) {
		return input, nil
	}); !errors.Is(err, render.ErrSealed) {
		t.Fatalf("expected ErrSealed after first render, got %v", err)
	}
}

func TestGlobalContextMergesMaps(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"post.html": `{{ .SiteName }}:{{ .Title }}`,
	})

	renderer, err := render.New(dir)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if err := renderer.GlobalContext(map[string]any{"SiteName": "chronicle", "Title": "default"}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	out, err := renderer.RenderTemplate("post.html", map[string]any{"Title": "explicit"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "chronicle:explicit" {
		t.Fatalf("explicit keys must win over globals, got %q", out)
	}
}
