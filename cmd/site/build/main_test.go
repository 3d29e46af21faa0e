package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/cmd/internal/bootstrap"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/pkg/interfaces"
)

type stubBuildExecutor struct {
	last  sitecmd.BuildMessage
	calls int
	err   error
}

func (s *stubBuildExecutor) Execute(ctx context.Context, msg sitecmd.BuildMessage) error {
	s.calls++
	s.last = msg
	if s.err != nil {
		return s.err
	}
	if msg.ResultCallback != nil {
		msg.ResultCallback(sitecmd.ResultEnvelope{
			Result: &generator.BuildResult{
				PagesBuilt: 2,
				Duration:   42 * time.Millisecond,
			},
			Metadata: map[string]any{"operation": "build"},
		})
	}
	return nil
}

type stubImportService struct {
	importCalls int
	importDir   string
}

func (s *stubImportService) Load(context.Context, string, interfaces.LoadOptions) (*interfaces.Document, error) {
	return nil, nil
}

func (s *stubImportService) LoadDirectory(context.Context, string, interfaces.LoadOptions) ([]*interfaces.Document, error) {
	return nil, nil
}

func (s *stubImportService) Render(context.Context, []byte, interfaces.ParseOptions) ([]byte, error) {
	return nil, nil
}

func (s *stubImportService) RenderDocument(context.Context, *interfaces.Document, interfaces.ParseOptions) ([]byte, error) {
	return nil, nil
}

func (s *stubImportService) ExtractDiagrams([]byte) []interfaces.Diagram {
	return nil
}

func (s *stubImportService) Import(context.Context, *interfaces.Document, interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	return nil, nil
}

func (s *stubImportService) ImportDirectory(_ context.Context, dir string, _ interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	s.importCalls++
	s.importDir = dir
	return &interfaces.ImportResult{}, nil
}

func (s *stubImportService) Sync(context.Context, string, interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	return nil, nil
}

func withStubModule(t *testing.T) (*stubBuildExecutor, *stubImportService) {
	t.Helper()
	original := moduleBuilder
	build := &stubBuildExecutor{}
	markdown := &stubImportService{}
	moduleBuilder = func(bootstrap.Options) (*moduleResources, error) {
		return &moduleResources{
			markdown: markdown,
			build:    build,
		}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })
	return build, markdown
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOutput := log.Writer()
	prevFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOutput)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestRunBuildUsesCommandHandler(t *testing.T) {
	build, markdown := withStubModule(t)
	buf := captureLogs(t)

	if err := runBuild([]string{
		"-locales", "en,es",
		"-destination", "preview",
		"-drafts",
	}); err != nil {
		t.Fatalf("run build: %v", err)
	}

	if build.calls != 1 {
		t.Fatalf("expected build handler called once, got %d", build.calls)
	}
	got := build.last
	if len(got.Locales) != 2 || got.Locales[0] != "en" || got.Locales[1] != "es" {
		t.Fatalf("expected locales en,es, got %#v", got.Locales)
	}
	if got.Destination != "preview" {
		t.Fatalf("expected destination preview, got %q", got.Destination)
	}
	if !got.Drafts {
		t.Fatal("expected drafts flag to propagate")
	}
	if markdown.importCalls != 1 {
		t.Fatalf("expected content import before build, got %d calls", markdown.importCalls)
	}
	if markdown.importDir != "." {
		t.Fatalf("expected import of content root, got %q", markdown.importDir)
	}
	if !strings.Contains(buf.String(), "module=site operation=build summary") {
		t.Fatalf("expected build summary log, got %q", buf.String())
	}
}

func TestRunBuildSkipImport(t *testing.T) {
	build, markdown := withStubModule(t)
	captureLogs(t)

	if err := runBuild([]string{"-skip-import"}); err != nil {
		t.Fatalf("run build: %v", err)
	}
	if markdown.importCalls != 0 {
		t.Fatalf("expected no content import, got %d calls", markdown.importCalls)
	}
	if build.calls != 1 {
		t.Fatalf("expected build handler called once, got %d", build.calls)
	}
}

func TestRunBuildErrorsWhenHandlerMissing(t *testing.T) {
	original := moduleBuilder
	moduleBuilder = func(bootstrap.Options) (*moduleResources, error) {
		return &moduleResources{}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })

	err := runBuild(nil)
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestRunBuildPropagatesErrors(t *testing.T) {
	build, _ := withStubModule(t)
	build.err = errors.New("boom")
	captureLogs(t)

	err := runBuild([]string{"-skip-import"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected propagated error, got %v", err)
	}
}
