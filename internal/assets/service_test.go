package assets_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-press/internal/assets"
)

func contentFS() fstest.MapFS {
	return fstest.MapFS{
		"assets/diagrams/host-lock-lease.svg":    &fstest.MapFile{Data: []byte("<svg>lease</svg>")},
		"assets/diagrams/dbcontext-lifetime.svg": &fstest.MapFile{Data: []byte("<svg>ctx</svg>")},
		"assets/css/site.css":                    &fstest.MapFile{Data: []byte("body{}")},
		"content/index.md":                       &fstest.MapFile{Data: []byte("# home")},
	}
}

func TestResolveNormalizesReferences(t *testing.T) {
	svc := assets.NewService(contentFS())

	cases := map[string]string{
		"assets/css/site.css":                 "assets/css/site.css",
		"./assets/css/site.css":               "assets/css/site.css",
		"/assets/css/site.css":                "assets/css/site.css",
		"assets/../assets/css/site.css":       "assets/css/site.css",
		"assets/diagrams/host-lock-lease.svg": "assets/diagrams/host-lock-lease.svg",
	}
	for ref, want := range cases {
		got, err := svc.Resolve(ref)
		if err != nil {
			t.Fatalf("resolve %q: %v", ref, err)
		}
		if got != want {
			t.Fatalf("resolve %q: expected %q, got %q", ref, want, got)
		}
	}
}

func TestResolveFailures(t *testing.T) {
	svc := assets.NewService(contentFS())

	if _, err := svc.Resolve("assets/missing.svg"); !errors.Is(err, assets.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
	if _, err := svc.Resolve("../outside.svg"); !errors.Is(err, assets.ErrPathEscapes) {
		t.Fatalf("expected ErrPathEscapes, got %v", err)
	}
	if _, err := svc.Resolve("   "); !errors.Is(err, assets.ErrRefRequired) {
		t.Fatalf("expected ErrRefRequired, got %v", err)
	}
	if _, err := svc.Resolve("assets/diagrams"); !errors.Is(err, assets.ErrAssetNotFound) {
		t.Fatalf("directories must not resolve, got %v", err)
	}
}

func TestResolveFromPrefersDocumentDirectory(t *testing.T) {
	source := fstest.MapFS{
		"content/posts/assets/local.svg": &fstest.MapFile{Data: []byte("<svg>local</svg>")},
		"assets/shared.svg":              &fstest.MapFile{Data: []byte("<svg>shared</svg>")},
	}
	svc := assets.NewService(source)

	got, err := svc.ResolveFrom("content/posts", "assets/local.svg")
	if err != nil {
		t.Fatalf("resolve from doc dir: %v", err)
	}
	if got != "content/posts/assets/local.svg" {
		t.Fatalf("expected document-relative hit, got %q", got)
	}

	got, err = svc.ResolveFrom("content/posts", "assets/shared.svg")
	if err != nil {
		t.Fatalf("resolve root fallback: %v", err)
	}
	if got != "assets/shared.svg" {
		t.Fatalf("expected root fallback, got %q", got)
	}

	// Absolute references never consult the document directory.
	got, err = svc.ResolveFrom("content/posts", "/assets/shared.svg")
	if err != nil {
		t.Fatalf("resolve absolute: %v", err)
	}
	if got != "assets/shared.svg" {
		t.Fatalf("expected root resolution, got %q", got)
	}
}

func TestListIsStable(t *testing.T) {
	svc := assets.NewService(contentFS())

	listed, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{
		"assets/css/site.css",
		"assets/diagrams/dbcontext-lifetime.svg",
		"assets/diagrams/host-lock-lease.svg",
	}
	if len(listed) != len(want) {
		t.Fatalf("expected %d assets, got %d", len(want), len(listed))
	}
	for i, asset := range listed {
		if asset.Path != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], asset.Path)
		}
	}
}

func TestListSkipsMissingDirs(t *testing.T) {
	svc := assets.NewService(fstest.MapFS{"content/index.md": &fstest.MapFile{Data: []byte("x")}})

	listed, err := svc.List()
	if err != nil {
		t.Fatalf("list without assets dir: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty list, got %#v", listed)
	}
}

func TestCopyAllStreamsInOrder(t *testing.T) {
	svc := assets.NewService(contentFS())

	var order []string
	payloads := map[string][]byte{}
	err := svc.CopyAll(context.Background(), func(_ context.Context, path string, r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		order = append(order, path)
		payloads[path] = data
		return nil
	})
	if err != nil {
		t.Fatalf("copy all: %v", err)
	}

	if len(order) != 3 || order[0] != "assets/css/site.css" {
		t.Fatalf("unexpected copy order %#v", order)
	}
	if string(payloads["assets/diagrams/host-lock-lease.svg"]) != "<svg>lease</svg>" {
		t.Fatalf("unexpected payload %q", payloads["assets/diagrams/host-lock-lease.svg"])
	}
}

func TestCopyAllHonorsContext(t *testing.T) {
	svc := assets.NewService(contentFS())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.CopyAll(ctx, func(context.Context, string, io.Reader) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
