package themes_test

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-press/internal/themes"
)

func TestFileSystemAssetResolver(t *testing.T) {
	resolver := themes.FileSystemAssetResolver{
		FS: fstest.MapFS{
			"assets/site.css": &fstest.MapFile{Data: []byte("body{}")},
		},
		BasePath: "assets",
	}

	reader, err := resolver.Open("site.css")
	if err != nil {
		t.Fatalf("open asset: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read asset: %v", err)
	}
	if string(data) != "body{}" {
		t.Fatalf("unexpected asset body %q", data)
	}

	resolved, err := resolver.ResolvePath("site.css")
	if err != nil {
		t.Fatalf("resolve path: %v", err)
	}
	if resolved != "assets/site.css" {
		t.Fatalf("expected assets/site.css, got %q", resolved)
	}
}

func TestFileSystemAssetResolverBlocksTraversal(t *testing.T) {
	resolver := themes.FileSystemAssetResolver{
		FS:       fstest.MapFS{"assets/site.css": &fstest.MapFile{Data: []byte("body{}")}},
		BasePath: "assets",
	}

	for _, asset := range []string{"../secret.txt", "..", "../../etc/passwd"} {
		if _, err := resolver.Open(asset); err == nil {
			t.Fatalf("expected traversal error for %q", asset)
		}
	}
}
