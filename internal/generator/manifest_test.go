package generator

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManifestRoundtrip(t *testing.T) {
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	postID := uuid.New()

	manifest := newBuildManifest()
	manifest.GeneratedAt = now
	manifest.setPage(manifestPage{
		PostID:       postID.String(),
		Locale:       "en",
		Permalink:    "/2024/hello",
		Output:       "dist/2024/hello/index.html",
		Template:     "aurora/post.html",
		Hash:         "hash-1",
		Checksum:     "sum-1",
		LastModified: now.Add(-time.Hour),
		RenderedAt:   now,
	})
	manifest.setAsset(manifestAsset{
		Kind:     "theme",
		Source:   "public/css/site.css",
		Output:   "dist/assets/public/css/site.css",
		Checksum: "sum-css",
		Size:     7,
		CopiedAt: now,
	})

	data, err := manifest.marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	parsed, err := parseManifest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Version != manifestFileVersion {
		t.Fatalf("expected version %d, got %d", manifestFileVersion, parsed.Version)
	}
	if !parsed.GeneratedAt.Equal(now) {
		t.Fatalf("expected generated at %v, got %v", now, parsed.GeneratedAt)
	}

	entry, ok := parsed.lookupPage(postID, "en")
	if !ok {
		t.Fatalf("expected page entry after roundtrip")
	}
	if entry.Hash != "hash-1" || entry.Output != "dist/2024/hello/index.html" {
		t.Fatalf("unexpected page entry %+v", entry)
	}

	asset, ok := parsed.lookupAsset("theme", "public/css/site.css")
	if !ok {
		t.Fatalf("expected asset entry after roundtrip")
	}
	if asset.Checksum != "sum-css" || asset.Size != 7 {
		t.Fatalf("unexpected asset entry %+v", asset)
	}
}

func TestManifestMarshalDeterministic(t *testing.T) {
	now := time.Date(2024, 5, 21, 10, 0, 0, 0, time.UTC)
	first := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	second := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	build := func(order []uuid.UUID) []byte {
		manifest := newBuildManifest()
		manifest.GeneratedAt = now
		for _, id := range order {
			manifest.setPage(manifestPage{
				PostID:     id.String(),
				Locale:     "en",
				Permalink:  "/" + id.String(),
				Output:     "dist/" + id.String() + "/index.html",
				Hash:       "h-" + id.String(),
				RenderedAt: now,
			})
		}
		data, err := manifest.marshal()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}

	left := build([]uuid.UUID{first, second})
	right := build([]uuid.UUID{second, first})
	if !bytes.Equal(left, right) {
		t.Fatalf("expected insertion order not to affect manifest bytes:\n%s\n---\n%s", left, right)
	}
}

func TestManifestShouldSkipPage(t *testing.T) {
	postID := uuid.New()
	manifest := newBuildManifest()
	manifest.setPage(manifestPage{
		PostID: postID.String(),
		Locale: "en",
		Hash:   "hash-1",
		Output: "dist/index.html",
	})

	if !manifest.shouldSkipPage(postID, "en", "hash-1", "dist/index.html") {
		t.Fatalf("expected skip for matching entry")
	}
	if manifest.shouldSkipPage(postID, "en", "hash-2", "dist/index.html") {
		t.Fatalf("expected rebuild on hash change")
	}
	if manifest.shouldSkipPage(postID, "en", "hash-1", "elsewhere/index.html") {
		t.Fatalf("expected rebuild on output change")
	}
	if manifest.shouldSkipPage(uuid.New(), "en", "hash-1", "dist/index.html") {
		t.Fatalf("expected rebuild for unknown post")
	}
	if manifest.shouldSkipPage(postID, "es", "hash-1", "dist/index.html") {
		t.Fatalf("expected rebuild for unknown locale")
	}
}

func TestManifestPrune(t *testing.T) {
	keepID := uuid.New()
	dropID := uuid.New()

	manifest := newBuildManifest()
	manifest.setPage(manifestPage{PostID: keepID.String(), Locale: "en"})
	manifest.setPage(manifestPage{PostID: dropID.String(), Locale: "en"})
	manifest.setAsset(manifestAsset{Kind: "theme", Source: "css/keep.css"})
	manifest.setAsset(manifestAsset{Kind: "theme", Source: "css/drop.css"})

	// An empty key set means the caller saw nothing; pruning would wipe
	// state that is still valid.
	manifest.prunePages(map[string]struct{}{})
	if len(manifest.Pages) != 2 {
		t.Fatalf("expected prune no-op for empty keys, got %d pages", len(manifest.Pages))
	}

	manifest.prunePages(map[string]struct{}{
		manifest.pageKey(keepID, "en"): {},
	})
	if len(manifest.Pages) != 1 {
		t.Fatalf("expected 1 page after prune, got %d", len(manifest.Pages))
	}
	if _, ok := manifest.lookupPage(keepID, "en"); !ok {
		t.Fatalf("expected kept page to survive prune")
	}

	manifest.pruneAssets(map[string]struct{}{
		manifest.assetKey("theme", "css/keep.css"): {},
	})
	if len(manifest.Assets) != 1 {
		t.Fatalf("expected 1 asset after prune, got %d", len(manifest.Assets))
	}
	if _, ok := manifest.lookupAsset("theme", "css/keep.css"); !ok {
		t.Fatalf("expected kept asset to survive prune")
	}
}

func TestParseManifestTolerance(t *testing.T) {
	empty, err := parseManifest(nil)
	if err != nil {
		t.Fatalf("parse nil: %v", err)
	}
	if empty.Version != manifestFileVersion || empty.Pages == nil {
		t.Fatalf("expected fresh manifest for empty input")
	}

	if _, err := parseManifest([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed manifest")
	}

	minimal, err := parseManifest([]byte(`{"version":1}`))
	if err != nil {
		t.Fatalf("parse minimal: %v", err)
	}
	if minimal.Pages == nil || minimal.Assets == nil {
		t.Fatalf("expected maps initialized for minimal manifest")
	}
}
