package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/google/uuid"
)

func TestLoadContextBuildsLocalizedPages(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 5, 14, 30, 0, 0, time.UTC)
	fixtures := newBuildFixtures(now)

	svc := NewService(fixtures.Config, Dependencies{
		Posts:  fixtures.Posts,
		Themes: fixtures.Themes,
	}).(*service)
	svc.now = func() time.Time { return now }

	buildCtx, err := svc.loadContext(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("load context: %v", err)
	}

	if buildCtx.DefaultLocale != "en" {
		t.Fatalf("expected default locale en, got %q", buildCtx.DefaultLocale)
	}
	if len(buildCtx.Locales) != 2 {
		t.Fatalf("expected 2 locales, got %d", len(buildCtx.Locales))
	}
	if !buildCtx.Locales[0].IsDefault || buildCtx.Locales[0].Code != "en" {
		t.Fatalf("expected default locale first, got %+v", buildCtx.Locales[0])
	}
	if len(buildCtx.Pages) != fixtures.PageCount() {
		t.Fatalf("expected %d pages, got %d", fixtures.PageCount(), len(buildCtx.Pages))
	}
	if buildCtx.Routes == nil {
		t.Fatalf("expected route manager")
	}
	if !buildCtx.GeneratedAt.Equal(now) {
		t.Fatalf("expected generated at %v, got %v", now, buildCtx.GeneratedAt)
	}
	if !buildCtx.ContentUpdatedAt.Equal(fixtures.NewestContentDate) {
		t.Fatalf("expected content updated %v, got %v", fixtures.NewestContentDate, buildCtx.ContentUpdatedAt)
	}

	homeCount := 0
	for _, page := range buildCtx.Pages {
		if page.Theme == nil {
			t.Fatalf("expected active theme on page %s", page.Post.ID)
		}
		if page.Metadata.Hash == "" {
			t.Fatalf("expected dependency hash for %s", page.Post.ID)
		}
		switch page.Kind {
		case PageKindHome:
			homeCount++
			if page.TemplateName != "aurora/home.html" {
				t.Fatalf("expected home template, got %q", page.TemplateName)
			}
			if len(page.Posts) != 2 {
				t.Fatalf("expected 2 listed posts, got %d", len(page.Posts))
			}
		case PageKindPost:
			if page.TemplateName != "aurora/post.html" {
				t.Fatalf("expected post template, got %q", page.TemplateName)
			}
			if page.Template == nil || page.Template.Slug != "post" {
				t.Fatalf("expected post template record")
			}
		}
	}
	if homeCount != 2 {
		t.Fatalf("expected one home page per locale, got %d", homeCount)
	}

	// Posts in each locale come newest first.
	var enPages []*PageData
	for _, page := range buildCtx.Pages {
		if page.Locale.Code == "en" {
			enPages = append(enPages, page)
		}
	}
	if len(enPages) != 3 {
		t.Fatalf("expected 3 en pages, got %d", len(enPages))
	}
	if enPages[0].Post.Permalink != "/2024/release-notes" {
		t.Fatalf("expected newest post first, got %q", enPages[0].Post.Permalink)
	}
}

func TestLoadContextAppliesLocaleFilter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 6, 9, 0, 0, 0, time.UTC)
	fixtures := newBuildFixtures(now)

	svc := NewService(fixtures.Config, Dependencies{
		Posts:  fixtures.Posts,
		Themes: fixtures.Themes,
	}).(*service)
	svc.now = func() time.Time { return now }

	buildCtx, err := svc.loadContext(ctx, BuildOptions{Locales: []string{"es"}})
	if err != nil {
		t.Fatalf("load context: %v", err)
	}

	if len(buildCtx.Locales) != 1 {
		t.Fatalf("expected 1 locale, got %d", len(buildCtx.Locales))
	}
	if buildCtx.Locales[0].Code != "es" || buildCtx.Locales[0].IsDefault {
		t.Fatalf("expected non-default es locale, got %+v", buildCtx.Locales[0])
	}
	// The default locale still drives output layout even when not built.
	if buildCtx.DefaultLocale != "en" {
		t.Fatalf("expected default locale en, got %q", buildCtx.DefaultLocale)
	}
	for _, page := range buildCtx.Pages {
		if page.Locale.Code != "es" {
			t.Fatalf("expected only es pages, got %q", page.Locale.Code)
		}
	}
}

func TestLoadContextAppliesPostFilter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 7, 9, 0, 0, 0, time.UTC)
	fixtures := newBuildFixtures(now)
	target := fixtures.Posts.records["en"][2]

	svc := NewService(fixtures.Config, Dependencies{
		Posts:  fixtures.Posts,
		Themes: fixtures.Themes,
	}).(*service)
	svc.now = func() time.Time { return now }

	buildCtx, err := svc.loadContext(ctx, BuildOptions{PostIDs: []uuid.UUID{target.ID}})
	if err != nil {
		t.Fatalf("load context: %v", err)
	}

	if len(buildCtx.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(buildCtx.Pages))
	}
	if buildCtx.Pages[0].Post.ID != target.ID {
		t.Fatalf("expected post %s, got %s", target.ID, buildCtx.Pages[0].Post.ID)
	}
	// Content dates still span the whole site so scoped builds stay
	// byte-compatible with full builds.
	if !buildCtx.ContentUpdatedAt.Equal(fixtures.NewestContentDate) {
		t.Fatalf("expected content updated %v, got %v", fixtures.NewestContentDate, buildCtx.ContentUpdatedAt)
	}
}

func TestLoadContextRequiresPostsService(t *testing.T) {
	fixtures := newBuildFixtures(time.Now())
	svc := NewService(fixtures.Config, Dependencies{Themes: fixtures.Themes}).(*service)
	if _, err := svc.loadContext(context.Background(), BuildOptions{}); !errors.Is(err, errPostsServiceRequired) {
		t.Fatalf("expected posts service error, got %v", err)
	}
}

func TestLoadContextWithoutTheme(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 8, 9, 0, 0, 0, time.UTC)
	fixtures := newBuildFixtures(now)
	fixtures.Themes.theme = nil

	svc := NewService(fixtures.Config, Dependencies{
		Posts:  fixtures.Posts,
		Themes: fixtures.Themes,
	}).(*service)
	svc.now = func() time.Time { return now }

	buildCtx, err := svc.loadContext(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("load context: %v", err)
	}
	for _, page := range buildCtx.Pages {
		if page.Theme != nil {
			t.Fatalf("expected no theme")
		}
		if page.TemplateName == "" {
			t.Fatalf("expected fallback template name")
		}
	}
}

func TestResolveLocalesDefaults(t *testing.T) {
	svc := &service{cfg: Config{}}
	set := svc.resolveLocales(BuildOptions{})
	if set.defaultCode != "en" {
		t.Fatalf("expected en default, got %q", set.defaultCode)
	}
	if len(set.ordered) != 1 || set.ordered[0].Code != "en" || !set.ordered[0].IsDefault {
		t.Fatalf("expected single default locale, got %+v", set.ordered)
	}
}

func TestResolveLocalesDeduplicates(t *testing.T) {
	svc := &service{cfg: Config{DefaultLocale: "en", Locales: []string{"en", "ES", "es", "fr"}}}
	set := svc.resolveLocales(BuildOptions{})
	if len(set.ordered) != 3 {
		t.Fatalf("expected 3 locales, got %+v", set.ordered)
	}
	if !set.ordered[0].IsDefault {
		t.Fatalf("expected default first, got %+v", set.ordered)
	}
}

func TestClassifyPost(t *testing.T) {
	cases := []struct {
		name string
		post *interfaces.PostRecord
		want PageKind
	}{
		{"home layout", &interfaces.PostRecord{Layout: "home", Permalink: "/about"}, PageKindHome},
		{"root permalink", &interfaces.PostRecord{Layout: "post", Permalink: "/"}, PageKindHome},
		{"regular", &interfaces.PostRecord{Layout: "post", Permalink: "/2024/x"}, PageKindPost},
		{"empty layout", &interfaces.PostRecord{Permalink: "/2024/y"}, PageKindPost},
	}
	for _, tc := range cases {
		if got := classifyPost(tc.post); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestOrderPostsNewestFirst(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	older := &interfaces.PostRecord{Permalink: "/a", PublishedAt: ptrTime(now.Add(-2 * time.Hour)), UpdatedAt: now}
	newer := &interfaces.PostRecord{Permalink: "/b", PublishedAt: ptrTime(now.Add(-time.Hour)), UpdatedAt: now.Add(-3 * time.Hour)}
	tied := &interfaces.PostRecord{Permalink: "/0-tied", PublishedAt: ptrTime(now.Add(-2 * time.Hour)), UpdatedAt: now}

	ordered := orderPosts([]*interfaces.PostRecord{older, newer, nil, tied})
	if len(ordered) != 3 {
		t.Fatalf("expected nil records dropped, got %d", len(ordered))
	}
	if ordered[0] != newer {
		t.Fatalf("expected newest published first, got %q", ordered[0].Permalink)
	}
	// Equal dates fall back to the permalink for a stable order.
	if ordered[1] != tied || ordered[2] != older {
		t.Fatalf("expected permalink tiebreak, got %q then %q", ordered[1].Permalink, ordered[2].Permalink)
	}
}

func TestDependencyMetadataTracksPostChanges(t *testing.T) {
	now := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	post := &interfaces.PostRecord{
		ID:        uuid.New(),
		Permalink: "/2024/x",
		Layout:    "post",
		Checksum:  []byte("v1"),
		UpdatedAt: now,
	}

	before := computeDependencyMetadata(post, PageKindPost, "post.html", nil, nil, nil)
	if before.Hash == "" {
		t.Fatalf("expected hash")
	}
	if !before.LastModified.Equal(now) {
		t.Fatalf("expected last modified %v, got %v", now, before.LastModified)
	}

	post.Checksum = []byte("v2")
	after := computeDependencyMetadata(post, PageKindPost, "post.html", nil, nil, nil)
	if before.Hash == after.Hash {
		t.Fatalf("expected hash change on checksum change")
	}

	repeat := computeDependencyMetadata(post, PageKindPost, "post.html", nil, nil, nil)
	if after.Hash != repeat.Hash {
		t.Fatalf("expected stable hash for unchanged inputs")
	}
}

func TestDependencyMetadataHomeTracksListing(t *testing.T) {
	now := time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC)
	home := &interfaces.PostRecord{
		ID:        uuid.New(),
		Permalink: "/",
		Layout:    "home",
		UpdatedAt: now,
	}
	listed := &interfaces.PostRecord{
		ID:        uuid.New(),
		Permalink: "/2024/x",
		Checksum:  []byte("v1"),
		UpdatedAt: now,
	}

	before := computeDependencyMetadata(home, PageKindHome, "home.html", nil, nil, []*interfaces.PostRecord{listed})
	if _, ok := before.Sources["posts"]; !ok {
		t.Fatalf("expected posts source on home page")
	}

	listed.UpdatedAt = now.Add(time.Hour)
	after := computeDependencyMetadata(home, PageKindHome, "home.html", nil, nil, []*interfaces.PostRecord{listed})
	if before.Hash == after.Hash {
		t.Fatalf("expected home hash change when a listed post changes")
	}

	plain := computeDependencyMetadata(listed, PageKindPost, "post.html", nil, nil, []*interfaces.PostRecord{listed})
	if _, ok := plain.Sources["posts"]; ok {
		t.Fatalf("expected no posts source on regular pages")
	}
}

func TestBuildOutputPathLocalePrefixes(t *testing.T) {
	cases := []struct {
		permalink string
		locale    string
		want      string
	}{
		{"/", "en", "index.html"},
		{"/", "es", "es/index.html"},
		{"/2024/hello", "en", "2024/hello/index.html"},
		{"/2024/hello", "es", "es/2024/hello/index.html"},
		{"/es/2024/hello", "es", "es/2024/hello/index.html"},
		{"", "en", "index.html"},
		{"2024/hello/", "en", "2024/hello/index.html"},
	}
	for _, tc := range cases {
		if got := buildOutputPath(tc.permalink, tc.locale, "en"); got != tc.want {
			t.Fatalf("buildOutputPath(%q, %q): expected %q, got %q", tc.permalink, tc.locale, tc.want, got)
		}
	}
}

func TestSiteRoutesURLs(t *testing.T) {
	routes := newSiteRoutes("https://example.com", "en", []LocaleSpec{
		{Code: "en", IsDefault: true},
		{Code: "es"},
	})

	feedEN, err := routes.Feed("en")
	if err != nil {
		t.Fatalf("feed en: %v", err)
	}
	if feedEN != "https://example.com/feed.xml" {
		t.Fatalf("expected en feed url, got %q", feedEN)
	}

	feedES, err := routes.Feed("es")
	if err != nil {
		t.Fatalf("feed es: %v", err)
	}
	if feedES != "https://example.com/es/feed.xml" {
		t.Fatalf("expected es feed url, got %q", feedES)
	}

	sitemap, err := routes.Sitemap()
	if err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	if sitemap != "https://example.com/sitemap.xml" {
		t.Fatalf("expected sitemap url, got %q", sitemap)
	}

	postEN, err := routes.Post("en", "/2024/hello")
	if err != nil {
		t.Fatalf("post en: %v", err)
	}
	if postEN != "https://example.com/2024/hello" {
		t.Fatalf("expected en post url, got %q", postEN)
	}

	postES, err := routes.Post("es", "/2024/hola")
	if err != nil {
		t.Fatalf("post es: %v", err)
	}
	if postES != "https://example.com/es/2024/hola" {
		t.Fatalf("expected es post url, got %q", postES)
	}

	// Unknown locales fall back to the site root scheme.
	postFR, err := routes.Post("fr", "/2024/bonjour")
	if err != nil {
		t.Fatalf("post fr: %v", err)
	}
	if postFR != "https://example.com/2024/bonjour" {
		t.Fatalf("expected fallback post url, got %q", postFR)
	}
}
