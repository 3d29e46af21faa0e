package generator

import (
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	siteRouteGroup = "site"

	routeHome    = "home"
	routeFeed    = "feed"
	routeAtom    = "atom"
	routeSitemap = "sitemap"
)

// siteRoutes resolves canonical site URLs through a go-urlkit route manager.
// Feeds, the sitemap and template helpers all build their links here so the
// URL scheme lives in exactly one place.
type siteRoutes struct {
	manager       *urlkit.RouteManager
	defaultLocale string

	mu     sync.RWMutex
	groups map[string]*urlkit.Group
}

func newSiteRoutes(baseURL, defaultLocale string, locales []LocaleSpec) *siteRoutes {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost"
	}

	root := urlkit.GroupConfig{
		Name:    siteRouteGroup,
		BaseURL: base,
		Paths:   siteRoutePaths(),
	}
	for _, spec := range locales {
		code := strings.ToLower(strings.TrimSpace(spec.Code))
		if code == "" || spec.IsDefault {
			continue
		}
		root.Groups = append(root.Groups, urlkit.GroupConfig{
			Name:  code,
			Path:  "/" + code,
			Paths: siteRoutePaths(),
		})
	}

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{root},
	})
	return &siteRoutes{
		manager:       manager,
		defaultLocale: strings.TrimSpace(defaultLocale),
		groups:        map[string]*urlkit.Group{},
	}
}

func siteRoutePaths() map[string]string {
	return map[string]string{
		routeHome:    "/",
		routeFeed:    "/feed.xml",
		routeAtom:    "/atom.xml",
		routeSitemap: "/sitemap.xml",
	}
}

// Home returns the absolute URL of the site root for the given locale.
func (r *siteRoutes) Home(locale string) (string, error) {
	return r.build(locale, routeHome)
}

// Feed returns the absolute RSS feed URL for the given locale.
func (r *siteRoutes) Feed(locale string) (string, error) {
	return r.build(locale, routeFeed)
}

// Atom returns the absolute Atom feed URL for the given locale.
func (r *siteRoutes) Atom(locale string) (string, error) {
	return r.build(locale, routeAtom)
}

// Sitemap returns the absolute sitemap URL. The sitemap is never localized.
func (r *siteRoutes) Sitemap() (string, error) {
	return r.build(r.defaultLocale, routeSitemap)
}

// Post returns the absolute URL for a post permalink in the given locale.
// Permalinks span an arbitrary number of path segments, so the URL joins the
// locale root with the permalink instead of going through a route parameter.
func (r *siteRoutes) Post(locale, permalink string) (string, error) {
	home, err := r.Home(locale)
	if err != nil {
		return "", err
	}
	normalized := strings.TrimSpace(permalink)
	if normalized == "" || normalized == "/" {
		return home, nil
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return strings.TrimSuffix(home, "/") + normalized, nil
}

func (r *siteRoutes) build(locale, route string) (string, error) {
	group, err := r.group(locale)
	if err != nil {
		return "", err
	}
	builder, err := safeRouteBuilder(group, route)
	if err != nil {
		return "", err
	}
	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("generator: build %s url: %w", route, err)
	}
	return url, nil
}

func (r *siteRoutes) group(locale string) (*urlkit.Group, error) {
	code := strings.ToLower(strings.TrimSpace(locale))
	if code == "" || strings.EqualFold(code, r.defaultLocale) {
		code = siteRouteGroup
	}

	r.mu.RLock()
	group, ok := r.groups[code]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	root, err := lookupRouteGroup(r.manager, siteRouteGroup)
	if err != nil {
		return nil, err
	}
	group = root
	if code != siteRouteGroup {
		group, err = lookupChildRouteGroup(root, code)
		if err != nil {
			// Unknown locales fall back to the site root scheme.
			group = root
		}
	}

	r.mu.Lock()
	r.groups[code] = group
	r.mu.Unlock()
	return group, nil
}

// go-urlkit panics on unknown group and route names; the generator surfaces
// those as errors instead.
func lookupRouteGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("generator: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func lookupChildRouteGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("generator: route group %q not found", name)
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, err
}

func safeRouteBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("generator: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route %q not found", route)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}
