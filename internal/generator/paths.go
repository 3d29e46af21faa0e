package generator

import (
	"path"
	"strings"
)

// buildOutputPath maps a permalink onto the relative file path for its
// rendered page. The default locale lands at the site root; every other
// locale is prefixed with its code. A permalink that already starts with
// the locale code is not prefixed twice.
func buildOutputPath(permalink string, locale string, defaultLocale string) string {
	permalink = strings.TrimSpace(permalink)
	if permalink == "" {
		permalink = "/"
	}
	clean := strings.Trim(permalink, " \t\r\n/")
	locale = strings.TrimSpace(locale)
	defaultLocale = strings.TrimSpace(defaultLocale)

	if locale == "" && defaultLocale != "" {
		locale = defaultLocale
	}

	if locale == "" || strings.EqualFold(locale, defaultLocale) {
		if clean == "" {
			return "index.html"
		}
		return path.Join(clean, "index.html")
	}

	segments := []string{}
	if clean != "" {
		segments = strings.Split(clean, "/")
		if len(segments) > 0 && strings.EqualFold(segments[0], locale) {
			segments = segments[1:]
		}
	}

	if len(segments) == 0 {
		return path.Join(locale, "index.html")
	}

	part := path.Join(segments...)
	if part == "" || part == "." {
		return path.Join(locale, "index.html")
	}
	return path.Join(locale, part, "index.html")
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.Trim(base, "/"), rel)
}
