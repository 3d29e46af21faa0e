package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured front matter, the Markdown
// body without delimiters, and any error encountered.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// locale, raw content, and modification time. BodyHTML is intentionally left
// empty so callers can render lazily.
func BuildDocument(path string, locale string, source []byte, modified time.Time) (*interfaces.Document, error) {
	frontMatter, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	return &interfaces.Document{
		FilePath:     path,
		Locale:       locale,
		FrontMatter:  frontMatter,
		Body:         body,
		LastModified: modified,
	}, nil
}

type frontMatterEnvelope struct {
	Layout    string         `yaml:"layout"`
	Title     string         `yaml:"title"`
	Permalink string         `yaml:"permalink"`
	Summary   string         `yaml:"summary"`
	Tags      []string       `yaml:"tags"`
	Author    string         `yaml:"author"`
	Date      time.Time      `yaml:"date"`
	Draft     bool           `yaml:"draft"`
	Custom    map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	// Raw mirrors the full front matter as JSON-safe values so it can be
	// schema-validated and embedded in manifests without another pass.
	raw := make(map[string]any, len(env.Custom)+8)
	for key, value := range env.Custom {
		raw[key] = normalizeValue(value)
	}

	if env.Layout != "" {
		raw["layout"] = env.Layout
	}
	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Permalink != "" {
		raw["permalink"] = env.Permalink
	}
	if env.Summary != "" {
		raw["summary"] = env.Summary
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Author != "" {
		raw["author"] = env.Author
	}
	if !env.Date.IsZero() {
		raw["date"] = env.Date.UTC().Format(time.RFC3339)
	}
	raw["draft"] = env.Draft

	return interfaces.FrontMatter{
		Layout:    env.Layout,
		Title:     env.Title,
		Permalink: env.Permalink,
		Summary:   env.Summary,
		Tags:      append([]string(nil), env.Tags...),
		Author:    env.Author,
		Date:      env.Date,
		Draft:     env.Draft,
		Custom:    cloneMap(env.Custom),
		Raw:       raw,
	}
}

// normalizeValue rewrites YAML-decoded values into shapes that survive
// encoding/json: timestamps become RFC 3339 strings and nested containers are
// normalised recursively.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case time.Time:
		return typed.UTC().Format(time.RFC3339)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[key] = normalizeValue(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, child := range typed {
			out[idx] = normalizeValue(child)
		}
		return out
	default:
		return value
	}
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
