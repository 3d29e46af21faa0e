package schema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-press/internal/openapi"
	"github.com/goliatone/go-slug"
)

// Projection contains an OpenAPI document projection for a published resource.
type Projection struct {
	Name     string
	Document *openapi.Document
}

// ProjectToOpenAPI builds an OpenAPI document exposing the resource schema so
// embedding applications can serve it from their API registries.
func ProjectToOpenAPI(resourceSlug string, resourceName string, schema map[string]any, version Version) (*Projection, error) {
	slugValue := strings.TrimSpace(resourceSlug)
	if slugValue == "" {
		return nil, fmt.Errorf("schema: resource slug required for projection")
	}
	title := strings.TrimSpace(resourceName)
	if title == "" {
		title = slugValue
	}
	doc := openapi.NewDocument(title, strings.TrimPrefix(version.SemVer, "v"))
	doc.AddSchema(componentName(slugValue), cloneMap(schema))
	doc.SetExtension("x-press", map[string]any{
		"resource": slugValue,
		"schema":   version.String(),
	})
	return &Projection{
		Name:     slugValue,
		Document: doc,
	}, nil
}

// PostProjection projects the canonical post front-matter schema.
func PostProjection() (*Projection, error) {
	return ProjectToOpenAPI(PostResourceSlug, "Post", FrontMatterSchema(), DefaultVersion(PostResourceSlug))
}

func componentName(value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" {
		normalized = value
	}
	return strings.ReplaceAll(normalized, "-", "_")
}
