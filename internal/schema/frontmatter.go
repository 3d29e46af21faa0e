package schema

// PostResourceSlug names the post resource in schema projections and
// registries.
const PostResourceSlug = "post"

// FrontMatterSchema returns the canonical JSON schema for post front-matter.
// Layout and title are mandatory; permalinks must be site-absolute. Extra keys
// are allowed so documents can carry template- or theme-specific metadata.
func FrontMatterSchema() map[string]any {
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"title":   "PostFrontMatter",
		"type":    "object",
		"required": []any{
			"layout",
			"title",
		},
		"properties": map[string]any{
			"layout": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Template slug used to render the document",
			},
			"title": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"permalink": map[string]any{
				"type":        "string",
				"pattern":     "^/",
				"description": "Site-absolute output path for the rendered page",
			},
			"summary": map[string]any{
				"type": "string",
			},
			"tags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"uniqueItems": true,
			},
			"author": map[string]any{
				"type": "string",
			},
			"date": map[string]any{
				"type":   "string",
				"format": "date-time",
			},
			"draft": map[string]any{
				"type":    "boolean",
				"default": false,
			},
		},
		"additionalProperties": true,
	}
}
