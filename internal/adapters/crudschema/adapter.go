package crudschema

import (
	"context"
	"fmt"
	"strings"

	crud "github.com/goliatone/go-crud"

	"github.com/goliatone/go-press/internal/schema"
)

// Registry bridges schema projections into the go-crud schema registry so an
// embedding application can serve resource documents from its API layer.
type Registry struct {
	// PluralOverrides maps a resource name to its plural form when the
	// default "+s" suffix is wrong.
	PluralOverrides map[string]string
}

var _ schema.Registry = (*Registry)(nil)

// Register publishes the document under the resource name.
func (r *Registry) Register(_ context.Context, name string, doc map[string]any) error {
	resource := strings.TrimSpace(name)
	if resource == "" {
		return fmt.Errorf("crudschema: resource name required")
	}
	plural := resource + "s"
	if r != nil && r.PluralOverrides != nil {
		if override, ok := r.PluralOverrides[resource]; ok && strings.TrimSpace(override) != "" {
			plural = strings.TrimSpace(override)
		}
	}
	if ok := crud.RegisterSchemaDocument(resource, plural, doc); !ok {
		return fmt.Errorf("crudschema: registry rejected document for %s", resource)
	}
	return nil
}

// Lookup returns a previously registered document, primarily for diagnostics.
func Lookup(resource string) (map[string]any, bool) {
	entry, ok := crud.GetSchema(strings.TrimSpace(resource))
	if !ok {
		return nil, false
	}
	return entry.Document, true
}
