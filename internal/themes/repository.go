package themes

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewThemeRepository wires bun persistence for themes. Name doubles as the
// human readable identifier.
func NewThemeRepository(db *bun.DB) repository.Repository[*Theme] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Theme]{
		NewRecord:          func() *Theme { return &Theme{} },
		GetID:              func(record *Theme) uuid.UUID { return record.ID },
		SetID:              func(record *Theme, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(record *Theme) string { return record.Name },
	})
}

// NewTemplateRepository wires bun persistence for templates. Slug is only
// unique within a theme, so cross-theme lookups go through GetBySlug.
func NewTemplateRepository(db *bun.DB) repository.Repository[*Template] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Template]{
		NewRecord:          func() *Template { return &Template{} },
		GetID:              func(record *Template) uuid.UUID { return record.ID },
		SetID:              func(record *Template, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(record *Template) string { return record.Slug },
	})
}
