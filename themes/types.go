// Package themes exposes the public theme contract so hosts can register and
// seed themes without importing internal packages.
package themes

import (
	internalthemes "github.com/goliatone/go-press/internal/themes"
)

// Service exposes theme and template management capabilities.
type Service = internalthemes.Service

// Theme captures a complete site design (templates, assets, metadata).
type Theme = internalthemes.Theme

// Template defines a layout surface within a theme.
type Template = internalthemes.Template

// ThemeConfig records manifest level details parsed from theme descriptors.
type ThemeConfig = internalthemes.ThemeConfig

// ThemeAssets references static files associated with a theme.
type ThemeAssets = internalthemes.ThemeAssets

// ThemeSummary is the compact view of the active theme used during builds.
type ThemeSummary = internalthemes.ThemeSummary

// RegisterThemeInput describes a theme registration.
type RegisterThemeInput = internalthemes.RegisterThemeInput

// RegisterTemplateInput describes a template registration.
type RegisterTemplateInput = internalthemes.RegisterTemplateInput

// UpdateTemplateInput describes a sparse template update.
type UpdateTemplateInput = internalthemes.UpdateTemplateInput

// ThemeSeed pairs a theme registration with the templates it ships.
type ThemeSeed = internalthemes.ThemeSeed

// Manifest models a theme.json descriptor on disk.
type Manifest = internalthemes.Manifest

// ManifestTemplate models a template entry inside a theme manifest.
type ManifestTemplate = internalthemes.ManifestTemplate

var (
	ErrFeatureDisabled                 = internalthemes.ErrFeatureDisabled
	ErrThemeExists                     = internalthemes.ErrThemeExists
	ErrThemeNotFound                   = internalthemes.ErrThemeNotFound
	ErrNoActiveTheme                   = internalthemes.ErrNoActiveTheme
	ErrThemeActivationMissingTemplates = internalthemes.ErrThemeActivationMissingTemplates
	ErrTemplateNotFound                = internalthemes.ErrTemplateNotFound
	ErrTemplateSlugConflict            = internalthemes.ErrTemplateSlugConflict
)

// LoadManifest reads and parses a theme.json descriptor from disk.
func LoadManifest(path string) (*Manifest, error) {
	return internalthemes.LoadManifest(path)
}

// SeedFromDir builds a ThemeSeed from a theme directory containing a
// theme.json manifest.
func SeedFromDir(dir string) (ThemeSeed, error) {
	return internalthemes.SeedFromDir(dir)
}
