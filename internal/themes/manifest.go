package themes

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Manifest mirrors the expected theme.json structure.
type Manifest struct {
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Version     string             `json:"version"`
	Author      *string            `json:"author,omitempty"`
	Assets      *ThemeAssets       `json:"assets,omitempty"`
	Tokens      map[string]string  `json:"tokens,omitempty"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
	Templates   []ManifestTemplate `json:"templates,omitempty"`
}

// ManifestTemplate declares a template shipped with the theme. Path is the
// template file name as the renderer knows it, e.g. "post.html".
type ManifestTemplate struct {
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description *string        `json:"description,omitempty"`
	Path        string         `json:"path"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// LoadManifest reads and parses a manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open manifest: %w", err)
	}
	defer file.Close()
	return ParseManifest(file)
}

// ParseManifest decodes manifest JSON from a reader.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := json.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("themes: parse manifest: %w", err)
	}
	return &manifest, nil
}

// ManifestToThemeInput converts a manifest into a registration payload.
func ManifestToThemeInput(themePath string, manifest *Manifest) (RegisterThemeInput, error) {
	if manifest == nil {
		return RegisterThemeInput{}, fmt.Errorf("themes: manifest required")
	}
	if manifest.Name == "" {
		return RegisterThemeInput{}, fmt.Errorf("themes: manifest missing name")
	}
	if manifest.Version == "" {
		return RegisterThemeInput{}, fmt.Errorf("themes: manifest missing version")
	}

	config := ThemeConfig{
		Assets:   manifest.Assets,
		Tokens:   manifest.Tokens,
		Metadata: manifest.Metadata,
	}

	return RegisterThemeInput{
		Name:        manifest.Name,
		Description: manifest.Description,
		Version:     manifest.Version,
		Author:      manifest.Author,
		ThemePath:   filepath.Clean(themePath),
		Config:      config,
	}, nil
}

// ManifestToSeed converts a manifest into a bootstrap seed including its
// declared templates. Template ThemeIDs are filled in during Bootstrap once
// the theme record exists.
func ManifestToSeed(themePath string, manifest *Manifest) (ThemeSeed, error) {
	themeInput, err := ManifestToThemeInput(themePath, manifest)
	if err != nil {
		return ThemeSeed{}, err
	}

	seed := ThemeSeed{Theme: themeInput}
	for _, tpl := range manifest.Templates {
		if tpl.Slug == "" || tpl.Path == "" {
			return ThemeSeed{}, fmt.Errorf("themes: manifest template %q missing slug or path", tpl.Name)
		}
		name := tpl.Name
		if name == "" {
			name = tpl.Slug
		}
		seed.Templates = append(seed.Templates, RegisterTemplateInput{
			Name:         name,
			Slug:         tpl.Slug,
			Description:  tpl.Description,
			TemplatePath: tpl.Path,
			Metadata:     tpl.Metadata,
		})
	}
	return seed, nil
}

// SeedFromDir loads <dir>/theme.json and converts it into a bootstrap seed.
func SeedFromDir(dir string) (ThemeSeed, error) {
	manifest, err := LoadManifest(filepath.Join(dir, "theme.json"))
	if err != nil {
		return ThemeSeed{}, err
	}
	return ManifestToSeed(dir, manifest)
}
