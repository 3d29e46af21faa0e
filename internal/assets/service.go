package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
)

var (
	// ErrSourceUnavailable reports that no content filesystem has been configured.
	ErrSourceUnavailable = errors.New("assets: source filesystem unavailable")
	// ErrAssetNotFound indicates that the referenced asset does not exist.
	ErrAssetNotFound = errors.New("assets: asset not found")
	// ErrPathEscapes rejects references that climb out of the content root.
	ErrPathEscapes = errors.New("assets: path escapes content root")
	// ErrRefRequired rejects empty references.
	ErrRefRequired = errors.New("assets: reference required")
)

// Asset describes one static file under the content tree.
type Asset struct {
	Path string
	Size int64
}

// Sink receives asset payloads during CopyAll.
type Sink func(ctx context.Context, path string, r io.Reader) error

// Service resolves and enumerates static assets referenced by posts.
//
// References are slash separated. Resolve interprets them against the
// content root; ResolveFrom first tries the directory of the referencing
// document, the way a relative URL would resolve in the published page.
type Service interface {
	Resolve(ref string) (string, error)
	ResolveFrom(baseDir, ref string) (string, error)
	Open(ref string) (fs.File, error)
	List() ([]Asset, error)
	CopyAll(ctx context.Context, sink Sink) error
}

// ServiceOption customises the asset service behaviour.
type ServiceOption func(*service)

// WithDirs overrides the directories List and CopyAll scan for site assets.
func WithDirs(dirs ...string) ServiceOption {
	return func(s *service) {
		cleaned := make([]string, 0, len(dirs))
		for _, dir := range dirs {
			dir = strings.Trim(strings.TrimSpace(dir), "/")
			if dir == "" || dir == "." {
				continue
			}
			cleaned = append(cleaned, path.Clean(dir))
		}
		if len(cleaned) > 0 {
			s.dirs = cleaned
		}
	}
}

type service struct {
	source fs.FS
	dirs   []string
}

// NewService constructs an asset service over the content filesystem.
// By default List and CopyAll scan the assets/ directory.
func NewService(source fs.FS, opts ...ServiceOption) Service {
	s := &service{
		source: source,
		dirs:   []string{"assets"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve normalizes ref against the content root and verifies the file exists.
func (s *service) Resolve(ref string) (string, error) {
	if s.source == nil {
		return "", ErrSourceUnavailable
	}
	clean, err := normalizeRef(ref)
	if err != nil {
		return "", err
	}
	info, err := fs.Stat(s.source, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrAssetNotFound, clean)
		}
		return "", fmt.Errorf("assets: stat %s: %w", clean, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrAssetNotFound, clean)
	}
	return clean, nil
}

// ResolveFrom resolves ref the way the published page would: relative to the
// directory of the referencing document first, then against the content root.
// Absolute references (leading slash) skip the base directory.
func (s *service) ResolveFrom(baseDir, ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", ErrRefRequired
	}
	if !strings.HasPrefix(trimmed, "/") {
		base := strings.Trim(strings.TrimSpace(baseDir), "/")
		if base != "" && base != "." {
			if resolved, err := s.Resolve(path.Join(base, trimmed)); err == nil {
				return resolved, nil
			} else if !errors.Is(err, ErrAssetNotFound) {
				return "", err
			}
		}
	}
	return s.Resolve(trimmed)
}

// Open returns a reader for the referenced asset.
func (s *service) Open(ref string) (fs.File, error) {
	clean, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	file, err := s.source.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("assets: open %s: %w", clean, err)
	}
	return file, nil
}

// List enumerates every file under the configured asset directories in
// lexical order. Missing directories are skipped so sites without assets
// stay valid.
func (s *service) List() ([]Asset, error) {
	if s.source == nil {
		return nil, ErrSourceUnavailable
	}
	var out []Asset
	for _, dir := range s.dirs {
		err := fs.WalkDir(s.source, dir, func(p string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if errors.Is(walkErr, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			info, err := entry.Info()
			if err != nil {
				return err
			}
			out = append(out, Asset{Path: p, Size: info.Size()})
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("assets: walk %s: %w", dir, err)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// CopyAll streams every listed asset through sink, preserving the stable
// List order so repeated builds write files identically.
func (s *service) CopyAll(ctx context.Context, sink Sink) error {
	if sink == nil {
		return fmt.Errorf("assets: sink required")
	}
	listed, err := s.List()
	if err != nil {
		return err
	}
	for _, asset := range listed {
		if err := ctx.Err(); err != nil {
			return err
		}
		file, err := s.source.Open(asset.Path)
		if err != nil {
			return fmt.Errorf("assets: open %s: %w", asset.Path, err)
		}
		err = sink(ctx, asset.Path, file)
		closeErr := file.Close()
		if err != nil {
			return fmt.Errorf("assets: copy %s: %w", asset.Path, err)
		}
		if closeErr != nil {
			return fmt.Errorf("assets: close %s: %w", asset.Path, closeErr)
		}
	}
	return nil
}

func normalizeRef(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", ErrRefRequired
	}
	trimmed = strings.TrimPrefix(trimmed, "/")
	clean := path.Clean(trimmed)
	if clean == "." || clean == "" {
		return "", ErrRefRequired
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, ref)
	}
	return clean, nil
}
