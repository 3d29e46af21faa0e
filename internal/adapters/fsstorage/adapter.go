// Package fsstorage maps generator storage operations onto a local directory
// tree so site builds publish straight to disk.
package fsstorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
)

const (
	opEnsureDir = "generator.ensure_dir"
	opWrite     = "generator.write"
	opRead      = "generator.read"
	opRemove    = "generator.remove"
	opList      = "generator.list"
)

var _ interfaces.StorageProvider = (*Adapter)(nil)

// Adapter implements interfaces.StorageProvider over a root directory. Paths
// supplied by callers are slash separated and stay confined to the root.
type Adapter struct {
	root string
}

// New returns an adapter rooted at dir. An empty dir means the current
// working directory.
func New(dir string) *Adapter {
	root := strings.TrimSpace(dir)
	if root == "" {
		root = "."
	}
	return &Adapter{root: root}
}

// Root reports the directory artifacts are written beneath.
func (a *Adapter) Root() string {
	return a.root
}

func (a *Adapter) Query(ctx context.Context, op string, args ...any) (interfaces.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch op {
	case opRead:
		return a.readFile(args)
	case opList:
		return a.listFiles(args)
	default:
		return nil, fmt.Errorf("fsstorage: unsupported query %q", op)
	}
}

func (a *Adapter) Exec(ctx context.Context, op string, args ...any) (interfaces.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch op {
	case opEnsureDir:
		target, err := a.resolveArg(args, op)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, err
		}
		return execResult{}, nil
	case opWrite:
		return a.writeFile(args)
	case opRemove:
		target, err := a.resolveArg(args, op)
		if err != nil {
			return nil, err
		}
		if err := os.RemoveAll(target); err != nil {
			return nil, err
		}
		return execResult{rows: 1}, nil
	default:
		return nil, fmt.Errorf("fsstorage: unsupported operation %q", op)
	}
}

// Transaction runs fn against the adapter. Writes apply immediately; commit
// and rollback carry no filesystem semantics.
func (a *Adapter) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&fsTx{adapter: a})
}

func (a *Adapter) readFile(args []any) (interfaces.Rows, error) {
	target, err := a.resolveArg(args, opRead)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return &fileRows{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: [][]byte{data}}, nil
}

func (a *Adapter) listFiles(args []any) (interfaces.Rows, error) {
	target, err := a.resolveArg(args, opList)
	if err != nil {
		return nil, err
	}
	var entries [][]byte
	walkErr := filepath.WalkDir(target, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.root, name)
		if err != nil {
			return err
		}
		entries = append(entries, []byte(filepath.ToSlash(rel)))
		return nil
	})
	if errors.Is(walkErr, fs.ErrNotExist) {
		return &fileRows{}, nil
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return &fileRows{data: entries}, nil
}

func (a *Adapter) writeFile(args []any) (interfaces.Result, error) {
	target, err := a.resolveArg(args, opWrite)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, errors.New("fsstorage: write requires content")
	}
	var content io.Reader
	switch value := args[1].(type) {
	case io.Reader:
		content = value
	case []byte:
		content = bytes.NewReader(value)
	case string:
		content = strings.NewReader(value)
	default:
		return nil, fmt.Errorf("fsstorage: unsupported content type %T", args[1])
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, err
	}
	file, err := os.Create(target)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(file, content); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, err
	}
	return execResult{rows: 1}, nil
}

func (a *Adapter) resolveArg(args []any, op string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("fsstorage: %s requires a path argument", op)
	}
	name, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("fsstorage: %s path must be a string, got %T", op, args[0])
	}
	return a.resolve(name)
}

func (a *Adapter) resolve(name string) (string, error) {
	cleaned := path.Clean(strings.TrimSpace(name))
	if cleaned == "" || cleaned == "." {
		return a.root, nil
	}
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("fsstorage: path escapes root: %s", name)
	}
	return filepath.Join(a.root, filepath.FromSlash(cleaned)), nil
}

type fsTx struct {
	adapter *Adapter
}

func (t *fsTx) Query(ctx context.Context, op string, args ...any) (interfaces.Rows, error) {
	return t.adapter.Query(ctx, op, args...)
}

func (t *fsTx) Exec(ctx context.Context, op string, args ...any) (interfaces.Result, error) {
	return t.adapter.Exec(ctx, op, args...)
}

func (t *fsTx) Transaction(ctx context.Context, fn func(tx interfaces.Transaction) error) error {
	return t.adapter.Transaction(ctx, fn)
}

func (t *fsTx) Commit() error { return nil }

func (t *fsTx) Rollback() error { return nil }

type fileRows struct {
	data [][]byte
	idx  int
}

func (r *fileRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return errors.New("fsstorage: scan called without next")
	}
	if len(dest) == 0 {
		return errors.New("fsstorage: scan requires a destination")
	}
	row := r.data[r.idx-1]
	switch d := dest[0].(type) {
	case *[]byte:
		*d = append([]byte(nil), row...)
	case *string:
		*d = string(row)
	default:
		return fmt.Errorf("fsstorage: unsupported scan destination %T", dest[0])
	}
	return nil
}

func (r *fileRows) Close() error { return nil }

type execResult struct {
	rows int64
}

func (r execResult) RowsAffected() (int64, error) { return r.rows, nil }

func (r execResult) LastInsertId() (int64, error) { return 0, nil }
