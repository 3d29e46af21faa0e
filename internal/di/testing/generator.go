// Package ditesting provides in-memory doubles for container level tests.
package ditesting

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// MemoryStorage records generator storage operations so tests can assert
// which artifacts a build produced without touching disk.
type MemoryStorage struct {
	mu    sync.Mutex
	execs []OpCall
	reads []OpCall
	files map[string][]byte
}

// OpCall captures a single storage operation.
type OpCall struct {
	Op            string
	Args          []any
	InTransaction bool
}

// NewMemoryStorage constructs an empty in-memory artifact store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: map[string][]byte{}}
}

// Exec applies a mutation. Writes retain the artifact bytes so tests can
// inspect rendered output.
func (m *MemoryStorage) Exec(_ context.Context, op string, args ...any) (interfaces.Result, error) {
	m.record(&m.execs, op, false, args)
	if err := m.captureWrite(op, args); err != nil {
		return nil, err
	}
	return memoryResult{}, nil
}

// Query serves reads. List and manifest lookups return no rows, matching a
// fresh output tree.
func (m *MemoryStorage) Query(_ context.Context, op string, args ...any) (interfaces.Rows, error) {
	m.record(&m.reads, op, false, args)
	return memoryRows{}, nil
}

// Transaction executes fn against the same store.
func (m *MemoryStorage) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&memoryTx{storage: m})
}

// ExecCalls returns a copy of recorded mutations.
func (m *MemoryStorage) ExecCalls() []OpCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OpCall(nil), m.execs...)
}

// QueryCalls returns a copy of recorded reads.
func (m *MemoryStorage) QueryCalls() []OpCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OpCall(nil), m.reads...)
}

// WrittenPaths lists the artifact paths writes landed on, in order.
func (m *MemoryStorage) WrittenPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.execs))
	for _, call := range m.execs {
		if call.Op != "generator.write" || len(call.Args) == 0 {
			continue
		}
		if path, ok := call.Args[0].(string); ok {
			paths = append(paths, path)
		}
	}
	return paths
}

// Artifact returns the bytes written to path and whether it exists.
func (m *MemoryStorage) Artifact(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

func (m *MemoryStorage) captureWrite(op string, args []any) error {
	if op != "generator.write" || len(args) < 2 {
		return nil
	}
	path, _ := args[0].(string)
	reader, ok := args[1].(io.Reader)
	if !ok || path == "" {
		return nil
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.files[path] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) record(dst *[]OpCall, op string, inTx bool, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*dst = append(*dst, OpCall{
		Op:            op,
		Args:          append([]any(nil), args...),
		InTransaction: inTx,
	})
}

type memoryRows struct{}

func (memoryRows) Next() bool { return false }

func (memoryRows) Scan(...any) error {
	return errors.New("memory storage: no rows available")
}

func (memoryRows) Close() error { return nil }

type memoryResult struct{}

func (memoryResult) RowsAffected() (int64, error) { return 1, nil }

func (memoryResult) LastInsertId() (int64, error) { return 0, nil }

type memoryTx struct {
	storage *MemoryStorage
}

func (tx *memoryTx) Query(_ context.Context, op string, args ...any) (interfaces.Rows, error) {
	tx.storage.record(&tx.storage.reads, op, true, args)
	return memoryRows{}, nil
}

func (tx *memoryTx) Exec(_ context.Context, op string, args ...any) (interfaces.Result, error) {
	tx.storage.record(&tx.storage.execs, op, true, args)
	if err := tx.storage.captureWrite(op, args); err != nil {
		return nil, err
	}
	return memoryResult{}, nil
}

func (tx *memoryTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errors.New("memory storage: nested transactions not supported")
}

func (tx *memoryTx) Commit() error { return nil }

func (tx *memoryTx) Rollback() error { return nil }

// NewGeneratorContainer creates a container wired with memory artifact
// storage and returns both for assertions.
func NewGeneratorContainer(cfg runtimeconfig.Config, opts ...di.Option) (*di.Container, *MemoryStorage, error) {
	memStorage := NewMemoryStorage()
	options := append([]di.Option{di.WithGeneratorStorage(memStorage)}, opts...)

	container, err := di.NewContainer(cfg, options...)
	if err != nil {
		return nil, nil, err
	}
	return container, memStorage, nil
}
