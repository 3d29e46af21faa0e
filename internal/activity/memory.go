// Package activity provides in-process sinks and notifiers for the press
// activity trail. Embedded sites use these when no external go-users sink
// is wired in.
package activity

import (
	"context"
	"sync"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// MemorySink retains activity records in memory.
type MemorySink struct {
	mu      sync.RWMutex
	records []interfaces.ActivityRecord
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Log implements interfaces.ActivitySink.
func (s *MemorySink) Log(_ context.Context, record interfaces.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Records returns a snapshot of everything logged so far.
func (s *MemorySink) Records() []interfaces.ActivityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]interfaces.ActivityRecord, len(s.records))
	copy(out, s.records)
	return out
}
