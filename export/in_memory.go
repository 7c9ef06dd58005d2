package export

import (
	"sync"

	"github.com/hupe1980/agentflow/runner"
)

// InMemoryExporter collects records in process memory. Useful for tests,
// examples and single-process prototypes; it enforces no retention limit.
type InMemoryExporter struct {
	mu      sync.RWMutex
	records []Record
}

// NewInMemoryExporter returns an empty in-memory exporter.
func NewInMemoryExporter() *InMemoryExporter {
	return &InMemoryExporter{}
}

// Export implements Exporter.
func (e *InMemoryExporter) Export(result *runner.Result) error {
	if result == nil {
		return ErrNilResult
	}

	rec := NewRecord(result)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = append(e.records, rec)
	return nil
}

// Records returns a snapshot of everything exported so far, in order.
func (e *InMemoryExporter) Records() []Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Record, len(e.records))
	copy(out, e.records)
	return out
}

// Len returns the number of exported records.
func (e *InMemoryExporter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}
