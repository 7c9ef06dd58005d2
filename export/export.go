package export

import (
	"errors"
	"maps"
	"time"

	"github.com/hupe1980/agentflow/runner"
)

// ErrNilResult is returned when an exporter receives a nil result.
var ErrNilResult = errors.New("nil run result")

// Exporter persists one finished run result. Implementations must treat the
// result as read-only.
type Exporter interface {
	Export(result *runner.Result) error
}

// Record is the serialized form of one run: identifiers, the final text and
// a snapshot of the shared state at completion.
type Record struct {
	SessionID  string         `json:"session_id"`
	RunID      string         `json:"run_id"`
	Output     string         `json:"output"`
	State      map[string]any `json:"state"`
	DurationMS int64          `json:"duration_ms"`
	ExportedAt time.Time      `json:"exported_at"`
}

// NewRecord converts a run result into its export form. The state map is
// copied so later mutation of the record never reaches the result.
func NewRecord(result *runner.Result) Record {
	rec := Record{
		SessionID:  result.SessionID,
		RunID:      result.RunID,
		State:      maps.Clone(result.State),
		DurationMS: result.Duration.Milliseconds(),
		ExportedAt: time.Now().UTC(),
	}
	if result.Output != nil {
		rec.Output = result.Output.Text()
	}
	return rec
}
