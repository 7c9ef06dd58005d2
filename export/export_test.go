package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/agentflow/core"
	"github.com/hupe1980/agentflow/runner"
)

// Interface compliance (compile-time assertions)
var (
	_ Exporter = (*FileExporter)(nil)
	_ Exporter = (*InMemoryExporter)(nil)
)

func sampleResult() *runner.Result {
	return &runner.Result{
		Output:    core.NewAssistantContent("All done."),
		State:     map[string]any{"summary": "All done.", "user_input": "quantum computing"},
		SessionID: "sess-1",
		RunID:     "run-1",
		Duration:  1500 * time.Millisecond,
	}
}

func TestFileExporter_WritesRecord(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "runs")
	e := NewFileExporter(dir)

	if err := e.Export(sampleResult()); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "run-1.json"))
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode exported file: %v", err)
	}
	if rec.RunID != "run-1" || rec.SessionID != "sess-1" {
		t.Fatalf("unexpected identifiers: %+v", rec)
	}
	if rec.Output != "All done." {
		t.Fatalf("expected output text, got %q", rec.Output)
	}
	if rec.DurationMS != 1500 {
		t.Fatalf("expected 1500ms, got %d", rec.DurationMS)
	}
	if rec.State["summary"] != "All done." {
		t.Fatalf("state not preserved: %v", rec.State)
	}
	if rec.ExportedAt.IsZero() {
		t.Fatal("expected export timestamp")
	}
}

func TestFileExporter_NilResult(t *testing.T) {
	e := NewFileExporter(t.TempDir())
	if err := e.Export(nil); err != ErrNilResult {
		t.Fatalf("expected ErrNilResult, got %v", err)
	}
}

func TestInMemoryExporter_CollectsInOrder(t *testing.T) {
	e := NewInMemoryExporter()

	first := sampleResult()
	second := sampleResult()
	second.RunID = "run-2"

	if err := e.Export(first); err != nil {
		t.Fatal(err)
	}
	if err := e.Export(second); err != nil {
		t.Fatal(err)
	}

	if e.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", e.Len())
	}
	recs := e.Records()
	if recs[0].RunID != "run-1" || recs[1].RunID != "run-2" {
		t.Fatalf("records out of order: %+v", recs)
	}
}

func TestInMemoryExporter_StateIsolation(t *testing.T) {
	e := NewInMemoryExporter()
	res := sampleResult()

	if err := e.Export(res); err != nil {
		t.Fatal(err)
	}

	// Mutating the result after export must not reach the stored record.
	res.State["summary"] = "mutated"

	rec := e.Records()[0]
	if rec.State["summary"] != "All done." {
		t.Fatalf("expected isolated state, got %v", rec.State["summary"])
	}
}
