package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/agentflow/runner"
)

// FileExporter writes one pretty-printed JSON document per run into a
// directory, named after the run id. Safe for concurrent use: run ids are
// unique, so writers never touch the same file.
type FileExporter struct {
	dir string
}

// NewFileExporter creates an exporter rooted at dir. The directory is
// created lazily on first export.
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir}
}

// Export implements Exporter.
func (e *FileExporter) Export(result *runner.Result) error {
	if result == nil {
		return ErrNilResult
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	data, err := json.MarshalIndent(NewRecord(result), "", "  ")
	if err != nil {
		return fmt.Errorf("encode run %s: %w", result.RunID, err)
	}

	path := filepath.Join(e.dir, result.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write run %s: %w", result.RunID, err)
	}
	return nil
}
