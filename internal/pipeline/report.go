package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// Filename of the run report written next to the exported image.
const ReportFilename = "report.json"

// Writes result as indented JSON to path.
func writeReport(path string, result *Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	return nil
}
