package report

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
)

// WriteFile replaces the file at path with the rendered report. The report is
// written next to the target and renamed into place.
func WriteFile(fs afero.Fs, path string, r *Report, format config.OutputFormat) error {
	var buf bytes.Buffer
	if err := Render(&buf, r, format); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move result file into place: %w", err)
	}

	return nil
}
