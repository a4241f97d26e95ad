// Package output writes the report to disk as indented JSON
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilexum-group/sysreport/pkg/models"
)

const fileMode = 0o600

// FileName returns the report file name for a run started at t
func FileName(t time.Time) string {
	return "system_info_" + t.Format("20060102_150405") + ".json"
}

// WriteReport writes report into dir and returns the file path. The file is
// created exclusively, so an existing report is never overwritten.
func WriteReport(dir string, started time.Time, report models.Report) (path string, err error) {
	target := filepath.Join(dir, FileName(started))

	//nolint:gosec // G304: Path is built from the configured output directory
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(target)
			path = ""
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return target, nil
}

// ReadReport parses a report file written by WriteReport
func ReadReport(path string) (models.Report, error) {
	//nolint:gosec // G304: Path is a report written by this program
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to read report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return models.Report{}, fmt.Errorf("failed to parse report: %w", err)
	}
	return report, nil
}
