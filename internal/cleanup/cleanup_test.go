package cleanup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system_info_20260102_030405.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !Run(path, false) {
		t.Error("Expected report to be removed")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Report still exists: %v", err)
	}
}

func TestRunMissingFileIsNoop(t *testing.T) {
	if Run(filepath.Join(t.TempDir(), "missing.json"), false) {
		t.Error("Missing file should not count as removed")
	}
	if Run("", false) {
		t.Error("Empty path should be a no-op")
	}
}

func TestRunKeep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if Run(path, true) {
		t.Error("Kept report should not be removed")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Kept report is gone: %v", err)
	}
}

func TestRunNonEmptyDirectoryDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "child"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if Run(dir, false) {
		t.Error("Removing a non-empty directory should fail quietly")
	}
}

func TestShouldKeep(t *testing.T) {
	tests := []struct {
		keepReport, keepUndelivered, delivered, want bool
	}{
		{false, false, false, false},
		{false, true, false, true},
		{false, true, true, false},
		{true, false, true, true},
	}
	for _, tt := range tests {
		if got := ShouldKeep(tt.keepReport, tt.keepUndelivered, tt.delivered); got != tt.want {
			t.Errorf("ShouldKeep(%v, %v, %v) = %v, want %v", tt.keepReport, tt.keepUndelivered, tt.delivered, got, tt.want)
		}
	}
}
