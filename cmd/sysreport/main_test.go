package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ilexum-group/sysreport/internal/config"
	"github.com/ilexum-group/sysreport/internal/sender"
	"github.com/ilexum-group/sysreport/internal/utils"
)

// unreachableConfig points every network dependency at a closed local port
func unreachableConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.IPEchoURL = "http://127.0.0.1:1"
	cfg.GeoURL = "http://127.0.0.1:1/"
	cfg.IPEchoTimeout = time.Second
	cfg.GeoTimeout = time.Second
	cfg.SMTPHost = "127.0.0.1"
	cfg.SMTPPort = 1
	cfg.SMTPSecurity = config.SecurityNone
	cfg.SMTPTimeout = 2 * time.Second
	cfg.MailTo = []string{"ops@example.com"}
	return cfg
}

func reports(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "system_info_*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func captureLogs(t *testing.T) {
	t.Helper()
	var buf strings.Builder
	if err := utils.InitDefaultLoggerTo(&buf); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	utils.ClearLogs()
}

func hasLog(message string) bool {
	for _, line := range utils.GetLogs() {
		if strings.Contains(line, message) {
			return true
		}
	}
	return false
}

func TestRunRemovesUndeliveredReport(t *testing.T) {
	captureLogs(t)
	cfg := unreachableConfig(t)

	run(context.Background(), cfg)

	if got := reports(t, cfg.OutputDir); len(got) != 0 {
		t.Errorf("Expected the undelivered report to be removed, found %v", got)
	}
	if !hasLog("Report written") || !hasLog("Report file removed") {
		t.Errorf("Expected the report to be written then removed, logs: %v", utils.GetLogs())
	}
}

func TestRunKeepReport(t *testing.T) {
	captureLogs(t)
	cfg := unreachableConfig(t)
	cfg.KeepReport = true

	run(context.Background(), cfg)

	if got := reports(t, cfg.OutputDir); len(got) != 1 {
		t.Errorf("Expected one kept report, found %v", got)
	}
}

func TestRunWriteFailure(t *testing.T) {
	captureLogs(t)
	cfg := unreachableConfig(t)
	parent := cfg.OutputDir
	cfg.OutputDir = filepath.Join(parent, "missing")

	called := false
	orig := deliver
	deliver = func(context.Context, *config.Config, sender.Summary, string) bool {
		called = true
		return true
	}
	t.Cleanup(func() { deliver = orig })

	run(context.Background(), cfg)

	if called {
		t.Error("Nothing should be sent when the report cannot be written")
	}
	if got := reports(t, parent); len(got) != 0 {
		t.Errorf("Unexpected report files: %v", got)
	}
	if !hasLog("Failed to write report") {
		t.Errorf("Expected a write failure log, logs: %v", utils.GetLogs())
	}
}

func TestRunPanicStillCleansUp(t *testing.T) {
	captureLogs(t)
	cfg := unreachableConfig(t)

	orig := deliver
	deliver = func(context.Context, *config.Config, sender.Summary, string) bool {
		panic("smtp exploded")
	}
	t.Cleanup(func() { deliver = orig })

	run(context.Background(), cfg)

	if got := reports(t, cfg.OutputDir); len(got) != 0 {
		t.Errorf("Expected the report to be removed after a panic, found %v", got)
	}
	if !hasLog("Run aborted") {
		t.Errorf("Expected the panic to be logged, logs: %v", utils.GetLogs())
	}
}
