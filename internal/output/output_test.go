package output

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ilexum-group/sysreport/pkg/models"
)

func sampleReport() models.Report {
	return models.Report{
		Timestamp: models.OK(models.TimestampInfo{UTC: "2026-01-02T03:04:05.000000", Local: "x", Timezone: "CET"}),
		System:    models.OK(models.SystemInfo{Hostname: "рабочая-станция", Username: "José"}),
		Network:   models.Fail[models.NetworkInfo]("permission denied"),
		Geolocation: models.OK(models.GeoInfo{
			City: "Москва", ISP: "AT&T", Lat: "55.7558", Lon: "37.6173",
		}),
		InstalledBrowsers: models.OK([]string{"Firefox"}),
		Browsers: models.OK(map[string]models.Result[models.BrowserFootprint]{
			"chrome":  models.OK(models.BrowserFootprint{Installed: false}),
			"firefox": models.Fail[models.BrowserFootprint]("access denied"),
		}),
	}
}

func TestFileName(t *testing.T) {
	started := time.Date(2026, 10, 19, 8, 5, 3, 0, time.Local)
	if got := FileName(started); got != "system_info_20261019_080503.json" {
		t.Errorf("Unexpected file name %q", got)
	}
	if !regexp.MustCompile(`^system_info_\d{8}_\d{6}\.json$`).MatchString(FileName(time.Now())) {
		t.Error("File name does not match the expected pattern")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)

	path, err := WriteReport(dir, started, sampleReport())
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Report written outside output dir: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	text := string(data)
	for _, want := range []string{"рабочая-станция", "Москва", "José", "AT&T", "\n    \"system\": {"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected raw output to contain %q", want)
		}
	}

	got, err := ReadReport(path)
	if err != nil {
		t.Fatalf("ReadReport failed: %v", err)
	}
	if got.System.Value.Hostname != "рабочая-станция" || got.Geolocation.Value.City != "Москва" {
		t.Errorf("Non-ASCII text did not round trip: %+v", got.System.Value)
	}
	if got.Network.Err != "permission denied" {
		t.Errorf("Expected network error to round trip, got %+v", got.Network)
	}
	if ff := got.Browsers.Value["firefox"]; ff.Err != "access denied" {
		t.Errorf("Expected per-browser error to round trip, got %+v", ff)
	}
	if len(got.InstalledBrowsers.Value) != 1 {
		t.Errorf("Unexpected installed browsers: %v", got.InstalledBrowsers.Value)
	}
}

func TestWriteReportNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)

	p1, err := WriteReport(dir, first, sampleReport())
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if _, err := WriteReport(dir, first, sampleReport()); err == nil {
		t.Error("Expected error when the report file already exists")
	}
	if _, err := os.Stat(p1); err != nil {
		t.Errorf("Existing report must survive a failed write: %v", err)
	}

	p2, err := WriteReport(dir, first.Add(time.Second), sampleReport())
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if p1 == p2 {
		t.Error("Runs in different seconds must produce different files")
	}
}

func TestWriteReportPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions only")
	}
	path, err := WriteReport(t.TempDir(), time.Now(), sampleReport())
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("Report should not be readable by others, got %v", perm)
	}
}

func TestWriteReportMissingDir(t *testing.T) {
	if _, err := WriteReport(filepath.Join(t.TempDir(), "nope"), time.Now(), sampleReport()); err == nil {
		t.Error("Expected error for a missing output directory")
	}
}
