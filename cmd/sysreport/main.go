// Package main implements the sysreport agent that collects host information,
// writes it to a JSON report and emails it to the configured recipients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ilexum-group/sysreport/internal/cleanup"
	"github.com/ilexum-group/sysreport/internal/collector"
	"github.com/ilexum-group/sysreport/internal/config"
	"github.com/ilexum-group/sysreport/internal/lookup"
	osinfo "github.com/ilexum-group/sysreport/internal/os"
	"github.com/ilexum-group/sysreport/internal/output"
	"github.com/ilexum-group/sysreport/internal/sender"
	"github.com/ilexum-group/sysreport/internal/utils"
	"github.com/ilexum-group/sysreport/pkg/models"
)

var version = "dev"

// deliver emails the report; replaced in tests
var deliver = func(ctx context.Context, cfg *config.Config, summary sender.Summary, reportPath string) bool {
	return sender.NewTransmitter(cfg, nil).Deliver(ctx, summary, reportPath)
}

func main() {
	// Initialize the RFC 5424 compliant logger
	if err := utils.InitDefaultLogger(); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	cfg, err := config.LoadFromFlags(os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			utils.LogError("Failed to load configuration", map[string]string{"error": err.Error()})
		}
		return
	}
	if cfg.ShowVersion {
		fmt.Println(utils.AppName, version)
		return
	}
	utils.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run(ctx, cfg)
}

// run executes one collection pass. Cleanup runs on every exit path,
// including a panic anywhere in the pipeline.
func run(ctx context.Context, cfg *config.Config) {
	var reportPath string
	delivered := false

	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Run aborted", map[string]string{"error": fmt.Sprint(r)})
		}
		cleanup.Run(reportPath, cleanup.ShouldKeep(cfg.KeepReport, cfg.KeepUndelivered, delivered))
	}()

	runID := utils.GenerateRandomID()
	utils.LogInfo("Starting sysreport agent", map[string]string{"version": version, "run_id": runID})

	prims := osinfo.NewLoggingPrimitives(osinfo.NewDefault())
	caps := osinfo.NewCapabilities(osinfo.DetectOS(), prims, osinfo.CapabilityOptions{
		RegistryHive: cfg.RegistryHive,
	})
	if hive, ok := caps.Detector.(*osinfo.OfflineRegistryDetector); ok {
		defer hive.Close()
	}

	opts := lookup.Options{
		IPEchoURL:     cfg.IPEchoURL,
		GeoURL:        cfg.GeoURL,
		IPEchoTimeout: cfg.IPEchoTimeout,
		GeoTimeout:    cfg.GeoTimeout,
	}
	if cfg.GeoIPDir != "" {
		geo, err := lookup.OpenGeoIP(cfg.GeoIPDir)
		if err != nil {
			utils.LogWarn("Offline geolocation unavailable", map[string]string{"error": err.Error()})
		} else {
			defer func() { _ = geo.Close() }()
			opts.Fallback = geo
		}
	}

	started := time.Now()
	report := collector.New(prims, caps, lookup.NewClient(opts)).Collect(ctx)

	failed := report.SectionErrors()
	meta := map[string]string{
		"sections": strconv.Itoa(len(models.SectionNames)),
		"failed":   strconv.Itoa(len(failed)),
	}
	if len(failed) > 0 {
		meta["failed_sections"] = strings.Join(slices.Sorted(maps.Keys(failed)), ",")
	}
	utils.LogInfo("Data collection completed", meta)

	path, err := output.WriteReport(cfg.OutputDir, started, report)
	if err != nil {
		utils.LogError("Failed to write report", map[string]string{"error": err.Error()})
		return
	}
	reportPath = path
	utils.LogInfo("Report written", map[string]string{"path": reportPath})

	summary := sender.NewSummary(runID, started, report)
	delivered = deliver(ctx, cfg, summary, reportPath)
	sender.NewNotifier(cfg.NotifyURL, nil).Notify(summary, delivered)
}
