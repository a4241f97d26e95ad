// Package collector provides the probes that gather system, network, hardware,
// geolocation, software and browser information into a report.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"runtime"
	"slices"
	"strings"
	"time"

	osinfo "github.com/ilexum-group/sysreport/internal/os"
	"github.com/ilexum-group/sysreport/internal/utils"
	"github.com/ilexum-group/sysreport/pkg/models"
)

// ExternalIPPlaceholder is reported when the public address cannot be determined
const ExternalIPPlaceholder = "unavailable"

// MaxProcesses bounds the process snapshot
const MaxProcesses = 10

const (
	gibibyte           = 1024 * 1024 * 1024
	defaultCPUInterval = 500 * time.Millisecond
	isoLayout          = "2006-01-02T15:04:05.000000"
)

// Lookup is the network lookup surface the probes depend on
type Lookup interface {
	ExternalIP(ctx context.Context) (string, error)
	Geolocate(ctx context.Context) (models.GeoInfo, error)
}

// Collector runs the probes against one set of primitives
type Collector struct {
	prims       osinfo.Primitives
	caps        osinfo.Capabilities
	lookup      Lookup
	cpuInterval time.Duration
	now         func() time.Time
}

// New creates a Collector
func New(prims osinfo.Primitives, caps osinfo.Capabilities, lookup Lookup) *Collector {
	return &Collector{
		prims:       prims,
		caps:        caps,
		lookup:      lookup,
		cpuInterval: defaultCPUInterval,
		now:         time.Now,
	}
}

// SetCPUInterval changes the sampling window of the CPU usage measurement
func (c *Collector) SetCPUInterval(d time.Duration) {
	c.cpuInterval = d
}

// Collect runs every probe in report order. Each probe is isolated: an error
// or panic only marks its own section as failed.
func (c *Collector) Collect(ctx context.Context) models.Report {
	var r models.Report

	r.Timestamp = runProbe(models.SectionTimestamp, func() (models.TimestampInfo, error) {
		return c.CollectTimestamp(), nil
	})
	r.System = runProbe(models.SectionSystem, func() (models.SystemInfo, error) {
		return c.CollectSystem(ctx)
	})
	r.Network = runProbe(models.SectionNetwork, func() (models.NetworkInfo, error) {
		return c.CollectNetwork(ctx)
	})
	r.Hardware = runProbe(models.SectionHardware, func() (models.HardwareInfo, error) {
		return c.CollectHardware(ctx)
	})
	r.Geolocation = runProbe(models.SectionGeolocation, func() (models.GeoInfo, error) {
		return c.CollectGeolocation(ctx)
	})
	r.Software = runProbe(models.SectionSoftware, func() (models.SoftwareInfo, error) {
		return c.CollectSoftware(ctx)
	})
	r.InstalledBrowsers = runProbe(models.SectionInstalledBrowsers, c.CollectInstalledBrowsers)
	r.Browsers = runProbe(models.SectionBrowsers, func() (map[string]models.Result[models.BrowserFootprint], error) {
		return c.CollectBrowsers(), nil
	})

	return r
}

// runProbe converts the outcome of fn, including a panic, into a section result
func runProbe[T any](section string, fn func() (T, error)) (res models.Result[T]) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			msg := fmt.Sprintf("panic: %v", rec)
			utils.LogError("Probe panicked", map[string]string{"section": section, "error": msg})
			res = models.Fail[T](msg)
		}
	}()

	v, err := fn()
	if err != nil {
		utils.LogWarn("Probe failed", map[string]string{"section": section, "error": err.Error()})
		return models.Fail[T](err.Error())
	}

	utils.LogDebug("Probe completed", map[string]string{
		"section":  section,
		"duration": time.Since(start).String(),
	})
	return models.OK(v)
}

// CollectTimestamp records the collection start time
func (c *Collector) CollectTimestamp() models.TimestampInfo {
	now := c.now()
	zone, _ := now.Zone()
	return models.TimestampInfo{
		UTC:      now.UTC().Format(isoLayout),
		Local:    now.Format(isoLayout),
		Timezone: zone,
	}
}

// CollectSystem collects host identity information
func (c *Collector) CollectSystem(ctx context.Context) (models.SystemInfo, error) {
	hi, err := c.prims.HostInfo(ctx)
	if err != nil {
		return models.SystemInfo{}, fmt.Errorf("failed to read host info: %w", err)
	}
	hostname, err := c.prims.Hostname()
	if err != nil {
		return models.SystemInfo{}, fmt.Errorf("failed to read hostname: %w", err)
	}
	username, err := c.prims.CurrentUser()
	if err != nil {
		return models.SystemInfo{}, fmt.Errorf("failed to read current user: %w", err)
	}

	arch := hi.KernelArch
	if arch == "" {
		arch = runtime.GOARCH
	}
	processor := arch
	if infos, err := c.prims.CPUInfo(ctx); err == nil && len(infos) > 0 && infos[0].ModelName != "" {
		processor = infos[0].ModelName
	}

	return models.SystemInfo{
		Platform:     titleCase(hi.OS),
		Release:      hi.KernelVersion,
		Version:      strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion),
		Architecture: arch,
		Processor:    processor,
		Hostname:     hostname,
		Username:     username,
		MACAddress:   FormatMAC(c.prims.NodeID()),
	}, nil
}

// FormatMAC renders a 48-bit node identifier as six colon-separated octets,
// most significant first.
func FormatMAC(node uint64) string {
	octets := make([]string, 0, 6)
	for shift := 0; shift < 48; shift += 8 {
		octets = append(octets, fmt.Sprintf("%02x", (node>>shift)&0xff))
	}
	slices.Reverse(octets)
	return strings.Join(octets, ":")
}

// CollectNetwork collects addressing information. A failed external IP
// lookup is reported with a placeholder instead of failing the section.
func (c *Collector) CollectNetwork(ctx context.Context) (models.NetworkInfo, error) {
	externalIP, err := c.lookup.ExternalIP(ctx)
	if err != nil {
		utils.LogWarn("External IP lookup failed", map[string]string{"error": err.Error()})
		externalIP = ExternalIPPlaceholder
	}

	localIP, err := c.localIP(ctx)
	if err != nil {
		return models.NetworkInfo{}, err
	}

	ifaces, err := c.prims.NetInterfaces(ctx)
	if err != nil {
		return models.NetworkInfo{}, fmt.Errorf("failed to list interfaces: %w", err)
	}

	interfaces := make(map[string][]models.InterfaceAddress, len(ifaces))
	for _, iface := range ifaces {
		addrs := make([]models.InterfaceAddress, 0, len(iface.Addrs)+1)
		broadcastCapable := slices.Contains(iface.Flags, "broadcast")

		if iface.HardwareAddr != "" {
			link := models.InterfaceAddress{Family: linkFamily(c.caps.OS), Address: iface.HardwareAddr}
			if broadcastCapable && c.caps.OS == "linux" {
				link.Broadcast = strPtr("ff:ff:ff:ff:ff:ff")
			}
			addrs = append(addrs, link)
		}
		for _, a := range iface.Addrs {
			addrs = append(addrs, interfaceAddress(a.Addr, broadcastCapable))
		}
		interfaces[iface.Name] = addrs
	}

	return models.NetworkInfo{
		ExternalIP: externalIP,
		LocalIP:    localIP,
		Interfaces: interfaces,
	}, nil
}

func (c *Collector) localIP(ctx context.Context) (string, error) {
	hostname, err := c.prims.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to read hostname: %w", err)
	}
	addrs, err := c.prims.LookupHost(ctx, hostname)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", hostname, err)
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a, nil
		}
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no addresses for %s", hostname)
	}
	return addrs[0], nil
}

// interfaceAddress converts a CIDR string into a report address entry
func interfaceAddress(cidr string, broadcastCapable bool) models.InterfaceAddress {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		addr := models.InterfaceAddress{Family: "AF_INET", Address: cidr}
		if parsed := net.ParseIP(cidr); parsed != nil && parsed.To4() == nil {
			addr.Family = "AF_INET6"
		}
		return addr
	}

	addr := models.InterfaceAddress{Address: ip.String(), Netmask: strPtr(net.IP(ipnet.Mask).String())}
	if v4 := ip.To4(); v4 != nil {
		addr.Family = "AF_INET"
		if broadcastCapable && len(ipnet.Mask) == net.IPv4len {
			bcast := make(net.IP, net.IPv4len)
			for i := range v4 {
				bcast[i] = v4[i] | ^ipnet.Mask[i]
			}
			addr.Broadcast = strPtr(bcast.String())
		}
		return addr
	}
	addr.Family = "AF_INET6"
	return addr
}

func linkFamily(goos string) string {
	if goos == "linux" {
		return "AF_PACKET"
	}
	return "AF_LINK"
}

// CollectHardware collects CPU, memory and disk information. Partitions whose
// usage cannot be read are left out.
func (c *Collector) CollectHardware(ctx context.Context) (models.HardwareInfo, error) {
	physical, err := c.prims.CPUCounts(ctx, false)
	if err != nil {
		return models.HardwareInfo{}, fmt.Errorf("failed to count physical cores: %w", err)
	}
	logical, err := c.prims.CPUCounts(ctx, true)
	if err != nil {
		return models.HardwareInfo{}, fmt.Errorf("failed to count logical cores: %w", err)
	}

	cpuInfo := models.CPUInfo{
		PhysicalCores: physical,
		TotalCores:    logical,
		MaxFrequency:  models.NotAvailable,
		UsagePercent:  models.NotAvailable,
	}
	if infos, err := c.prims.CPUInfo(ctx); err == nil && len(infos) > 0 && infos[0].Mhz > 0 {
		cpuInfo.MaxFrequency = fmt.Sprintf("%.2f MHz", infos[0].Mhz)
	}
	if pct, err := c.prims.CPUPercent(ctx, c.cpuInterval); err == nil {
		cpuInfo.UsagePercent = formatPercent(pct)
	}

	vm, err := c.prims.VirtualMemory(ctx)
	if err != nil {
		return models.HardwareInfo{}, fmt.Errorf("failed to read memory: %w", err)
	}
	memInfo := models.MemoryInfo{
		Total:      formatGB(vm.Total),
		Available:  formatGB(vm.Available),
		Used:       formatGB(vm.Used),
		Percentage: formatPercent(vm.UsedPercent),
	}

	parts, err := c.prims.Partitions(ctx)
	if err != nil {
		return models.HardwareInfo{}, fmt.Errorf("failed to list partitions: %w", err)
	}
	disks := make([]models.DiskInfo, 0, len(parts))
	for _, p := range parts {
		usage, err := c.prims.DiskUsage(ctx, p.Mountpoint)
		if err != nil {
			utils.LogDebug("Skipping partition", map[string]string{"mountpoint": p.Mountpoint, "error": err.Error()})
			continue
		}
		disks = append(disks, models.DiskInfo{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			FileSystem: p.Fstype,
			TotalSize:  formatGB(usage.Total),
			Used:       formatGB(usage.Used),
			Free:       formatGB(usage.Free),
			Percentage: formatPercent(usage.UsedPercent),
		})
	}

	return models.HardwareInfo{CPU: cpuInfo, Memory: memInfo, Disks: disks}, nil
}

// CollectGeolocation looks up the location of the host's public address
func (c *Collector) CollectGeolocation(ctx context.Context) (models.GeoInfo, error) {
	return c.lookup.Geolocate(ctx)
}

// CollectSoftware reports the runtime of this program and a bounded process snapshot
func (c *Collector) CollectSoftware(ctx context.Context) (models.SoftwareInfo, error) {
	procs, err := c.prims.Processes(ctx, MaxProcesses)
	if err != nil {
		return models.SoftwareInfo{}, fmt.Errorf("failed to list processes: %w", err)
	}
	if len(procs) > MaxProcesses {
		procs = procs[:MaxProcesses]
	}

	return models.SoftwareInfo{
		Runtime: models.RuntimeInfo{
			Version:        strings.TrimPrefix(runtime.Version(), "go"),
			Implementation: "go",
			Compiler:       runtime.Compiler,
		},
		Processes: procs,
	}, nil
}

// CollectInstalledBrowsers returns the display names of the detected browsers.
// A detector error for one product counts as not installed; the section only
// fails when every product check errored.
func (c *Collector) CollectInstalledBrowsers() ([]string, error) {
	installed := []string{}
	var errs []error

	for _, p := range osinfo.Products {
		ok, err := c.caps.Detector.Installed(p)
		if err != nil {
			utils.LogWarn("Browser detection failed", map[string]string{"browser": p.Key, "error": err.Error()})
			errs = append(errs, fmt.Errorf("%s: %w", p.Key, err))
			continue
		}
		if ok {
			installed = append(installed, p.Name)
		}
	}

	if len(errs) == len(osinfo.Products) {
		return nil, errors.Join(errs...)
	}
	return installed, nil
}

// CollectBrowsers measures the user-data directory of each footprint browser.
// Each browser is isolated so one failure only marks its own entry.
func (c *Collector) CollectBrowsers() map[string]models.Result[models.BrowserFootprint] {
	out := make(map[string]models.Result[models.BrowserFootprint], len(osinfo.FootprintBrowsers))
	for _, b := range osinfo.FootprintBrowsers {
		out[b] = runProbe(models.SectionBrowsers+"."+b, func() (models.BrowserFootprint, error) {
			return c.footprint(b)
		})
	}
	return out
}

func (c *Collector) footprint(browser string) (models.BrowserFootprint, error) {
	dir := c.caps.ProfileDir(browser)
	if dir == "" {
		return models.BrowserFootprint{Installed: false}, nil
	}

	if _, err := c.prims.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.BrowserFootprint{Installed: false}, nil
		}
		return models.BrowserFootprint{}, fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	size := models.NotAvailable
	if bytes, err := osinfo.FolderSize(c.prims, dir); err == nil {
		size = osinfo.FormatMB(bytes)
	} else {
		utils.LogDebug("Profile size unavailable", map[string]string{"path": dir, "error": err.Error()})
	}

	return models.BrowserFootprint{Installed: true, Path: dir, ProfileSize: size}, nil
}

func formatGB(bytes uint64) string {
	return fmt.Sprintf("%.2f GB", float64(bytes)/gibibyte)
}

func formatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func strPtr(s string) *string {
	return &s
}
