// Package models defines the report structure produced by a single sysreport run
package models

// NotAvailable is the sentinel used for values a probe could not determine
const NotAvailable = "N/A"

// Section names in the order the collector fills them
const (
	SectionTimestamp         = "timestamp"
	SectionSystem            = "system"
	SectionNetwork           = "network"
	SectionHardware          = "hardware"
	SectionGeolocation       = "geolocation"
	SectionSoftware          = "software"
	SectionInstalledBrowsers = "installed_browsers"
	SectionBrowsers          = "browsers"
)

// SectionNames lists every top-level report key in collection order
var SectionNames = []string{
	SectionTimestamp,
	SectionSystem,
	SectionNetwork,
	SectionHardware,
	SectionGeolocation,
	SectionSoftware,
	SectionInstalledBrowsers,
	SectionBrowsers,
}

// Report is the aggregate record of one collection run. Every section is always
// serialized; a failed section carries {"error": "..."} instead of its payload.
type Report struct {
	Timestamp         Result[TimestampInfo]                       `json:"timestamp"`
	System            Result[SystemInfo]                          `json:"system"`
	Network           Result[NetworkInfo]                         `json:"network"`
	Hardware          Result[HardwareInfo]                        `json:"hardware"`
	Geolocation       Result[GeoInfo]                             `json:"geolocation"`
	Software          Result[SoftwareInfo]                        `json:"software"`
	InstalledBrowsers Result[[]string]                            `json:"installed_browsers"`
	Browsers          Result[map[string]Result[BrowserFootprint]] `json:"browsers"`
}

// SectionErrors returns the failed sections keyed by name
func (r Report) SectionErrors() map[string]string {
	errs := make(map[string]string)
	add := func(name string, failed bool, msg string) {
		if failed {
			errs[name] = msg
		}
	}
	add(SectionTimestamp, r.Timestamp.Failed(), r.Timestamp.Err)
	add(SectionSystem, r.System.Failed(), r.System.Err)
	add(SectionNetwork, r.Network.Failed(), r.Network.Err)
	add(SectionHardware, r.Hardware.Failed(), r.Hardware.Err)
	add(SectionGeolocation, r.Geolocation.Failed(), r.Geolocation.Err)
	add(SectionSoftware, r.Software.Failed(), r.Software.Err)
	add(SectionInstalledBrowsers, r.InstalledBrowsers.Failed(), r.InstalledBrowsers.Err)
	add(SectionBrowsers, r.Browsers.Failed(), r.Browsers.Err)
	return errs
}

// TimestampInfo records when collection started
type TimestampInfo struct {
	UTC      string `json:"utc"`
	Local    string `json:"local"`
	Timezone string `json:"timezone"`
}

// SystemInfo holds host identity information
type SystemInfo struct {
	Platform     string `json:"platform"`
	Release      string `json:"platform_release"`
	Version      string `json:"platform_version"`
	Architecture string `json:"architecture"`
	Processor    string `json:"processor"`
	Hostname     string `json:"hostname"`
	Username     string `json:"username"`
	MACAddress   string `json:"mac_address"`
}

// NetworkInfo holds addressing information
type NetworkInfo struct {
	ExternalIP string                        `json:"external_ip"`
	LocalIP    string                        `json:"local_ip"`
	Interfaces map[string][]InterfaceAddress `json:"interfaces"`
}

// InterfaceAddress is one address bound to a network interface
type InterfaceAddress struct {
	Family    string  `json:"family"`
	Address   string  `json:"address"`
	Netmask   *string `json:"netmask"`
	Broadcast *string `json:"broadcast"`
}

// HardwareInfo holds hardware-related information
type HardwareInfo struct {
	CPU    CPUInfo    `json:"cpu"`
	Memory MemoryInfo `json:"memory"`
	Disks  []DiskInfo `json:"disks"`
}

// CPUInfo holds CPU information
type CPUInfo struct {
	PhysicalCores int    `json:"physical_cores"`
	TotalCores    int    `json:"total_cores"`
	MaxFrequency  string `json:"max_frequency"`
	UsagePercent  string `json:"usage_percent"`
}

// MemoryInfo holds memory information, sizes rendered with units
type MemoryInfo struct {
	Total      string `json:"total"`
	Available  string `json:"available"`
	Used       string `json:"used"`
	Percentage string `json:"percentage"`
}

// DiskInfo holds disk partition usage
type DiskInfo struct {
	Device     string `json:"device"`
	Mountpoint string `json:"mountpoint"`
	FileSystem string `json:"file_system"`
	TotalSize  string `json:"total_size"`
	Used       string `json:"used"`
	Free       string `json:"free"`
	Percentage string `json:"percentage"`
}

// GeoInfo is the IP geolocation of the host's public address
type GeoInfo struct {
	IP       string `json:"ip"`
	Country  string `json:"country"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Lat      string `json:"lat"`
	Lon      string `json:"lon"`
	Timezone string `json:"timezone"`
	ISP      string `json:"isp"`
}

// SoftwareInfo holds the runtime of this program and a process snapshot
type SoftwareInfo struct {
	Runtime   RuntimeInfo   `json:"runtime"`
	Processes []ProcessInfo `json:"processes"`
}

// RuntimeInfo describes the language runtime the reporter was built with
type RuntimeInfo struct {
	Version        string `json:"version"`
	Implementation string `json:"implementation"`
	Compiler       string `json:"compiler"`
}

// ProcessInfo holds process information
type ProcessInfo struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`
	User string `json:"user"`
}

// BrowserFootprint describes a browser's user-data directory.
// Path and ProfileSize are only set when the directory exists.
type BrowserFootprint struct {
	Installed   bool   `json:"installed"`
	Path        string `json:"path,omitempty"`
	ProfileSize string `json:"profile_size,omitempty"`
}
