// Package os provides operating system specific information collection
//
//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import (
	"path/filepath"
	"runtime"
)

// DetectOS returns the current operating system
func DetectOS() string {
	return runtime.GOOS
}

// Footprint browsers, the ones whose user-data directory is measured
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserEdge    = "edge"
)

// FootprintBrowsers lists the browsers measured by the footprint probe
var FootprintBrowsers = []string{BrowserChrome, BrowserFirefox, BrowserEdge}

// Bundle identifies a macOS application bundle
type Bundle struct {
	App string
	ID  string
}

// Product is a browser the installed-browser probe looks for
type Product struct {
	Key          string
	Name         string
	Executables  []string
	RegistryKeys []string
	Bundle       Bundle
}

// Products is the fixed candidate list, in report order
var Products = []Product{
	{
		Key: "chrome", Name: "Google Chrome",
		Executables:  []string{"google-chrome", "google-chrome-stable", "chrome"},
		RegistryKeys: []string{`SOFTWARE\Google\Chrome`},
		Bundle:       Bundle{App: "Google Chrome.app", ID: "com.google.Chrome"},
	},
	{
		Key: "firefox", Name: "Firefox",
		Executables:  []string{"firefox"},
		RegistryKeys: []string{`SOFTWARE\Mozilla\Mozilla Firefox`},
		Bundle:       Bundle{App: "Firefox.app", ID: "org.mozilla.firefox"},
	},
	{
		Key: "edge", Name: "Microsoft Edge",
		Executables:  []string{"microsoft-edge", "microsoft-edge-stable"},
		RegistryKeys: []string{`SOFTWARE\Microsoft\Edge`},
		Bundle:       Bundle{App: "Microsoft Edge.app", ID: "com.microsoft.edgemac"},
	},
	{
		Key: "opera", Name: "Opera",
		Executables: []string{"opera"},
		Bundle:      Bundle{App: "Opera.app", ID: "com.operasoftware.Opera"},
	},
	{
		Key: "safari", Name: "Safari",
		Executables: []string{"safari"},
		Bundle:      Bundle{App: "Safari.app", ID: "com.apple.Safari"},
	},
	{
		Key: "brave", Name: "Brave",
		Executables:  []string{"brave-browser", "brave"},
		RegistryKeys: []string{`SOFTWARE\BraveSoftware\Brave-Browser`},
		Bundle:       Bundle{App: "Brave Browser.app", ID: "com.brave.Browser"},
	},
}

// CapabilityOptions tunes capability selection
type CapabilityOptions struct {
	// RegistryHive points at an offline SOFTWARE hive. When set, browser
	// detection reads it instead of the live registry, on any OS.
	RegistryHive string
}

// Capabilities bundles the platform-specific strategies, selected once at startup
type Capabilities struct {
	OS       string
	Detector InstalledDetector

	prims Primitives
}

// NewCapabilities selects the strategies for goos
func NewCapabilities(goos string, prims Primitives, opts CapabilityOptions) Capabilities {
	caps := Capabilities{OS: goos, prims: prims}

	switch {
	case opts.RegistryHive != "":
		caps.Detector = NewOfflineRegistryDetector(prims, opts.RegistryHive)
	case goos == "windows":
		caps.Detector = NewLiveRegistryDetector()
	case goos == "darwin":
		caps.Detector = AnyDetector{NewPathDetector(prims), NewBundleDetector(prims)}
	default:
		caps.Detector = NewPathDetector(prims)
	}

	return caps
}

// ProfileDir returns the user-data directory of browser, or "" when the
// platform has no known location for it.
func (c Capabilities) ProfileDir(browser string) string {
	home, _ := c.prims.UserHomeDir()

	switch c.OS {
	case "windows":
		local := c.prims.Getenv("LOCALAPPDATA")
		if local == "" && home != "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		roaming := c.prims.Getenv("APPDATA")
		if roaming == "" && home != "" {
			roaming = filepath.Join(home, "AppData", "Roaming")
		}
		switch browser {
		case BrowserChrome:
			return joinIfBase(local, "Google", "Chrome", "User Data")
		case BrowserFirefox:
			return joinIfBase(roaming, "Mozilla", "Firefox", "Profiles")
		case BrowserEdge:
			return joinIfBase(local, "Microsoft", "Edge", "User Data")
		}
	case "darwin":
		switch browser {
		case BrowserChrome:
			return joinIfBase(home, "Library", "Application Support", "Google", "Chrome")
		case BrowserFirefox:
			return joinIfBase(home, "Library", "Application Support", "Firefox")
		case BrowserEdge:
			return joinIfBase(home, "Library", "Application Support", "Microsoft Edge")
		}
	case "linux":
		switch browser {
		case BrowserChrome:
			return joinIfBase(home, ".config", "google-chrome")
		case BrowserFirefox:
			return joinIfBase(home, ".mozilla", "firefox")
		case BrowserEdge:
			return joinIfBase(home, ".config", "microsoft-edge")
		}
	}
	return ""
}

func joinIfBase(base string, elem ...string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(append([]string{base}, elem...)...)
}
