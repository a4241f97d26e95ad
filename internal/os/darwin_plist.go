// Package os provides operating system specific information collection
//
//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import (
	"path/filepath"

	"howett.net/plist"
)

type bundleInfoPlist struct {
	Identifier string `plist:"CFBundleIdentifier"`
}

// BundleDetector finds macOS application bundles in the system and user
// Applications folders and checks their bundle identifier.
type BundleDetector struct {
	prims Primitives
	roots []string
}

// NewBundleDetector creates a detector over /Applications and ~/Applications
func NewBundleDetector(prims Primitives) *BundleDetector {
	roots := []string{"/Applications"}
	if home, err := prims.UserHomeDir(); err == nil && home != "" {
		roots = append(roots, filepath.Join(home, "Applications"))
	}
	return &BundleDetector{prims: prims, roots: roots}
}

// Installed implements InstalledDetector
func (d *BundleDetector) Installed(p Product) (bool, error) {
	if p.Bundle.App == "" {
		return false, nil
	}
	for _, root := range d.roots {
		info := parseBundleInfo(d.prims, filepath.Join(root, p.Bundle.App, "Contents", "Info.plist"))
		if info != nil && info.Identifier == p.Bundle.ID {
			return true, nil
		}
	}
	return false, nil
}

func parseBundleInfo(prims Primitives, plistPath string) *bundleInfoPlist {
	data, err := prims.ReadFile(plistPath)
	if err != nil || len(data) == 0 {
		return nil
	}

	var parsed bundleInfoPlist
	if _, err := plist.Unmarshal(data, &parsed); err != nil {
		return nil
	}
	return &parsed
}
