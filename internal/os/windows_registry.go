// Package os provides operating system specific information collection
//
//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/osv-scalibr/common/windows/registry"
)

// LiveRegistryDetector checks product keys in the running system's registry,
// under HKLM first and HKCU second.
type LiveRegistryDetector struct{}

// NewLiveRegistryDetector creates a live registry detector
func NewLiveRegistryDetector() *LiveRegistryDetector {
	return &LiveRegistryDetector{}
}

// Installed implements InstalledDetector. Products without registry keys
// are reported as not installed.
func (d *LiveRegistryDetector) Installed(p Product) (bool, error) {
	for _, key := range p.RegistryKeys {
		ok, err := liveRegistryKeyExists(key)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// openOfflineHive opens a SOFTWARE hive file in place. The hive is only read.
func openOfflineHive(prims Primitives, hivePath string) (registry.Registry, error) {
	info, err := prims.Stat(hivePath)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", hivePath)
	}
	return registry.NewOfflineOpener(hivePath).Open()
}

// OfflineRegistryDetector checks product keys in a SOFTWARE hive file. The
// hive root is HKLM\SOFTWARE, so the SOFTWARE\ prefix of a key is dropped.
type OfflineRegistryDetector struct {
	prims    Primitives
	hivePath string

	once    sync.Once
	hive    registry.Registry
	openErr error
}

// NewOfflineRegistryDetector creates a detector reading hivePath on first use
func NewOfflineRegistryDetector(prims Primitives, hivePath string) *OfflineRegistryDetector {
	return &OfflineRegistryDetector{prims: prims, hivePath: hivePath}
}

// Installed implements InstalledDetector
func (d *OfflineRegistryDetector) Installed(p Product) (bool, error) {
	if len(p.RegistryKeys) == 0 {
		return false, nil
	}

	d.once.Do(func() {
		d.hive, d.openErr = openOfflineHive(d.prims, d.hivePath)
	})
	if d.openErr != nil {
		return false, fmt.Errorf("failed to open registry hive: %w", d.openErr)
	}

	for _, key := range p.RegistryKeys {
		if k, err := d.hive.OpenKey("", hiveRelative(key)); err == nil {
			_ = k.Close()
			return true, nil
		}
	}
	return false, nil
}

// Close releases the hive
func (d *OfflineRegistryDetector) Close() {
	if d.hive != nil {
		_ = d.hive.Close()
	}
}

func hiveRelative(key string) string {
	if len(key) > len(`SOFTWARE\`) && strings.EqualFold(key[:len(`SOFTWARE\`)], `SOFTWARE\`) {
		return key[len(`SOFTWARE\`):]
	}
	return key
}
