// Package os provides operating system specific information collection
//
//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import (
	"errors"
)

// InstalledDetector decides whether a browser product is installed
type InstalledDetector interface {
	Installed(p Product) (bool, error)
}

// PathDetector reports a product installed when any of its executables resolves on PATH
type PathDetector struct {
	prims Primitives
}

// NewPathDetector creates a PATH based detector
func NewPathDetector(prims Primitives) *PathDetector {
	return &PathDetector{prims: prims}
}

// Installed implements InstalledDetector
func (d *PathDetector) Installed(p Product) (bool, error) {
	for _, exe := range p.Executables {
		if _, err := d.prims.LookPath(exe); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// AnyDetector reports installed when any member does. Member errors are
// only returned when no member found the product.
type AnyDetector []InstalledDetector

// Installed implements InstalledDetector
func (a AnyDetector) Installed(p Product) (bool, error) {
	var errs []error
	for _, d := range a {
		ok, err := d.Installed(p)
		if ok {
			return true, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return false, errors.Join(errs...)
}
