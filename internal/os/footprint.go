// Package os provides operating system specific information collection
//
//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import (
	"fmt"
	"io/fs"
)

const mebibyte = 1024 * 1024

// FolderSize sums the sizes of regular files below root. Entries that cannot
// be read are ignored; only a failure on root itself is returned.
func FolderSize(prims Primitives, root string) (int64, error) {
	var total int64
	err := prims.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && d == nil {
				return err
			}
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// FormatMB renders a byte count in mebibytes with two decimals
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/mebibyte)
}
