//go:build windows

//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

func liveRegistryKeyExists(path string) (bool, error) {
	var lastErr error
	for _, root := range []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER} {
		k, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
		if err == nil {
			_ = k.Close()
			return true, nil
		}
		if !errors.Is(err, registry.ErrNotExist) {
			lastErr = err
		}
	}
	return false, lastErr
}
