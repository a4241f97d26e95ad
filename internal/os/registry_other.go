//go:build !windows

//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import "errors"

var errNoLiveRegistry = errors.New("live registry is only available on windows")

func liveRegistryKeyExists(string) (bool, error) {
	return false, errNoLiveRegistry
}
