// Package utils provides logging and identifier helpers for sysreport
//
//nolint:revive // Package name 'utils' is intentional and commonly used in Go projects
package utils

import (
	"github.com/google/uuid"
)

// GenerateRandomID creates a random UUID v4 string, used as the run id
func GenerateRandomID() string {
	return uuid.New().String()
}
