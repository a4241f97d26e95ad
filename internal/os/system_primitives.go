// Package os provides operating system specific information collection
//
//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import (
	"context"
	"io/fs"
	"net"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/ilexum-group/sysreport/pkg/models"
)

// Primitives defines the low-level OS operations the probes are built from
type Primitives interface {
	// Host introspection
	HostInfo(ctx context.Context) (*host.InfoStat, error)
	CPUCounts(ctx context.Context, logical bool) (int, error)
	CPUInfo(ctx context.Context) ([]cpu.InfoStat, error)
	CPUPercent(ctx context.Context, interval time.Duration) (float64, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error)
	Processes(ctx context.Context, limit int) ([]models.ProcessInfo, error)

	// Identity and network
	Hostname() (string, error)
	CurrentUser() (string, error)
	NodeID() uint64
	NetInterfaces(ctx context.Context) (gnet.InterfaceStatList, error)
	LookupHost(ctx context.Context, hostname string) ([]string, error)

	// Files and environment
	Getenv(key string) string
	UserHomeDir() (string, error)
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
	LookPath(file string) (string, error)
}

// Default implements Primitives on the live host using gopsutil and the standard library
type Default struct{}

// NewDefault creates a new Default instance
func NewDefault() *Default {
	return &Default{}
}

// HostInfo wraps host.InfoWithContext
func (d *Default) HostInfo(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

// CPUCounts wraps cpu.CountsWithContext
func (d *Default) CPUCounts(ctx context.Context, logical bool) (int, error) {
	return cpu.CountsWithContext(ctx, logical)
}

// CPUInfo wraps cpu.InfoWithContext
func (d *Default) CPUInfo(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

// CPUPercent samples overall CPU usage over interval
func (d *Default) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	values, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	return values[0], nil
}

// VirtualMemory wraps mem.VirtualMemoryWithContext
func (d *Default) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

// Partitions returns physical partitions
func (d *Default) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

// DiskUsage wraps disk.UsageWithContext
func (d *Default) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

// Processes returns up to limit processes. Processes that exit or cannot be
// read mid-scan are skipped.
func (d *Default) Processes(ctx context.Context, limit int) ([]models.ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProcessInfo, 0, limit)
	for _, p := range procs {
		if len(out) >= limit {
			break
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		username, err := p.UsernameWithContext(ctx)
		if err != nil || username == "" {
			username = models.NotAvailable
		}
		out = append(out, models.ProcessInfo{PID: p.Pid, Name: name, User: username})
	}
	return out, nil
}

// Hostname wraps os.Hostname
func (d *Default) Hostname() (string, error) {
	return os.Hostname()
}

// CurrentUser returns the login name of the executing user
func (d *Default) CurrentUser() (string, error) {
	u, err := user.Current()
	if err != nil {
		if name := firstNonEmpty(os.Getenv("USER"), os.Getenv("USERNAME")); name != "" {
			return name, nil
		}
		return "", err
	}
	return u.Username, nil
}

// NodeID returns the 48-bit hardware node identifier as an integer
func (d *Default) NodeID() uint64 {
	var node uint64
	for _, b := range uuid.NodeID() {
		node = node<<8 | uint64(b)
	}
	return node
}

// NetInterfaces wraps net.InterfacesWithContext
func (d *Default) NetInterfaces(ctx context.Context) (gnet.InterfaceStatList, error) {
	return gnet.InterfacesWithContext(ctx)
}

// LookupHost resolves hostname with the default resolver
func (d *Default) LookupHost(ctx context.Context, hostname string) ([]string, error) {
	return net.DefaultResolver.LookupHost(ctx, hostname)
}

// Getenv wraps os.Getenv
func (d *Default) Getenv(key string) string {
	return os.Getenv(key)
}

// UserHomeDir wraps os.UserHomeDir
func (d *Default) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// Stat wraps os.Stat
func (d *Default) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile wraps os.ReadFile
//
//nolint:gosec // G304: Paths come from the fixed capability table
func (d *Default) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WalkDir wraps filepath.WalkDir
func (d *Default) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// LookPath wraps exec.LookPath
func (d *Default) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
