// Package os provides operating system specific information collection
//
//nolint:revive // Package name 'os' is intentional, in separate namespace 'internal/os'
package os

import (
	"context"
	"io/fs"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gnet "github.com/shirou/gopsutil/v4/net"

	"github.com/ilexum-group/sysreport/internal/utils"
	"github.com/ilexum-group/sysreport/pkg/models"
)

// LoggingPrimitives wraps Primitives and logs every call with its duration at debug level
type LoggingPrimitives struct {
	inner Primitives
}

// NewLoggingPrimitives creates a LoggingPrimitives around inner
func NewLoggingPrimitives(inner Primitives) *LoggingPrimitives {
	return &LoggingPrimitives{inner: inner}
}

// logCall runs fn and logs the method name, arguments, duration and outcome
func (lp *LoggingPrimitives) logCall(method string, arg string, fn func() error) {
	start := time.Now()
	err := fn()

	meta := map[string]string{
		"method":      method,
		"duration_ms": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
	}
	if arg != "" {
		meta["arg"] = arg
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	utils.LogDebug("primitive call", meta)
}

// HostInfo implements Primitives
func (lp *LoggingPrimitives) HostInfo(ctx context.Context) (info *host.InfoStat, err error) {
	lp.logCall("HostInfo", "", func() error {
		info, err = lp.inner.HostInfo(ctx)
		return err
	})
	return info, err
}

// CPUCounts implements Primitives
func (lp *LoggingPrimitives) CPUCounts(ctx context.Context, logical bool) (n int, err error) {
	lp.logCall("CPUCounts", strconv.FormatBool(logical), func() error {
		n, err = lp.inner.CPUCounts(ctx, logical)
		return err
	})
	return n, err
}

// CPUInfo implements Primitives
func (lp *LoggingPrimitives) CPUInfo(ctx context.Context) (infos []cpu.InfoStat, err error) {
	lp.logCall("CPUInfo", "", func() error {
		infos, err = lp.inner.CPUInfo(ctx)
		return err
	})
	return infos, err
}

// CPUPercent implements Primitives
func (lp *LoggingPrimitives) CPUPercent(ctx context.Context, interval time.Duration) (pct float64, err error) {
	lp.logCall("CPUPercent", interval.String(), func() error {
		pct, err = lp.inner.CPUPercent(ctx, interval)
		return err
	})
	return pct, err
}

// VirtualMemory implements Primitives
func (lp *LoggingPrimitives) VirtualMemory(ctx context.Context) (vm *mem.VirtualMemoryStat, err error) {
	lp.logCall("VirtualMemory", "", func() error {
		vm, err = lp.inner.VirtualMemory(ctx)
		return err
	})
	return vm, err
}

// Partitions implements Primitives
func (lp *LoggingPrimitives) Partitions(ctx context.Context) (parts []disk.PartitionStat, err error) {
	lp.logCall("Partitions", "", func() error {
		parts, err = lp.inner.Partitions(ctx)
		return err
	})
	return parts, err
}

// DiskUsage implements Primitives
func (lp *LoggingPrimitives) DiskUsage(ctx context.Context, path string) (usage *disk.UsageStat, err error) {
	lp.logCall("DiskUsage", path, func() error {
		usage, err = lp.inner.DiskUsage(ctx, path)
		return err
	})
	return usage, err
}

// Processes implements Primitives
func (lp *LoggingPrimitives) Processes(ctx context.Context, limit int) (procs []models.ProcessInfo, err error) {
	lp.logCall("Processes", strconv.Itoa(limit), func() error {
		procs, err = lp.inner.Processes(ctx, limit)
		return err
	})
	return procs, err
}

// Hostname implements Primitives
func (lp *LoggingPrimitives) Hostname() (name string, err error) {
	lp.logCall("Hostname", "", func() error {
		name, err = lp.inner.Hostname()
		return err
	})
	return name, err
}

// CurrentUser implements Primitives
func (lp *LoggingPrimitives) CurrentUser() (name string, err error) {
	lp.logCall("CurrentUser", "", func() error {
		name, err = lp.inner.CurrentUser()
		return err
	})
	return name, err
}

// NodeID implements Primitives
func (lp *LoggingPrimitives) NodeID() (node uint64) {
	lp.logCall("NodeID", "", func() error {
		node = lp.inner.NodeID()
		return nil
	})
	return node
}

// NetInterfaces implements Primitives
func (lp *LoggingPrimitives) NetInterfaces(ctx context.Context) (list gnet.InterfaceStatList, err error) {
	lp.logCall("NetInterfaces", "", func() error {
		list, err = lp.inner.NetInterfaces(ctx)
		return err
	})
	return list, err
}

// LookupHost implements Primitives
func (lp *LoggingPrimitives) LookupHost(ctx context.Context, hostname string) (addrs []string, err error) {
	lp.logCall("LookupHost", hostname, func() error {
		addrs, err = lp.inner.LookupHost(ctx, hostname)
		return err
	})
	return addrs, err
}

// Getenv implements Primitives. Values are not logged.
func (lp *LoggingPrimitives) Getenv(key string) (value string) {
	lp.logCall("Getenv", key, func() error {
		value = lp.inner.Getenv(key)
		return nil
	})
	return value
}

// UserHomeDir implements Primitives
func (lp *LoggingPrimitives) UserHomeDir() (dir string, err error) {
	lp.logCall("UserHomeDir", "", func() error {
		dir, err = lp.inner.UserHomeDir()
		return err
	})
	return dir, err
}

// Stat implements Primitives
func (lp *LoggingPrimitives) Stat(path string) (info fs.FileInfo, err error) {
	lp.logCall("Stat", path, func() error {
		info, err = lp.inner.Stat(path)
		return err
	})
	return info, err
}

// ReadFile implements Primitives
func (lp *LoggingPrimitives) ReadFile(path string) (data []byte, err error) {
	lp.logCall("ReadFile", path, func() error {
		data, err = lp.inner.ReadFile(path)
		return err
	})
	return data, err
}

// WalkDir implements Primitives. Only the walk as a whole is logged.
func (lp *LoggingPrimitives) WalkDir(root string, fn fs.WalkDirFunc) (err error) {
	lp.logCall("WalkDir", root, func() error {
		err = lp.inner.WalkDir(root, fn)
		return err
	})
	return err
}

// LookPath implements Primitives
func (lp *LoggingPrimitives) LookPath(file string) (path string, err error) {
	lp.logCall("LookPath", file, func() error {
		path, err = lp.inner.LookPath(file)
		return err
	})
	return path, err
}
