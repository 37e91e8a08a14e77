// Package storage reports mounted filesystems and their capacity.
package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var Metadata = model.CollectorMetadata{
	ID:          "storage",
	Title:       "Storage",
	Description: "Mounted filesystems with space and inode usage",
}

var pseudoPrefixes = []string{"/proc", "/sys", "/dev", "/run"}

var pseudoFSTypes = map[string]struct{}{
	"proc": {}, "sysfs": {}, "devtmpfs": {}, "devpts": {}, "tmpfs": {}, "cgroup": {},
	"cgroup2": {}, "securityfs": {}, "pstore": {}, "bpf": {}, "tracefs": {},
	"debugfs": {}, "configfs": {}, "fusectl": {}, "mqueue": {}, "hugetlbfs": {},
	"autofs": {}, "binfmt_misc": {}, "nsfs": {}, "rpc_pipefs": {}, "overlay": {},
	"squashfs": {}, "ramfs": {}, "efivarfs": {},
}

// DefaultTimeout bounds a single statfs call.
const DefaultTimeout = 2 * time.Second

type Collector struct {
	timeout    time.Duration
	logger     *zap.Logger
	partitions func(ctx context.Context) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
}

func New(timeout time.Duration, logger *zap.Logger) *Collector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		timeout: timeout,
		logger:  logger,
		partitions: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, false)
		},
		usage: disk.UsageWithContext,
	}
}

func Factory(timeout time.Duration, logger *zap.Logger) collector.Factory {
	return func() collector.Collector { return New(timeout, logger) }
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(ctx context.Context, _ model.CollectionContext) (model.Section, error) {
	parts, err := c.partitions(ctx)
	if err != nil {
		return model.Section{}, fmt.Errorf("list partitions: %w", err)
	}

	snap := model.StorageSnapshot{OperatingMounts: []model.Mount{}}
	notes := []string{}
	seen := make(map[string]struct{})
	healthy := 0

	for _, p := range parts {
		if skipPartition(p) {
			continue
		}
		if _, dup := seen[p.Mountpoint]; dup {
			continue
		}
		seen[p.Mountpoint] = struct{}{}

		m := model.Mount{
			MountPoint: p.Mountpoint,
			Device:     p.Device,
			FSType:     p.Fstype,
			ReadOnly:   slices.Contains(p.Opts, "ro"),
		}
		u, err := c.boundedUsage(ctx, p.Mountpoint)
		if err != nil {
			notes = append(notes, fmt.Sprintf("Failed to read usage for %s: %v", p.Mountpoint, err))
			snap.OperatingMounts = append(snap.OperatingMounts, m)
			continue
		}
		fillUsage(&m, u)
		healthy++

		snap.Totals.TotalBytes += u.Total
		snap.Totals.UsedBytes += u.Used
		snap.Totals.AvailableBytes += u.Free
		snap.OperatingMounts = append(snap.OperatingMounts, m)
	}

	if healthy == 0 {
		return model.DegradedSection(Metadata, "No readable filesystems", snap).
			WithNotes(notes...), nil
	}

	summary := fmt.Sprintf("%d filesystems, %s used of %s", healthy,
		humanBytes(snap.Totals.UsedBytes), humanBytes(snap.Totals.TotalBytes))
	return model.SuccessSection(Metadata, snap).WithSummary(summary).WithNotes(notes...), nil
}

// boundedUsage runs statfs on its own goroutine. gopsutil ignores the
// context, and statfs on a dead network mount can block indefinitely; the
// goroutine is abandoned in that case.
func (c *Collector) boundedUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		usage *disk.UsageStat
		err   error
	}
	done := make(chan result, 1)
	go func() {
		u, err := c.usage(ctx, path)
		done <- result{u, err}
	}()

	select {
	case r := <-done:
		return r.usage, r.err
	case <-ctx.Done():
		if c.logger != nil {
			c.logger.Warn("statfs timed out", zap.String("mount", path), zap.Duration("timeout", timeout))
		}
		return nil, fmt.Errorf("timed out after %s", timeout)
	}
}

func skipPartition(p disk.PartitionStat) bool {
	if _, ok := pseudoFSTypes[p.Fstype]; ok {
		return true
	}
	for _, prefix := range pseudoPrefixes {
		if p.Mountpoint == prefix || strings.HasPrefix(p.Mountpoint, prefix+"/") {
			return true
		}
	}
	return false
}

func fillUsage(m *model.Mount, u *disk.UsageStat) {
	m.Operational = true
	total, used, free := u.Total, u.Used, u.Free
	m.TotalBytes = &total
	m.UsedBytes = &used
	m.AvailableBytes = &free
	if total > 0 {
		ratio := float64(used) / float64(total)
		m.UsageRatio = &ratio
	}
	if u.InodesTotal > 0 {
		itotal, iused := u.InodesTotal, u.InodesUsed
		iratio := float64(iused) / float64(itotal)
		m.InodesTotal = &itotal
		m.InodesUsed = &iused
		m.InodesUsageRatio = &iratio
	}
}

func humanBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
