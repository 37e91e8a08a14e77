package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

const gib = 1024 * 1024 * 1024

func fakeCollector(parts []disk.PartitionStat, usage map[string]*disk.UsageStat) *Collector {
	return &Collector{
		partitions: func(context.Context) ([]disk.PartitionStat, error) { return parts, nil },
		usage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			u, ok := usage[path]
			if !ok {
				return nil, errors.New("stale file handle")
			}
			return u, nil
		},
	}
}

func TestCollectBuildsOperatingMounts(t *testing.T) {
	c := fakeCollector(
		[]disk.PartitionStat{
			{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4", Opts: []string{"rw", "relatime"}},
			{Device: "proc", Mountpoint: "/proc", Fstype: "proc"},
			{Device: "tmpfs", Mountpoint: "/run/user/1000", Fstype: "tmpfs"},
			{Device: "/dev/sdb1", Mountpoint: "/data", Fstype: "xfs", Opts: []string{"ro"}},
			{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4"},
			{Device: "server:/export", Mountpoint: "/mnt/nfs", Fstype: "nfs4"},
		},
		map[string]*disk.UsageStat{
			"/":     {Total: 100 * gib, Used: 96 * gib, Free: 4 * gib, InodesTotal: 1000, InodesUsed: 250},
			"/data": {Total: 10 * gib, Used: 1 * gib, Free: 9 * gib},
		},
	)

	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, section.Status)
	assert.Equal(t, "2 filesystems, 97.0 GiB used of 110.0 GiB", *section.Summary)
	require.Len(t, section.Notes, 1)
	assert.Contains(t, section.Notes[0], "/mnt/nfs")

	snap, ok := section.Body.(model.StorageSnapshot)
	require.True(t, ok)
	require.Len(t, snap.OperatingMounts, 3)

	root := snap.OperatingMounts[0]
	assert.Equal(t, "/", root.MountPoint)
	assert.True(t, root.Operational)
	assert.False(t, root.ReadOnly)
	assert.InDelta(t, 0.96, *root.UsageRatio, 0.0001)
	assert.InDelta(t, 0.25, *root.InodesUsageRatio, 0.0001)
	assert.Equal(t, uint64(4*gib), *root.AvailableBytes)

	data := snap.OperatingMounts[1]
	assert.True(t, data.ReadOnly)
	assert.Nil(t, data.InodesUsageRatio)

	nfs := snap.OperatingMounts[2]
	assert.False(t, nfs.Operational)
	assert.Nil(t, nfs.UsageRatio)

	assert.Equal(t, uint64(110*gib), snap.Totals.TotalBytes)
}

func TestCollectDegradedWithoutReadableMounts(t *testing.T) {
	c := fakeCollector([]disk.PartitionStat{{Mountpoint: "/mnt/gone", Fstype: "nfs"}}, nil)
	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDegraded, section.Status)
	assert.Equal(t, "No readable filesystems", *section.Summary)
}

func TestCollectPartitionError(t *testing.T) {
	c := &Collector{partitions: func(context.Context) ([]disk.PartitionStat, error) {
		return nil, errors.New("mountinfo unreadable")
	}}
	_, err := c.Collect(context.Background(), model.CollectionContext{})
	assert.ErrorContains(t, err, "mountinfo unreadable")
}

func TestCollectTimesOutHungMount(t *testing.T) {
	hung := make(chan struct{})
	defer close(hung)

	c := fakeCollector(
		[]disk.PartitionStat{
			{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4"},
			{Device: "nas:/share", Mountpoint: "/mnt/nas", Fstype: "cifs"},
		},
		map[string]*disk.UsageStat{"/": {Total: 10 * gib, Used: 1 * gib, Free: 9 * gib}},
	)
	usage := c.usage
	c.timeout = 20 * time.Millisecond
	c.usage = func(ctx context.Context, path string) (*disk.UsageStat, error) {
		if path == "/mnt/nas" {
			<-hung
		}
		return usage(ctx, path)
	}

	start := time.Now()
	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, model.StatusSuccess, section.Status)
	assert.Equal(t, []string{"Failed to read usage for /mnt/nas: timed out after 20ms"}, section.Notes)

	snap := section.Body.(model.StorageSnapshot)
	require.Len(t, snap.OperatingMounts, 2)
	assert.True(t, snap.OperatingMounts[0].Operational)
	assert.False(t, snap.OperatingMounts[1].Operational)
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", humanBytes(512))
	assert.Equal(t, "1.5 KiB", humanBytes(1536))
	assert.Equal(t, "2.0 GiB", humanBytes(2*gib))
}
