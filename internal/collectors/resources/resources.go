// Package resources reports load, memory pressure, cgroup limits and
// thermal state.
package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/internal/proc"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var Metadata = model.CollectorMetadata{
	ID:          "proc",
	Title:       "Processes and Memory",
	Description: "Load average, host and cgroup memory, thermal state",
}

type Collector struct {
	fs      proc.FS
	loadAvg func(ctx context.Context) (*load.AvgStat, error)
	virtual func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	swap    func(ctx context.Context) (*mem.SwapMemoryStat, error)
}

func New(fs proc.FS) *Collector {
	return &Collector{
		fs:      fs,
		loadAvg: load.AvgWithContext,
		virtual: mem.VirtualMemoryWithContext,
		swap:    mem.SwapMemoryWithContext,
	}
}

func Factory(fs proc.FS) collector.Factory {
	return func() collector.Collector { return New(fs) }
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(ctx context.Context, _ model.CollectionContext) (model.Section, error) {
	var snap model.ResourceSnapshot
	notes := []string{}

	if avg, err := c.loadAvg(ctx); err != nil {
		notes = append(notes, fmt.Sprintf("Load average unavailable: %v", err))
	} else {
		snap.LoadAvg = &model.LoadAverage{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}
	}

	if vm, err := c.virtual(ctx); err != nil {
		notes = append(notes, fmt.Sprintf("Host memory unavailable: %v", err))
	} else {
		total, available := vm.Total, vm.Available
		snap.Memory.Host = &model.HostMemory{TotalBytes: &total, AvailableBytes: &available}
	}

	if sw, err := c.swap(ctx); err == nil {
		snap.Memory.Swap = &model.SwapMemory{TotalBytes: sw.Total, FreeBytes: sw.Free}
	}

	cg, err := c.fs.CgroupMemory()
	if err != nil {
		notes = append(notes, fmt.Sprintf("Cgroup memory unavailable: %v", err))
	}
	snap.Memory.Cgroup = cg

	snap.Thermal = c.fs.Thermal()
	if n, err := c.fs.CountProcesses(); err == nil {
		snap.ProcessCount = &n
	}

	if snap.Memory.Host == nil && snap.LoadAvg == nil {
		return model.DegradedSection(Metadata, "Load and memory statistics unavailable", snap).
			WithNotes(notes...), nil
	}
	return model.SuccessSection(Metadata, snap).WithSummary(summarize(snap)).WithNotes(notes...), nil
}

func summarize(snap model.ResourceSnapshot) string {
	var parts []string
	if snap.LoadAvg != nil {
		parts = append(parts, fmt.Sprintf("load %.2f %.2f %.2f", snap.LoadAvg.One, snap.LoadAvg.Five, snap.LoadAvg.Fifteen))
	}
	if h := snap.Memory.Host; h != nil && *h.TotalBytes > 0 {
		parts = append(parts, fmt.Sprintf("%.1f%% memory available", float64(*h.AvailableBytes)/float64(*h.TotalBytes)*100))
	}
	if snap.ProcessCount != nil {
		parts = append(parts, fmt.Sprintf("%d processes", *snap.ProcessCount))
	}
	return strings.Join(parts, ", ")
}
