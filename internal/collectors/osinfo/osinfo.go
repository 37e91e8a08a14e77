// Package osinfo reports the operating system and kernel identity.
package osinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var Metadata = model.CollectorMetadata{
	ID:          "os",
	Title:       "Operating System",
	Description: "Distribution, kernel, uptime and virtualization",
}

// Info is the body of the os section.
type Info struct {
	Hostname        string    `json:"hostname"`
	OS              string    `json:"os"`
	Platform        string    `json:"platform"`
	PlatformFamily  string    `json:"platform_family"`
	PlatformVersion string    `json:"platform_version"`
	KernelVersion   string    `json:"kernel_version"`
	KernelArch      string    `json:"kernel_arch"`
	UptimeSeconds   uint64    `json:"uptime_seconds"`
	BootTime        time.Time `json:"boot_time"`
	Virtualization  *string   `json:"virtualization"`
}

type Collector struct {
	info func(ctx context.Context) (*host.InfoStat, error)
}

func New() *Collector {
	return &Collector{info: host.InfoWithContext}
}

func Factory() collector.Factory {
	return func() collector.Collector { return New() }
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(ctx context.Context, _ model.CollectionContext) (model.Section, error) {
	hi, err := c.info(ctx)
	if err != nil {
		return model.Section{}, fmt.Errorf("read host info: %w", err)
	}

	info := Info{
		Hostname:        hi.Hostname,
		OS:              hi.OS,
		Platform:        hi.Platform,
		PlatformFamily:  hi.PlatformFamily,
		PlatformVersion: hi.PlatformVersion,
		KernelVersion:   hi.KernelVersion,
		KernelArch:      hi.KernelArch,
		UptimeSeconds:   hi.Uptime,
		BootTime:        time.Unix(int64(hi.BootTime), 0).UTC(),
	}
	if hi.VirtualizationSystem != "" {
		v := hi.VirtualizationSystem
		if hi.VirtualizationRole != "" {
			v += " (" + hi.VirtualizationRole + ")"
		}
		info.Virtualization = &v
	}

	platform := info.Platform
	if platform == "" {
		platform = info.OS
	}
	summary := fmt.Sprintf("%s %s (kernel %s)", platform, info.PlatformVersion, info.KernelVersion)
	return model.SuccessSection(Metadata, info).WithSummary(summary), nil
}
