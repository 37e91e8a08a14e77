// Package network correlates interface counters, socket tables and process
// file descriptors into a view of what is listening on the host.
package network

import (
	"context"
	"errors"
	"fmt"
	"sort"

	gnet "github.com/shirou/gopsutil/v4/net"
	"go.uber.org/zap"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/internal/proc"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var Metadata = model.CollectorMetadata{
	ID:          "network",
	Title:       "Network",
	Description: "Interface counters and listening sockets correlated with their owning processes",
}

// Collector implements collector.Collector for the network section.
type Collector struct {
	fs         proc.FS
	logger     *zap.Logger
	interfaces func(ctx context.Context) ([]model.InterfaceInfo, error)
}

type Option func(*Collector)

func WithFS(fs proc.FS) Option {
	return func(c *Collector) { c.fs = fs }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

// WithInterfaces replaces the interface counter source.
func WithInterfaces(fn func(ctx context.Context) ([]model.InterfaceInfo, error)) Option {
	return func(c *Collector) { c.interfaces = fn }
}

func New(opts ...Option) *Collector {
	c := &Collector{
		fs:         proc.DefaultFS(),
		logger:     zap.NewNop(),
		interfaces: hostInterfaces,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Factory returns a collector.Factory with the given options applied.
func Factory(opts ...Option) collector.Factory {
	return func() collector.Collector { return New(opts...) }
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(ctx context.Context, _ model.CollectionContext) (model.Section, error) {
	interfaces, err := c.interfaces(ctx)
	if err != nil {
		return model.Section{}, fmt.Errorf("failed to read network interfaces: %w", err)
	}
	if len(interfaces) == 0 {
		return model.Section{}, errors.New("no network interface data available")
	}
	sort.Slice(interfaces, func(i, j int) bool { return interfaces[i].Name < interfaces[j].Name })

	listeners, notes, readable := gatherListeners(ctx, c.fs)
	c.logger.Debug("listeners gathered",
		zap.Int("total", listeners.Counts.Total()),
		zap.Int("samples", len(listeners.Samples)),
		zap.Int("tables", readable))

	body := model.NetworkSnapshot{Interfaces: interfaces, Listeners: listeners}
	summary := fmt.Sprintf("%d interfaces, %d listening sockets", len(interfaces), listeners.Counts.Total())

	if readable == 0 {
		summary = fmt.Sprintf("%d interfaces, socket tables unreadable", len(interfaces))
		return model.DegradedSection(Metadata, summary, body).WithNotes(notes...), nil
	}
	return model.SuccessSection(Metadata, body).WithSummary(summary).WithNotes(notes...), nil
}

func hostInterfaces(ctx context.Context) ([]model.InterfaceInfo, error) {
	counters, err := gnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	interfaces := make([]model.InterfaceInfo, 0, len(counters))
	for _, ctr := range counters {
		interfaces = append(interfaces, model.InterfaceInfo{
			Name:      ctr.Name,
			RxBytes:   ctr.BytesRecv,
			TxBytes:   ctr.BytesSent,
			RxPackets: ctr.PacketsRecv,
			TxPackets: ctr.PacketsSent,
		})
	}
	return interfaces, nil
}
