// Package docker reports containers known to the local Docker engine.
package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"go.uber.org/zap"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var Metadata = model.CollectorMetadata{
	ID:          "docker",
	Title:       "Docker",
	Description: "Containers and their live memory usage from the Docker engine",
}

const (
	DefaultTimeout      = 3 * time.Second
	DefaultStatsTimeout = 2 * time.Second
)

// engine is the subset of the Docker API the collector uses.
type engine interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerStatsOneShot(ctx context.Context, containerID string) (container.StatsResponseReader, error)
	Close() error
}

type Config struct {
	Host         string
	Timeout      time.Duration
	StatsTimeout time.Duration
}

type ContainerInfo struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Image            string  `json:"image"`
	State            string  `json:"state"`
	Status           string  `json:"status"`
	MemoryUsageBytes *uint64 `json:"memory_usage_bytes"`
	MemoryLimitBytes *uint64 `json:"memory_limit_bytes"`
}

// Snapshot is the body of the docker section.
type Snapshot struct {
	DaemonReachable bool            `json:"daemon_reachable"`
	APIVersion      string          `json:"api_version"`
	Running         int             `json:"running"`
	Total           int             `json:"total"`
	Containers      []ContainerInfo `json:"containers"`
}

type Collector struct {
	cfg       Config
	logger    *zap.Logger
	newEngine func(cfg Config) (engine, error)
}

func New(cfg Config, logger *zap.Logger) *Collector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.StatsTimeout <= 0 {
		cfg.StatsTimeout = DefaultStatsTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{cfg: cfg, logger: logger, newEngine: dial}
}

func Factory(cfg Config, logger *zap.Logger) collector.Factory {
	return func() collector.Collector { return New(cfg, logger) }
}

func dial(cfg Config) (engine, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if cfg.Host != "" {
		opts = append(opts, client.WithHost(cfg.Host))
	}
	return client.NewClientWithOpts(opts...)
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(ctx context.Context, _ model.CollectionContext) (model.Section, error) {
	snap := Snapshot{Containers: []ContainerInfo{}}

	cli, err := c.newEngine(c.cfg)
	if err != nil {
		return model.DegradedSection(Metadata, fmt.Sprintf("Docker client unavailable: %v", err), snap), nil
	}
	defer cli.Close()

	listCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ping, err := cli.Ping(listCtx)
	if err != nil {
		return model.DegradedSection(Metadata, fmt.Sprintf("Docker daemon unreachable: %v", err), snap), nil
	}
	snap.DaemonReachable = true
	snap.APIVersion = ping.APIVersion

	list, err := cli.ContainerList(listCtx, container.ListOptions{All: true})
	if err != nil {
		return model.DegradedSection(Metadata, fmt.Sprintf("Failed to list containers: %v", err), snap), nil
	}

	notes := []string{}
	for _, s := range list {
		info := ContainerInfo{
			ID:     shortID(s.ID),
			Name:   containerName(s.Names),
			Image:  s.Image,
			State:  string(s.State),
			Status: s.Status,
		}
		snap.Total++
		if info.State == "running" {
			snap.Running++
			if err := c.fillStats(ctx, cli, s.ID, &info); err != nil {
				c.logger.Debug("container stats unavailable", zap.String("container", info.Name), zap.Error(err))
				notes = append(notes, fmt.Sprintf("Stats for %s unavailable: %v", info.Name, err))
			}
		}
		snap.Containers = append(snap.Containers, info)
	}

	summary := fmt.Sprintf("%d running of %d containers", snap.Running, snap.Total)
	return model.SuccessSection(Metadata, snap).WithSummary(summary).WithNotes(notes...), nil
}

// fillStats fetches one-shot stats under its own timeout so a slow
// container only loses its memory figures.
func (c *Collector) fillStats(ctx context.Context, cli engine, id string, info *ContainerInfo) error {
	statsCtx, cancel := context.WithTimeout(ctx, c.cfg.StatsTimeout)
	defer cancel()

	resp, err := cli.ContainerStatsOneShot(statsCtx, id)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return fmt.Errorf("decode stats: %w", err)
	}
	usage, limit := stats.MemoryStats.Usage, stats.MemoryStats.Limit
	// cgroup v1 reports page cache as part of usage
	if cache, ok := stats.MemoryStats.Stats["total_inactive_file"]; ok && cache < usage {
		usage -= cache
	} else if cache, ok := stats.MemoryStats.Stats["inactive_file"]; ok && cache < usage {
		usage -= cache
	}
	info.MemoryUsageBytes = &usage
	if limit > 0 {
		info.MemoryLimitBytes = &limit
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}
