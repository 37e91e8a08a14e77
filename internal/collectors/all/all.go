// Package all is the single place built-in collectors are registered.
package all

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/internal/collectors/containers"
	"github.com/pranshuparmar/hostreport/internal/collectors/cron"
	"github.com/pranshuparmar/hostreport/internal/collectors/docker"
	"github.com/pranshuparmar/hostreport/internal/collectors/journal"
	"github.com/pranshuparmar/hostreport/internal/collectors/network"
	"github.com/pranshuparmar/hostreport/internal/collectors/osinfo"
	"github.com/pranshuparmar/hostreport/internal/collectors/resources"
	"github.com/pranshuparmar/hostreport/internal/collectors/security"
	"github.com/pranshuparmar/hostreport/internal/collectors/storage"
	"github.com/pranshuparmar/hostreport/internal/config"
	"github.com/pranshuparmar/hostreport/internal/proc"
)

// Factories returns the built-in collectors in report order.
func Factories(cfg *config.Config, logger *zap.Logger) []collector.Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	fs := proc.FS{Proc: cfg.Paths.Proc, Sys: cfg.Paths.Sys}

	return []collector.Factory{
		osinfo.Factory(),
		resources.Factory(fs),
		storage.Factory(cfg.Storage.Timeout, logger.Named("storage")),
		network.Factory(network.WithFS(fs), network.WithLogger(logger.Named("network"))),
		docker.Factory(docker.Config{
			Host:         cfg.Docker.Host,
			Timeout:      cfg.Docker.Timeout,
			StatsTimeout: cfg.Docker.StatsTimeout,
		}, logger.Named("docker")),
		containers.Factory(cfg.Containers.Timeout),
		security.Factory(filepath.Clean(cfg.Paths.Etc), fs),
		cron.Factory(filepath.Clean(cfg.Paths.Etc)),
		journal.Factory(cfg.Journal.Timeout),
	}
}

// Registry builds a registry holding every built-in collector.
func Registry(cfg *config.Config, logger *zap.Logger) *collector.Registry {
	return collector.NewRegistry().MustRegister(Factories(cfg, logger)...)
}
