package pipeline

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/internal/digest"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

type ReportConfig struct {
	Registry    *collector.Registry
	Thresholds  model.DigestThresholds
	Since       *string
	Version     string
	Parallelism int
	Disabled    []string
	Logger      *zap.Logger

	// Hostname and Now default to os.Hostname and time.Now.
	Hostname func() (string, error)
	Now      func() time.Time
}

// GenerateReport runs every registered collector and assembles the report.
// Thresholds must already be valid.
func GenerateReport(ctx context.Context, cfg ReportConfig) model.Report {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hostname := cfg.Hostname
	if hostname == nil {
		hostname = os.Hostname
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	runner := collector.NewRunner(
		collector.WithLogger(logger),
		collector.WithParallelism(cfg.Parallelism),
		collector.WithDisabled(cfg.Disabled...),
	)
	generatedAt := now().UTC()
	sections := runner.Run(ctx, cfg.Registry, model.CollectionContext{Since: cfg.Since})

	name, err := hostname()
	if err != nil {
		logger.Warn("hostname unavailable", zap.Error(err))
		name = "unknown"
	}

	report := model.Report{
		Metadata: model.ReportMetadata{
			GeneratedAt: generatedAt,
			Hostname:    name,
			Version:     cfg.Version,
			Since:       cfg.Since,
			Sections:    len(sections),
		},
		Sections:     sections,
		HealthDigest: digest.Build(sections, cfg.Thresholds),
	}
	logger.Debug("report assembled",
		zap.Int("sections", len(sections)),
		zap.Stringer("overall", report.HealthDigest.Overall),
		zap.Int("findings", len(report.HealthDigest.Findings)))
	return report
}
