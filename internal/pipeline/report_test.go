package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

func staticCollector(meta model.CollectorMetadata, section model.Section, err error) collector.Factory {
	return func() collector.Collector {
		return collector.Func{Meta: meta, Fn: func(context.Context, model.CollectionContext) (model.Section, error) {
			return section, err
		}}
	}
}

func testRegistry() *collector.Registry {
	osMeta := model.CollectorMetadata{ID: "os", Title: "Operating System"}
	storageMeta := model.CollectorMetadata{ID: "storage", Title: "Storage"}
	dockerMeta := model.CollectorMetadata{ID: "docker", Title: "Docker"}

	mounts := map[string]any{"operating_mounts": []map[string]any{{
		"mount_point": "/data", "fs_type": "ext4", "operational": true, "read_only": false,
		"usage_ratio": 0.95, "available_bytes": 5_000_000_000, "inodes_usage_ratio": 0.5,
	}}}

	return collector.NewRegistry().MustRegister(
		staticCollector(osMeta, model.SuccessSection(osMeta, map[string]any{"hostname": "web-01"}), nil),
		staticCollector(dockerMeta, model.Section{}, errors.New("docker socket missing")),
		staticCollector(storageMeta, model.SuccessSection(storageMeta, mounts), nil),
	)
}

func TestGenerateReport(t *testing.T) {
	since := "yesterday"
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	report := GenerateReport(context.Background(), ReportConfig{
		Registry:   testRegistry(),
		Thresholds: model.DefaultDigestThresholds(),
		Since:      &since,
		Version:    "v1.2.3",
		Hostname:   func() (string, error) { return "web-01", nil },
		Now:        func() time.Time { return fixed },
	})

	assert.Equal(t, "web-01", report.Metadata.Hostname)
	assert.Equal(t, "v1.2.3", report.Metadata.Version)
	assert.Equal(t, 3, report.Metadata.Sections)
	assert.Equal(t, fixed.UTC(), report.Metadata.GeneratedAt)
	require.NotNil(t, report.Metadata.Since)
	assert.Equal(t, "yesterday", *report.Metadata.Since)

	require.Len(t, report.Sections, 3)
	assert.Equal(t, model.StatusSuccess, report.Sections[0].Status)
	assert.Equal(t, model.StatusError, report.Sections[1].Status)
	assert.Equal(t, "docker socket missing", *report.Sections[1].Summary)
	assert.Equal(t, model.StatusSuccess, report.Sections[2].Status)

	assert.Equal(t, model.SeverityCritical, report.HealthDigest.Overall)
	require.Len(t, report.HealthDigest.Findings, 2)
	assert.Equal(t, "docker", report.HealthDigest.Findings[0].SourceID)
	assert.Equal(t, "storage", report.HealthDigest.Findings[1].SourceID)
	assert.Contains(t, report.HealthDigest.Findings[1].Message, "95.0%")
}

func TestGenerateReportParallelMatchesSequential(t *testing.T) {
	cfg := ReportConfig{
		Thresholds: model.DefaultDigestThresholds(),
		Hostname:   func() (string, error) { return "h", nil },
	}

	cfg.Registry = testRegistry()
	seq := GenerateReport(context.Background(), cfg)

	cfg.Registry = testRegistry()
	cfg.Parallelism = 4
	par := GenerateReport(context.Background(), cfg)

	require.Len(t, par.Sections, len(seq.Sections))
	for i := range seq.Sections {
		assert.Equal(t, seq.Sections[i].ID, par.Sections[i].ID)
		assert.Equal(t, seq.Sections[i].Status, par.Sections[i].Status)
		assert.Equal(t, seq.Sections[i].Body, par.Sections[i].Body)
	}
	assert.Equal(t, seq.HealthDigest, par.HealthDigest)
}

func TestGenerateReportHostnameFailure(t *testing.T) {
	report := GenerateReport(context.Background(), ReportConfig{
		Registry:   collector.NewRegistry(),
		Thresholds: model.DefaultDigestThresholds(),
		Hostname:   func() (string, error) { return "", errors.New("uts namespace") },
		Disabled:   []string{"os"},
	})
	assert.Equal(t, "unknown", report.Metadata.Hostname)
	assert.Empty(t, report.Sections)
	assert.Equal(t, model.SeverityInfo, report.HealthDigest.Overall)
}
