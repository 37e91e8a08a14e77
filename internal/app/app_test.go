package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/internal/config"
	"github.com/pranshuparmar/hostreport/internal/output"
	"github.com/pranshuparmar/hostreport/internal/tui"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

func ratio(v float64) *float64 { return &v }

func fakeRegistry(calls *int) func(*config.Config, *zap.Logger) *collector.Registry {
	return func(*config.Config, *zap.Logger) *collector.Registry {
		storage := collector.Func{
			Meta: model.CollectorMetadata{ID: "storage", Title: "Storage"},
			Fn: func(context.Context, model.CollectionContext) (model.Section, error) {
				*calls++
				return model.SuccessSection(model.CollectorMetadata{ID: "storage", Title: "Storage"}, model.StorageSnapshot{
					OperatingMounts: []model.Mount{
						{MountPoint: "/data", FSType: "ext4", Operational: true, UsageRatio: ratio(0.96)},
					},
				}), nil
			},
		}
		journal := collector.Func{
			Meta: model.CollectorMetadata{ID: "journal", Title: "Journal"},
			Fn: func(_ context.Context, cc model.CollectionContext) (model.Section, error) {
				if cc.Since == nil {
					return model.Section{}, errors.New("since missing")
				}
				return model.SuccessSection(model.CollectorMetadata{ID: "journal", Title: "Journal"}, nil).
					WithSummary("since " + *cc.Since), nil
			},
		}
		return collector.NewRegistry().MustRegister(
			func() collector.Collector { return storage },
			func() collector.Collector { return journal },
		)
	}
}

type harness struct {
	app   *app
	out   *bytes.Buffer
	calls int
	tui   *model.Report
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	h := &harness{out: &bytes.Buffer{}}
	h.app = &app{
		out:         h.out,
		errOut:      &bytes.Buffer{},
		isTerminal:  func() bool { return false },
		newRegistry: fakeRegistry(&h.calls),
		hostname:    func() (string, error) { return "web-01", nil },
		now:         func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) },
		runTUI: func(r model.Report, _ string, _ tui.RefreshFunc) error {
			h.tui = &r
			return nil
		},
	}
	return h
}

func (h *harness) run(args ...string) error {
	cmd := newRootCmd(h.app)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestReportJSON(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("--format", "json", "--since", "1 hour ago"))

	r, err := output.FromJSON(h.out.Bytes())
	require.NoError(t, err)
	require.Len(t, r.Sections, 2)
	assert.Equal(t, "storage", r.Sections[0].ID)
	assert.Equal(t, model.StatusSuccess, r.Sections[1].Status)
	assert.Equal(t, "since 1 hour ago", *r.Sections[1].Summary)
	assert.Equal(t, "web-01", r.Metadata.Hostname)
	require.NotNil(t, r.Metadata.Since)
	assert.Equal(t, "1 hour ago", *r.Metadata.Since)

	assert.Equal(t, model.SeverityCritical, r.HealthDigest.Overall)
	require.Len(t, r.HealthDigest.Findings, 1)
	assert.Contains(t, r.HealthDigest.Findings[0].Message, "96.0%")
}

func TestReportThresholdFlags(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-f", "json", "--disk-warning", "0.97", "--disk-critical", "0.99"))

	r, err := output.FromJSON(h.out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, model.SeverityCritical, r.HealthDigest.Overall, "journal without since still fails")
	for _, f := range r.HealthDigest.Findings {
		assert.NotEqual(t, "storage", f.SourceID)
	}
}

func TestInvalidThresholdsExitTwo(t *testing.T) {
	h := newHarness(t)
	err := h.run("--disk-warning", "0.99", "--disk-critical", "0.90")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidThresholds)
	assert.Equal(t, 2, exitCode(err))
	assert.Zero(t, h.calls, "no collection on invalid configuration")
	assert.Empty(t, h.out.String())
}

func TestMissingConfigFileExitTwo(t *testing.T) {
	h := newHarness(t)
	err := h.run("--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestExitCodeOther(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestReportText(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("--disable", "journal"))

	out := h.out.String()
	assert.Contains(t, out, "Host report for web-01")
	assert.Contains(t, out, "Overall health: CRITICAL")
	assert.Contains(t, out, "[ok] storage")
	assert.NotContains(t, out, "journal")
	assert.NotContains(t, out, "\033[")
}

func TestReportYAML(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("--format", "yaml"))
	assert.Contains(t, h.out.String(), "health_digest:")
}

func TestReportTUI(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("--format", "tui"))
	require.NotNil(t, h.tui)
	assert.Len(t, h.tui.Sections, 2)
}

func TestHistoryAndMetrics(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "history.db")
	prom := filepath.Join(dir, "hostreport.prom")

	h := newHarness(t)
	require.NoError(t, h.run("-f", "json", "--history", db, "--metrics-textfile", prom))
	require.NoError(t, h.run("-f", "json", "--history", db))

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `hostreport_section_status{id="journal"} 2`)

	h.out.Reset()
	require.NoError(t, h.run("history", "--history", db, "-n", "5"))
	out := h.out.String()
	assert.Equal(t, 2, strings.Count(out, "web-01"))
	assert.Contains(t, out, "critical")

	h.out.Reset()
	require.NoError(t, h.run("history", "--history", db, "--id", "1", "--format", "json"))
	r, err := output.FromJSON(h.out.Bytes())
	require.NoError(t, err)
	assert.Len(t, r.Sections, 2)
}

func TestHistoryWithoutPath(t *testing.T) {
	h := newHarness(t)
	err := h.run("history")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\ncollectors:\n  disabled: [journal]\n"), 0o644))

	h := newHarness(t)
	require.NoError(t, h.run("--config", path))

	r, err := output.FromJSON(h.out.Bytes())
	require.NoError(t, err)
	require.Len(t, r.Sections, 1)
	assert.Equal(t, "storage", r.Sections[0].ID)
}

func TestVersionCommand(t *testing.T) {
	SetVersionBuildCommitString("v1.2.3", "abc1234", "2024-05-01")
	t.Cleanup(func() { SetVersionBuildCommitString("", "", "") })

	h := newHarness(t)
	require.NoError(t, h.run("version"))
	assert.Contains(t, h.out.String(), "Version:    v1.2.3")
	assert.Contains(t, h.out.String(), "Commit:     abc1234")
}
