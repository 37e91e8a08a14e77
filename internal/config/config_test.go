package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("disk-warning", 0.90, "")
	fs.Float64("disk-critical", 0.95, "")
	fs.String("format", "text", "")
	fs.Int("parallel", 1, "")
	fs.String("since", "", "")
	return fs
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.90, cfg.Digest.DiskWarning)
	assert.Equal(t, 0.95, cfg.Digest.DiskCritical)
	assert.Equal(t, 0.10, cfg.Digest.MemoryWarning)
	assert.Equal(t, 0.05, cfg.Digest.MemoryCritical)
	assert.Equal(t, 3*time.Second, cfg.Docker.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Containers.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "/proc", cfg.Paths.Proc)
	assert.Nil(t, cfg.SinceValue())
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
digest:
  disk_warning: 0.70
  disk_critical: 0.80
docker:
  timeout: 500ms
storage:
  timeout: 250ms
collectors:
  disabled: [journal, cron]
output:
  format: json
`)
	t.Setenv("HOSTREPORT_DIGEST_DISK_CRITICAL", "0.85")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--format", "yaml", "--since", "2024-01-01"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 0.70, cfg.Digest.DiskWarning)
	assert.Equal(t, 0.85, cfg.Digest.DiskCritical)
	assert.Equal(t, 500*time.Millisecond, cfg.Docker.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.Timeout)
	assert.Equal(t, []string{"journal", "cron"}, cfg.Collectors.Disabled)
	assert.Equal(t, "yaml", cfg.Output.Format)
	require.NotNil(t, cfg.SinceValue())
	assert.Equal(t, "2024-01-01", *cfg.SinceValue())
	assert.Equal(t, 1, cfg.Collectors.Parallelism)
}

func TestLoadRejectsInvalidThresholds(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{name: "out of range", yaml: "digest:\n  disk_critical: 1.5\n", msg: "disk_critical must be within [0, 1]"},
		{name: "disk ordering", yaml: "digest:\n  disk_warning: 0.96\n", msg: "disk_warning (0.96) must not exceed disk_critical (0.95)"},
		{name: "memory ordering", yaml: "digest:\n  memory_warning: 0.01\n", msg: "memory_warning (0.01) must not be below memory_critical (0.05)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidThresholds)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadFlagThresholdOverride(t *testing.T) {
	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--disk-warning", "0.99"}))

	_, err := Load(writeConfig(t, ""), flags)
	assert.ErrorIs(t, err, ErrInvalidThresholds)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	_, err := Load(writeConfig(t, "output:\n  format: html\n"), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidThresholds)
	assert.Contains(t, err.Error(), `unknown output format "html"`)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
