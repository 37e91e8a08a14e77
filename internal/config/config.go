// Package config loads hostreport settings from flags, environment and a
// YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

const EnvPrefix = "HOSTREPORT"

// ErrInvalidThresholds marks the only fatal configuration error.
var ErrInvalidThresholds = errors.New("invalid digest thresholds")

type Config struct {
	Digest     model.DigestThresholds `mapstructure:"digest" yaml:"digest"`
	Since      string                 `mapstructure:"since" yaml:"since"`
	Collectors CollectorsConfig       `mapstructure:"collectors" yaml:"collectors"`
	Docker     DockerConfig           `mapstructure:"docker" yaml:"docker"`
	Journal    JournalConfig          `mapstructure:"journal" yaml:"journal"`
	Containers ContainersConfig       `mapstructure:"containers" yaml:"containers"`
	Storage    StorageConfig          `mapstructure:"storage" yaml:"storage"`
	History    HistoryConfig          `mapstructure:"history" yaml:"history"`
	Metrics    MetricsConfig          `mapstructure:"metrics" yaml:"metrics"`
	Log        LogConfig              `mapstructure:"log" yaml:"log"`
	Output     OutputConfig           `mapstructure:"output" yaml:"output"`
	Paths      PathsConfig            `mapstructure:"paths" yaml:"paths"`
}

type CollectorsConfig struct {
	Parallelism int      `mapstructure:"parallelism" yaml:"parallelism"`
	Disabled    []string `mapstructure:"disabled" yaml:"disabled"`
}

type DockerConfig struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	StatsTimeout time.Duration `mapstructure:"stats_timeout" yaml:"stats_timeout"`
}

type JournalConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type ContainersConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StorageConfig bounds each statfs call so a hung network mount cannot
// stall the report.
type StorageConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type OutputConfig struct {
	Format  string `mapstructure:"format" yaml:"format"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

// PathsConfig relocates the host filesystems, e.g. when running in a
// container with the host's /proc mounted elsewhere.
type PathsConfig struct {
	Proc string `mapstructure:"proc" yaml:"proc"`
	Sys  string `mapstructure:"sys" yaml:"sys"`
	Etc  string `mapstructure:"etc" yaml:"etc"`
}

var Formats = []string{"text", "json", "yaml", "tui"}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"disk-warning":     "digest.disk_warning",
	"disk-critical":    "digest.disk_critical",
	"memory-warning":   "digest.memory_warning",
	"memory-critical":  "digest.memory_critical",
	"since":            "since",
	"parallel":         "collectors.parallelism",
	"disable":          "collectors.disabled",
	"history":          "history.path",
	"metrics-textfile": "metrics.textfile",
	"format":           "output.format",
	"no-color":         "output.no_color",
	"log-level":        "log.level",
}

func setDefaults(v *viper.Viper) {
	d := model.DefaultDigestThresholds()
	v.SetDefault("digest.disk_warning", d.DiskWarning)
	v.SetDefault("digest.disk_critical", d.DiskCritical)
	v.SetDefault("digest.memory_warning", d.MemoryWarning)
	v.SetDefault("digest.memory_critical", d.MemoryCritical)
	v.SetDefault("since", "")
	v.SetDefault("collectors.parallelism", 1)
	v.SetDefault("collectors.disabled", []string{})
	v.SetDefault("docker.host", "")
	v.SetDefault("docker.timeout", 3*time.Second)
	v.SetDefault("docker.stats_timeout", 2*time.Second)
	v.SetDefault("journal.timeout", 5*time.Second)
	v.SetDefault("containers.timeout", 3*time.Second)
	v.SetDefault("storage.timeout", 2*time.Second)
	v.SetDefault("history.path", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.no_color", false)
	v.SetDefault("paths.proc", "/proc")
	v.SetDefault("paths.sys", "/sys")
	v.SetDefault("paths.etc", "/etc")
}

// Default returns the configuration with no file, env or flags applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// DefaultPath is the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".hostreport", "config.yaml")
	}
	return filepath.Join(dir, "hostreport", "config.yaml")
}

// Load merges defaults, the YAML file at path, HOSTREPORT_* environment
// variables and any changed flags, in increasing precedence. An empty path
// reads DefaultPath when it exists; an explicit path must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks thresholds and enumerated settings. Threshold problems
// wrap ErrInvalidThresholds.
func (c *Config) Validate() error {
	if err := c.Digest.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidThresholds, err)
	}

	var errs []error
	if !isFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("unknown output format %q (want one of %s)", c.Output.Format, strings.Join(Formats, ", ")))
	}
	if c.Collectors.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("collectors.parallelism must not be negative"))
	}
	return errors.Join(errs...)
}

// SinceValue returns Since as an optional value.
func (c *Config) SinceValue() *string {
	if strings.TrimSpace(c.Since) == "" {
		return nil
	}
	s := c.Since
	return &s
}

func isFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}
