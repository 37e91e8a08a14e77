// Package app wires configuration, collectors and renderers into the
// hostreport command line.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/internal/collectors/all"
	"github.com/pranshuparmar/hostreport/internal/config"
	"github.com/pranshuparmar/hostreport/internal/history"
	"github.com/pranshuparmar/hostreport/internal/logging"
	"github.com/pranshuparmar/hostreport/internal/metrics"
	"github.com/pranshuparmar/hostreport/internal/output"
	"github.com/pranshuparmar/hostreport/internal/pipeline"
	"github.com/pranshuparmar/hostreport/internal/tui"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// SetVersionBuildCommitString records the values injected at link time.
func SetVersionBuildCommitString(v, c, d string) {
	version = v
	commit = c
	buildDate = d
}

func versionString() string {
	if version == "" {
		return "dev"
	}
	return version
}

// configError marks failures that happen before any collection starts.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ce configError
	if errors.Is(err, config.ErrInvalidThresholds) || errors.As(err, &ce) {
		return 2
	}
	return 1
}

// app holds the process-level dependencies the commands use.
type app struct {
	out         io.Writer
	errOut      io.Writer
	isTerminal  func() bool
	newRegistry func(*config.Config, *zap.Logger) *collector.Registry
	hostname    func() (string, error)
	now         func() time.Time
	runTUI      func(model.Report, string, tui.RefreshFunc) error
}

func defaultApp() *app {
	return &app{
		out:    os.Stdout,
		errOut: os.Stderr,
		isTerminal: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
		newRegistry: all.Registry,
		hostname:    os.Hostname,
		now:         time.Now,
		runTUI:      tui.Start,
	}
}

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd(a *app) *cobra.Command {
	opts := &rootOptions{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "hostreport",
		Short: "Collect a host diagnostics report",
		Long: `hostreport runs a set of collectors against the local machine (operating
system, memory, storage, network listeners, containers, scheduled jobs and
the system journal) and prints one report with a health digest on top.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd, opts)
		},
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	cmd.SetVersionTemplate(fmt.Sprintf("hostreport %s (commit %s, built %s)\n", versionString(), orUnknown(commit), orUnknown(buildDate)))

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default is "+config.DefaultPath()+")")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	pf.Bool("no-color", defaults.Output.NoColor, "disable colored output")
	pf.String("history", defaults.History.Path, "SQLite file recording each report")

	f := cmd.Flags()
	f.StringP("format", "f", defaults.Output.Format, "output format (text, json, yaml, tui)")
	f.String("since", defaults.Since, "lower time bound for time-windowed collectors, e.g. \"1 hour ago\"")
	f.Float64("disk-warning", defaults.Digest.DiskWarning, "storage usage ratio that raises a warning")
	f.Float64("disk-critical", defaults.Digest.DiskCritical, "storage usage ratio that raises a critical finding")
	f.Float64("memory-warning", defaults.Digest.MemoryWarning, "available memory ratio that raises a warning")
	f.Float64("memory-critical", defaults.Digest.MemoryCritical, "available memory ratio that raises a critical finding")
	f.IntP("parallel", "p", defaults.Collectors.Parallelism, "collectors run at once (0 for all)")
	f.StringSlice("disable", defaults.Collectors.Disabled, "collector ids to skip")
	f.String("metrics-textfile", defaults.Metrics.Textfile, "write Prometheus textfile metrics to this path")

	cmd.AddCommand(newHistoryCmd(a, opts), newVersionCmd(a))
	return cmd
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func (a *app) loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return nil, nil, configError{err}
	}
	logger, err := logging.New(cfg.Log.Level, opts.debug)
	if err != nil {
		return nil, nil, configError{err}
	}
	return cfg, logger, nil
}

func (a *app) colorEnabled(cfg *config.Config) bool {
	if cfg.Output.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return a.isTerminal()
}

func (a *app) runReport(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, err := a.loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := a.newRegistry(cfg, logger)
	generate := func(ctx context.Context) model.Report {
		return pipeline.GenerateReport(ctx, pipeline.ReportConfig{
			Registry:    reg,
			Thresholds:  cfg.Digest,
			Since:       cfg.SinceValue(),
			Version:     versionString(),
			Parallelism: cfg.Collectors.Parallelism,
			Disabled:    cfg.Collectors.Disabled,
			Logger:      logger,
			Hostname:    a.hostname,
			Now:         a.now,
		})
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report := generate(ctx)
	a.persist(ctx, cfg, logger, report)

	return a.render(cfg, report, generate)
}

// persist stores the report in history and the metrics textfile. Both are
// best effort.
func (a *app) persist(ctx context.Context, cfg *config.Config, logger *zap.Logger, report model.Report) {
	if cfg.History.Path != "" {
		if err := saveHistory(ctx, cfg.History.Path, report); err != nil {
			logger.Warn("history not recorded", zap.String("path", cfg.History.Path), zap.Error(err))
		}
	}
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteReport(cfg.Metrics.Textfile, report); err != nil {
			logger.Warn("metrics not written", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}
}

func saveHistory(ctx context.Context, path string, report model.Report) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.Save(ctx, report)
	return err
}

func (a *app) render(cfg *config.Config, report model.Report, refresh tui.RefreshFunc) error {
	switch cfg.Output.Format {
	case "json":
		out, err := output.ToJSON(report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, out)
		return err
	case "yaml":
		out, err := output.ToYAML(report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(a.out, out)
		return err
	case "tui":
		return a.runTUI(report, versionString(), refresh)
	default:
		return output.RenderText(a.out, report, a.colorEnabled(cfg))
	}
}

// Execute runs the root command and exits with 2 on configuration errors
// and 1 on any other failure.
func Execute() {
	a := defaultApp()
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
