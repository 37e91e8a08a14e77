// Package journal reports recent error-level systemd journal entries.
package journal

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var Metadata = model.CollectorMetadata{
	ID:          "journal",
	Title:       "Journal Errors",
	Description: "Recent error-priority entries from the systemd journal",
}

const (
	DefaultTimeout = 5 * time.Second
	maxEntries     = 50
)

type Entry struct {
	Timestamp string `json:"timestamp"`
	Host      string `json:"host"`
	Unit      string `json:"unit"`
	Message   string `json:"message"`
}

// Snapshot is the body of the journal section.
type Snapshot struct {
	Since   *string `json:"since"`
	Entries []Entry `json:"entries"`
}

type Collector struct {
	timeout time.Duration
	run     func(ctx context.Context, args ...string) ([]byte, error)
}

func New(timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Collector{timeout: timeout, run: runJournalctl}
}

func Factory(timeout time.Duration) collector.Factory {
	return func() collector.Collector { return New(timeout) }
}

func runJournalctl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "journalctl", args...).Output()
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(ctx context.Context, cc model.CollectionContext) (model.Section, error) {
	snap := Snapshot{Since: cc.Since, Entries: []Entry{}}

	args := []string{"-p", "err", "--no-pager", "-o", "short-iso", "-n", fmt.Sprint(maxEntries)}
	if cc.Since != nil && *cc.Since != "" {
		args = append(args, "--since", *cc.Since)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.run(runCtx, args...)
	if err != nil {
		return model.DegradedSection(Metadata, describe(runCtx, err), snap), nil
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-- ") {
			continue
		}
		snap.Entries = append(snap.Entries, parseLine(line))
	}

	summary := fmt.Sprintf("%d error entries", len(snap.Entries))
	if cc.Since != nil && *cc.Since != "" {
		summary += " since " + *cc.Since
	}
	return model.SuccessSection(Metadata, snap).WithSummary(summary), nil
}

func describe(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "journalctl timed out"
	}
	if errors.Is(err, exec.ErrNotFound) {
		return "journalctl not available"
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return "journalctl failed: " + strings.TrimSpace(string(exitErr.Stderr))
	}
	return fmt.Sprintf("journalctl failed: %v", err)
}

// parseLine splits "TIMESTAMP HOST UNIT[PID]: MESSAGE".
func parseLine(line string) Entry {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 3 {
		return Entry{Message: line}
	}
	e := Entry{Timestamp: fields[0], Host: fields[1]}
	unit, msg, ok := strings.Cut(fields[2], ": ")
	if !ok {
		e.Message = fields[2]
		return e
	}
	if i := strings.Index(unit, "["); i > 0 {
		unit = unit[:i]
	}
	e.Unit = unit
	e.Message = msg
	return e
}
