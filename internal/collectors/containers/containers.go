// Package containers detects container runtimes other than Docker.
package containers

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
	ID:          "containers",
	Title:       "Alternative Containers",
	Description: "Podman and containerd runtimes",
}

const DefaultTimeout = 3 * time.Second

type runtimeCommand struct {
	name string
	args []string
}

// Runtimes are checked in this order.
var runtimeCommands = []runtimeCommand{
	{name: "podman", args: []string{"--version"}},
	{name: "nerdctl", args: []string{"--version"}},
	{name: "ctr", args: []string{"version"}},
}

type RuntimeInfo struct {
	Name    string  `json:"name"`
	Version *string `json:"version"`
}

// Snapshot is the body of the containers section.
type Snapshot struct {
	Runtimes []RuntimeInfo `json:"runtimes"`
}

func (s Snapshot) Summary() string {
	if len(s.Runtimes) == 0 {
		return "No alternative container runtimes detected"
	}
	return fmt.Sprintf("%d runtime(s) detected", len(s.Runtimes))
}

type Collector struct {
	timeout time.Duration
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func New(timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Collector{timeout: timeout, run: runCommand}
}

func Factory(timeout time.Duration) collector.Factory {
	return func() collector.Collector { return New(timeout) }
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(ctx context.Context, _ model.CollectionContext) (model.Section, error) {
	snap := Snapshot{Runtimes: []RuntimeInfo{}}
	notes := []string{}

	for _, p := range runtimeCommands {
		out, err := c.version(ctx, p)
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				continue
			}
			notes = append(notes, fmt.Sprintf("%s %s failed: %v", p.name, strings.Join(p.args, " "), err))
			continue
		}
		snap.Runtimes = append(snap.Runtimes, RuntimeInfo{Name: p.name, Version: extractVersion(string(out))})
	}

	return model.SuccessSection(Metadata, snap).WithSummary(snap.Summary()).WithNotes(notes...), nil
}

func (c *Collector) version(ctx context.Context, p runtimeCommand) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.run(runCtx, p.name, p.args...)
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("timed out after %s", c.timeout)
	}
	return out, err
}

// extractVersion returns the first non-empty output line. ctr prints a
// "Client:" header first, so a header line defers to the Version field
// beneath it.
func extractVersion(out string) *string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	first := strings.TrimSpace(lines[0])
	if first == "" {
		return nil
	}
	if strings.HasSuffix(first, ":") {
		for _, line := range lines[1:] {
			if v, ok := strings.CutPrefix(strings.TrimSpace(line), "Version:"); ok {
				v = strings.TrimSpace(v)
				return &v
			}
		}
	}
	return &first
}
