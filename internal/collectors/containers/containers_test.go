package containers

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

func fakeRun(outputs map[string]string, failures map[string]error) func(context.Context, string, ...string) ([]byte, error) {
	return func(_ context.Context, name string, _ ...string) ([]byte, error) {
		if err, ok := failures[name]; ok {
			return nil, err
		}
		if out, ok := outputs[name]; ok {
			return []byte(out), nil
		}
		return nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *string
	}{
		{"first line", "podman version 4.5.0\nextra", strp("podman version 4.5.0")},
		{"ctr client header", "Client:\n  Version:  v1.7.13\n  Revision: 7c3aca7\n\nServer:\n  Version:  v1.7.13\n", strp("v1.7.13")},
		{"empty", "  \n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractVersion(tt.in))
		})
	}
}

func strp(s string) *string { return &s }

func TestSnapshotSummary(t *testing.T) {
	assert.Equal(t, "No alternative container runtimes detected", Snapshot{}.Summary())
	snap := Snapshot{Runtimes: []RuntimeInfo{{Name: "podman", Version: strp("podman version 4.5.0")}}}
	assert.Equal(t, "1 runtime(s) detected", snap.Summary())
}

func TestCollectDetectsRuntimes(t *testing.T) {
	var called []string
	c := New(time.Second)
	run := fakeRun(map[string]string{
		"podman": "podman version 4.9.3\n",
		"ctr":    "Client:\n  Version:  v1.7.13\n",
	}, nil)
	c.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		called = append(called, name)
		return run(ctx, name, args...)
	}

	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"podman", "nerdctl", "ctr"}, called)
	assert.Equal(t, model.StatusSuccess, section.Status)
	assert.Equal(t, "2 runtime(s) detected", *section.Summary)
	assert.Empty(t, section.Notes)

	snap := section.Body.(Snapshot)
	require.Len(t, snap.Runtimes, 2)
	assert.Equal(t, "podman", snap.Runtimes[0].Name)
	assert.Equal(t, "podman version 4.9.3", *snap.Runtimes[0].Version)
	assert.Equal(t, "ctr", snap.Runtimes[1].Name)
	assert.Equal(t, "v1.7.13", *snap.Runtimes[1].Version)
}

func TestCollectNoneInstalled(t *testing.T) {
	c := New(time.Second)
	c.run = fakeRun(nil, nil)

	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, section.Status)
	assert.Equal(t, "No alternative container runtimes detected", *section.Summary)
	assert.Equal(t, []RuntimeInfo{}, section.Body.(Snapshot).Runtimes)
}

func TestCollectNotesFailuresAndTimeouts(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.run = func(ctx context.Context, name string, _ ...string) ([]byte, error) {
		switch name {
		case "ctr":
			return nil, errors.New("exit status 1")
		case "podman":
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
	}

	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Empty(t, section.Body.(Snapshot).Runtimes)
	assert.Equal(t, []string{
		"podman --version failed: timed out after 10ms",
		"ctr version failed: exit status 1",
	}, section.Notes)
}
