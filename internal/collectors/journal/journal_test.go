package journal

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

const sample = `2024-03-01T09:58:12+0000 web-01 kernel: EXT4-fs error (device sda1): bad block
2024-03-01T09:59:01+0000 web-01 sshd[812]: error: kex_exchange_identification: Connection closed
-- Boot 3f1c --
2024-03-01T10:00:00+0000 web-01 systemd[1]: Failed to start nginx.service.
`

func TestCollectParsesEntriesAndPassesSince(t *testing.T) {
	var got []string
	c := New(time.Second)
	c.run = func(_ context.Context, args ...string) ([]byte, error) {
		got = args
		return []byte(sample), nil
	}

	since := "1 hour ago"
	section, err := c.Collect(context.Background(), model.CollectionContext{Since: &since})
	require.NoError(t, err)
	assert.Equal(t, []string{"-p", "err", "--no-pager", "-o", "short-iso", "-n", "50", "--since", "1 hour ago"}, got)
	assert.Equal(t, "3 error entries since 1 hour ago", *section.Summary)

	snap := section.Body.(Snapshot)
	require.Len(t, snap.Entries, 3)
	assert.Equal(t, Entry{Timestamp: "2024-03-01T09:58:12+0000", Host: "web-01", Unit: "kernel", Message: "EXT4-fs error (device sda1): bad block"}, snap.Entries[0])
	assert.Equal(t, "sshd", snap.Entries[1].Unit)
	assert.Equal(t, "Failed to start nginx.service.", snap.Entries[2].Message)
}

func TestCollectDegradesOnFailure(t *testing.T) {
	c := New(time.Second)
	c.run = func(context.Context, ...string) ([]byte, error) {
		return nil, &exec.Error{Name: "journalctl", Err: exec.ErrNotFound}
	}
	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDegraded, section.Status)
	assert.Equal(t, "journalctl not available", *section.Summary)
}

func TestCollectTimeout(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.run = func(ctx context.Context, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, "journalctl timed out", *section.Summary)
}
