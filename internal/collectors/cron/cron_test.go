package cron

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

const systemCrontab = `# /etc/crontab: system-wide crontab
SHELL=/bin/sh
PATH=/usr/local/sbin:/usr/local/bin:/sbin:/bin:/usr/sbin:/usr/bin

17 *	* * *	root	cd / && run-parts --report /etc/cron.hourly
25 6	* * *	root	test -x /usr/sbin/anacron || run-parts --report /etc/cron.daily
`

func TestCollect(t *testing.T) {
	etc := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(etc, "crontab"), []byte(systemCrontab), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(etc, "cron.d"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(etc, "cron.d", "backup"), []byte(
		"@reboot root /usr/local/bin/restore-state\n@daily backup /usr/local/bin/backup --full\n61 * * * * root /bin/false\nbroken\n"), 0o644))

	c := New(etc)
	c.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	section, err := c.Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, section.Status)
	assert.Equal(t, "5 entries in 2 files", *section.Summary)
	require.Len(t, section.Notes, 2)
	assert.Contains(t, section.Notes[0], `invalid schedule "61 * * * *"`)
	assert.Contains(t, section.Notes[1], "backup:4: unrecognised crontab line")

	snap := section.Body.(Snapshot)
	require.Len(t, snap.Entries, 5)

	hourly := snap.Entries[0]
	assert.Equal(t, "17 * * * *", hourly.Schedule)
	assert.Equal(t, "root", hourly.User)
	assert.Equal(t, 5, hourly.Line)
	require.NotNil(t, hourly.NextRun)
	assert.True(t, hourly.NextRun.After(c.now()))
	assert.Equal(t, 17, hourly.NextRun.In(time.Local).Minute())

	reboot := snap.Entries[2]
	assert.True(t, reboot.AtBoot)
	assert.True(t, reboot.Valid)
	assert.Nil(t, reboot.NextRun)

	daily := snap.Entries[3]
	assert.Equal(t, "backup", daily.User)
	assert.Equal(t, "/usr/local/bin/backup --full", daily.Command)
	require.NotNil(t, daily.NextRun)
	local := daily.NextRun.In(time.Local)
	assert.Equal(t, 0, local.Hour())
	assert.Equal(t, 0, local.Minute())
	assert.LessOrEqual(t, daily.NextRun.Sub(c.now()), 24*time.Hour)

	invalid := snap.Entries[4]
	assert.False(t, invalid.Valid)
	assert.Nil(t, invalid.NextRun)
}

func TestCollectWithoutCrontab(t *testing.T) {
	section, err := New(t.TempDir()).Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDegraded, section.Status)
	assert.Empty(t, section.Notes)
}

func TestIsEnvAssignment(t *testing.T) {
	assert.True(t, isEnvAssignment("MAILTO=ops@example.com"))
	assert.True(t, isEnvAssignment("PATH = /bin"))
	assert.False(t, isEnvAssignment("*/5 * * * * root FOO=bar /bin/true"))
}
