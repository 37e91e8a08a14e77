package security

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/hostreport/internal/proc"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newHost(t *testing.T) (string, proc.FS) {
	t.Helper()
	root := t.TempDir()
	etc := filepath.Join(root, "etc")
	fs := proc.FS{Proc: filepath.Join(root, "proc"), Sys: filepath.Join(root, "sys")}
	require.NoError(t, os.MkdirAll(etc, 0o755))
	return etc, fs
}

func severities(findings []Finding) []model.Severity {
	out := make([]model.Severity, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Severity)
	}
	return out
}

func TestAnalyzeSSHDConfigDetectsInsecureSettings(t *testing.T) {
	config := `
# Comment line
PasswordAuthentication yes
PermitRootLogin yes
ChallengeResponseAuthentication yes
Protocol 2,1
`
	a := AnalyzeSSHDConfig(config)
	require.Len(t, a.Findings, 4)
	assert.Equal(t, []model.Severity{
		model.SeverityWarning, model.SeverityCritical, model.SeverityWarning, model.SeverityCritical,
	}, severities(a.Findings))
	assert.False(t, a.HardeningPresent)
}

func TestAnalyzeSSHDConfigMarksHardening(t *testing.T) {
	a := AnalyzeSSHDConfig("KexAlgorithms curve25519-sha256\n")
	assert.True(t, a.HardeningPresent)
	assert.Empty(t, a.Findings)
}

func TestAnalyzeSSHDConfigFirstValueWins(t *testing.T) {
	config := `PermitRootLogin no
PermitRootLogin yes
PasswordAuthentication=no
Match User backup
	PasswordAuthentication yes
`
	a := AnalyzeSSHDConfig(config)
	assert.Empty(t, a.Findings)
}

func TestAnalyzeSSHDConfigWithoutPasswordIsRootAccess(t *testing.T) {
	a := AnalyzeSSHDConfig("permitrootlogin WITHOUT-PASSWORD\n")
	require.Len(t, a.Findings, 1)
	assert.Equal(t, "PermitRootLogin allows direct root access", a.Findings[0].Message)
}

func TestAnalyzeSudoers(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     []model.Severity
	}{
		{"wildcard", "ALL    ALL=(ALL) ALL", []model.Severity{model.SeverityCritical}},
		{"nopasswd", "%wheel ALL=(ALL) NOPASSWD: ALL", []model.Severity{model.SeverityWarning}},
		{"scoped", "%sudo ALL=(ALL:ALL) ALL\n# ALL ALL=(ALL) ALL", []model.Severity{}},
		{"nopasswd single command", "deploy ALL=(root) NOPASSWD: /usr/bin/systemctl restart app", []model.Severity{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, severities(AnalyzeSudoers(tt.contents).Findings))
		})
	}
}

func TestAnalyzeSudoersIncludeDir(t *testing.T) {
	assert.True(t, AnalyzeSudoers("@includedir /etc/sudoers.d\n").IncludesDir)
	assert.True(t, AnalyzeSudoers("#includedir /etc/sudoers.d\n").IncludesDir)
	assert.False(t, AnalyzeSudoers("root ALL=(ALL:ALL) ALL\n").IncludesDir)
}

func TestCollectHardenedHost(t *testing.T) {
	etc, fs := newHost(t)
	writeFile(t, filepath.Join(etc, "ssh", "sshd_config"), "Include /etc/ssh/sshd_config.d/*.conf\nPermitRootLogin no\nCiphers aes256-gcm@openssh.com\n")
	writeFile(t, filepath.Join(etc, "sudoers"), "root ALL=(ALL:ALL) ALL\n")
	writeFile(t, filepath.Join(fs.Sys, "fs", "cgroup", "cgroup.controllers"), "cpu memory pids\n")

	section, err := New(etc, fs).Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, section.Status)
	assert.Equal(t, "No high-risk findings detected", *section.Summary)
	assert.Empty(t, section.Notes)

	snap := section.Body.(Snapshot)
	assert.True(t, snap.SSHD.HardeningPresent)
	assert.True(t, snap.Cgroups.UnifiedHierarchy)
	assert.Equal(t, []string{"cpu", "memory", "pids"}, snap.Cgroups.Controllers)
}

func TestCollectFollowsIncludes(t *testing.T) {
	etc, fs := newHost(t)
	writeFile(t, filepath.Join(etc, "ssh", "sshd_config"), "Include /etc/ssh/sshd_config.d/*.conf\nPasswordAuthentication no\n")
	writeFile(t, filepath.Join(etc, "ssh", "sshd_config.d", "50-cloud-init.conf"), "PasswordAuthentication yes\n")
	writeFile(t, filepath.Join(etc, "sudoers"), "@includedir /etc/sudoers.d\n")
	writeFile(t, filepath.Join(etc, "sudoers.d", "90-deploy"), "deploy ALL=(ALL) NOPASSWD: ALL\n")
	writeFile(t, filepath.Join(etc, "sudoers.d", "README.txt"), "ALL ALL=(ALL) ALL\n")
	writeFile(t, filepath.Join(fs.Sys, "fs", "cgroup", "cgroup.controllers"), "memory\n")

	section, err := New(etc, fs).Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDegraded, section.Status)
	assert.Equal(t, "2 potential security issues", *section.Summary)

	snap := section.Body.(Snapshot)
	require.Len(t, snap.SSHD.Findings, 1)
	assert.Equal(t, "PasswordAuthentication is enabled", snap.SSHD.Findings[0].Message)
	assert.Len(t, snap.SSHD.Files, 2)
	require.Len(t, snap.Sudoers.Findings, 1)
	assert.Equal(t, "Potential password-less sudo entry: deploy ALL=(ALL) NOPASSWD: ALL", snap.Sudoers.Findings[0].Message)
	assert.Len(t, snap.Sudoers.Files, 2)
}

func TestCollectMissingFilesAndCgroupV1(t *testing.T) {
	etc, fs := newHost(t)

	section, err := New(etc, fs).Collect(context.Background(), model.CollectionContext{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDegraded, section.Status)
	assert.Equal(t, "1 potential security issues", *section.Summary)
	require.Len(t, section.Notes, 2)
	assert.Contains(t, section.Notes[0], "sshd_config check failed")
	assert.Contains(t, section.Notes[1], "sudoers check failed")

	snap := section.Body.(Snapshot)
	assert.False(t, snap.Cgroups.UnifiedHierarchy)
	assert.Equal(t, "Host is not running with cgroup v2 unified hierarchy", snap.Cgroups.Findings[0].Message)
}
