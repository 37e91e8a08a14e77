// Package security checks sshd, sudoers and cgroup settings for common
// hardening gaps.
package security

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pranshuparmar/hostreport/internal/collector"
	"github.com/pranshuparmar/hostreport/internal/proc"
	"github.com/pranshuparmar/hostreport/pkg/model"
)

var Metadata = model.CollectorMetadata{
	ID:          "security",
	Title:       "Security Posture",
	Description: "Key host hardening checks",
}

// sshd_config Include directives may nest; real configs use one level.
const maxIncludeDepth = 4

type Finding struct {
	Message  string         `json:"message"`
	Severity model.Severity `json:"severity"`
}

type SSHDAnalysis struct {
	HardeningPresent bool      `json:"hardening_present"`
	Files            []string  `json:"files"`
	Findings         []Finding `json:"findings"`
}

type SudoersAnalysis struct {
	IncludesDir bool      `json:"includes_dir"`
	Files       []string  `json:"files"`
	Findings    []Finding `json:"findings"`
}

type CgroupAnalysis struct {
	UnifiedHierarchy bool      `json:"unified_hierarchy"`
	Controllers      []string  `json:"controllers"`
	Findings         []Finding `json:"findings"`
}

// Snapshot is the body of the security section.
type Snapshot struct {
	SSHD    SSHDAnalysis    `json:"sshd"`
	Sudoers SudoersAnalysis `json:"sudoers"`
	Cgroups CgroupAnalysis  `json:"cgroups"`
}

// Findings returns every finding across the three checks.
func (s Snapshot) Findings() []Finding {
	out := make([]Finding, 0, len(s.SSHD.Findings)+len(s.Sudoers.Findings)+len(s.Cgroups.Findings))
	out = append(out, s.SSHD.Findings...)
	out = append(out, s.Sudoers.Findings...)
	return append(out, s.Cgroups.Findings...)
}

type Collector struct {
	etc string
	fs  proc.FS
}

// New reads sshd and sudoers configuration below etc and cgroup state from
// fs.Sys.
func New(etc string, fs proc.FS) *Collector {
	return &Collector{etc: etc, fs: fs}
}

func Factory(etc string, fs proc.FS) collector.Factory {
	return func() collector.Collector { return New(etc, fs) }
}

func (c *Collector) Metadata() model.CollectorMetadata { return Metadata }

func (c *Collector) Collect(_ context.Context, _ model.CollectionContext) (model.Section, error) {
	notes := []string{}

	sshd, sshdNotes, err := c.analyzeSSHD()
	if err != nil {
		notes = append(notes, fmt.Sprintf("sshd_config check failed: %v", err))
	}
	notes = append(notes, sshdNotes...)

	sudoers, sudoNotes, err := c.analyzeSudoers()
	if err != nil {
		notes = append(notes, fmt.Sprintf("sudoers check failed: %v", err))
	}
	notes = append(notes, sudoNotes...)

	cgroups, err := analyzeCgroups(c.fs)
	if err != nil {
		notes = append(notes, fmt.Sprintf("cgroup check failed: %v", err))
	}

	snap := Snapshot{SSHD: sshd, Sudoers: sudoers, Cgroups: cgroups}
	if n := len(snap.Findings()); n > 0 {
		return model.DegradedSection(Metadata, fmt.Sprintf("%d potential security issues", n), snap).
			WithNotes(notes...), nil
	}
	return model.SuccessSection(Metadata, snap).
		WithSummary("No high-risk findings detected").
		WithNotes(notes...), nil
}

// sshdParser applies sshd's first-value-wins rule and stops at the first
// Match block, since everything after it is conditional.
type sshdParser struct {
	etc       string
	values    map[string]string
	hardening bool
	files     []string
	notes     []string
	stopped   bool
}

func newSSHDParser(etc string) *sshdParser {
	return &sshdParser{etc: etc, values: map[string]string{}, files: []string{}}
}

func (c *Collector) analyzeSSHD() (SSHDAnalysis, []string, error) {
	p := newSSHDParser(c.etc)
	if err := p.parseFile(filepath.Join(c.etc, "ssh", "sshd_config"), 0); err != nil {
		return SSHDAnalysis{Files: []string{}, Findings: []Finding{}}, nil, err
	}
	return p.analysis(), p.notes, nil
}

// AnalyzeSSHDConfig checks a single sshd_config document. Include
// directives are ignored.
func AnalyzeSSHDConfig(contents string) SSHDAnalysis {
	p := newSSHDParser("")
	p.parse(contents, 0)
	return p.analysis()
}

func (p *sshdParser) parseFile(path string, depth int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p.files = append(p.files, path)
	p.parse(string(data), depth)
	return nil
}

func (p *sshdParser) parse(contents string, depth int) {
	sc := bufio.NewScanner(strings.NewReader(contents))
	for sc.Scan() && !p.stopped {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		value := strings.ToLower(strings.Join(fields[1:], " "))
		// "Key=value" is accepted by sshd as well.
		if k, v, ok := strings.Cut(fields[0], "="); ok {
			key = strings.ToLower(k)
			value = strings.ToLower(strings.TrimSpace(v + " " + strings.Join(fields[1:], " ")))
		}

		switch key {
		case "match":
			p.stopped = true
		case "include":
			if p.etc != "" && depth < maxIncludeDepth {
				for _, pattern := range fields[1:] {
					p.include(pattern, depth+1)
				}
			}
		case "kexalgorithms", "ciphers", "macs":
			p.hardening = true
		default:
			if _, seen := p.values[key]; !seen {
				p.values[key] = value
			}
		}
	}
}

func (p *sshdParser) include(pattern string, depth int) {
	switch {
	case strings.HasPrefix(pattern, "/etc/"):
		pattern = filepath.Join(p.etc, strings.TrimPrefix(pattern, "/etc/"))
	case !filepath.IsAbs(pattern):
		pattern = filepath.Join(p.etc, "ssh", pattern)
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		p.notes = append(p.notes, fmt.Sprintf("Bad sshd Include pattern %q", pattern))
		return
	}
	sort.Strings(matches)
	for _, m := range matches {
		if err := p.parseFile(m, depth); err != nil {
			p.notes = append(p.notes, fmt.Sprintf("Failed to read %s: %v", m, err))
		}
	}
}

func (p *sshdParser) analysis() SSHDAnalysis {
	a := SSHDAnalysis{HardeningPresent: p.hardening, Files: p.files, Findings: []Finding{}}
	if a.Files == nil {
		a.Files = []string{}
	}

	if p.values["passwordauthentication"] == "yes" {
		a.Findings = append(a.Findings, Finding{Message: "PasswordAuthentication is enabled", Severity: model.SeverityWarning})
	}
	if v := p.values["permitrootlogin"]; v == "yes" || v == "without-password" {
		a.Findings = append(a.Findings, Finding{Message: "PermitRootLogin allows direct root access", Severity: model.SeverityCritical})
	}
	if p.values["challengeresponseauthentication"] == "yes" {
		a.Findings = append(a.Findings, Finding{Message: "ChallengeResponseAuthentication is enabled", Severity: model.SeverityWarning})
	}
	if strings.Contains(p.values["protocol"], "1") {
		a.Findings = append(a.Findings, Finding{Message: "SSH protocol version 1 is allowed", Severity: model.SeverityCritical})
	}
	return a
}

func (c *Collector) analyzeSudoers() (SudoersAnalysis, []string, error) {
	path := filepath.Join(c.etc, "sudoers")
	data, err := os.ReadFile(path)
	if err != nil {
		return SudoersAnalysis{Files: []string{}, Findings: []Finding{}}, nil, err
	}

	a := AnalyzeSudoers(string(data))
	a.Files = []string{path}
	if !a.IncludesDir {
		return a, nil, nil
	}

	var notes []string
	dropIns, _ := filepath.Glob(filepath.Join(c.etc, "sudoers.d", "*"))
	sort.Strings(dropIns)
	for _, f := range dropIns {
		// sudo skips names containing a dot or ending in a tilde.
		base := filepath.Base(f)
		if strings.Contains(base, ".") || strings.HasSuffix(base, "~") {
			continue
		}
		data, err := os.ReadFile(f)
		if err != nil {
			notes = append(notes, fmt.Sprintf("Failed to read %s: %v", f, err))
			continue
		}
		a.Files = append(a.Files, f)
		a.Findings = append(a.Findings, AnalyzeSudoers(string(data)).Findings...)
	}
	return a, notes, nil
}

// AnalyzeSudoers flags password-less and wildcard rules in one sudoers
// document.
func AnalyzeSudoers(contents string) SudoersAnalysis {
	a := SudoersAnalysis{Files: []string{}, Findings: []Finding{}}

	sc := bufio.NewScanner(strings.NewReader(contents))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#includedir") || strings.HasPrefix(line, "@includedir") {
			a.IncludesDir = true
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if _, cmds, ok := strings.Cut(line, "NOPASSWD:"); ok && strings.Contains(cmds, "ALL") {
			a.Findings = append(a.Findings, Finding{
				Message:  "Potential password-less sudo entry: " + line,
				Severity: model.SeverityWarning,
			})
		}
		if strings.Contains(line, "ALL=(ALL) ALL") && strings.Fields(line)[0] == "ALL" {
			a.Findings = append(a.Findings, Finding{
				Message:  "Wildcard sudo entry grants full access",
				Severity: model.SeverityCritical,
			})
		}
	}
	return a
}

func analyzeCgroups(fs proc.FS) (CgroupAnalysis, error) {
	unified, controllers, err := fs.CgroupControllers()
	a := CgroupAnalysis{UnifiedHierarchy: unified, Controllers: controllers, Findings: []Finding{}}
	if !unified {
		a.Findings = append(a.Findings, Finding{
			Message:  "Host is not running with cgroup v2 unified hierarchy",
			Severity: model.SeverityWarning,
		})
	}
	return a, err
}
