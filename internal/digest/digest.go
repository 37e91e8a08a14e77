// Package digest derives a prioritized health summary from finished sections.
package digest

import (
	"github.com/pranshuparmar/hostreport/pkg/model"
)

const (
	StorageSectionID = "storage"
	ProcSectionID    = "proc"

	degradedFallback = "Collector reported a degraded state"
	errorFallback    = "Collector failed"
)

// Rule inspects one section and returns zero or more findings.
type Rule func(section model.Section, t model.DigestThresholds) []model.CriticalFinding

// DefaultRules is the fixed rule set applied to every section, in order.
var DefaultRules = []Rule{StatusRule, StorageRule, MemoryRule}

// Build walks sections in order and applies rules to each. Findings are
// emitted in section order, then rule order within a section.
func Build(sections []model.Section, t model.DigestThresholds, rules ...Rule) model.HealthDigest {
	if len(rules) == 0 {
		rules = DefaultRules
	}

	findings := []model.CriticalFinding{}
	overall := model.SeverityInfo
	for _, s := range sections {
		for _, rule := range rules {
			for _, f := range rule(s, t) {
				overall = model.MaxSeverity(overall, f.Severity)
				findings = append(findings, f)
			}
		}
	}
	return model.HealthDigest{Overall: overall, Findings: findings}
}

func finding(s model.Section, sev model.Severity, msg string) model.CriticalFinding {
	return model.CriticalFinding{
		SourceID:    s.ID,
		SourceTitle: s.Title,
		Severity:    sev,
		Message:     msg,
	}
}

// StatusRule maps Degraded to Warning and Error to Critical.
func StatusRule(s model.Section, _ model.DigestThresholds) []model.CriticalFinding {
	var sev model.Severity
	var fallback string
	switch s.Status {
	case model.StatusDegraded:
		sev, fallback = model.SeverityWarning, degradedFallback
	case model.StatusError:
		sev, fallback = model.SeverityCritical, errorFallback
	default:
		return nil
	}

	msg := fallback
	if s.Summary != nil {
		msg = *s.Summary
	}
	return []model.CriticalFinding{finding(s, sev, msg)}
}
