package digest

import (
	"fmt"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

// MemoryRule evaluates host and cgroup memory headroom of the proc section.
func MemoryRule(s model.Section, t model.DigestThresholds) []model.CriticalFinding {
	if s.ID != ProcSectionID {
		return nil
	}
	var body struct {
		Memory *model.MemorySnapshot `json:"memory"`
	}
	if err := s.DecodeBody(&body); err != nil || body.Memory == nil {
		return nil
	}

	var findings []model.CriticalFinding
	if h := body.Memory.Host; h != nil && h.TotalBytes != nil && h.AvailableBytes != nil && *h.TotalBytes > 0 {
		ratio := float64(*h.AvailableBytes) / float64(*h.TotalBytes)
		if sev, ok := memorySeverity(ratio, t); ok {
			findings = append(findings, finding(s, sev, fmt.Sprintf(
				"Host memory %.1f%% available (%.2f GiB free)",
				ratio*100, float64(*h.AvailableBytes)/gib)))
		}
	}

	if c := body.Memory.Cgroup; c != nil && c.LimitBytes != nil && c.UsageBytes != nil && *c.LimitBytes > 0 {
		limit, usage := *c.LimitBytes, *c.UsageBytes
		var remaining uint64
		if usage < limit {
			remaining = limit - usage
		}
		ratio := float64(remaining) / float64(limit)
		if sev, ok := memorySeverity(ratio, t); ok {
			findings = append(findings, finding(s, sev, fmt.Sprintf(
				"Cgroup memory %.1f%% headroom (%.2f GiB free of limit)",
				ratio*100, float64(remaining)/gib)))
		}
	}
	return findings
}

func memorySeverity(remaining float64, t model.DigestThresholds) (model.Severity, bool) {
	switch {
	case remaining <= t.MemoryCritical:
		return model.SeverityCritical, true
	case remaining <= t.MemoryWarning:
		return model.SeverityWarning, true
	}
	return model.SeverityInfo, false
}
