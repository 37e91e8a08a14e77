package digest

import (
	"fmt"
	"strings"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

const gib = 1024.0 * 1024.0 * 1024.0

const (
	freeCriticalGiB     = 2.0
	freeWarningGiB      = 5.0
	inodeCriticalRatio  = 0.90
	inodeWarningRatio   = 0.80
	bootFreeCriticalGiB = 0.25
	bootFreeWarningGiB  = 0.5
)

// StorageRule evaluates the operating mounts of the storage section. Each
// signal only escalates severity; a signal whose input is absent is skipped.
func StorageRule(s model.Section, t model.DigestThresholds) []model.CriticalFinding {
	if s.ID != StorageSectionID {
		return nil
	}
	var body struct {
		OperatingMounts []model.Mount `json:"operating_mounts"`
	}
	if err := s.DecodeBody(&body); err != nil {
		return nil
	}

	var findings []model.CriticalFinding
	for _, m := range body.OperatingMounts {
		if m.MountPoint == "" || !m.Operational || m.ReadOnly {
			continue
		}
		sev, reasons := evaluateMount(m, t)
		if sev == model.SeverityInfo {
			continue
		}
		findings = append(findings, finding(s, sev, mountMessage(m, reasons)))
	}
	return findings
}

func evaluateMount(m model.Mount, t model.DigestThresholds) (model.Severity, []string) {
	sev := model.SeverityInfo
	var reasons []string
	raise := func(to model.Severity, reason string) {
		sev = model.MaxSeverity(sev, to)
		reasons = append(reasons, reason)
	}

	if m.UsageRatio != nil {
		ratio := *m.UsageRatio
		reason := fmt.Sprintf("usage %.1f%%", ratio*100)
		switch {
		case ratio >= t.DiskCritical:
			raise(model.SeverityCritical, reason)
		case ratio >= t.DiskWarning:
			raise(model.SeverityWarning, reason)
		}
	}

	if m.AvailableBytes != nil {
		free := float64(*m.AvailableBytes) / gib
		reason := fmt.Sprintf("free space %.2f GiB", free)
		switch {
		case free <= freeCriticalGiB:
			raise(model.SeverityCritical, reason)
		case free <= freeWarningGiB:
			raise(model.SeverityWarning, reason)
		}

		if m.MountPoint == "/boot" || m.MountPoint == "/boot/efi" {
			switch {
			case free <= bootFreeCriticalGiB:
				raise(model.SeverityCritical, "boot volume nearly full")
			case free <= bootFreeWarningGiB:
				raise(model.SeverityWarning, "boot volume low free space")
			}
		}
	}

	if m.InodesUsageRatio != nil {
		ratio := *m.InodesUsageRatio
		reason := fmt.Sprintf("inode usage %.1f%%", ratio*100)
		switch {
		case ratio >= inodeCriticalRatio:
			raise(model.SeverityCritical, reason)
		case ratio >= inodeWarningRatio:
			raise(model.SeverityWarning, reason)
		}
	}

	return sev, reasons
}

func mountMessage(m model.Mount, reasons []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mount %s (%s)", m.MountPoint, m.FSType)
	if m.UsageRatio != nil {
		fmt.Fprintf(&b, ": %.1f%% used", *m.UsageRatio*100)
	}
	if len(reasons) > 0 {
		b.WriteString("; ")
		b.WriteString(strings.Join(reasons, ", "))
	}
	return b.String()
}
