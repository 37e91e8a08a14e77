package model

import (
	"errors"
	"fmt"
)

// DigestThresholds are ratio thresholds in [0, 1]. Disk thresholds are
// used-space ratios, memory thresholds are remaining-memory ratios.
type DigestThresholds struct {
	DiskWarning    float64 `json:"disk_warning" mapstructure:"disk_warning" yaml:"disk_warning"`
	DiskCritical   float64 `json:"disk_critical" mapstructure:"disk_critical" yaml:"disk_critical"`
	MemoryWarning  float64 `json:"memory_warning" mapstructure:"memory_warning" yaml:"memory_warning"`
	MemoryCritical float64 `json:"memory_critical" mapstructure:"memory_critical" yaml:"memory_critical"`
}

func DefaultDigestThresholds() DigestThresholds {
	return DigestThresholds{
		DiskWarning:    0.90,
		DiskCritical:   0.95,
		MemoryWarning:  0.10,
		MemoryCritical: 0.05,
	}
}

// Validate reports every out-of-range value and ordering violation.
func (t DigestThresholds) Validate() error {
	var errs []error
	check := func(name string, v float64) {
		if v != v || v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}
	check("disk_warning", t.DiskWarning)
	check("disk_critical", t.DiskCritical)
	check("memory_warning", t.MemoryWarning)
	check("memory_critical", t.MemoryCritical)

	if t.DiskWarning > t.DiskCritical {
		errs = append(errs, fmt.Errorf("disk_warning (%v) must not exceed disk_critical (%v)", t.DiskWarning, t.DiskCritical))
	}
	if t.MemoryWarning < t.MemoryCritical {
		errs = append(errs, fmt.Errorf("memory_warning (%v) must not be below memory_critical (%v)", t.MemoryWarning, t.MemoryCritical))
	}
	return errors.Join(errs...)
}
