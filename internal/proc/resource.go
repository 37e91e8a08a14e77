package proc

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pranshuparmar/hostreport/pkg/model"
)

// cgroup v1 reports "no limit" as a page-aligned value close to MaxInt64.
const cgroupV1Unlimited = uint64(1) << 62

// Thermal reads thermal_zone0 from sysfs. It returns nil when the zone is
// absent or unreadable.
func (fs FS) Thermal() *model.ThermalReading {
	zone := "thermal_zone0"
	raw, err := readTrimmed(fs.sysPath("class", "thermal", zone, "temp"))
	if err != nil {
		return nil
	}
	milli, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	tempC := float64(milli) / 1000

	reading := &model.ThermalReading{Zone: zone, Celsius: tempC}
	if kind, err := readTrimmed(fs.sysPath("class", "thermal", zone, "type")); err == nil && kind != "" {
		reading.Zone = kind
	}
	switch {
	case tempC > 90:
		reading.State = "critical"
	case tempC > 70:
		reading.State = "high"
	case tempC > 60:
		reading.State = "warm"
	default:
		reading.State = "normal"
	}
	return reading
}

// CgroupMemory reads the memory limit and usage of the caller's cgroup,
// preferring the unified (v2) hierarchy. A missing or unlimited limit is
// left nil. It returns nil, nil when no cgroup memory controller is found.
func (fs FS) CgroupMemory() (*model.CgroupMemory, error) {
	v2Max := fs.sysPath("fs", "cgroup", "memory.max")
	if _, err := os.Stat(v2Max); err == nil {
		mem := &model.CgroupMemory{Version: 2}
		limit, err := readTrimmed(v2Max)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", v2Max, err)
		}
		if limit != "max" {
			v, err := strconv.ParseUint(limit, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", v2Max, err)
			}
			mem.LimitBytes = &v
		}
		if usage, err := readUint(fs.sysPath("fs", "cgroup", "memory.current")); err == nil {
			mem.UsageBytes = &usage
		}
		return mem, nil
	}

	v1Limit := fs.sysPath("fs", "cgroup", "memory", "memory.limit_in_bytes")
	limit, err := readUint(v1Limit)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	mem := &model.CgroupMemory{Version: 1}
	if limit < cgroupV1Unlimited {
		mem.LimitBytes = &limit
	}
	if usage, err := readUint(fs.sysPath("fs", "cgroup", "memory", "memory.usage_in_bytes")); err == nil {
		mem.UsageBytes = &usage
	}
	return mem, nil
}

func readUint(path string) (uint64, error) {
	raw, err := readTrimmed(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}

// CgroupControllers reports whether the unified (v2) hierarchy is mounted
// and, if so, which controllers it enables.
func (fs FS) CgroupControllers() (unified bool, controllers []string, err error) {
	path := fs.sysPath("fs", "cgroup", "cgroup.controllers")
	if _, statErr := os.Stat(path); statErr != nil {
		return false, []string{}, nil
	}
	line, err := readTrimmed(path)
	if err != nil {
		return true, []string{}, err
	}
	return true, strings.Fields(line), nil
}
