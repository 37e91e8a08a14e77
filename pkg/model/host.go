package model

// Mount is one entry of the storage section's operating_mounts list.
// Pointer fields are nil when the value could not be read.
type Mount struct {
	MountPoint       string   `json:"mount_point"`
	Device           string   `json:"device"`
	FSType           string   `json:"fs_type"`
	ReadOnly         bool     `json:"read_only"`
	Operational      bool     `json:"operational"`
	TotalBytes       *uint64  `json:"total_bytes"`
	UsedBytes        *uint64  `json:"used_bytes"`
	AvailableBytes   *uint64  `json:"available_bytes"`
	UsageRatio       *float64 `json:"usage_ratio"`
	InodesTotal      *uint64  `json:"inodes_total"`
	InodesUsed       *uint64  `json:"inodes_used"`
	InodesUsageRatio *float64 `json:"inodes_usage_ratio"`
}

type StorageTotals struct {
	TotalBytes     uint64 `json:"total_bytes"`
	UsedBytes      uint64 `json:"used_bytes"`
	AvailableBytes uint64 `json:"available_bytes"`
}

// StorageSnapshot is the body of the storage section.
type StorageSnapshot struct {
	OperatingMounts []Mount       `json:"operating_mounts"`
	Totals          StorageTotals `json:"totals"`
}

type LoadAverage struct {
	One     float64 `json:"one"`
	Five    float64 `json:"five"`
	Fifteen float64 `json:"fifteen"`
}

type HostMemory struct {
	TotalBytes     *uint64 `json:"total_bytes"`
	AvailableBytes *uint64 `json:"available_bytes"`
}

type SwapMemory struct {
	TotalBytes uint64 `json:"total_bytes"`
	FreeBytes  uint64 `json:"free_bytes"`
}

type CgroupMemory struct {
	LimitBytes *uint64 `json:"limit_bytes"`
	UsageBytes *uint64 `json:"usage_bytes"`
	Version    int     `json:"version"`
}

type MemorySnapshot struct {
	Host   *HostMemory   `json:"host"`
	Swap   *SwapMemory   `json:"swap"`
	Cgroup *CgroupMemory `json:"cgroup"`
}

type ThermalReading struct {
	Zone    string  `json:"zone"`
	Celsius float64 `json:"celsius"`
	State   string  `json:"state"`
}

// ResourceSnapshot is the body of the proc section.
type ResourceSnapshot struct {
	LoadAvg      *LoadAverage    `json:"loadavg"`
	Memory       MemorySnapshot  `json:"memory"`
	Thermal      *ThermalReading `json:"thermal"`
	ProcessCount *int            `json:"process_count"`
}
