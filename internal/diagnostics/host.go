package diagnostics

import (
	"fmt"
	"runtime"

	"github.com/mackerelio/go-osstat/loadavg"
	"github.com/mackerelio/go-osstat/memory"
)

type Host struct {
	CPUs          int     `json:"cpus" yaml:"cpus"`
	MemTotalBytes uint64  `json:"mem_total_bytes" yaml:"mem_total_bytes"`
	MemUsedBytes  uint64  `json:"mem_used_bytes" yaml:"mem_used_bytes"`
	MemFreeBytes  uint64  `json:"mem_free_bytes" yaml:"mem_free_bytes"`
	Load1         float64 `json:"load_1" yaml:"load_1"`
	Load5         float64 `json:"load_5" yaml:"load_5"`
	Load15        float64 `json:"load_15" yaml:"load_15"`
}

type HostSnapshotFunc func() (*Host, error)

// DetectHost takes a snapshot of the host's memory and load. A host that
// can't report load averages still returns its memory figures.
func DetectHost() (*Host, error) {
	mem, err := memory.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory info: %w", err)
	}

	host := &Host{
		CPUs:          runtime.NumCPU(),
		MemTotalBytes: mem.Total,
		MemUsedBytes:  mem.Used,
		MemFreeBytes:  mem.Free,
	}

	load, err := loadavg.Get()
	if err != nil {
		return host, fmt.Errorf("failed to get load averages: %w", err)
	}
	host.Load1 = load.Loadavg1
	host.Load5 = load.Loadavg5
	host.Load15 = load.Loadavg15

	return host, nil
}
