package server

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemInfo describes the host the bridge runs on.
type SystemInfo struct {
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	CPUCount    int    `json:"cpu_count"`
	MemoryTotal uint64 `json:"memory_total_bytes"`
	MemoryUsed  uint64 `json:"memory_used_bytes"`
}

func sysInfo() SystemInfo {
	info := SystemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if n, err := cpu.Counts(true); err == nil {
		info.CPUCount = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = vm.Total
		info.MemoryUsed = vm.Used
	}
	return info
}
