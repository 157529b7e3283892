package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// GetCPUUsage returns the current CPU usage as a percentage
func GetCPUUsage() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("could not get CPU usage")
	}
	return percentages[0], nil
}

// GetMemoryUsage returns the current memory usage as a percentage
func GetMemoryUsage() (float64, error) {
	virtualMem, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return virtualMem.UsedPercent, nil
}

// GetProcessMemoryMB returns the resident memory of this process in MiB.
func GetProcessMemoryMB() (float64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / 1024 / 1024, nil
}

// Snapshot collects host and process usage, leaving out what cannot be read.
func Snapshot() map[string]interface{} {
	out := map[string]interface{}{}
	if v, err := GetCPUUsage(); err == nil {
		out["cpu_percent"] = v
	}
	if v, err := GetMemoryUsage(); err == nil {
		out["memory_percent"] = v
	}
	if v, err := GetProcessMemoryMB(); err == nil {
		out["process_rss_mb"] = v
	}
	return out
}
