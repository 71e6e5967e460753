package services

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ServerStatus is the point-in-time host snapshot shown on the admin panel.
type ServerStatus struct {
	CapturedAt        time.Time `json:"capturedAt"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCPULoad    float64   `json:"processCpuLoad"`
	SystemCPULoad     float64   `json:"systemCpuLoad"`
}

// CaptureStatus samples process and host metrics. diskPath decides which
// mount's usage is reported; it falls back to the root filesystem.
func CaptureStatus(diskPath string) ServerStatus {
	proc, _ := process.NewProcess(int32(os.Getpid()))
	memStat, _ := mem.VirtualMemory()
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, _ = disk.Usage("/")
	}

	status := ServerStatus{CapturedAt: time.Now().UTC()}
	if proc != nil {
		if info, _ := proc.MemoryInfo(); info != nil {
			status.ProcessRSSBytes = int64(info.RSS)
		}
		cpuPerc, _ := proc.CPUPercent()
		status.ProcessCPULoad = cpuPerc / 100.0
	}
	if memStat != nil {
		status.SystemMemoryTotal = int64(memStat.Total)
		status.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	if diskStat != nil {
		status.DiskTotalBytes = int64(diskStat.Total)
		status.DiskUsedBytes = int64(diskStat.Used)
	}
	if sysCPU, _ := cpu.Percent(0, false); len(sysCPU) > 0 {
		status.SystemCPULoad = sysCPU[0] / 100.0
	}
	return status
}
