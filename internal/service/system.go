package service

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemService reports host-level health for the admin dashboard.
type SystemService interface {
	Status(ctx context.Context) (*SystemStatus, error)
}

// SystemStatus is a point-in-time snapshot of the host.
type SystemStatus struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemTotal      uint64  `json:"mem_total"`
	MemUsed       uint64  `json:"mem_used"`
	DiskTotal     uint64  `json:"disk_total"`
	DiskUsed      uint64  `json:"disk_used"`
	Load1         float64 `json:"load1"`
	Load5         float64 `json:"load5"`
	Load15        float64 `json:"load15"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	StartedAt     int64   `json:"started_at"`
}

type systemService struct {
	startedAt time.Time
}

// NewSystemService records the process start time for uptime reporting.
func NewSystemService() SystemService {
	return &systemService{startedAt: time.Now().UTC()}
}

// Status collects best-effort host stats; individual probe failures leave
// the corresponding fields zero rather than failing the whole snapshot.
func (s *systemService) Status(_ context.Context) (*SystemStatus, error) {
	status := &SystemStatus{
		Goroutines: runtime.NumGoroutine(),
		StartedAt:  s.startedAt.Unix(),
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if v, err := mem.VirtualMemory(); err == nil {
		status.MemTotal = v.Total
		status.MemUsed = v.Used
	}
	if d, err := disk.Usage("/"); err == nil {
		status.DiskTotal = d.Total
		status.DiskUsed = d.Used
	}
	if l, err := load.Avg(); err == nil {
		status.Load1 = l.Load1
		status.Load5 = l.Load5
		status.Load15 = l.Load15
	}
	if u, err := host.Uptime(); err == nil {
		status.UptimeSeconds = u
	}
	return status, nil
}
