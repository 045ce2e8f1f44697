package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is implemented by cache backends that live out of process.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type HealthChecker struct {
	db      *pgxpool.Pool
	cache   Pinger
	dataDir string
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Cache    ComponentHealth `json:"cache"`
	System   SystemHealth    `json:"system"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

type SystemHealth struct {
	DiskPercent   float64 `json:"disk_percent"`
	DiskFree      string  `json:"disk_free"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
}

// NewHealthChecker accepts a nil pool (database unavailable) and a nil cache
// pinger (in-memory cache).
func NewHealthChecker(db *pgxpool.Pool, cache Pinger, dataDir string) *HealthChecker {
	if dataDir == "" {
		dataDir = "."
	}
	return &HealthChecker{db: db, cache: cache, dataDir: dataDir}
}

// Check reports "healthy" only when the database answers. A failing cache
// only degrades the status.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	out := HealthStatus{
		Database: h.checkDatabase(ctx),
		Cache:    h.checkCache(ctx),
		System:   checkSystem(h.dataDir),
	}
	switch {
	case out.Database.Status != StatusHealthy:
		out.Status = StatusUnhealthy
	case out.Cache.Status == StatusUnhealthy:
		out.Status = StatusDegraded
	default:
		out.Status = StatusHealthy
	}
	return out
}

func ping(ctx context.Context, fn func(context.Context) error) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	c := ComponentHealth{Status: StatusHealthy, ResponseTime: time.Since(start).Milliseconds()}
	if err != nil {
		c.Status = StatusUnhealthy
		c.Error = err.Error()
	}
	return c
}

func (h *HealthChecker) checkDatabase(ctx context.Context) ComponentHealth {
	if h.db == nil {
		return ComponentHealth{Status: "unavailable"}
	}
	return ping(ctx, h.db.Ping)
}

func (h *HealthChecker) checkCache(ctx context.Context) ComponentHealth {
	if h.cache == nil {
		return ComponentHealth{Status: "memory"}
	}
	return ping(ctx, h.cache.Ping)
}

func checkSystem(dir string) SystemHealth {
	var s SystemHealth
	if d, err := disk.Usage(dir); err == nil {
		s.DiskPercent = d.UsedPercent
		s.DiskFree = formatBytes(d.Free)
	}
	if m, err := mem.VirtualMemory(); err == nil {
		s.MemoryPercent = m.UsedPercent
		s.MemoryUsed = formatBytes(m.Used)
	}
	return s
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB", gb)
}
