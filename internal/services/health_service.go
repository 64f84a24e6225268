package services

import (
	"context"
	"os"
	"time"

	"spotcli/internal/config"
)

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthService reports process health and verifies that the working
// directories are reachable.
type HealthService struct {
	cfg     *config.Config
	version string
	started time.Time
}

// NewHealthService creates the health service.
func NewHealthService(cfg *config.Config, version string) *HealthService {
	return &HealthService{
		cfg:     cfg,
		version: version,
		started: time.Now(),
	}
}

// Check returns the current health status. A missing working directory
// degrades the status but does not fail the endpoint.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string),
	}

	dirs := map[string]string{
		"data_dir":    s.cfg.Paths.DataDir,
		"uploads_dir": s.cfg.Paths.UploadsDir,
		"reports_dir": s.cfg.Paths.ReportsDir,
	}
	for name, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			status.Checks[name] = "missing"
			status.Status = "degraded"
			continue
		}
		status.Checks[name] = "ok"
	}

	return status
}
