package database

import (
	"context"
	"time"
)

// HealthStatus summarizes a point-in-time database health probe.
type HealthStatus struct {
	Status          string        `json:"status"`
	Timestamp       time.Time     `json:"timestamp"`
	ResponseTime    time.Duration `json:"response_time"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"wait_count"`
	Error           string        `json:"error,omitempty"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Health pings the database and reports pool statistics. A ping slower than
// the slow-query threshold reports degraded rather than unhealthy.
func (m *Manager) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	status := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: start,
	}

	err := m.Ping(ctx)
	status.ResponseTime = time.Since(start)

	stats := m.Stats()
	status.OpenConnections = stats.OpenConnections
	status.InUse = stats.InUse
	status.Idle = stats.Idle
	status.WaitCount = stats.WaitCount

	switch {
	case err != nil:
		status.Status = StatusUnhealthy
		status.Error = err.Error()
	case status.ResponseTime > m.config.SlowQueryThreshold:
		status.Status = StatusDegraded
	}

	return status
}
