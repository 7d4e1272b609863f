package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"

	"github.com/commoditydesk/riskengine/internal/database"
)

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	db      *database.PostgresDB
	redis   *database.RedisClient
	logger  *logrus.Logger
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db *database.PostgresDB, redis *database.RedisClient, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, logger: logger, started: time.Now()}
}

// GetHealth handles GET /health. A failing dependency degrades the status but
// still answers 200 so load balancers can read the detail.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	status := "healthy"

	dbStatus := "up"
	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			dbStatus = "down"
			status = "degraded"
			h.logger.Errorf("database health check failed: %v", err)
		}
	} else {
		dbStatus = "not_configured"
	}

	redisStatus := "up"
	if h.redis != nil {
		if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
			redisStatus = "down"
			status = "degraded"
			h.logger.Errorf("redis health check failed: %v", err)
		}
	} else {
		redisStatus = "not_configured"
	}

	system := gin.H{"goroutines": runtime.NumGoroutine()}
	if memInfo, err := mem.VirtualMemoryWithContext(c.Request.Context()); err == nil {
		system["memory_used_percent"] = memInfo.UsedPercent
	}
	if cpuPercent, err := cpu.PercentWithContext(c.Request.Context(), 0, false); err == nil && len(cpuPercent) > 0 {
		system["cpu_percent"] = cpuPercent[0]
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"dependencies": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"system": system,
	})
}
