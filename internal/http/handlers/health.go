package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MAximeXX/AIEval/internal/realtime"
)

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewHealthHandler(db *gorm.DB, hub *realtime.Hub) *HealthHandler {
	return &HealthHandler{db: db, hub: hub}
}

// HealthCheck pings the database and reports the live client count. A
// failed ping answers 503 so load balancers stop routing here.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	body := gin.H{"status": "ok", "database": "ok"}
	status := http.StatusOK
	if err := h.ping(c.Request.Context()); err != nil {
		body["status"], body["database"] = "degraded", err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.hub != nil {
		body["realtime_clients"] = h.hub.ClientCount()
	}
	c.JSON(status, body)
}

func (h *HealthHandler) ping(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
