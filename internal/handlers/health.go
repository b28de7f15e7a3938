package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/database"
)

type HealthHandler struct {
	db        *gorm.DB
	startedAt time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, startedAt: time.Now()}
}

// Check reports process liveness and datastore connectivity. A DB outage
// degrades the status instead of failing the process.
func (h *HealthHandler) Check(c *gin.Context) {
	dbStatus := "ok"
	status := "ok"
	code := http.StatusOK

	if err := database.Health(h.db); err != nil {
		dbStatus = "unreachable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	})
}
