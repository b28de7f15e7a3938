package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/seiyar26/ppt-template-manager/internal/services"
)

// LogHandler exposes the request activity log to admin users.
type LogHandler struct {
	logService *services.ActivityLogService
}

func NewLogHandler(logService *services.ActivityLogService) *LogHandler {
	return &LogHandler{logService: logService}
}

func (h *LogHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := h.logService.List(c.Request.Context(), services.ActivityLogQuery{
		Method: c.Query("method"),
		Path:   c.Query("path"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries, "total": total})
}
