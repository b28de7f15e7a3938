package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seiyar26/ppt-template-manager/internal/middleware"
	"github.com/seiyar26/ppt-template-manager/internal/models"
	"github.com/seiyar26/ppt-template-manager/internal/services"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

type generateRequest struct {
	Values map[string]string `json:"values"`
	Format string            `json:"format"`
}

// Generate fills the template and streams the produced document back. The
// Export row is recorded before the response body is written.
func (h *ExportHandler) Generate(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Format == "" {
		req.Format = models.ExportFormatPPTX
	}

	export, err := h.exportService.Generate(c.Request.Context(), user.ID, c.Param("id"), req.Values, req.Format)
	if err != nil {
		respondError(c, err)
		return
	}

	reader, fileName, contentType, err := h.exportService.OpenExport(c.Request.Context(), user.ID, export.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("X-Export-Id", export.ID)
	c.DataFromReader(http.StatusOK, export.FileSize, contentType, reader, nil)
}

func (h *ExportHandler) List(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	exports, err := h.exportService.ListExports(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exports": exports})
}

func (h *ExportHandler) Get(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	export, err := h.exportService.GetExport(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"export": export})
}

func (h *ExportHandler) Download(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	reader, fileName, contentType, err := h.exportService.OpenExport(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}

func (h *ExportHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.exportService.DeleteExport(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Export deleted"})
}

func (h *ExportHandler) SendEmail(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req struct {
		Recipient string `json:"recipient" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient is required"})
		return
	}

	if err := h.exportService.SendEmail(c.Request.Context(), user.ID, c.Param("id"), req.Recipient); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Export sent"})
}
