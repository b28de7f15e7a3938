package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seiyar26/ppt-template-manager/internal/middleware"
	"github.com/seiyar26/ppt-template-manager/internal/models"
	"github.com/seiyar26/ppt-template-manager/internal/services"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create accepts a multipart upload with the pptx under "file" plus optional
// name/description form fields. The response carries the template as stored,
// including a slide_count of 0 when conversion did not succeed.
func (h *TemplateHandler) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pptx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .pptx files are supported"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	description := c.PostForm("description")

	template, err := h.templateService.CreateTemplate(c.Request.Context(), user.ID, file, header.Filename, name, description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"template": template})
}

func (h *TemplateHandler) List(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	templates, err := h.templateService.ListTemplates(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	template, err := h.templateService.GetTemplate(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

type updateTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *TemplateHandler) Update(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), user.ID, c.Param("id"), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.templateService.DeleteTemplate(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

type fieldRequest struct {
	SlideIndex int     `json:"slide_index"`
	Label      string  `json:"label"`
	Type       string  `json:"type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

func (h *TemplateHandler) CreateField(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	field := &models.Field{
		SlideIndex: req.SlideIndex,
		Label:      req.Label,
		Type:       req.Type,
		X:          req.X,
		Y:          req.Y,
		Width:      req.Width,
		Height:     req.Height,
	}

	created, err := h.templateService.DefineField(c.Request.Context(), user.ID, c.Param("id"), field)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"field": created})
}

func (h *TemplateHandler) UpdateField(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	field := &models.Field{
		SlideIndex: req.SlideIndex,
		Label:      req.Label,
		X:          req.X,
		Y:          req.Y,
		Width:      req.Width,
		Height:     req.Height,
	}

	updated, err := h.templateService.UpdateField(c.Request.Context(), user.ID, c.Param("id"), c.Param("fieldId"), field)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"field": updated})
}

func (h *TemplateHandler) DeleteField(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.templateService.DeleteField(c.Request.Context(), user.ID, c.Param("id"), c.Param("fieldId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Field deleted"})
}

func (h *TemplateHandler) AssignCategory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req struct {
		CategoryID string `json:"category_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id is required"})
		return
	}

	if err := h.templateService.AssignCategory(c.Request.Context(), user.ID, c.Param("id"), req.CategoryID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category assigned"})
}

func (h *TemplateHandler) RemoveCategory(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.templateService.RemoveCategory(c.Request.Context(), user.ID, c.Param("id"), c.Param("categoryId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category removed"})
}
