package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seiyar26/ppt-template-manager/internal/middleware"
	"github.com/seiyar26/ppt-template-manager/internal/models"
	"github.com/seiyar26/ppt-template-manager/internal/services"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

type categoryRequest struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	Position int    `json:"position"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	categories, err := h.categoryService.ListCategories(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) Get(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	category, err := h.categoryService.GetCategory(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category := &models.Category{
		Name:     req.Name,
		Color:    req.Color,
		Icon:     req.Icon,
		Position: req.Position,
	}

	created, err := h.categoryService.CreateCategory(c.Request.Context(), user.ID, category)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": created})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category := &models.Category{
		Name:     req.Name,
		Color:    req.Color,
		Icon:     req.Icon,
		Position: req.Position,
	}

	updated, err := h.categoryService.UpdateCategory(c.Request.Context(), user.ID, c.Param("id"), category)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": updated})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.categoryService.DeleteCategory(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
