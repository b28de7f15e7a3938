package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/models"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// ListCategories returns the user's categories plus the shared defaults,
// ordered by position.
func (s *CategoryService) ListCategories(_ context.Context, userID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.
		Where("user_id = ? OR is_default = ?", userID, true).
		Order("position ASC, created_at ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(_ context.Context, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	err := s.db.First(&category, "id = ? AND (user_id = ? OR is_default = ?)", categoryID, userID, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) CreateCategory(_ context.Context, userID string, category *models.Category) (*models.Category, error) {
	if category.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	category.ID = uuid.New().String()
	category.UserID = userID
	category.IsDefault = false
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory edits one of the user's own categories; the shared defaults
// are read-only.
func (s *CategoryService) UpdateCategory(_ context.Context, userID, categoryID string, updated *models.Category) (*models.Category, error) {
	var category models.Category
	err := s.db.First(&category, "id = ? AND user_id = ?", categoryID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	if updated.Name != "" {
		category.Name = updated.Name
	}
	if updated.Color != "" {
		category.Color = updated.Color
	}
	if updated.Icon != "" {
		category.Icon = updated.Icon
	}
	if updated.Position != 0 {
		category.Position = updated.Position
	}
	if err := s.db.Save(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return &category, nil
}

func (s *CategoryService) DeleteCategory(_ context.Context, userID, categoryID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", categoryID, userID).Delete(&models.Category{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("category_id = ?", categoryID).Delete(&models.TemplateCategory{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
