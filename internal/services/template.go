package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/converter"
	"github.com/seiyar26/ppt-template-manager/internal/models"
	"github.com/seiyar26/ppt-template-manager/internal/storage"
)

type TemplateService struct {
	db        *gorm.DB
	store     storage.Store
	local     *storage.LocalStore
	converter converter.Converter
}

// NewTemplateService wires the template workflows. store holds pptx sources
// and may be remote; local always backs the slide images served at /uploads.
func NewTemplateService(db *gorm.DB, store storage.Store, local *storage.LocalStore, conv converter.Converter) *TemplateService {
	return &TemplateService{
		db:        db,
		store:     store,
		local:     local,
		converter: conv,
	}
}

// CreateTemplate stores the uploaded pptx, converts it to slide images and
// records everything. A failed conversion is not fatal: the template is kept
// with zero slides and treated as "not ready" until a re-upload.
func (s *TemplateService) CreateTemplate(ctx context.Context, userID string, file io.ReadSeeker, originalName, name, description string) (*models.Template, error) {
	templateID := uuid.New().String()
	sourcePath, err := storage.CanonicalPath(storage.TemplateSourcePath(templateID, filepath.Base(originalName)))
	if err != nil {
		return nil, fmt.Errorf("%w: bad file name %q", ErrValidation, originalName)
	}

	size, err := s.store.Save(ctx, sourcePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to store template file: %w", err)
	}

	template := &models.Template{
		ID:           templateID,
		UserID:       userID,
		Name:         name,
		Description:  description,
		FilePath:     sourcePath,
		OriginalName: originalName,
		FileSize:     size,
	}
	if err := s.db.Create(template).Error; err != nil {
		s.store.Delete(ctx, sourcePath)
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}
	stagingPath, err := s.stageFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to stage template for conversion: %w", err)
	}
	defer os.Remove(stagingPath)

	if err := s.convertSlides(ctx, template, stagingPath); err != nil {
		// Not ready yet; the client sees slide_count 0 and can retry later.
		log.Printf("Warning: slide conversion failed for template %s: %v", templateID, err)
	}

	return s.GetTemplate(ctx, userID, templateID)
}

func (s *TemplateService) convertSlides(ctx context.Context, template *models.Template, pptxPath string) error {
	outputDir, err := s.local.Abs(fmt.Sprintf("templates/%s", template.ID))
	if err != nil {
		return err
	}

	images, err := s.converter.Convert(ctx, pptxPath, outputDir)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("conversion produced no slide images")
	}

	// Slide indexes are kept contiguous from 0 even when individual downloads
	// were skipped; image paths keep the converter's file names.
	slides := make([]models.Slide, 0, len(images))
	for i, img := range images {
		relPath, err := storage.CanonicalPath(fmt.Sprintf("templates/%s/%s", template.ID, filepath.Base(img.ImagePath)))
		if err != nil {
			return err
		}
		slides = append(slides, models.Slide{
			ID:         uuid.New().String(),
			TemplateID: template.ID,
			SlideIndex: i,
			ImagePath:  relPath,
			ThumbPath:  relPath,
			Width:      img.Width,
			Height:     img.Height,
		})
	}

	if err := s.db.Create(&slides).Error; err != nil {
		return fmt.Errorf("failed to save slides: %w", err)
	}
	if err := s.db.Model(template).Update("slide_count", len(slides)).Error; err != nil {
		return fmt.Errorf("failed to update slide count: %w", err)
	}
	template.SlideCount = len(slides)

	return nil
}

func (s *TemplateService) GetTemplate(_ context.Context, userID, templateID string) (*models.Template, error) {
	var template models.Template
	err := s.db.
		Preload("Slides", func(db *gorm.DB) *gorm.DB { return db.Order("slide_index ASC") }).
		Preload("Fields").
		Preload("Categories").
		First(&template, "id = ? AND user_id = ?", templateID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &template, nil
}

func (s *TemplateService) ListTemplates(_ context.Context, userID string) ([]models.Template, error) {
	var templates []models.Template
	err := s.db.
		Preload("Categories").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, userID, templateID, name, description string) (*models.Template, error) {
	template, err := s.GetTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if len(updates) > 0 {
		if err := s.db.Model(template).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update template: %w", err)
		}
	}

	return s.GetTemplate(ctx, userID, templateID)
}

// DeleteTemplate removes the template with its slides, fields and category
// assignments, then its files. Row deletion is transactional; file deletion
// is best effort.
func (s *TemplateService) DeleteTemplate(ctx context.Context, userID, templateID string) error {
	template, err := s.GetTemplate(ctx, userID, templateID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&models.Slide{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", templateID).Delete(&models.Field{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", templateID).Delete(&models.TemplateCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(template).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	if err := s.store.DeletePrefix(ctx, fmt.Sprintf("templates/%s", templateID)); err != nil {
		log.Printf("Warning: failed to delete stored files for template %s: %v", templateID, err)
	}
	if err := s.local.DeletePrefix(ctx, fmt.Sprintf("templates/%s", templateID)); err != nil {
		log.Printf("Warning: failed to delete slide images for template %s: %v", templateID, err)
	}

	return nil
}

// DefineField adds a fillable field. The slide index must reference one of
// the template's existing slides; geometry is stored as supplied.
func (s *TemplateService) DefineField(ctx context.Context, userID, templateID string, field *models.Field) (*models.Field, error) {
	template, err := s.GetTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	if field.Label == "" {
		return nil, fmt.Errorf("%w: field label is required", ErrValidation)
	}
	if !slideExists(template.Slides, field.SlideIndex) {
		return nil, fmt.Errorf("%w: slide index %d does not exist on template %s", ErrValidation, field.SlideIndex, templateID)
	}

	field.ID = uuid.New().String()
	field.TemplateID = templateID
	if field.Type == "" {
		field.Type = "text"
	}
	if err := s.db.Create(field).Error; err != nil {
		return nil, fmt.Errorf("failed to save field: %w", err)
	}

	return field, nil
}

func (s *TemplateService) UpdateField(ctx context.Context, userID, templateID, fieldID string, updated *models.Field) (*models.Field, error) {
	template, err := s.GetTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	var field models.Field
	if err := s.db.First(&field, "id = ? AND template_id = ?", fieldID, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load field: %w", err)
	}

	if !slideExists(template.Slides, updated.SlideIndex) {
		return nil, fmt.Errorf("%w: slide index %d does not exist on template %s", ErrValidation, updated.SlideIndex, templateID)
	}

	field.SlideIndex = updated.SlideIndex
	if updated.Label != "" {
		field.Label = updated.Label
	}
	field.X = updated.X
	field.Y = updated.Y
	field.Width = updated.Width
	field.Height = updated.Height
	if err := s.db.Save(&field).Error; err != nil {
		return nil, fmt.Errorf("failed to update field: %w", err)
	}

	return &field, nil
}

func (s *TemplateService) DeleteField(ctx context.Context, userID, templateID, fieldID string) error {
	if _, err := s.GetTemplate(ctx, userID, templateID); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND template_id = ?", fieldID, templateID).Delete(&models.Field{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete field: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignCategory links a template to one of the owner's (or default)
// categories. Assigning twice is a no-op.
func (s *TemplateService) AssignCategory(ctx context.Context, userID, templateID, categoryID string) error {
	if _, err := s.GetTemplate(ctx, userID, templateID); err != nil {
		return err
	}

	var category models.Category
	err := s.db.First(&category, "id = ? AND (user_id = ? OR is_default = ?)", categoryID, userID, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load category: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.TemplateCategory{}).
		Where("template_id = ? AND category_id = ?", templateID, categoryID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category assignment: %w", err)
	}
	if count > 0 {
		return nil
	}

	join := &models.TemplateCategory{TemplateID: templateID, CategoryID: categoryID}
	if err := s.db.Create(join).Error; err != nil {
		return fmt.Errorf("failed to assign category: %w", err)
	}
	return nil
}

func (s *TemplateService) RemoveCategory(ctx context.Context, userID, templateID, categoryID string) error {
	if _, err := s.GetTemplate(ctx, userID, templateID); err != nil {
		return err
	}

	result := s.db.Where("template_id = ? AND category_id = ?", templateID, categoryID).Delete(&models.TemplateCategory{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TemplateService) stageFile(reader io.Reader) (string, error) {
	tempFile, err := os.CreateTemp("", "*.pptx")
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, reader); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}

	return tempFile.Name(), nil
}

func slideExists(slides []models.Slide, slideIndex int) bool {
	for _, slide := range slides {
		if slide.SlideIndex == slideIndex {
			return true
		}
	}
	return false
}
