package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/models"
	"github.com/seiyar26/ppt-template-manager/internal/pptx"
	"github.com/seiyar26/ppt-template-manager/internal/storage"
)

// PDFConverter is the export-time pptx→pdf conversion dependency.
type PDFConverter interface {
	ConvertPptxToPDF(ctx context.Context, pptxPath, outputPath string) error
}

// Mailer delivers a generated document to a recipient.
type Mailer interface {
	Send(to, subject, body, attachmentName string, attachment []byte) error
}

type ExportService struct {
	db     *gorm.DB
	store  storage.Store
	pdf    PDFConverter
	mailer Mailer
}

func NewExportService(db *gorm.DB, store storage.Store, pdf PDFConverter, mailer Mailer) *ExportService {
	return &ExportService{
		db:     db,
		store:  store,
		pdf:    pdf,
		mailer: mailer,
	}
}

// Generate fills the template's fields with the supplied values and records
// one Export row pointing at the produced document. Values for unknown field
// ids are ignored; fields without a value are filled with an empty string.
func (s *ExportService) Generate(ctx context.Context, userID, templateID string, values map[string]string, format string) (*models.Export, error) {
	if format != models.ExportFormatPPTX && format != models.ExportFormatPDF {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrValidation, format)
	}
	if format == models.ExportFormatPDF && s.pdf == nil {
		return nil, fmt.Errorf("pdf conversion is not configured")
	}

	var template models.Template
	err := s.db.
		Preload("Slides").
		Preload("Fields").
		First(&template, "id = ? AND user_id = ?", templateID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if len(template.Slides) == 0 {
		return nil, fmt.Errorf("%w: template %s has no slides yet", ErrValidation, templateID)
	}

	sourcePath, err := s.stageSource(ctx, &template)
	if err != nil {
		return nil, err
	}
	defer os.Remove(sourcePath)

	exportID := uuid.New().String()
	filledPath := filepath.Join(os.TempDir(), exportID+".pptx")
	defer os.Remove(filledPath)

	filler := pptx.NewFiller(sourcePath, filledPath)
	if err := filler.Unzip(); err != nil {
		return nil, fmt.Errorf("failed to open template document: %w", err)
	}
	defer filler.Cleanup()

	if err := filler.InjectFields(s.fieldValues(&template, values)); err != nil {
		return nil, fmt.Errorf("failed to fill fields: %w", err)
	}
	if err := filler.Rezip(); err != nil {
		return nil, fmt.Errorf("failed to assemble document: %w", err)
	}

	outputLocal := filledPath
	if format == models.ExportFormatPDF {
		pdfPath := filepath.Join(os.TempDir(), exportID+".pdf")
		defer os.Remove(pdfPath)
		if err := s.pdf.ConvertPptxToPDF(ctx, filledPath, pdfPath); err != nil {
			return nil, fmt.Errorf("failed to convert export to pdf: %w", err)
		}
		outputLocal = pdfPath
	}

	baseName := strings.TrimSuffix(template.OriginalName, filepath.Ext(template.OriginalName))
	if baseName == "" {
		baseName = template.Name
	}
	fileName := fmt.Sprintf("%s_%s.%s", sanitizeFileName(baseName), exportID[:8], format)
	exportPath, err := storage.CanonicalPath(storage.ExportPath(userID, fileName))
	if err != nil {
		return nil, err
	}

	out, err := os.Open(outputLocal)
	if err != nil {
		return nil, fmt.Errorf("failed to open generated document: %w", err)
	}
	defer out.Close()

	size, err := s.store.Save(ctx, exportPath, out)
	if err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	export := &models.Export{
		ID:         exportID,
		UserID:     userID,
		TemplateID: templateID,
		FilePath:   exportPath,
		Format:     format,
		FileSize:   size,
	}
	if err := s.db.Create(export).Error; err != nil {
		s.store.Delete(ctx, exportPath)
		return nil, fmt.Errorf("failed to record export: %w", err)
	}

	return export, nil
}

func (s *ExportService) stageSource(ctx context.Context, template *models.Template) (string, error) {
	reader, err := s.store.Open(ctx, template.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template source: %w", err)
	}
	defer reader.Close()

	tempFile, err := os.CreateTemp("", "*.pptx")
	if err != nil {
		return "", fmt.Errorf("failed to stage template source: %w", err)
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, reader); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to stage template source: %w", err)
	}

	return tempFile.Name(), nil
}

func (s *ExportService) fieldValues(template *models.Template, values map[string]string) []pptx.FieldValue {
	dims := make(map[int]models.Slide, len(template.Slides))
	for _, slide := range template.Slides {
		dims[slide.SlideIndex] = slide
	}

	filled := make([]pptx.FieldValue, 0, len(template.Fields))
	for _, field := range template.Fields {
		slide := dims[field.SlideIndex]
		filled = append(filled, pptx.FieldValue{
			SlideIndex:  field.SlideIndex,
			Label:       field.Label,
			Value:       values[field.ID],
			X:           field.X,
			Y:           field.Y,
			Width:       field.Width,
			Height:      field.Height,
			ImageWidth:  slide.Width,
			ImageHeight: slide.Height,
		})
	}
	return filled
}

func (s *ExportService) ListExports(_ context.Context, userID string) ([]models.Export, error) {
	var exports []models.Export
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&exports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return exports, nil
}

func (s *ExportService) GetExport(_ context.Context, userID, exportID string) (*models.Export, error) {
	var export models.Export
	err := s.db.First(&export, "id = ? AND user_id = ?", exportID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load export: %w", err)
	}
	return &export, nil
}

// OpenExport returns the document stream plus its download name and content
// type.
func (s *ExportService) OpenExport(ctx context.Context, userID, exportID string) (io.ReadCloser, string, string, error) {
	export, err := s.GetExport(ctx, userID, exportID)
	if err != nil {
		return nil, "", "", err
	}

	reader, err := s.store.Open(ctx, export.FilePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to open export file: %w", err)
	}

	contentType := "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	if export.Format == models.ExportFormatPDF {
		contentType = "application/pdf"
	}

	return reader, filepath.Base(export.FilePath), contentType, nil
}

func (s *ExportService) DeleteExport(ctx context.Context, userID, exportID string) error {
	export, err := s.GetExport(ctx, userID, exportID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, export.FilePath); err != nil {
		log.Printf("Warning: failed to delete export file %s: %v", export.FilePath, err)
	}

	if err := s.db.Delete(export).Error; err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	return nil
}

// SendEmail delivers the export as an attachment and appends the send to the
// export's email history.
func (s *ExportService) SendEmail(ctx context.Context, userID, exportID, recipient string) error {
	if recipient == "" {
		return fmt.Errorf("%w: recipient is required", ErrValidation)
	}
	if s.mailer == nil {
		return fmt.Errorf("email delivery is not configured")
	}

	export, err := s.GetExport(ctx, userID, exportID)
	if err != nil {
		return err
	}

	reader, err := s.store.Open(ctx, export.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open export file: %w", err)
	}
	attachment, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("failed to read export file: %w", err)
	}

	subject := "Your generated presentation"
	body := "Please find the generated document attached."
	if err := s.mailer.Send(recipient, subject, body, filepath.Base(export.FilePath), attachment); err != nil {
		return fmt.Errorf("failed to send export email: %w", err)
	}

	var history []models.EmailRecord
	if export.EmailHistory != "" {
		if err := json.Unmarshal([]byte(export.EmailHistory), &history); err != nil {
			log.Printf("Warning: resetting unreadable email history for export %s: %v", exportID, err)
			history = nil
		}
	}
	history = append(history, models.EmailRecord{Recipient: recipient, SentAt: time.Now()})
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal email history: %w", err)
	}

	if err := s.db.Model(export).Update("email_history", string(historyJSON)).Error; err != nil {
		return fmt.Errorf("failed to update email history: %w", err)
	}
	return nil
}

func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")
	sanitized := replacer.Replace(name)
	if sanitized == "" {
		sanitized = "export"
	}
	return sanitized
}
