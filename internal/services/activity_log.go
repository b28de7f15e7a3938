package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/models"
)

type ActivityLogService struct {
	db *gorm.DB
}

func NewActivityLogService(db *gorm.DB) *ActivityLogService {
	return &ActivityLogService{db: db}
}

// Record persists one request's log row. Failures are logged and swallowed so
// request handling is never blocked by the activity log.
func (s *ActivityLogService) Record(method, path, userID, ipAddress string, statusCode int, responseTime time.Duration) {
	entry := &models.ActivityLog{
		ID:           uuid.New().String(),
		Method:       method,
		Path:         path,
		UserID:       userID,
		IPAddress:    ipAddress,
		StatusCode:   statusCode,
		ResponseTime: responseTime.Milliseconds(),
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("Warning: failed to save activity log: %v", err)
	}
}

type ActivityLogQuery struct {
	Method string
	Path   string
	Limit  int
	Offset int
}

func (s *ActivityLogService) List(_ context.Context, query ActivityLogQuery) ([]models.ActivityLog, int64, error) {
	db := s.db.Model(&models.ActivityLog{})
	if query.Method != "" {
		db = db.Where("method = ?", query.Method)
	}
	if query.Path != "" {
		db = db.Where("path LIKE ?", "%"+query.Path+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []models.ActivityLog
	err := db.Order("created_at DESC").Limit(limit).Offset(query.Offset).Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	return entries, total, nil
}

// Purge removes log rows older than the retention window.
func (s *ActivityLogService) Purge(_ context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge activity logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
