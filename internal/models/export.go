package models

import (
	"time"
)

const (
	ExportFormatPPTX = "pptx"
	ExportFormatPDF  = "pdf"
)

type Export struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"not null;index" json:"user_id"`
	TemplateID   string    `gorm:"not null;index" json:"template_id"`
	FilePath     string    `gorm:"not null" json:"file_path"`
	Format       string    `gorm:"not null" json:"format"`
	FileSize     int64     `json:"file_size"`
	EmailHistory string    `gorm:"type:json" json:"email_history,omitempty"` // JSON array of EmailRecord
	CreatedAt    time.Time `json:"created_at"`
}

// EmailRecord is one entry of an Export's email send history.
type EmailRecord struct {
	Recipient string    `json:"recipient"`
	SentAt    time.Time `json:"sent_at"`
}
