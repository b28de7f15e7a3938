package models

import (
	"time"
)

type Template struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"not null;index" json:"user_id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `json:"description"`
	FilePath     string    `gorm:"not null" json:"file_path"` // canonical relative path of the source pptx
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	SlideCount   int       `gorm:"default:0" json:"slide_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Slides     []Slide    `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"slides,omitempty"`
	Fields     []Field    `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
	Categories []Category `gorm:"many2many:template_categories;" json:"categories,omitempty"`
}

type Slide struct {
	ID         string `gorm:"primaryKey" json:"id"`
	TemplateID string `gorm:"not null;uniqueIndex:idx_template_slide" json:"template_id"`
	SlideIndex int    `gorm:"not null;uniqueIndex:idx_template_slide" json:"slide_index"`
	ImagePath  string `gorm:"not null" json:"image_path"`
	ThumbPath  string `json:"thumb_path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type Field struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	TemplateID string    `gorm:"not null;index" json:"template_id"`
	SlideIndex int       `gorm:"not null" json:"slide_index"`
	Label      string    `gorm:"not null" json:"label"`
	Type       string    `gorm:"default:'text'" json:"type"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
