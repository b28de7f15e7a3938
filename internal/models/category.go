package models

import (
	"time"
)

type Category struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	Position  int       `json:"position"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Templates []Template `gorm:"many2many:template_categories;" json:"templates,omitempty"`
}

// TemplateCategory is the join table between templates and categories. The
// composite primary key makes a duplicate assignment a constraint violation.
type TemplateCategory struct {
	TemplateID string `gorm:"primaryKey" json:"template_id"`
	CategoryID string `gorm:"primaryKey" json:"category_id"`
}
