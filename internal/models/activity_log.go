package models

import (
	"time"
)

type ActivityLog struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Method       string    `gorm:"size:10;not null;index" json:"method"`
	Path         string    `gorm:"size:255;not null;index" json:"path"`
	UserID       string    `gorm:"index" json:"user_id,omitempty"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	StatusCode   int       `gorm:"not null" json:"status_code"`
	ResponseTime int64     `gorm:"not null" json:"response_time"` // milliseconds
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
