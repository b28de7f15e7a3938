package models

import (
	"time"
)

type User struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `json:"name"`
	IsAdmin      bool       `gorm:"default:false" json:"is_admin"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Templates  []Template `gorm:"foreignKey:UserID" json:"templates,omitempty"`
	Categories []Category `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Exports    []Export   `gorm:"foreignKey:UserID" json:"exports,omitempty"`
}
