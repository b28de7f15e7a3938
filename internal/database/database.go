// Package database owns the gorm connection lifecycle: bounded startup
// retries, schema migration and first-run seeding. The handle is constructed
// once at bootstrap and passed down; nothing in the tree reaches for a global.
package database

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/google/uuid"
	"github.com/seiyar26/ppt-template-manager/internal/config"
	"github.com/seiyar26/ppt-template-manager/internal/models"
)

const (
	maxConnectAttempts = 5
	baseConnectBackoff = 2 * time.Second
)

// Connect opens the Postgres connection with bounded exponential backoff and
// runs migrations. Startup fails if the database never becomes reachable;
// once connected, later outages degrade endpoints instead of crashing.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN(cfg.Server.Environment)

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		if attempt < maxConnectAttempts {
			backoff := baseConnectBackoff * time.Duration(1<<(attempt-1))
			log.Printf("Database connection attempt %d/%d failed: %v (retrying in %s)", attempt, maxConnectAttempts, err, backoff)
			time.Sleep(backoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxConnectAttempts, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database connected and migrated")
	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Template{},
		&models.Slide{},
		&models.Field{},
		&models.Category{},
		&models.TemplateCategory{},
		&models.Export{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Health reports whether the database currently answers a trivial query.
func Health(db *gorm.DB) error {
	return db.Exec("SELECT 1").Error
}

// Seed creates the default admin account and starter categories on a fresh
// database. Existing rows are left alone.
func Seed(db *gorm.DB) error {
	var adminCount int64
	if err := db.Model(&models.User{}).Where("email = ?", "admin@example.com").Count(&adminCount).Error; err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := &models.User{
			ID:           uuid.New().String(),
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			Name:         "Administrator",
			IsAdmin:      true,
		}
		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		log.Println("Default admin user created")
	}

	var categoryCount int64
	if err := db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}

	if categoryCount == 0 {
		defaults := []string{
			"Sales presentations",
			"Financial reports",
			"Marketing decks",
			"Startup pitches",
			"Other",
		}
		for i, name := range defaults {
			category := &models.Category{
				ID:        uuid.New().String(),
				Name:      name,
				Position:  i + 1,
				IsDefault: true,
			}
			if err := db.Create(category).Error; err != nil {
				return fmt.Errorf("failed to create default category %s: %w", name, err)
			}
		}
		log.Printf("Created %d default categories", len(defaults))
	}

	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
