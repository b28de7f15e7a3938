package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Auth       AuthConfig       `json:"auth"`
	ConvertAPI ConvertAPIConfig `json:"convertapi"`
	Gotenberg  GotenbergConfig  `json:"gotenberg"`
	Storage    StorageConfig    `json:"storage"`
	SMTP       SMTPConfig       `json:"smtp"`
}

type ServerConfig struct {
	Port         string   `json:"port"`
	Environment  string   `json:"environment"`
	AllowOrigins []string `json:"allow_origins"`
}

type DatabaseConfig struct {
	URL      string `json:"url"` // takes precedence over the individual fields
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

type ConvertAPIConfig struct {
	Secret  string `json:"secret"`
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout"`
}

type GotenbergConfig struct {
	URL     string `json:"url"`
	Timeout string `json:"timeout"`
}

type StorageConfig struct {
	Backend   string    `json:"backend"` // "local" or "gcs"
	UploadDir string    `json:"upload_dir"`
	GCS       GCSConfig `json:"gcs"`
}

type GCSConfig struct {
	BucketName      string `json:"bucket_name"`
	ProjectID       string `json:"project_id"`
	CredentialsPath string `json:"credentials_path"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// DSN builds a Postgres connection string. DATABASE_URL wins when set; SSL is
// required in production unless explicitly overridden.
func (d *DatabaseConfig) DSN(environment string) string {
	if d.URL != "" {
		return d.URL
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		if environment == "production" {
			sslMode = "require"
		} else {
			sslMode = "disable"
		}
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, sslMode)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded (%v), using system environment variables\n", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			AllowOrigins: parseAllowOrigins(),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "ppt_templates"),
			SSLMode:  getEnv("DB_SSL_MODE", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		ConvertAPI: ConvertAPIConfig{
			Secret:  getEnv("CONVERT_API_SECRET", ""),
			BaseURL: getEnv("CONVERT_API_URL", "https://v2.convertapi.com"),
			Timeout: getEnv("CONVERT_API_TIMEOUT", "120s"),
		},
		Gotenberg: GotenbergConfig{
			URL:     getEnv("GOTENBERG_URL", "http://localhost:3000"),
			Timeout: getEnv("GOTENBERG_TIMEOUT", "30s"),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "local"),
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			GCS: GCSConfig{
				BucketName:      getEnv("GCS_BUCKET_NAME", ""),
				ProjectID:       getEnv("GOOGLE_CLOUD_PROJECT", ""),
				CredentialsPath: getEnv("GCS_CREDENTIALS_PATH", ""),
			},
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@ppt-templates.local"),
		},
	}

	if config.Auth.JWTSecret == "" {
		if config.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		config.Auth.JWTSecret = "dev-secret-change-me"
	}

	if config.IsProduction() && config.ConvertAPI.Secret == "" {
		return nil, fmt.Errorf("CONVERT_API_SECRET is required in production")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseAllowOrigins() []string {
	if origins := os.Getenv("ALLOW_ORIGINS"); origins != "" {
		var allowOrigins []string
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				allowOrigins = append(allowOrigins, trimmed)
			}
		}
		return allowOrigins
	}

	if url := getEnv("FRONTEND_URL", ""); url != "" {
		return []string{url}
	}

	return []string{
		"http://localhost:3000",
		"http://localhost:3001",
	}
}
