package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seiyar26/ppt-template-manager/internal/config"
	"github.com/seiyar26/ppt-template-manager/internal/converter"
	"github.com/seiyar26/ppt-template-manager/internal/database"
	"github.com/seiyar26/ppt-template-manager/internal/handlers"
	"github.com/seiyar26/ppt-template-manager/internal/mailer"
	"github.com/seiyar26/ppt-template-manager/internal/services"
	"github.com/seiyar26/ppt-template-manager/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Seed(db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	local, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}

	var store storage.Store = local
	if cfg.Storage.Backend == "gcs" {
		gcsStore, err := storage.NewGCSStore(context.Background(), cfg.Storage.GCS.BucketName, cfg.Storage.GCS.CredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize GCS storage: %v", err)
		}
		defer gcsStore.Close()
		store = gcsStore
		log.Printf("Using GCS storage backend (bucket %s)", cfg.Storage.GCS.BucketName)
	}

	conv := buildConverter(cfg)

	pdfService, err := services.NewPDFService(cfg.Gotenberg.URL, cfg.Gotenberg.Timeout)
	if err != nil {
		log.Fatalf("Failed to initialize PDF service: %v", err)
	}

	var exportMailer services.Mailer
	if cfg.SMTP.Host != "" {
		exportMailer = mailer.NewSMTPMailer(cfg.SMTP)
	}

	authService := services.NewAuthService(db, cfg.Auth.JWTSecret)
	templateService := services.NewTemplateService(db, store, local, conv)
	categoryService := services.NewCategoryService(db)
	exportService := services.NewExportService(db, store, pdfService, exportMailer)
	logService := services.NewActivityLogService(db)

	cleanupService := services.NewFileCleanupService(24 * time.Hour)
	cleanupService.Start()

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		UploadDir:    local.BaseDir(),
	}, db, authService, templateService, categoryService, exportService, logService)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on :%s (environment: %s)", cfg.Server.Port, cfg.Server.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cleanupService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// buildConverter selects the slide converter implementation. The placeholder
// stand-in is only ever wired outside production, and only when no ConvertAPI
// secret is configured.
func buildConverter(cfg *config.Config) converter.Converter {
	if cfg.ConvertAPI.Secret != "" {
		return converter.NewConvertAPIClient(cfg.ConvertAPI.Secret, cfg.ConvertAPI.BaseURL, cfg.ConvertAPI.Timeout)
	}

	if cfg.IsProduction() {
		// config.Load rejects this combination already; keep the invariant local too.
		log.Fatal("CONVERT_API_SECRET is required in production")
	}

	log.Println("No ConvertAPI secret configured; using placeholder slide converter (development only)")
	return converter.NewPlaceholderConverter(3)
}
