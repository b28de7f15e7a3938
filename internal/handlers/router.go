package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/middleware"
	"github.com/seiyar26/ppt-template-manager/internal/services"
)

// RouterConfig carries everything the router needs beyond the handlers.
type RouterConfig struct {
	AllowOrigins []string
	UploadDir    string
}

// NewRouter assembles the gin engine with all middlewares and routes applied.
func NewRouter(
	cfg RouterConfig,
	db *gorm.DB,
	authService *services.AuthService,
	templateService *services.TemplateService,
	categoryService *services.CategoryService,
	exportService *services.ExportService,
	logService *services.ActivityLogService,
) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := NewHealthHandler(db)
	r.GET("/health", healthHandler.Check)

	// Slide images and generated documents, content type by extension.
	r.Static("/uploads", cfg.UploadDir)

	authHandler := NewAuthHandler(authService)
	templateHandler := NewTemplateHandler(templateService)
	categoryHandler := NewCategoryHandler(categoryService)
	exportHandler := NewExportHandler(exportService)
	logHandler := NewLogHandler(logService)

	requireAuth := middleware.RequireAuth(authService)

	api := r.Group("/api")
	api.Use(middleware.ActivityLog(logService))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		templates := api.Group("/templates", requireAuth)
		{
			templates.GET("", templateHandler.List)
			templates.POST("", templateHandler.Create)
			templates.GET("/:id", templateHandler.Get)
			templates.PUT("/:id", templateHandler.Update)
			templates.DELETE("/:id", templateHandler.Delete)

			templates.POST("/:id/fields", templateHandler.CreateField)
			templates.PUT("/:id/fields/:fieldId", templateHandler.UpdateField)
			templates.DELETE("/:id/fields/:fieldId", templateHandler.DeleteField)

			templates.POST("/:id/generate", exportHandler.Generate)

			templates.POST("/:id/categories", templateHandler.AssignCategory)
			templates.DELETE("/:id/categories/:categoryId", templateHandler.RemoveCategory)
		}

		categories := api.Group("/categories", requireAuth)
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.GET("/:id", categoryHandler.Get)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		exports := api.Group("/exports", requireAuth)
		{
			exports.GET("", exportHandler.List)
			exports.GET("/:id", exportHandler.Get)
			exports.GET("/:id/download", exportHandler.Download)
			exports.DELETE("/:id", exportHandler.Delete)
			exports.POST("/:id/send-email", exportHandler.SendEmail)
		}

		logs := api.Group("/logs", requireAuth, middleware.RequireAdmin())
		{
			logs.GET("", logHandler.List)
		}
	}

	return r
}
