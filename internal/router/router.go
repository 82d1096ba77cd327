package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizdesk/quizdesk-web/internal/config"
	"github.com/quizdesk/quizdesk-web/internal/handler"
	"github.com/quizdesk/quizdesk-web/internal/middleware"
	"github.com/quizdesk/quizdesk-web/internal/response"
	"github.com/quizdesk/quizdesk-web/internal/service"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Document     *handler.DocumentHandler
	Upload       *handler.UploadHandler
	Quiz         *handler.QuizHandler
	Attempt      *handler.AttemptHandler
	UI           *handler.UIHandler
	Notification *handler.NotificationHandler
	System       *handler.SystemHandler
}

// Limiters are the per-route rate limiters; the caller stops them on shutdown.
type Limiters struct {
	Upload   *middleware.RateLimiter
	Generate *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	limiters *Limiters,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// Restrict to AllowedOrigins when set, otherwise allow all for dev.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	// Uploads stream multipart bodies; keep at most 32 MiB per request in memory.
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", handlers.System.Health)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.GET("/me/topbar", handlers.UI.TopBar)
		api.GET("/ui/drawer", middleware.NoStore(), handlers.UI.GetDrawer)
		api.PUT("/ui/drawer", handlers.UI.SetDrawer)

		docs := api.Group("/documents")
		{
			docs.GET("", handlers.Document.ListDocuments)
			docs.GET("/options", handlers.Document.ListDocumentOptions)
			docs.POST("/upload", limiters.Upload.Middleware(), handlers.Upload.UploadDocuments)
		}
		api.GET("/uploads", middleware.NoStore(), handlers.Upload.ListUploads)

		quizzes := api.Group("/quizzes")
		{
			quizzes.GET("/form-options", middleware.CacheControl(30), handlers.Quiz.FormOptions)
			quizzes.POST("/generate", limiters.Generate.Middleware(), handlers.Quiz.GenerateQuiz)
			quizzes.GET("/generate/draft", middleware.NoStore(), handlers.Quiz.GetDraft)
		}

		attempts := api.Group("/attempts/:attempt_id")
		{
			attempts.GET("/current", middleware.NoStore(), handlers.Attempt.CurrentQuestion)
			attempts.POST("/answers", handlers.Attempt.SubmitAnswer)
		}
	}

	// WebSocket upgrades cannot carry headers; RequireAuth reads ?token=.
	router.GET("/ws/v1/notifications", middleware.RequireAuth(authService), handlers.Notification.Stream)

	return router
}
