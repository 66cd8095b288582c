package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eswarnandha-a/sece-space/internal/config"
	"github.com/eswarnandha-a/sece-space/internal/handler"
	"github.com/eswarnandha-a/sece-space/internal/middleware"
	"github.com/eswarnandha-a/sece-space/internal/response"
	"github.com/eswarnandha-a/sece-space/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Classroom *handler.ClassroomHandler
	Upload    *handler.UploadHandler
	File      *handler.FileHandler
	User      *handler.UserHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. User Group ─────────────────────────────────────────────────
	users := router.Group("/api/v1/users")
	users.Use(middleware.RequireJWT(authService))
	{
		users.POST("/sync", handlers.User.SyncUser)
		users.GET("/me", handlers.User.GetProfile)
		users.PATCH("/me/avatar", handlers.User.SetAvatar)
	}

	// Rate limiter for joins: codes are short enough to guess by brute
	// force, so cap attempts per IP.
	joinLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Classroom Group ────────────────────────────────────────────
	classrooms := router.Group("/api/v1/classrooms")
	{
		classrooms.POST("", middleware.RequireFacultyJWT(authService), handlers.Classroom.CreateClassroom)
		classrooms.GET("/faculty", middleware.RequireFacultyJWT(authService), handlers.Classroom.ListFacultyClassrooms)
		classrooms.GET("/student", middleware.RequireStudentJWT(authService), handlers.Classroom.ListStudentClassrooms)
		classrooms.POST("/join",
			joinLimiter.Middleware(),
			middleware.RequireStudentJWT(authService),
			handlers.Classroom.JoinClassroom,
		)

		classrooms.GET("/:id", middleware.RequireJWT(authService), handlers.Classroom.GetClassroom)
		classrooms.POST("/:id/files", middleware.RequireFacultyJWT(authService), handlers.Classroom.AddFiles)
		classrooms.DELETE("/:id/files/:fileId", middleware.RequireFacultyJWT(authService), handlers.Classroom.RemoveFile)
		classrooms.POST("/:id/events", middleware.RequireFacultyJWT(authService), handlers.Classroom.AddEvent)
		classrooms.PUT("/:id/archive", middleware.RequireFacultyJWT(authService), handlers.Classroom.ArchiveClassroom)
		classrooms.DELETE("/:id", middleware.RequireFacultyJWT(authService), handlers.Classroom.DeleteClassroom)
	}

	// ─── 2. File Access Group ──────────────────────────────────────────
	files := router.Group("/api/v1/files")
	files.Use(middleware.RequireJWT(authService))
	{
		files.GET("/classrooms/:classroomId/files/:fileId/proxy",
			middleware.CacheControl(3600),
			handlers.File.ProxyFile,
		)
		files.GET("/classrooms/:classroomId/files/:fileId/info", handlers.File.FileInfo)
	}

	// ─── 3. Upload Group ───────────────────────────────────────────────
	upload := router.Group("/api/v1/upload")
	{
		upload.POST("/profile-image", middleware.RequireJWT(authService), handlers.Upload.UploadProfileImage)
		upload.POST("/cover-image", middleware.RequireFacultyJWT(authService), handlers.Upload.UploadCoverImage)
		upload.POST("/document", middleware.RequireFacultyJWT(authService), handlers.Upload.UploadFile)
		upload.POST("/classroom/:classroomId", middleware.RequireFacultyJWT(authService), handlers.Upload.UploadDocument)
		upload.GET("/classroom/:classroomId", middleware.RequireJWT(authService), handlers.Upload.ListClassroomResources)
		upload.POST("/youtube", middleware.RequireFacultyJWT(authService), handlers.Upload.AddExternalLink)
		upload.DELETE("/resource/:id", middleware.RequireFacultyJWT(authService), handlers.Upload.DeleteResource)
	}

	return router
}
