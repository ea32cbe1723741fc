package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/keris/scholar-backend/internal/config"
	"github.com/keris/scholar-backend/internal/handler"
	"github.com/keris/scholar-backend/internal/middleware"
	"github.com/keris/scholar-backend/internal/response"
	"github.com/rs/zerolog"
)

// formOverhead is the body allowance on top of the image cap for the text
// fields and multipart framing.
const formOverhead = 1 << 20

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Scholar *handler.ScholarHandler
	Sponsor *handler.SponsorHandler
	Health  *handler.HealthHandler
}

// SetupRouter configures the Gin engine. ctx bounds background work such as
// rate limiter cleanup.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Brotli())

	// Locally stored images are served with aggressive caching (1 year);
	// keys are unique per upload so the content never changes.
	if cfg.BlobDriver == config.BlobDriverLocal {
		uploadsGroup := router.Group("/uploads")
		uploadsGroup.Use(middleware.CacheControl(31536000))
		{
			uploadsGroup.Static("/", cfg.UploadDir)
		}
	}

	router.GET("/health", handlers.Health.Health)

	writeChain := []gin.HandlerFunc{middleware.MaxBodySize(cfg.MaxUploadBytes + formOverhead)}
	if cfg.WriteRateLimit > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.WriteRateLimit, time.Minute, log)
		writeChain = append(writeChain, limiter.Middleware())
	}
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(writeChain)+1)
		return append(append(chain, writeChain...), h)
	}

	// ─── Records ───────────────────────────────────────────────────────
	// Literal paths are registered before /:id.
	record := router.Group("/record")
	{
		record.GET("", handlers.Scholar.List)
		record.GET("/", handlers.Scholar.List)
		record.POST("", write(handlers.Scholar.Create)...)
		record.POST("/", write(handlers.Scholar.Create)...)

		record.GET("/sponsors", handlers.Sponsor.List)
		record.GET("/sponsors/:id", handlers.Sponsor.Get)
		record.GET("/export", handlers.Scholar.Export)

		record.GET("/:id", handlers.Scholar.Get)
		record.PATCH("/:id", write(handlers.Scholar.Update)...)
		record.DELETE("/:id", write(handlers.Scholar.Delete)...)
	}

	return router
}
