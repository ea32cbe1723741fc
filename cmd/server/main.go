package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keris/scholar-backend/internal/config"
	"github.com/keris/scholar-backend/internal/database"
	"github.com/keris/scholar-backend/internal/handler"
	"github.com/keris/scholar-backend/internal/logger"
	"github.com/keris/scholar-backend/internal/model"
	"github.com/keris/scholar-backend/internal/repository"
	"github.com/keris/scholar-backend/internal/router"
	"github.com/keris/scholar-backend/internal/service"
	"github.com/keris/scholar-backend/internal/storage"
	"github.com/keris/scholar-backend/internal/validator"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("blob", cfg.BlobDriver).
		Msg("Starting scholar backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Document Store ────────────────────────────────────────────────
	var (
		scholarRepo repository.ScholarRepository
		sponsorRepo repository.SponsorRepository
		healthCheck handler.HealthCheck
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem, err := repository.NewMemoryStore(model.DefaultSponsors())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create memory store")
		}
		scholarRepo, sponsorRepo = mem.Scholars(), mem.Sponsors()
		log.Warn().Msg("Using in-memory store, records are lost on restart")
	default:
		client, db, err := database.NewMongoDatabase(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer func() {
			disconnectCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Error().Err(err).Msg("MongoDB disconnect error")
			}
		}()
		scholarRepo = repository.NewScholarRepository(db.Collection(cfg.ScholarCollection))
		sponsorRepo = repository.NewSponsorRepository(db.Collection(cfg.SponsorCollection))
		healthCheck = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Image Store ───────────────────────────────────────────────────
	images, err := newImageStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image store")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	scholarService := service.NewScholarService(scholarRepo, images, log)
	sponsorService := service.NewSponsorService(sponsorRepo, rdb, cfg.SponsorCacheTTL, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Scholar: handler.NewScholarHandler(scholarService, cfg.MaxUploadBytes),
		Sponsor: handler.NewSponsorHandler(sponsorService),
		Health:  handler.NewHealthHandler(healthCheck),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.BlobDriver {
	case config.BlobDriverLocal:
		return storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	case config.BlobDriverS3:
		if cfg.AWSBucket == "" {
			return nil, fmt.Errorf("AWS_BUCKET_NAME is required for the s3 driver")
		}
		return storage.NewS3Store(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.S3Endpoint)
	default:
		return nil, fmt.Errorf("unknown BLOB_DRIVER %q", cfg.BlobDriver)
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
