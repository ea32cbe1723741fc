package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Document store drivers.
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// Blob storage drivers.
const (
	BlobDriverS3    = "s3"
	BlobDriverLocal = "local"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	StoreDriver       string
	MongoURI          string
	MongoDatabase     string
	ScholarCollection string
	SponsorCollection string

	BlobDriver     string
	AWSRegion      string
	AWSBucket      string
	S3Endpoint     string
	UploadDir      string
	PublicBaseURL  string
	MaxUploadBytes int64

	RedisURL        string
	SponsorCacheTTL time.Duration

	// WriteRateLimit is the number of write requests allowed per IP per minute.
	// Zero disables rate limiting.
	WriteRateLimit int
	// AllowedOrigins controls HTTP CORS.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "5050"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "pretty"),

		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMongo)),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "kerisdb"),
		ScholarCollection: getEnv("SCHOLAR_COLLECTION", "scholar_table"),
		SponsorCollection: getEnv("SPONSOR_COLLECTION", "sponsor_table"),

		BlobDriver:     strings.ToLower(getEnv("BLOB_DRIVER", BlobDriverS3)),
		AWSRegion:      getEnv("AWS_REGION", "us-east-2"),
		AWSBucket:      getEnv("AWS_BUCKET_NAME", ""),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5050"), "/"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 5)) * 1024 * 1024,

		RedisURL:        getEnv("REDIS_URL", ""),
		SponsorCacheTTL: time.Duration(getEnvInt("SPONSOR_CACHE_TTL_SECONDS", 300)) * time.Second,

		WriteRateLimit: getEnvInt("WRITE_RATE_LIMIT", 0),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
