package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	// MongoDB
	MongoURI          string
	MongoDB           string
	MongoTransactions bool // requires a replica set

	// Identity
	GoogleClientID   string
	GoogleVerifyMode string // "jwks" or "tokeninfo"
	AdminEmails      []string

	// External matching/scoring service
	MatchingBaseURL string
	MatchingAPIKey  string
	MatchingTimeout time.Duration

	// Blob storage
	BlobProvider      string // "s3" or "minio"
	BlobBucket        string
	BlobPublicBaseURL string
	UploadMaxBytes    int64
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool

	// Redis
	RedisURL      string
	RedisPassword string

	// Rate limiting
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitUploadThreshold int

	// SMTP (HR status notifications)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CORSAllowedOrigins []string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MongoURI:          getEnv("MONGO_URI", getEnv("MONGODB_URI", "mongodb://localhost:27017")),
		MongoDB:           getEnv("MONGO_DB", "trujobs"),
		MongoTransactions: getEnvBool("MONGO_TRANSACTIONS", false),

		GoogleClientID:   getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleVerifyMode: strings.ToLower(getEnv("GOOGLE_VERIFY_MODE", "jwks")),
		AdminEmails:      getEnvList("ADMIN_EMAILS"),

		MatchingBaseURL: strings.TrimRight(getEnv("AWS_BASE_URL", ""), "/"),
		MatchingAPIKey:  getEnv("AWS_API_KEY", ""),
		MatchingTimeout: getEnvDuration("MATCHING_TIMEOUT", 15*time.Second),

		BlobProvider:      strings.ToLower(getEnv("BLOB_PROVIDER", "s3")),
		BlobBucket:        getEnv("BLOB_BUCKET", "uploads"),
		BlobPublicBaseURL: strings.TrimRight(getEnv("BLOB_PUBLIC_BASE_URL", ""), "/"),
		UploadMaxBytes:    int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:       getEnvBool("MINIO_USE_SSL", true),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitUploadThreshold: getEnvInt("RATE_LIMIT_UPLOAD_THRESHOLD", 10),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
	}

	if cfg.GoogleClientID == "" {
		log.Println("WARNING: GOOGLE_CLIENT_ID is missing. Every authenticated request will be rejected.")
	}
	if len(cfg.AdminEmails) == 0 {
		log.Println("WARNING: ADMIN_EMAILS is empty. Admin endpoints are unreachable.")
	}
	if cfg.MatchingBaseURL == "" {
		log.Println("WARNING: AWS_BASE_URL not configured. Matching endpoints will fail.")
	}

	return cfg, nil
}

// SMTPConfigured reports whether HR status notifications can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, trimming and lower-casing entries.
func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
