package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogFormat    string
	LogLevel     string

	// Extraction configuration
	GeminiAPIKey  string
	GeminiModelID string
	OCRTimeout    time.Duration

	// Upload constraints
	MaxUploadSizeBytes int64
	AcceptedImageTypes []string

	// Auth configuration
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration

	// Database configuration
	PostgresURL string

	// Image storage configuration (S3-compatible)
	S3Endpoint        string
	S3AccessKeyID     string
	S3AccessKeySecret string
	S3Bucket          string
	S3Region          string
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file. Using environment variables.")
	}

	config := &Config{
		// Server configuration
		Port:         getEnvInt("PORT", 8080),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 30)) * time.Second,
		LogFormat:    getEnvString("LOG_FORMAT", "json"),
		LogLevel:     getEnvString("LOG_LEVEL", "info"),

		// Extraction configuration
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModelID: getEnvString("GEMINI_MODEL_ID", "gemini-1.5-flash"),
		OCRTimeout:    time.Duration(getEnvInt("OCR_TIMEOUT", 30)) * time.Second,

		// Upload constraints
		MaxUploadSizeBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		AcceptedImageTypes: getEnvStringSlice("ACCEPTED_IMAGE_TYPES", []string{
			"image/jpeg", "image/png", "image/gif", "image/webp",
		}),

		// Auth configuration
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTAccessExpiration:  time.Duration(getEnvInt("JWT_ACCESS_EXPIRATION", 3600)) * time.Second,
		JWTRefreshExpiration: time.Duration(getEnvInt("JWT_REFRESH_EXPIRATION", 604800)) * time.Second,

		// Database configuration
		PostgresURL: os.Getenv("POSTGRES_DB_URL"),

		// Image storage configuration
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3AccessKeySecret: os.Getenv("S3_ACCESS_KEY_SECRET"),
		S3Bucket:          getEnvString("S3_BUCKET", "receipts"),
		S3Region:          getEnvString("S3_REGION", "us-east-1"),
	}

	validateConfig(config)

	return config, nil
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	// Gemini is optional: without a key the service routes every scan to the
	// deterministic fallback provider.
	if config.GeminiAPIKey == "" {
		log.Println("Warning: No Gemini API key provided. Extraction will use the fallback provider only.")
	}

	if config.JWTSecret == "" {
		log.Println("Warning: No JWT secret provided. Authenticated endpoints will reject all tokens.")
	}

	if config.PostgresURL == "" {
		log.Println("Warning: No Postgres URL provided. Database operations will fail.")
	}

	if config.S3Endpoint == "" {
		log.Println("Warning: No S3 endpoint provided. Receipt images will not be stored.")
	}
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvStringSlice gets a string slice from a comma-separated environment variable
func getEnvStringSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
