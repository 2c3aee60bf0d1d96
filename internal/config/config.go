package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// PipelineConfig holds fraud-pipeline runtime settings.
type PipelineConfig struct {
	// TimeoutSec bounds the metadata/text layers for a single submission.
	// On expiry the submission falls back to a manual-review decision.
	TimeoutSec     int
	MaxFileSize    int64
	TessdataPrefix string
	OCRLanguage    string
}

// Thresholds holds the two configurable threshold pairs.
// Action thresholds decide the ingestion-time outcome; category thresholds
// label the persisted assessment. The pairs are intentionally distinct.
type Thresholds struct {
	ActionReject   float64
	ActionReview   float64
	CategoryHigh   float64
	CategoryMedium float64
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Pipeline   PipelineConfig
	Thresholds Thresholds
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Pipeline: PipelineConfig{
			TimeoutSec:     getEnvInt("PIPELINE_TIMEOUT_SEC", 30),
			MaxFileSize:    int64(getEnvInt("MAX_FILE_SIZE", 10*1024*1024)),
			TessdataPrefix: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
			OCRLanguage:    getEnv("OCR_LANGUAGE", "eng"),
		},
		Thresholds: Thresholds{
			ActionReject:   getEnvFloat("RISK_ACTION_REJECT", 0.8),
			ActionReview:   getEnvFloat("RISK_ACTION_REVIEW", 0.5),
			CategoryHigh:   getEnvFloat("RISK_CATEGORY_HIGH", 0.7),
			CategoryMedium: getEnvFloat("RISK_CATEGORY_MEDIUM", 0.4),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
