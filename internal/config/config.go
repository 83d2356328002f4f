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

// MinIOConfig holds object storage settings for the raw packet store.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// PipelineConfig holds the segmentation knobs exposed to callers.
type PipelineConfig struct {
	SimilarityThreshold float64
	ConsecutiveLowPages int
	MaxParallel         int
}

// EmbeddingConfig points at the OpenAI-compatible embedding server. An empty
// endpoint selects the offline zero-vector embedder.
type EmbeddingConfig struct {
	Endpoint   string
	Model      string
	Dimension  int
	TimeoutSec int
}

// OCRConfig locates the external OCR binaries.
type OCRConfig struct {
	TesseractPath string
	PdftotextPath string
	Language      string
	TimeoutSec    int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Pipeline  PipelineConfig
	Embedding EmbeddingConfig
	OCR       OCRConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the .env file.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
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
			SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.60),
			ConsecutiveLowPages: getEnvInt("CONSECUTIVE_LOW_PAGES", 2),
			MaxParallel:         getEnvInt("PIPELINE_MAX_PARALLEL", 4),
		},
		Embedding: EmbeddingConfig{
			Endpoint:   getEnv("EMBEDDING_ENDPOINT", ""),
			Model:      getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
			Dimension:  getEnvInt("EMBEDDING_DIMENSION", 0),
			TimeoutSec: getEnvInt("EMBEDDING_TIMEOUT_SEC", 30),
		},
		OCR: OCRConfig{
			TesseractPath: getEnv("OCR_TESSERACT_PATH", "tesseract"),
			PdftotextPath: getEnv("OCR_PDFTOTEXT_PATH", "pdftotext"),
			Language:      getEnv("OCR_LANGUAGE", "eng"),
			TimeoutSec:    getEnvInt("OCR_TIMEOUT_SEC", 60),
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
