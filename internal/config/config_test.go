package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("SIMILARITY_THRESHOLD", "0.75")
	os.Setenv("CONSECUTIVE_LOW_PAGES", "3")
	os.Setenv("EMBEDDING_ENDPOINT", "http://embed:8000")
	os.Setenv("OCR_LANGUAGE", "deu")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("SIMILARITY_THRESHOLD")
		os.Unsetenv("CONSECUTIVE_LOW_PAGES")
		os.Unsetenv("EMBEDDING_ENDPOINT")
		os.Unsetenv("OCR_LANGUAGE")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 0.75, cfg.Pipeline.SimilarityThreshold)
	assert.Equal(t, 3, cfg.Pipeline.ConsecutiveLowPages)
	assert.Equal(t, "http://embed:8000", cfg.Embedding.Endpoint)
	assert.Equal(t, "deu", cfg.OCR.Language)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SIMILARITY_THRESHOLD", "CONSECUTIVE_LOW_PAGES", "PIPELINE_MAX_PARALLEL", "EMBEDDING_MODEL", "OCR_TESSERACT_PATH"} {
		os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, 0.60, cfg.Pipeline.SimilarityThreshold)
	assert.Equal(t, 2, cfg.Pipeline.ConsecutiveLowPages)
	assert.Equal(t, 4, cfg.Pipeline.MaxParallel)
	assert.Equal(t, "all-MiniLM-L6-v2", cfg.Embedding.Model)
	assert.Equal(t, "tesseract", cfg.OCR.TesseractPath)
	assert.Equal(t, "eng", cfg.OCR.Language)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_FLOAT_VAR"

	os.Setenv(key, "0.42")
	assert.Equal(t, 0.42, getEnvFloat(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 0.6, getEnvFloat(key, 0.6))

	os.Unsetenv(key)
	assert.Equal(t, 0.6, getEnvFloat(key, 0.6))
}
