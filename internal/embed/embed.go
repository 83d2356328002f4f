// Package embed converts page text to float32 vectors via any
// OpenAI-compatible embedding server (vLLM, Ollama, ONNX runtime, OpenAI).
//
// The segmentation stage only consumes vectors and cosine similarity; it
// never knows which backend produced them. When no endpoint is configured a
// deterministic zero-vector embedder is returned so the rest of the pipeline
// stays runnable in tests and air-gapped environments.
package embed

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// MaxInputChars caps the text sent to the embedding backend per page.
const MaxInputChars = 1500

// BlankPageText is substituted for pages with no extractable text so that
// blank pages still embed to a stable point.
const BlankPageText = "blank page"

// Embedder converts text to vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension, or 0 before the first call.
	Dimension() int

	// Model returns the configured model name.
	Model() string
}

// Config configures the embedding client.
type Config struct {
	// Endpoint is the base URL of the embedding server. Empty selects the
	// zero-vector embedder.
	Endpoint string

	// Model is the model name sent with each request.
	Model string

	// Dimension is the expected vector dimension. 0 means auto-detect.
	Dimension int

	// BatchSize is the maximum number of texts per HTTP request. Default: 32.
	BatchSize int

	// Timeout per HTTP request. Default: 30s.
	Timeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New creates an Embedder from config.
func New(cfg Config) Embedder {
	cfg.defaults()
	if cfg.Endpoint == "" {
		dim := cfg.Dimension
		if dim <= 0 {
			dim = 384
		}
		return &zeroEmbedder{dim: dim, model: cfg.Model}
	}
	return newOpenAIClient(cfg)
}

// PrepareText normalizes page text for embedding: trim, truncate to
// MaxInputChars, and substitute BlankPageText when nothing remains.
func PrepareText(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > MaxInputChars {
		text = text[:MaxInputChars]
	}
	if text == "" {
		return BlankPageText
	}
	return text
}

// zeroEmbedder returns zero vectors. Useful when no embedding server is
// reachable; every adjacent-page similarity degrades to 0.
type zeroEmbedder struct {
	dim   int
	model string
}

func (z *zeroEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, z.dim), nil
}

func (z *zeroEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, z.dim)
	}
	return out, nil
}

func (z *zeroEmbedder) Dimension() int { return z.dim }
func (z *zeroEmbedder) Model() string  { return z.model }
