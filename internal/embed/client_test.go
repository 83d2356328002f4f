package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// deterministic per-input vector; index order shuffled to exercise
		// the reassembly path
		resp := embedResponse{Model: req.Model}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, struct {
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{
				Embedding: []float32{float32(i), float32(len(req.Input[i])), 1},
				Index:     i,
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIClientEmbedBatch(t *testing.T) {
	srv := embeddingServer(t, nil)
	defer srv.Close()

	e := New(Config{Endpoint: srv.URL, Model: "test-model"})
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	// input order preserved despite reversed response order
	assert.Equal(t, []float32{0, 1, 1}, vecs[0])
	assert.Equal(t, []float32{1, 2, 1}, vecs[1])
	assert.Equal(t, []float32{2, 3, 1}, vecs[2])

	// dimension auto-detected from the first response
	assert.Equal(t, 3, e.Dimension())
}

func TestOpenAIClientBatchSplitting(t *testing.T) {
	var requests atomic.Int64
	srv := embeddingServer(t, &requests)
	defer srv.Close()

	e := New(Config{Endpoint: srv.URL, Model: "test-model", BatchSize: 2})
	texts := []string{"1", "2", "3", "4", "5"}
	vecs, err := e.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vecs, 5)
	assert.Equal(t, int64(3), requests.Load())
}

func TestOpenAIClientEmbedSingle(t *testing.T) {
	srv := embeddingServer(t, nil)
	defer srv.Close()

	e := New(Config{Endpoint: srv.URL, Model: "test-model"})
	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestOpenAIClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := New(Config{Endpoint: srv.URL, Model: "test-model"})
	_, err := e.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestOpenAIClientMissingEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := embedResponse{}
		resp.Data = append(resp.Data, struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{Embedding: []float32{1}, Index: 0})
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := New(Config{Endpoint: srv.URL, Model: "test-model"})
	_, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing embedding for input index 1")
}

func TestOpenAIClientEmptyInput(t *testing.T) {
	e := New(Config{Endpoint: "http://localhost:1", Model: "test-model"})
	vecs, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}
