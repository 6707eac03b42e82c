package embedding

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
)

// MockEmbedder is a deterministic embedder for tests. It returns a fixed-dimension
// unit vector derived from the text hash so that the same text always gets the
// same embedding, and counts forward passes for call-accounting assertions.
type MockEmbedder struct {
	dimensions int
	name       string
	calls      atomic.Int64
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 768
	}
	return &MockEmbedder{dimensions: dimensions, name: "mock"}
}

// Embed returns a deterministic embedding based on the text hash.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	return e.vectorFor(text), nil
}

// EmbedBatch embeds each text in one counted pass.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.calls.Add(1)
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.vectorFor(text)
	}
	return embeddings, nil
}

func (e *MockEmbedder) vectorFor(text string) []float32 {
	h := HashString(text)
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if sum > 0 {
		norm := 1.0 / math.Sqrt(sum)
		for i := range emb {
			emb[i] *= float32(norm)
		}
	}
	return emb
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the mock model identifier.
func (e *MockEmbedder) ModelName() string {
	return e.name
}

// Calls returns how many forward passes have run.
func (e *MockEmbedder) Calls() int64 {
	return e.calls.Load()
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

// FailingEmbedder always fails with an InferenceError, for error-path tests.
type FailingEmbedder struct {
	dimensions int
}

// NewFailingEmbedder returns an embedder whose every call fails.
func NewFailingEmbedder(dimensions int) *FailingEmbedder {
	return &FailingEmbedder{dimensions: dimensions}
}

func (e *FailingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, &InferenceError{Cause: errors.New("simulated device fault")}
}

func (e *FailingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, &InferenceError{Cause: errors.New("simulated device fault")}
}

func (e *FailingEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *FailingEmbedder) ModelName() string {
	return "failing"
}

func (e *FailingEmbedder) Close() error {
	return nil
}
