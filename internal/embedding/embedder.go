// Package embedding provides text embedding via ONNX inference.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations return
// L2-normalized vectors of a fixed dimensionality. Embed must not be called
// with empty or whitespace-only text; callers intercept that case first.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Close() error
}
