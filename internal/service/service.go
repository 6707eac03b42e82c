// Package service implements the embedding request operations: the empty-text
// sentinel policy, batch partition/merge, and failure classification.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/vektor/internal/embedding"
	"github.com/hyperjump/vektor/pkg/utils"
)

// DefaultMaxBatchSize bounds batch requests when no limit is configured.
const DefaultMaxBatchSize = 256

// Service handles embed requests against an attached model. It is constructed
// detached and gains a model via Attach once startup loading succeeds; every
// operation fails with KindUnavailable until then. The model identity and
// dimensionality are fixed for the process lifetime once attached.
type Service struct {
	logger       *zap.Logger
	maxBatchSize int

	mu       sync.RWMutex
	embedder embedding.Embedder
}

// New creates a detached service.
func New(logger *zap.Logger, maxBatchSize int) *Service {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &Service{logger: logger, maxBatchSize: maxBatchSize}
}

// Attach installs the loaded embedder. Called once after startup loading.
func (s *Service) Attach(e embedding.Embedder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embedder = e
}

// Ready reports whether a model is attached.
func (s *Service) Ready() bool {
	return s.current() != nil
}

func (s *Service) current() embedding.Embedder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedder
}

// EmbedResult is the outcome of a single-embed operation.
type EmbedResult struct {
	Embedding []float32
	Dims      int
	Model     string
	TookMs    float64
}

// BatchResult is the outcome of a batch-embed operation. Embeddings[i]
// corresponds to the i-th input text.
type BatchResult struct {
	Embeddings [][]float32
	Dims       int
	Model      string
	TookMs     float64
}

// HealthInfo reports readiness without invoking inference.
type HealthInfo struct {
	Ready bool
	Model string
	Dims  int
}

// SentinelVector returns the fixed unit vector assigned to empty input:
// 1 at position 0, 0 elsewhere. It is a constant, never a model output.
// A non-positive dims yields an empty vector.
func SentinelVector(dims int) []float32 {
	if dims < 1 {
		return []float32{}
	}
	v := make([]float32, dims)
	v[0] = 1.0
	return v
}

// isEmptyText reports whether text is empty or whitespace-only, the rule that
// routes input to the sentinel vector instead of the model.
func isEmptyText(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Embed returns the embedding for one text. Empty or whitespace-only text
// gets the sentinel vector without touching the model; a model failure is
// classified KindComputationFailed and yields no vector at all.
func (s *Service) Embed(ctx context.Context, text string) (*EmbedResult, error) {
	emb := s.current()
	if emb == nil {
		return nil, errUnavailable()
	}
	start := time.Now()

	dims := emb.Dimensions()
	var vec []float32
	if isEmptyText(text) {
		vec = SentinelVector(dims)
	} else {
		v, err := emb.Embed(ctx, text)
		if err != nil {
			s.logger.Error("embed failed",
				zap.String("text", utils.Truncate(text, 80)),
				zap.Error(err))
			return nil, errComputation("failed to compute embedding", err)
		}
		vec = v
	}

	return &EmbedResult{
		Embedding: vec,
		Dims:      dims,
		Model:     emb.ModelName(),
		TookMs:    msSince(start),
	}, nil
}

// EmbedBatch embeds every text in one model pass, preserving input order.
// Empty entries receive the sentinel vector; the remaining texts go to the
// model as a single sub-batch whose results are merged back by original
// index. A model failure aborts the whole batch.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) (*BatchResult, error) {
	emb := s.current()
	if emb == nil {
		return nil, errUnavailable()
	}
	if len(texts) == 0 {
		return nil, errInvalid("texts must contain at least one entry")
	}
	if len(texts) > s.maxBatchSize {
		return nil, errInvalid(fmt.Sprintf("batch size %d exceeds maximum %d", len(texts), s.maxBatchSize))
	}
	start := time.Now()

	dims := emb.Dimensions()
	indices, values := partitionTexts(texts)

	var computed [][]float32
	if len(values) > 0 {
		var err error
		computed, err = emb.EmbedBatch(ctx, values)
		if err != nil {
			s.logger.Error("embed batch failed",
				zap.Int("batch_size", len(texts)),
				zap.Int("model_inputs", len(values)),
				zap.Error(err))
			return nil, errComputation("failed to compute embeddings", err)
		}
	}
	s.logger.Debug("batch embedded",
		zap.Int("batch_size", len(texts)),
		zap.Int("model_inputs", len(values)))

	return &BatchResult{
		Embeddings: mergeResults(len(texts), dims, indices, computed),
		Dims:       dims,
		Model:      emb.ModelName(),
		TookMs:     msSince(start),
	}, nil
}

// Health reports the attached model's identity without invoking inference.
func (s *Service) Health() HealthInfo {
	emb := s.current()
	if emb == nil {
		return HealthInfo{}
	}
	return HealthInfo{Ready: true, Model: emb.ModelName(), Dims: emb.Dimensions()}
}

// partitionTexts splits texts by position into the indices that need the
// model and their values, in ascending index order. Empty and whitespace-only
// entries are left out; they receive the sentinel vector during merge.
func partitionTexts(texts []string) (indices []int, values []string) {
	for i, t := range texts {
		if !isEmptyText(t) {
			indices = append(indices, i)
			values = append(values, t)
		}
	}
	return indices, values
}

// mergeResults builds the final embedding list: the k-th computed vector goes
// to the k-th model-bound index, and every remaining slot gets the sentinel.
func mergeResults(total, dims int, indices []int, computed [][]float32) [][]float32 {
	out := make([][]float32, total)
	for k, idx := range indices {
		out[idx] = computed[k]
	}
	for i := range out {
		if out[i] == nil {
			out[i] = SentinelVector(dims)
		}
	}
	return out
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
