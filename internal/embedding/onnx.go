//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/vektor/pkg/utils"
)

// ONNXEmbedder runs a BERT-family encoder through ONNX Runtime and pools the
// CLS position of last_hidden_state into one L2-normalized vector per input.
// It requires CGO and the onnxruntime shared library.
//
// The session is created once at startup on a fixed device (CUDA when the
// provider is available, CPU otherwise) and serialized with a mutex: the
// runtime does not guarantee concurrent Run calls on one session.
type ONNXEmbedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  Tokenizer
	modelName  string
	device     string
	dimensions int
	maxTokens  int
	cache      *EmbeddingCache
	mu         sync.Mutex
}

// NewONNXEmbedder creates an ONNX embedder for the model file at modelPath.
// InitializeEnvironment is called if not already done. dimensions must match
// the encoder's hidden width; a mismatch fails the first forward pass.
func NewONNXEmbedder(modelPath string, tokenizer Tokenizer, modelName string, dimensions, maxTokens, cacheSize int) (*ONNXEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()

	device := "cpu"
	if cudaOpts, cudaErr := ort.NewCUDAProviderOptions(); cudaErr == nil {
		if appendErr := opts.AppendExecutionProviderCUDA(cudaOpts); appendErr == nil {
			device = "cuda"
		}
		cudaOpts.Destroy()
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXEmbedder{
		session:    session,
		tokenizer:  tokenizer,
		modelName:  modelName,
		device:     device,
		dimensions: dimensions,
		maxTokens:  maxTokens,
		cache:      NewEmbeddingCache(cacheSize),
	}, nil
}

// Embed returns the embedding for text, using the cache when available.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	rows, err := e.forward([]string{text})
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, rows[0])
	return rows[0], nil
}

// EmbedBatch embeds all texts in one padded forward pass, returning one vector
// per input in the same order. The batch fails atomically: any runtime error
// yields no results at all.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	rows, err := e.forward(texts)
	if err != nil {
		return nil, err
	}
	for i, text := range texts {
		e.cache.Set(text, rows[i])
	}
	return rows, nil
}

// forward tokenizes texts with padding to a common length, runs one forward
// pass, and returns the normalized CLS vector of every row.
func (e *ONNXEmbedder) forward(texts []string) ([][]float32, error) {
	inputIDs, attentionMask, tokenTypeIDs, seqLen := TokenizeBatch(e.tokenizer, texts, e.maxTokens)
	batch := len(texts)
	shape := ort.NewShape(int64(batch), int64(seqLen))

	e.mu.Lock()
	defer e.mu.Unlock()

	idsTensor, err := ort.NewTensor(shape, flatten(inputIDs))
	if err != nil {
		return nil, &InferenceError{Cause: fmt.Errorf("input_ids tensor: %w", err)}
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, flatten(attentionMask))
	if err != nil {
		return nil, &InferenceError{Cause: fmt.Errorf("attention_mask tensor: %w", err)}
	}
	defer maskTensor.Destroy()
	typesTensor, err := ort.NewTensor(shape, flatten(tokenTypeIDs))
	if err != nil {
		return nil, &InferenceError{Cause: fmt.Errorf("token_type_ids tensor: %w", err)}
	}
	defer typesTensor.Destroy()

	outData := make([]float32, batch*seqLen*e.dimensions)
	outTensor, err := ort.NewTensor(ort.NewShape(int64(batch), int64(seqLen), int64(e.dimensions)), outData)
	if err != nil {
		return nil, &InferenceError{Cause: fmt.Errorf("output tensor: %w", err)}
	}
	defer outTensor.Destroy()

	if err := e.session.Run(
		[]ort.ArbitraryTensor{idsTensor, maskTensor, typesTensor},
		[]ort.ArbitraryTensor{outTensor},
	); err != nil {
		return nil, &InferenceError{Cause: err}
	}

	hidden := outTensor.GetData()
	rows := make([][]float32, batch)
	for i := range rows {
		// CLS vector sits at sequence position 0 of each row.
		start := i * seqLen * e.dimensions
		row := make([]float32, e.dimensions)
		copy(row, hidden[start:start+e.dimensions])
		utils.NormalizeL2(row)
		rows[i] = row
	}
	return rows, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the configured model identifier.
func (e *ONNXEmbedder) ModelName() string {
	return e.modelName
}

// Device reports which execution provider the session runs on ("cuda" or "cpu").
func (e *ONNXEmbedder) Device() string {
	return e.device
}

// Close destroys the session.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}

func flatten(rows [][]int64) []int64 {
	if len(rows) == 0 {
		return nil
	}
	flat := make([]int64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return flat
}
