// Package models defines the wire shapes for the embedding API.
package models

// EmbedRequest is the input for single-text embedding. Text may be empty;
// empty or whitespace-only text yields the sentinel vector.
type EmbedRequest struct {
	Text string `json:"text"`
}

// EmbedResponse carries one embedding vector.
type EmbedResponse struct {
	Embedding []float32 `json:"embedding"`
	Dims      int       `json:"dims"`
	Model     string    `json:"model"`
	TookMs    float64   `json:"took_ms"`
}

// BatchEmbedRequest is the input for batch embedding. Texts must contain at
// least one entry; response order matches request order.
type BatchEmbedRequest struct {
	Texts []string `json:"texts"`
}

// BatchEmbedResponse carries one embedding per input text, in input order.
type BatchEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dims       int         `json:"dims"`
	Model      string      `json:"model"`
	TookMs     float64     `json:"took_ms"`
}

// HealthResponse reports readiness without triggering inference. Model is
// null until the model has been loaded.
type HealthResponse struct {
	Status string  `json:"status"`
	Model  *string `json:"model"`
	Dims   int     `json:"dims"`
}

// ErrorResponse is the body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
