package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/vektor/internal/models"
	"github.com/hyperjump/vektor/internal/service"
)

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req models.EmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.svc.Embed(r.Context(), req.Text)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.metrics.EmbedDuration.WithLabelValues("/embed").Observe(result.TookMs / 1000.0)
	s.respondJSON(w, http.StatusOK, models.EmbedResponse{
		Embedding: result.Embedding,
		Dims:      result.Dims,
		Model:     result.Model,
		TookMs:    result.TookMs,
	})
}

func (s *Server) handleEmbedBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchEmbedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.svc.EmbedBatch(r.Context(), req.Texts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.metrics.EmbedDuration.WithLabelValues("/embed_batch").Observe(result.TookMs / 1000.0)
	s.metrics.BatchSize.Observe(float64(len(req.Texts)))
	s.respondJSON(w, http.StatusOK, models.BatchEmbedResponse{
		Embeddings: result.Embeddings,
		Dims:       result.Dims,
		Model:      result.Model,
		TookMs:     result.TookMs,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := s.svc.Health()
	resp := models.HealthResponse{Status: "loading", Dims: info.Dims}
	if info.Ready {
		resp.Status = "ok"
		resp.Model = &info.Model
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// respondServiceError maps a classified service error to its HTTP status.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		s.logger.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindInvalidRequest:
		status = http.StatusBadRequest
	case service.KindUnavailable:
		status = http.StatusServiceUnavailable
	case service.KindComputationFailed:
		status = http.StatusInternalServerError
	}
	if svcErr.Kind != service.KindInvalidRequest {
		s.logger.Error("request failed", zap.Error(svcErr))
	}
	s.respondError(w, status, svcErr.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message})
}
