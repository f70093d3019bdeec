// Package api serves the pre-flight and catalog lookups over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"lakewriter/internal/domain"
	"lakewriter/internal/middleware"
	"lakewriter/internal/service/writer"
)

// typesService defines the catalog lookups used by the API handler.
type typesService interface {
	GetTableTypes(ctx context.Context, database, table string) (domain.TypeMap, error)
}

// writerFactory hands out writers; presign selects signed upload URLs.
type writerFactory interface {
	Writer(presign bool) *writer.Writer
}

// APIHandler implements the HTTP endpoints.
type APIHandler struct {
	types   typesService
	writers writerFactory
	logger  *slog.Logger
	maxBody int64
}

// NewHandler creates an APIHandler.
func NewHandler(types typesService, writers writerFactory, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		types:   types,
		writers: writers,
		logger:  logger,
		maxBody: 32 << 20,
	}
}

// Error is the JSON body of every non-2xx response.
type Error struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Health reports liveness.
func (h *APIHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, Error{
		Code:      status,
		Message:   msg,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
