package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/common"
	"github.com/ternarybob/corpus/internal/interfaces"
)

// APIHandler serves system endpoints: health, version and the API 404.
type APIHandler struct {
	chatService interfaces.ChatService
	embedder    interfaces.EmbeddingService
	logger      arbor.ILogger
}

// NewAPIHandler creates a new APIHandler instance
func NewAPIHandler(chatService interfaces.ChatService, embedder interfaces.EmbeddingService, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		chatService: chatService,
		embedder:    embedder,
		logger:      logger,
	}
}

// HealthHandler reports service health including backend availability.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := "ok"
	details := map[string]string{
		"completion": "ok",
		"embedding":  "ok",
	}

	if err := h.chatService.HealthCheck(r.Context()); err != nil {
		status = "degraded"
		details["completion"] = err.Error()
	}
	if !h.embedder.IsAvailable(r.Context()) {
		status = "degraded"
		details["embedding"] = "unavailable"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	WriteJSON(w, code, map[string]interface{}{
		"status":  status,
		"version": common.GetVersion(),
		"details": details,
	})
}

// VersionHandler returns build version information.
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// NotFoundHandler handles unmatched API routes.
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not found")
}
