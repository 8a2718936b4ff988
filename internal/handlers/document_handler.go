package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

// DocumentHandler serves standalone document endpoints and the shared
// multipart upload parsing.
type DocumentHandler struct {
	documentService interfaces.DocumentService
	maxUploadBytes  int64
	logger          arbor.ILogger
}

// NewDocumentHandler creates a new DocumentHandler instance
func NewDocumentHandler(documentService interfaces.DocumentService, maxUploadBytes int64, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadBytes,
		logger:          logger,
	}
}

// CollectionHandler handles GET (list) and POST (upload) on /api/documents.
func (h *DocumentHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	userID := RequireUserID(w, r)
	if userID == "" {
		return
	}

	switch r.Method {
	case http.MethodGet:
		docs, err := h.documentService.List(r.Context(), userID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})

	case http.MethodPost:
		upload, err := h.ParseUpload(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		doc, err := h.documentService.Upload(r.Context(), userID, upload)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, doc)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// DetailHandler handles GET and DELETE on /api/documents/{id}.
func (h *DocumentHandler) DetailHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	userID := RequireUserID(w, r)
	if userID == "" {
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := h.documentService.Get(r.Context(), documentID, userID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, doc)

	case http.MethodDelete:
		if err := h.documentService.Delete(r.Context(), documentID, userID); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteSuccess(w, "document deleted")

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// ParseUpload reads the multipart "file" field into an Upload. The body is
// capped at the configured upload limit before parsing.
func (h *DocumentHandler) ParseUpload(r *http.Request) (*models.Upload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return &models.Upload{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Data:     data,
	}, nil
}
