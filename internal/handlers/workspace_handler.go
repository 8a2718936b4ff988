package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/interfaces"
)

// WorkspaceHandler serves workspace CRUD and workspace document endpoints.
type WorkspaceHandler struct {
	workspaceService interfaces.WorkspaceService
	documentService  interfaces.DocumentService
	uploads          *DocumentHandler
	logger           arbor.ILogger
}

// NewWorkspaceHandler creates a new WorkspaceHandler instance
func NewWorkspaceHandler(
	workspaceService interfaces.WorkspaceService,
	documentService interfaces.DocumentService,
	uploads *DocumentHandler,
	logger arbor.ILogger,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		documentService:  documentService,
		uploads:          uploads,
		logger:           logger,
	}
}

type createWorkspaceRequest struct {
	Name string `json:"name"`
}

// CollectionHandler handles GET (list) and POST (create) on /api/workspaces.
func (h *WorkspaceHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	userID := RequireUserID(w, r)
	if userID == "" {
		return
	}

	switch r.Method {
	case http.MethodGet:
		workspaces, err := h.workspaceService.List(r.Context(), userID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"workspaces": workspaces})

	case http.MethodPost:
		var req createWorkspaceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		ws, err := h.workspaceService.Create(r.Context(), userID, req.Name)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, ws)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// DetailHandler handles GET and DELETE on /api/workspaces/{id}.
func (h *WorkspaceHandler) DetailHandler(w http.ResponseWriter, r *http.Request, workspaceID string) {
	userID := RequireUserID(w, r)
	if userID == "" {
		return
	}

	switch r.Method {
	case http.MethodGet:
		ws, err := h.workspaceService.Get(r.Context(), workspaceID, userID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ws)

	case http.MethodDelete:
		if err := h.workspaceService.Delete(r.Context(), workspaceID, userID); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteSuccess(w, "workspace deleted")

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// DocumentsHandler handles GET (list) and POST (upload+index) on
// /api/workspaces/{id}/documents.
func (h *WorkspaceHandler) DocumentsHandler(w http.ResponseWriter, r *http.Request, workspaceID string) {
	userID := RequireUserID(w, r)
	if userID == "" {
		return
	}

	switch r.Method {
	case http.MethodGet:
		docs, err := h.documentService.ListWorkspace(r.Context(), workspaceID, userID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})

	case http.MethodPost:
		upload, err := h.uploads.ParseUpload(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		doc, err := h.documentService.UploadToWorkspace(r.Context(), userID, workspaceID, upload)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		// A FAILED document is reported, not hidden: the upload was accepted
		// but ingestion did not complete.
		WriteJSON(w, http.StatusCreated, doc)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
