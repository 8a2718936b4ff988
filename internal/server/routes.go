package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Workspaces
	mux.HandleFunc("/api/workspaces", s.app.WorkspaceHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/workspaces/", s.handleWorkspaceRoutes)                 // /{id}, /{id}/documents, /{id}/chat

	// API routes - Standalone documents
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.CollectionHandler) // GET (list), POST (upload)
	mux.HandleFunc("/api/documents/", s.handleDocumentRoutes)                 // /{id}, /{id}/chat

	// API routes - System
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleWorkspaceRoutes dispatches /api/workspaces/{id}[/...] requests.
func (s *Server) handleWorkspaceRoutes(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/workspaces/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.app.WorkspaceHandler.DetailHandler(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "documents":
		s.app.WorkspaceHandler.DocumentsHandler(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "chat":
		s.app.ChatHandler.WorkspaceChatHandler(w, r, parts[0])
	default:
		s.app.APIHandler.NotFoundHandler(w, r)
	}
}

// handleDocumentRoutes dispatches /api/documents/{id}[/...] requests.
func (s *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/documents/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.app.DocumentHandler.DetailHandler(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "chat":
		s.app.ChatHandler.DocumentChatHandler(w, r, parts[0])
	default:
		s.app.APIHandler.NotFoundHandler(w, r)
	}
}

// splitPath strips the route prefix and splits the remainder on "/".
func splitPath(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
