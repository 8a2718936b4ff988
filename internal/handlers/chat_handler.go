package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/interfaces"
)

// ChatHandler serves both conversation scopes: document chat and workspace chat.
type ChatHandler struct {
	chatService interfaces.ChatService
	logger      arbor.ILogger
}

// NewChatHandler creates a new ChatHandler instance
func NewChatHandler(chatService interfaces.ChatService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// DocumentChatHandler handles /api/documents/{id}/chat:
// POST sends a message, GET returns history, DELETE clears the conversation.
func (h *ChatHandler) DocumentChatHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	userID := RequireUserID(w, r)
	if userID == "" {
		return
	}

	switch r.Method {
	case http.MethodPost:
		text, ok := h.readMessage(w, r)
		if !ok {
			return
		}
		msg, err := h.chatService.SendDocumentMessage(r.Context(), documentID, userID, text)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, msg)

	case http.MethodGet:
		history, err := h.chatService.DocumentHistory(r.Context(), documentID, userID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": history})

	case http.MethodDelete:
		if err := h.chatService.ClearDocumentConversation(r.Context(), documentID, userID); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteSuccess(w, "conversation cleared")

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// WorkspaceChatHandler handles /api/workspaces/{id}/chat with the same verbs
// as the document scope.
func (h *ChatHandler) WorkspaceChatHandler(w http.ResponseWriter, r *http.Request, workspaceID string) {
	userID := RequireUserID(w, r)
	if userID == "" {
		return
	}

	switch r.Method {
	case http.MethodPost:
		text, ok := h.readMessage(w, r)
		if !ok {
			return
		}
		msg, err := h.chatService.SendWorkspaceMessage(r.Context(), workspaceID, userID, text)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, msg)

	case http.MethodGet:
		history, err := h.chatService.WorkspaceHistory(r.Context(), workspaceID, userID)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": history})

	case http.MethodDelete:
		if err := h.chatService.ClearWorkspaceConversation(r.Context(), workspaceID, userID); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteSuccess(w, "conversation cleared")

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ChatHandler) readMessage(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		WriteError(w, http.StatusBadRequest, "message cannot be empty")
		return "", false
	}
	return text, true
}
