package models

import "time"

// MessageRole identifies the sender of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// DocumentCitation references a document consulted while answering a turn.
type DocumentCitation struct {
	Name string `json:"name"`
	Page int    `json:"page"`
}

// WebCitation references a web page consulted while answering a turn.
type WebCitation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// MessageSources lists the items actually retrieved for one assistant turn.
// It is built from retrieval results, never parsed out of model text.
type MessageSources struct {
	Documents []DocumentCitation `json:"documents"`
	Web       []WebCitation      `json:"web"`
}

// Message is one entry in a conversation. Exactly one of DocumentID or
// WorkspaceID is set, depending on the conversation scope. Messages are
// immutable after creation and only deleted in bulk when a conversation
// is cleared.
type Message struct {
	ID          string          `json:"id" badgerhold:"key"`
	DocumentID  string          `json:"document_id,omitempty"`
	WorkspaceID string          `json:"workspace_id,omitempty"`
	Role        MessageRole     `json:"role"`
	Content     string          `json:"content"`
	Sources     *MessageSources `json:"sources,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
