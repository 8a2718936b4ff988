package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewWorkspaceID generates a unique workspace ID with the "ws_" prefix
func NewWorkspaceID() string {
	return "ws_" + uuid.New().String()
}

// NewChunkID generates a unique chunk ID with the "chunk_" prefix
func NewChunkID() string {
	return "chunk_" + uuid.New().String()
}

// NewMessageID generates a unique message ID with the "msg_" prefix
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}
