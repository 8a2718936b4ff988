package interfaces

import (
	"time"

	"github.com/ternarybob/corpus/internal/models"
)

// DocumentStorage persists documents and their lifecycle status.
type DocumentStorage interface {
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	ListDocuments(userID string) ([]*models.Document, error)
	ListWorkspaceDocuments(workspaceID string) ([]*models.Document, error)
	// ListFailedBefore returns FAILED documents last updated before the cutoff.
	ListFailedBefore(cutoff time.Time) ([]*models.Document, error)
	DeleteDocument(id string) error
}

// ChunkStorage persists chunk/embedding records and performs
// similarity-ranked retrieval scoped to a workspace.
type ChunkStorage interface {
	// SaveChunks persists one bounded group of chunk records. Groups for a
	// single document are written sequentially by the caller; a failure at
	// any group aborts the document's indexing and the caller removes
	// already-written groups via DeleteByDocument.
	SaveChunks(chunks []*models.Chunk) error

	CountByDocument(documentID string) (int, error)
	DeleteByDocument(documentID string) error
	DeleteByWorkspace(workspaceID string) error

	// SearchSimilar returns at most topK chunks from the given workspace with
	// cosine similarity strictly greater than minSimilarity, ranked
	// descending, ties broken by insertion order.
	SearchSimilar(workspaceID string, query []float32, topK int, minSimilarity float64) ([]models.SearchResult, error)
}

// WorkspaceStorage persists workspaces.
type WorkspaceStorage interface {
	SaveWorkspace(ws *models.Workspace) error
	GetWorkspace(id string) (*models.Workspace, error)
	ListWorkspaces(userID string) ([]*models.Workspace, error)
	DeleteWorkspace(id string) error
}

// MessageStorage persists conversation messages. Listing returns messages in
// creation order; deletion is bulk per conversation scope.
type MessageStorage interface {
	SaveMessage(msg *models.Message) error
	ListByDocument(documentID string) ([]*models.Message, error)
	ListByWorkspace(workspaceID string) ([]*models.Message, error)
	DeleteByDocument(documentID string) error
	DeleteByWorkspace(workspaceID string) error
}

// StorageManager provides access to all storage interfaces.
type StorageManager interface {
	DocumentStorage() DocumentStorage
	ChunkStorage() ChunkStorage
	WorkspaceStorage() WorkspaceStorage
	MessageStorage() MessageStorage
	Close() error
}
