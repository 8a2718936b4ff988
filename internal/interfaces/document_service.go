package interfaces

import (
	"context"

	"github.com/ternarybob/corpus/internal/models"
)

// DocumentService owns the document ingestion lifecycle: upload, extraction,
// chunking, embedding, indexing and cascading removal.
type DocumentService interface {
	// Upload stores a standalone document (no workspace). The content is not
	// chunked or embedded; the document is immediately ready for
	// document-scope chat.
	Upload(ctx context.Context, userID string, upload *models.Upload) (*models.Document, error)

	// UploadToWorkspace runs the full ingestion pipeline: extract, chunk,
	// embed, index. The returned document carries its final lifecycle status
	// (INDEXED or FAILED).
	UploadToWorkspace(ctx context.Context, userID, workspaceID string, upload *models.Upload) (*models.Document, error)

	// Get returns a document owned by the user.
	Get(ctx context.Context, id, userID string) (*models.Document, error)

	// List returns all documents owned by the user.
	List(ctx context.Context, userID string) ([]*models.Document, error)

	// ListWorkspace returns the documents of a workspace owned by the user.
	ListWorkspace(ctx context.Context, workspaceID, userID string) ([]*models.Document, error)

	// Delete removes a document together with its chunks and conversation.
	Delete(ctx context.Context, id, userID string) error
}

// WorkspaceService manages workspaces and their cascading removal.
type WorkspaceService interface {
	Create(ctx context.Context, userID, name string) (*models.Workspace, error)
	Get(ctx context.Context, id, userID string) (*models.Workspace, error)
	List(ctx context.Context, userID string) ([]*models.Workspace, error)

	// Delete removes the workspace and everything scoped to it: documents,
	// chunks and messages. Subsequent searches on the workspace id return
	// empty results rather than erroring.
	Delete(ctx context.Context, id, userID string) error
}
