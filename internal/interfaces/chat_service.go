package interfaces

import (
	"context"

	"github.com/ternarybob/corpus/internal/models"
)

// ChatService maintains ordered conversation history per scope, assembles the
// model prompt, invokes the completion service and persists the exchange.
// There are two scopes: a single-document conversation (the whole document
// text is injected as context) and a workspace conversation (context comes
// from the retrieval orchestrator).
type ChatService interface {
	// SendDocumentMessage handles one turn of a document-scope conversation.
	// On completion failure the user message stays persisted and no
	// assistant message is created.
	SendDocumentMessage(ctx context.Context, documentID, userID, text string) (*models.Message, error)

	// SendWorkspaceMessage handles one turn of a workspace-scope conversation.
	SendWorkspaceMessage(ctx context.Context, workspaceID, userID, text string) (*models.Message, error)

	// DocumentHistory returns the conversation for a document in creation order.
	DocumentHistory(ctx context.Context, documentID, userID string) ([]*models.Message, error)

	// WorkspaceHistory returns the conversation for a workspace in creation order.
	WorkspaceHistory(ctx context.Context, workspaceID, userID string) ([]*models.Message, error)

	// ClearDocumentConversation deletes all messages in a document scope.
	ClearDocumentConversation(ctx context.Context, documentID, userID string) error

	// ClearWorkspaceConversation deletes all messages in a workspace scope.
	ClearWorkspaceConversation(ctx context.Context, workspaceID, userID string) error

	// HealthCheck verifies the completion backend is reachable.
	HealthCheck(ctx context.Context) error
}
