// Package workspaces manages workspace records and the cascading removal of
// everything scoped to a workspace.
package workspaces

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/corpus/internal/common"
	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

// Service implements interfaces.WorkspaceService.
type Service struct {
	workspaces interfaces.WorkspaceStorage
	documents  interfaces.DocumentStorage
	chunks     interfaces.ChunkStorage
	messages   interfaces.MessageStorage
	logger     arbor.ILogger
}

// NewService creates a workspace service.
func NewService(
	workspaces interfaces.WorkspaceStorage,
	documents interfaces.DocumentStorage,
	chunks interfaces.ChunkStorage,
	messages interfaces.MessageStorage,
	logger arbor.ILogger,
) *Service {
	return &Service{
		workspaces: workspaces,
		documents:  documents,
		chunks:     chunks,
		messages:   messages,
		logger:     logger,
	}
}

var _ interfaces.WorkspaceService = (*Service)(nil)

// Create stores a new workspace for the user.
func (s *Service) Create(ctx context.Context, userID, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("workspace name cannot be empty")
	}

	ws := &models.Workspace{
		ID:        common.NewWorkspaceID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.workspaces.SaveWorkspace(ws); err != nil {
		return nil, fmt.Errorf("failed to save workspace: %w", err)
	}

	s.logger.Info().Str("workspace_id", ws.ID).Str("name", name).Msg("Workspace created")
	return ws, nil
}

// Get returns a workspace owned by the user.
func (s *Service) Get(ctx context.Context, id, userID string) (*models.Workspace, error) {
	return s.owned(id, userID)
}

// List returns all workspaces owned by the user.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Workspace, error) {
	return s.workspaces.ListWorkspaces(userID)
}

// Delete removes the workspace and everything scoped to it: documents,
// chunks and conversation messages. Later searches on the workspace id
// return empty results rather than erroring.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(id, userID); err != nil {
		return err
	}

	docs, err := s.documents.ListWorkspaceDocuments(id)
	if err != nil {
		return fmt.Errorf("failed to list workspace documents: %w", err)
	}
	for _, doc := range docs {
		if err := s.documents.DeleteDocument(doc.ID); err != nil {
			return fmt.Errorf("failed to delete document %s: %w", doc.ID, err)
		}
		if err := s.messages.DeleteByDocument(doc.ID); err != nil {
			return fmt.Errorf("failed to delete messages for document %s: %w", doc.ID, err)
		}
	}

	if err := s.chunks.DeleteByWorkspace(id); err != nil {
		return fmt.Errorf("failed to delete workspace chunks: %w", err)
	}
	if err := s.messages.DeleteByWorkspace(id); err != nil {
		return fmt.Errorf("failed to delete workspace messages: %w", err)
	}
	if err := s.workspaces.DeleteWorkspace(id); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	s.logger.Info().
		Str("workspace_id", id).
		Int("documents", len(docs)).
		Msg("Workspace deleted")

	return nil
}

func (s *Service) owned(id, userID string) (*models.Workspace, error) {
	ws, err := s.workspaces.GetWorkspace(id)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("workspace %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load workspace %s: %w", id, err)
	}
	if ws.UserID != userID {
		return nil, fmt.Errorf("workspace %s: %w", id, models.ErrAccessDenied)
	}
	return ws, nil
}
