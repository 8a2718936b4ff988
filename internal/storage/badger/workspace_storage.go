package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

// WorkspaceStorage implements the WorkspaceStorage interface for Badger
type WorkspaceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewWorkspaceStorage creates a new WorkspaceStorage instance
func NewWorkspaceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.WorkspaceStorage {
	return &WorkspaceStorage{
		db:     db,
		logger: logger,
	}
}

func (s *WorkspaceStorage) SaveWorkspace(ws *models.Workspace) error {
	if ws.ID == "" {
		return fmt.Errorf("workspace ID is required")
	}
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(ws.ID, ws); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

func (s *WorkspaceStorage) GetWorkspace(id string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := s.db.Store().Get(id, &ws); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("workspace %s: %w", id, badgerhold.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &ws, nil
}

func (s *WorkspaceStorage) ListWorkspaces(userID string) ([]*models.Workspace, error) {
	var workspaces []models.Workspace
	if err := s.db.Store().Find(&workspaces, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	sort.SliceStable(workspaces, func(i, j int) bool {
		return workspaces[i].CreatedAt.After(workspaces[j].CreatedAt)
	})
	result := make([]*models.Workspace, len(workspaces))
	for i := range workspaces {
		result[i] = &workspaces[i]
	}
	return result, nil
}

func (s *WorkspaceStorage) DeleteWorkspace(id string) error {
	if err := s.db.Store().Delete(id, &models.Workspace{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}
