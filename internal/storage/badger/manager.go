package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/common"
	"github.com/ternarybob/corpus/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	document  interfaces.DocumentStorage
	chunk     interfaces.ChunkStorage
	workspace interfaces.WorkspaceStorage
	message   interfaces.MessageStorage
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		document:  NewDocumentStorage(db, logger),
		chunk:     NewChunkStorage(db, logger),
		workspace: NewWorkspaceStorage(db, logger),
		message:   NewMessageStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// DocumentStorage returns the Document storage interface
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.document
}

// ChunkStorage returns the Chunk storage interface
func (m *Manager) ChunkStorage() interfaces.ChunkStorage {
	return m.chunk
}

// WorkspaceStorage returns the Workspace storage interface
func (m *Manager) WorkspaceStorage() interfaces.WorkspaceStorage {
	return m.workspace
}

// MessageStorage returns the Message storage interface
func (m *Manager) MessageStorage() interfaces.MessageStorage {
	return m.message
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
