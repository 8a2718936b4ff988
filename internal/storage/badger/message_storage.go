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

// MessageStorage implements the MessageStorage interface for Badger
type MessageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMessageStorage creates a new MessageStorage instance
func NewMessageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MessageStorage {
	return &MessageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MessageStorage) SaveMessage(msg *models.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("message ID is required")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(msg.ID, msg); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (s *MessageStorage) ListByDocument(documentID string) ([]*models.Message, error) {
	var messages []models.Message
	if err := s.db.Store().Find(&messages, badgerhold.Where("DocumentID").Eq(documentID)); err != nil {
		return nil, fmt.Errorf("failed to list document messages: %w", err)
	}
	return sortedMessages(messages), nil
}

func (s *MessageStorage) ListByWorkspace(workspaceID string) ([]*models.Message, error) {
	var messages []models.Message
	if err := s.db.Store().Find(&messages, badgerhold.Where("WorkspaceID").Eq(workspaceID)); err != nil {
		return nil, fmt.Errorf("failed to list workspace messages: %w", err)
	}
	return sortedMessages(messages), nil
}

func (s *MessageStorage) DeleteByDocument(documentID string) error {
	err := s.db.Store().DeleteMatching(&models.Message{}, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete document messages: %w", err)
	}
	return nil
}

func (s *MessageStorage) DeleteByWorkspace(workspaceID string) error {
	err := s.db.Store().DeleteMatching(&models.Message{}, badgerhold.Where("WorkspaceID").Eq(workspaceID))
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete workspace messages: %w", err)
	}
	return nil
}

// sortedMessages returns messages in creation order, oldest first, the
// order a conversation replays in.
func sortedMessages(messages []models.Message) []*models.Message {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	result := make([]*models.Message, len(messages))
	for i := range messages {
		result[i] = &messages[i]
	}
	return result
}
