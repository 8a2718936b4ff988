// Package chat implements the conversation layer: it persists message
// history per scope, assembles the model prompt and invokes the completion
// provider.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/corpus/internal/common"
	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

// maxHistoryMessages bounds how many prior messages are replayed into the
// prompt each turn. Older messages stay persisted but are not sent.
const maxHistoryMessages = 20

// Service implements interfaces.ChatService.
type Service struct {
	completer  interfaces.LLMService
	retrieval  interfaces.RetrievalService
	documents  interfaces.DocumentStorage
	workspaces interfaces.WorkspaceStorage
	messages   interfaces.MessageStorage
	logger     arbor.ILogger

	// scopeLocks serializes turns within one conversation so concurrent
	// sends cannot interleave their history reads and writes. Entries are
	// refcounted and removed once the last holder releases, so the map
	// only holds conversations with turns in flight.
	mu         sync.Mutex
	scopeLocks map[string]*scopeLock
}

type scopeLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a chat service.
func NewService(
	completer interfaces.LLMService,
	retrieval interfaces.RetrievalService,
	documents interfaces.DocumentStorage,
	workspaces interfaces.WorkspaceStorage,
	messages interfaces.MessageStorage,
	logger arbor.ILogger,
) *Service {
	return &Service{
		completer:  completer,
		retrieval:  retrieval,
		documents:  documents,
		workspaces: workspaces,
		messages:   messages,
		logger:     logger,
		scopeLocks: make(map[string]*scopeLock),
	}
}

var _ interfaces.ChatService = (*Service)(nil)

// SendDocumentMessage handles one turn of a document-scope conversation.
// The whole document text is injected as the system prompt context. The
// user message is persisted before the completion call, so it survives a
// completion failure.
func (s *Service) SendDocumentMessage(ctx context.Context, documentID, userID, text string) (*models.Message, error) {
	doc, err := s.ownedDocument(documentID, userID)
	if err != nil {
		return nil, err
	}
	if doc.Content == "" {
		return nil, fmt.Errorf("document %s has no extracted text to chat about", documentID)
	}

	unlock := s.lockScope("doc:" + documentID)
	defer unlock()

	history, err := s.messages.ListByDocument(documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	userMsg := &models.Message{
		ID:         common.NewMessageID(),
		DocumentID: documentID,
		Role:       models.RoleUser,
		Content:    text,
		CreatedAt:  time.Now(),
	}
	if err := s.messages.SaveMessage(userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	prompt := buildMessages(documentSystemPrompt(doc.Name, doc.Content), history, text)

	response, err := s.completer.Chat(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Str("document_id", documentID).Msg("Completion failed for document conversation")
		return nil, &models.CompletionServiceError{Err: err}
	}

	assistantMsg := &models.Message{
		ID:         common.NewMessageID(),
		DocumentID: documentID,
		Role:       models.RoleAssistant,
		Content:    response,
		Sources: &models.MessageSources{
			Documents: []models.DocumentCitation{{Name: doc.Name, Page: 1}},
		},
		CreatedAt: time.Now(),
	}
	if err := s.messages.SaveMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	s.logger.Info().
		Str("document_id", documentID).
		Int("history", len(history)).
		Msg("Document conversation turn completed")

	return assistantMsg, nil
}

// SendWorkspaceMessage handles one turn of a workspace-scope conversation.
// Context comes from the retrieval orchestrator; the assistant message
// records the citations retrieval actually produced.
func (s *Service) SendWorkspaceMessage(ctx context.Context, workspaceID, userID, text string) (*models.Message, error) {
	if _, err := s.ownedWorkspace(workspaceID, userID); err != nil {
		return nil, err
	}

	unlock := s.lockScope("ws:" + workspaceID)
	defer unlock()

	retrieved, err := s.retrieval.Retrieve(ctx, workspaceID, text)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	history, err := s.messages.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	userMsg := &models.Message{
		ID:          common.NewMessageID(),
		WorkspaceID: workspaceID,
		Role:        models.RoleUser,
		Content:     text,
		CreatedAt:   time.Now(),
	}
	if err := s.messages.SaveMessage(userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	prompt := buildMessages(buildWorkspacePrompt(retrieved.Text), history, text)

	response, err := s.completer.Chat(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Str("workspace_id", workspaceID).Msg("Completion failed for workspace conversation")
		return nil, &models.CompletionServiceError{Err: err}
	}

	assistantMsg := &models.Message{
		ID:          common.NewMessageID(),
		WorkspaceID: workspaceID,
		Role:        models.RoleAssistant,
		Content:     response,
		Sources: &models.MessageSources{
			Documents: retrieved.Documents,
			Web:       retrieved.Web,
		},
		CreatedAt: time.Now(),
	}
	if err := s.messages.SaveMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	s.logger.Info().
		Str("workspace_id", workspaceID).
		Int("history", len(history)).
		Int("document_sources", len(retrieved.Documents)).
		Int("web_sources", len(retrieved.Web)).
		Bool("web_searched", retrieved.WebSearched).
		Msg("Workspace conversation turn completed")

	return assistantMsg, nil
}

// DocumentHistory returns the conversation for a document in creation order.
func (s *Service) DocumentHistory(ctx context.Context, documentID, userID string) ([]*models.Message, error) {
	if _, err := s.ownedDocument(documentID, userID); err != nil {
		return nil, err
	}
	return s.messages.ListByDocument(documentID)
}

// WorkspaceHistory returns the conversation for a workspace in creation order.
func (s *Service) WorkspaceHistory(ctx context.Context, workspaceID, userID string) ([]*models.Message, error) {
	if _, err := s.ownedWorkspace(workspaceID, userID); err != nil {
		return nil, err
	}
	return s.messages.ListByWorkspace(workspaceID)
}

// ClearDocumentConversation deletes all messages in a document scope.
func (s *Service) ClearDocumentConversation(ctx context.Context, documentID, userID string) error {
	if _, err := s.ownedDocument(documentID, userID); err != nil {
		return err
	}

	unlock := s.lockScope("doc:" + documentID)
	defer unlock()

	return s.messages.DeleteByDocument(documentID)
}

// ClearWorkspaceConversation deletes all messages in a workspace scope.
func (s *Service) ClearWorkspaceConversation(ctx context.Context, workspaceID, userID string) error {
	if _, err := s.ownedWorkspace(workspaceID, userID); err != nil {
		return err
	}

	unlock := s.lockScope("ws:" + workspaceID)
	defer unlock()

	return s.messages.DeleteByWorkspace(workspaceID)
}

// HealthCheck verifies the completion backend is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.completer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("completion service unhealthy: %w", err)
	}
	return nil
}

func (s *Service) ownedDocument(documentID, userID string) (*models.Document, error) {
	doc, err := s.documents.GetDocument(documentID)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", documentID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load document %s: %w", documentID, err)
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("document %s: %w", documentID, models.ErrAccessDenied)
	}
	return doc, nil
}

func (s *Service) ownedWorkspace(workspaceID, userID string) (*models.Workspace, error) {
	ws, err := s.workspaces.GetWorkspace(workspaceID)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("workspace %s: %w", workspaceID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load workspace %s: %w", workspaceID, err)
	}
	if ws.UserID != userID {
		return nil, fmt.Errorf("workspace %s: %w", workspaceID, models.ErrAccessDenied)
	}
	return ws, nil
}

// lockScope acquires the per-conversation mutex and returns its unlock
// func. The unlock drops the entry once no other turn is waiting on it.
func (s *Service) lockScope(key string) func() {
	s.mu.Lock()
	lock, ok := s.scopeLocks[key]
	if !ok {
		lock = &scopeLock{}
		s.scopeLocks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.scopeLocks, key)
		}
		s.mu.Unlock()
	}
}

// buildMessages assembles the prompt: system text, bounded history, then
// the current user message.
func buildMessages(systemPrompt string, history []*models.Message, text string) []interfaces.Message {
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	messages := make([]interfaces.Message, 0, len(history)+2)
	messages = append(messages, interfaces.Message{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		messages = append(messages, interfaces.Message{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, interfaces.Message{Role: "user", Content: text})
	return messages
}
