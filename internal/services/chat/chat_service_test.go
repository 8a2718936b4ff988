package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/corpus/internal/common"
	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

type fakeCompleter struct {
	response string
	err      error
	prompts  [][]interfaces.Message
}

func (f *fakeCompleter) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("not supported")
}

func (f *fakeCompleter) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	f.prompts = append(f.prompts, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) HealthCheck(ctx context.Context) error { return f.err }

func (f *fakeCompleter) GetMode() interfaces.LLMMode { return interfaces.LLMModeCloud }

func (f *fakeCompleter) Close() error { return nil }

type fakeRetrieval struct {
	result *interfaces.RetrievalContext
	err    error
}

func (f *fakeRetrieval) Retrieve(ctx context.Context, workspaceID, query string) (*interfaces.RetrievalContext, error) {
	return f.result, f.err
}

type memDocStorage struct {
	docs map[string]*models.Document
}

func (m *memDocStorage) SaveDocument(doc *models.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *memDocStorage) GetDocument(id string) (*models.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, badgerhold.ErrNotFound
	}
	return doc, nil
}

func (m *memDocStorage) ListDocuments(userID string) ([]*models.Document, error) { return nil, nil }

func (m *memDocStorage) ListWorkspaceDocuments(workspaceID string) ([]*models.Document, error) {
	return nil, nil
}

func (m *memDocStorage) ListFailedBefore(cutoff time.Time) ([]*models.Document, error) {
	return nil, nil
}

func (m *memDocStorage) DeleteDocument(id string) error {
	delete(m.docs, id)
	return nil
}

type memWorkspaceStorage struct {
	workspaces map[string]*models.Workspace
}

func (m *memWorkspaceStorage) SaveWorkspace(ws *models.Workspace) error {
	m.workspaces[ws.ID] = ws
	return nil
}

func (m *memWorkspaceStorage) GetWorkspace(id string) (*models.Workspace, error) {
	ws, ok := m.workspaces[id]
	if !ok {
		return nil, badgerhold.ErrNotFound
	}
	return ws, nil
}

func (m *memWorkspaceStorage) ListWorkspaces(userID string) ([]*models.Workspace, error) {
	return nil, nil
}

func (m *memWorkspaceStorage) DeleteWorkspace(id string) error {
	delete(m.workspaces, id)
	return nil
}

type memMessageStorage struct {
	messages []*models.Message
}

func (m *memMessageStorage) SaveMessage(msg *models.Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memMessageStorage) ListByDocument(documentID string) ([]*models.Message, error) {
	var out []*models.Message
	for _, msg := range m.messages {
		if msg.DocumentID == documentID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memMessageStorage) ListByWorkspace(workspaceID string) ([]*models.Message, error) {
	var out []*models.Message
	for _, msg := range m.messages {
		if msg.WorkspaceID == workspaceID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memMessageStorage) DeleteByDocument(documentID string) error {
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.DocumentID != documentID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}

func (m *memMessageStorage) DeleteByWorkspace(workspaceID string) error {
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.WorkspaceID != workspaceID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}

type fixture struct {
	svc        *Service
	completer  *fakeCompleter
	retrieval  *fakeRetrieval
	docs       *memDocStorage
	workspaces *memWorkspaceStorage
	messages   *memMessageStorage
}

func newFixture() *fixture {
	f := &fixture{
		completer: &fakeCompleter{response: "assistant answer"},
		retrieval: &fakeRetrieval{result: &interfaces.RetrievalContext{
			Text:      "### Internal Document Context:\n- Source: report.pdf (Page 2):\nRevenue grew 12%.",
			Documents: []models.DocumentCitation{{Name: "report.pdf", Page: 2}},
		}},
		docs:       &memDocStorage{docs: make(map[string]*models.Document)},
		workspaces: &memWorkspaceStorage{workspaces: make(map[string]*models.Workspace)},
		messages:   &memMessageStorage{},
	}
	f.svc = NewService(f.completer, f.retrieval, f.docs, f.workspaces, f.messages, common.GetLogger())
	return f
}

func (f *fixture) addWorkspace(id, userID string) {
	f.workspaces.workspaces[id] = &models.Workspace{ID: id, UserID: userID, Name: "test", CreatedAt: time.Now()}
}

func (f *fixture) addDocument(id, userID, content string) {
	f.docs.docs[id] = &models.Document{
		ID: id, UserID: userID, Name: "notes.txt",
		Type: models.DocumentTypeText, Content: content,
		Status: models.StatusReady, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
}

func TestSendWorkspaceMessage(t *testing.T) {
	f := newFixture()
	f.addWorkspace("ws-1", "user-1")

	msg, err := f.svc.SendWorkspaceMessage(context.Background(), "ws-1", "user-1", "how did revenue develop?")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAssistant, msg.Role)
	assert.Equal(t, "assistant answer", msg.Content)
	require.NotNil(t, msg.Sources)
	assert.Equal(t, []models.DocumentCitation{{Name: "report.pdf", Page: 2}}, msg.Sources.Documents)

	history, err := f.svc.WorkspaceHistory(context.Background(), "ws-1", "user-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "how did revenue develop?", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[1].Role)

	require.Len(t, f.completer.prompts, 1)
	prompt := f.completer.prompts[0]
	assert.Equal(t, "system", prompt[0].Role)
	assert.Contains(t, prompt[0].Content, "Revenue grew 12%.")
	assert.Equal(t, "how did revenue develop?", prompt[len(prompt)-1].Content)
}

func TestSendWorkspaceMessage_CompletionFailureKeepsUserMessage(t *testing.T) {
	f := newFixture()
	f.addWorkspace("ws-1", "user-1")
	f.completer.err = errors.New("model overloaded")

	msg, err := f.svc.SendWorkspaceMessage(context.Background(), "ws-1", "user-1", "question")
	require.Error(t, err)
	assert.Nil(t, msg)

	var completionErr *models.CompletionServiceError
	assert.True(t, errors.As(err, &completionErr))

	history, err := f.svc.WorkspaceHistory(context.Background(), "ws-1", "user-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "question", history[0].Content)
}

func TestSendWorkspaceMessage_RetrievalFailurePersistsNothing(t *testing.T) {
	f := newFixture()
	f.addWorkspace("ws-1", "user-1")
	f.retrieval.err = errors.New("embedding quota exceeded")

	_, err := f.svc.SendWorkspaceMessage(context.Background(), "ws-1", "user-1", "question")
	require.Error(t, err)

	assert.Empty(t, f.messages.messages)
	assert.Empty(t, f.completer.prompts)
}

func TestSendWorkspaceMessage_HistoryReplayedInOrder(t *testing.T) {
	f := newFixture()
	f.addWorkspace("ws-1", "user-1")

	_, err := f.svc.SendWorkspaceMessage(context.Background(), "ws-1", "user-1", "first question")
	require.NoError(t, err)
	_, err = f.svc.SendWorkspaceMessage(context.Background(), "ws-1", "user-1", "second question")
	require.NoError(t, err)

	require.Len(t, f.completer.prompts, 2)
	second := f.completer.prompts[1]
	require.Len(t, second, 4) // system, prior user, prior assistant, current user
	assert.Equal(t, "first question", second[1].Content)
	assert.Equal(t, "assistant answer", second[2].Content)
	assert.Equal(t, "second question", second[3].Content)
}

func TestSendDocumentMessage(t *testing.T) {
	f := newFixture()
	f.addDocument("doc-1", "user-1", "The agreement terminates on 31 December 2026.")

	msg, err := f.svc.SendDocumentMessage(context.Background(), "doc-1", "user-1", "when does it terminate?")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAssistant, msg.Role)
	require.NotNil(t, msg.Sources)
	require.Len(t, msg.Sources.Documents, 1)
	assert.Equal(t, "notes.txt", msg.Sources.Documents[0].Name)

	require.Len(t, f.completer.prompts, 1)
	system := f.completer.prompts[0][0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "The agreement terminates on 31 December 2026.")
	assert.Contains(t, system.Content, "notes.txt")
}

func TestSendDocumentMessage_WrongUser(t *testing.T) {
	f := newFixture()
	f.addDocument("doc-1", "user-1", "content")

	_, err := f.svc.SendDocumentMessage(context.Background(), "doc-1", "user-2", "question")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrAccessDenied))
	assert.Empty(t, f.messages.messages)
}

func TestSendDocumentMessage_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SendDocumentMessage(context.Background(), "doc-missing", "user-1", "question")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestClearWorkspaceConversation(t *testing.T) {
	f := newFixture()
	f.addWorkspace("ws-1", "user-1")

	_, err := f.svc.SendWorkspaceMessage(context.Background(), "ws-1", "user-1", "question")
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearWorkspaceConversation(context.Background(), "ws-1", "user-1"))

	history, err := f.svc.WorkspaceHistory(context.Background(), "ws-1", "user-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestScopeLocksReleasedAfterTurn(t *testing.T) {
	f := newFixture()
	f.addWorkspace("ws-1", "user-1")
	f.addDocument("doc-1", "user-1", "document body")

	_, err := f.svc.SendWorkspaceMessage(context.Background(), "ws-1", "user-1", "question")
	require.NoError(t, err)
	_, err = f.svc.SendDocumentMessage(context.Background(), "doc-1", "user-1", "question")
	require.NoError(t, err)

	f.svc.mu.Lock()
	held := len(f.svc.scopeLocks)
	f.svc.mu.Unlock()
	assert.Equal(t, 0, held, "idle conversations must not keep lock entries")
}

func TestScopeLocksReleasedAfterFailedTurn(t *testing.T) {
	f := newFixture()
	f.addWorkspace("ws-1", "user-1")
	f.completer.err = errors.New("model overloaded")

	_, err := f.svc.SendWorkspaceMessage(context.Background(), "ws-1", "user-1", "question")
	require.Error(t, err)

	f.svc.mu.Lock()
	held := len(f.svc.scopeLocks)
	f.svc.mu.Unlock()
	assert.Equal(t, 0, held)
}

func TestBuildMessages_BoundsHistory(t *testing.T) {
	history := make([]*models.Message, maxHistoryMessages+10)
	for i := range history {
		history[i] = &models.Message{Role: models.RoleUser, Content: strings.Repeat("x", 3)}
	}

	messages := buildMessages("system", history, "current")
	assert.Len(t, messages, maxHistoryMessages+2)
	assert.Equal(t, "current", messages[len(messages)-1].Content)
}
