package documents

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
	"github.com/ternarybob/corpus/internal/models"
)

type memDocStorage struct {
	docs map[string]*models.Document
}

func (m *memDocStorage) SaveDocument(doc *models.Document) error {
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *memDocStorage) GetDocument(id string) (*models.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, badgerhold.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *memDocStorage) ListDocuments(userID string) ([]*models.Document, error) {
	var out []*models.Document
	for _, doc := range m.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memDocStorage) ListWorkspaceDocuments(workspaceID string) ([]*models.Document, error) {
	var out []*models.Document
	for _, doc := range m.docs {
		if doc.WorkspaceID == workspaceID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memDocStorage) ListFailedBefore(cutoff time.Time) ([]*models.Document, error) {
	return nil, nil
}

func (m *memDocStorage) DeleteDocument(id string) error {
	delete(m.docs, id)
	return nil
}

type memChunkStorage struct {
	chunks       map[string]*models.Chunk
	saveBatch    []int
	saveErrOn    int // fail the n-th SaveChunks call (1-based), 0 disables
	saveCalls    int
	deleteDocErr error // returned by DeleteByDocument when set
}

func (m *memChunkStorage) SaveChunks(chunks []*models.Chunk) error {
	m.saveCalls++
	if m.saveErrOn > 0 && m.saveCalls == m.saveErrOn {
		return errors.New("disk full")
	}
	m.saveBatch = append(m.saveBatch, len(chunks))
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *memChunkStorage) CountByDocument(documentID string) (int, error) {
	count := 0
	for _, c := range m.chunks {
		if c.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (m *memChunkStorage) DeleteByDocument(documentID string) error {
	if m.deleteDocErr != nil {
		return m.deleteDocErr
	}
	for id, c := range m.chunks {
		if c.DocumentID == documentID {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *memChunkStorage) DeleteByWorkspace(workspaceID string) error {
	for id, c := range m.chunks {
		if c.WorkspaceID == workspaceID {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *memChunkStorage) SearchSimilar(workspaceID string, query []float32, topK int, minSimilarity float64) ([]models.SearchResult, error) {
	return nil, nil
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
	deletedDocs []string
}

func (m *memMessageStorage) SaveMessage(msg *models.Message) error { return nil }

func (m *memMessageStorage) ListByDocument(documentID string) ([]*models.Message, error) {
	return nil, nil
}

func (m *memMessageStorage) ListByWorkspace(workspaceID string) ([]*models.Message, error) {
	return nil, nil
}

func (m *memMessageStorage) DeleteByDocument(documentID string) error {
	m.deletedDocs = append(m.deletedDocs, documentID)
	return nil
}

func (m *memMessageStorage) DeleteByWorkspace(workspaceID string) error { return nil }

type passthroughExtractor struct{}

func (passthroughExtractor) Extract(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	return string(data), nil
}

type fakeEmbedder struct {
	dimension int
	failIndex int // fail when embedding the n-th text (1-based), 0 disables
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, f.dimension), nil
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		if f.failIndex > 0 && i+1 == f.failIndex {
			return nil, &models.EmbeddingServiceError{Err: errors.New("provider rejected request")}
		}
		out[i] = make([]float32, f.dimension)
	}
	return out, nil
}

func (f *fakeEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return f.GenerateEmbedding(ctx, query)
}

func (f *fakeEmbedder) ModelName() string { return "fake" }

func (f *fakeEmbedder) Dimension() int { return f.dimension }

func (f *fakeEmbedder) IsAvailable(ctx context.Context) bool { return true }

type fixture struct {
	svc        *Service
	docs       *memDocStorage
	chunks     *memChunkStorage
	workspaces *memWorkspaceStorage
	messages   *memMessageStorage
	embedder   *fakeEmbedder
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		docs:       &memDocStorage{docs: make(map[string]*models.Document)},
		chunks:     &memChunkStorage{chunks: make(map[string]*models.Chunk)},
		workspaces: &memWorkspaceStorage{workspaces: make(map[string]*models.Workspace)},
		messages:   &memMessageStorage{},
		embedder:   &fakeEmbedder{dimension: 8},
	}
	f.workspaces.workspaces["ws-1"] = &models.Workspace{ID: "ws-1", UserID: "user-1", Name: "test"}
	f.svc = NewService(f.docs, f.chunks, f.workspaces, f.messages, passthroughExtractor{}, f.embedder, opts, common.GetLogger())
	return f
}

func defaultOptions() Options {
	return Options{
		ChunkSize:      1000,
		Overlap:        200,
		GroupSize:      50,
		Timeout:        60 * time.Second,
		MaxUploadBytes: 10 * 1024 * 1024,
	}
}

func textUpload(name, content string) *models.Upload {
	return &models.Upload{
		Name:     name,
		MimeType: "text/plain",
		Size:     int64(len(content)),
		Data:     []byte(content),
	}
}

func TestUploadToWorkspace_Indexes(t *testing.T) {
	f := newFixture(defaultOptions())
	content := strings.Repeat("a", 2400)

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("report.txt", content))
	require.NoError(t, err)

	assert.Equal(t, models.StatusIndexed, doc.Status)
	assert.Equal(t, "ws-1", doc.WorkspaceID)
	assert.Equal(t, models.DocumentTypeText, doc.Type)

	count, err := f.chunks.CountByDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count) // window 1000, step 800 over 2400 chars

	stored, err := f.docs.GetDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIndexed, stored.Status)
}

func TestUploadToWorkspace_EmbeddingFailureLeavesNoChunks(t *testing.T) {
	f := newFixture(defaultOptions())
	f.embedder.failIndex = 3
	content := strings.Repeat("a", 3400) // 5 chunks at step 800

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("report.txt", content))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, doc.Status)

	count, err := f.chunks.CountByDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

type emptyExtractor struct{}

func (emptyExtractor) Extract(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	return "", nil
}

func TestUploadToWorkspace_EmptyTextFails(t *testing.T) {
	f := newFixture(defaultOptions())
	f.svc = NewService(f.docs, f.chunks, f.workspaces, f.messages, emptyExtractor{}, f.embedder, defaultOptions(), common.GetLogger())

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("scan.pdf", "ignored"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, doc.Status)
	count, err := f.chunks.CountByDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

type whitespaceExtractor struct{}

func (whitespaceExtractor) Extract(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	return "  \n\t  ", nil
}

func TestUploadToWorkspace_WhitespaceTextFails(t *testing.T) {
	f := newFixture(defaultOptions())
	f.svc = NewService(f.docs, f.chunks, f.workspaces, f.messages, whitespaceExtractor{}, f.embedder, defaultOptions(), common.GetLogger())

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("scan.pdf", "ignored"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, doc.Status)
	count, err := f.chunks.CountByDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUploadToWorkspace_CleanupFailureStillEndsFailed(t *testing.T) {
	f := newFixture(defaultOptions())
	f.embedder.failIndex = 1
	f.chunks.deleteDocErr = errors.New("store unavailable")

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("report.txt", strings.Repeat("a", 2400)))
	require.NoError(t, err)

	// The lifecycle reaches a terminal state even when chunk cleanup errors.
	assert.Equal(t, models.StatusFailed, doc.Status)
	stored, err := f.docs.GetDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
}

func TestUploadToWorkspace_WritesChunkGroups(t *testing.T) {
	opts := defaultOptions()
	opts.GroupSize = 2
	f := newFixture(opts)
	content := strings.Repeat("a", 3400) // 5 chunks

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("report.txt", content))
	require.NoError(t, err)

	assert.Equal(t, models.StatusIndexed, doc.Status)
	assert.Equal(t, []int{2, 2, 1}, f.chunks.saveBatch)
}

func TestUploadToWorkspace_ChunkSaveFailureCleansUp(t *testing.T) {
	opts := defaultOptions()
	opts.GroupSize = 2
	f := newFixture(opts)
	f.chunks.saveErrOn = 2
	content := strings.Repeat("a", 3400)

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("report.txt", content))
	require.NoError(t, err)

	assert.Equal(t, models.StatusFailed, doc.Status)
	count, err := f.chunks.CountByDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUploadToWorkspace_ChunkOrdering(t *testing.T) {
	f := newFixture(defaultOptions())
	content := strings.Repeat("a", 2400)

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("report.txt", content))
	require.NoError(t, err)

	indexes := make(map[int]bool)
	for _, c := range f.chunks.chunks {
		assert.Equal(t, doc.ID, c.DocumentID)
		assert.Equal(t, "ws-1", c.WorkspaceID)
		assert.Equal(t, "report.txt", c.Metadata.Source)
		indexes[c.Metadata.ChunkIndex] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, indexes)
}

func TestUploadToWorkspace_UnknownWorkspace(t *testing.T) {
	f := newFixture(defaultOptions())

	_, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-missing", textUpload("report.txt", "content"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestUploadToWorkspace_RejectsOversizedFile(t *testing.T) {
	opts := defaultOptions()
	opts.MaxUploadBytes = 10
	f := newFixture(opts)

	_, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("big.txt", strings.Repeat("a", 100)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum upload size")
	assert.Empty(t, f.docs.docs)
}

func TestUploadToWorkspace_RejectsUnsupportedType(t *testing.T) {
	f := newFixture(defaultOptions())

	_, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", &models.Upload{
		Name:     "image.png",
		MimeType: "image/png",
		Size:     4,
		Data:     []byte{1, 2, 3, 4},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestUpload_Standalone(t *testing.T) {
	f := newFixture(defaultOptions())

	doc, err := f.svc.Upload(context.Background(), "user-1", textUpload("notes.txt", "some notes"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusReady, doc.Status)
	assert.Empty(t, doc.WorkspaceID)
	assert.Equal(t, "some notes", doc.Content)
	assert.Equal(t, 0, f.chunks.saveCalls)
}

func TestUpload_EmptyExtractionRejected(t *testing.T) {
	f := newFixture(defaultOptions())
	f.svc = NewService(f.docs, f.chunks, f.workspaces, f.messages, emptyExtractor{}, f.embedder, defaultOptions(), common.GetLogger())

	_, err := f.svc.Upload(context.Background(), "user-1", textUpload("scan.pdf", "ignored"))
	require.Error(t, err)

	var extErr *models.ExtractionError
	assert.True(t, errors.As(err, &extErr), "expected ExtractionError, got %T", err)
	assert.Empty(t, f.docs.docs, "no document is created for an empty extraction")
}

func TestUpload_WhitespaceExtractionRejected(t *testing.T) {
	f := newFixture(defaultOptions())
	f.svc = NewService(f.docs, f.chunks, f.workspaces, f.messages, whitespaceExtractor{}, f.embedder, defaultOptions(), common.GetLogger())

	_, err := f.svc.Upload(context.Background(), "user-1", textUpload("scan.pdf", "ignored"))
	require.Error(t, err)

	var extErr *models.ExtractionError
	assert.True(t, errors.As(err, &extErr))
	assert.Empty(t, f.docs.docs)
}

func TestDelete_Cascades(t *testing.T) {
	f := newFixture(defaultOptions())
	content := strings.Repeat("a", 2400)

	doc, err := f.svc.UploadToWorkspace(context.Background(), "user-1", "ws-1", textUpload("report.txt", content))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), doc.ID, "user-1"))

	count, err := f.chunks.CountByDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, f.messages.deletedDocs, doc.ID)

	_, err = f.svc.Get(context.Background(), doc.ID, "user-1")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDelete_WrongUser(t *testing.T) {
	f := newFixture(defaultOptions())

	doc, err := f.svc.Upload(context.Background(), "user-1", textUpload("notes.txt", "content"))
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), doc.ID, "user-2")
	assert.True(t, errors.Is(err, models.ErrAccessDenied))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "12.00 KB", humanSize(12*1024))
	assert.Equal(t, "1.50 MB", humanSize(3*1024*1024/2))
}
