// Package documents owns the document ingestion lifecycle: upload
// validation, text extraction, chunking, embedding and indexing, plus
// cascading removal.
package documents

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
	"github.com/ternarybob/corpus/internal/services/chunker"
)

// errNoTextContent marks an extraction that technically succeeded but
// produced nothing to index or chat about.
var errNoTextContent = errors.New("no text content extracted")

// Options configures the ingestion pipeline.
type Options struct {
	ChunkSize      int
	Overlap        int
	GroupSize      int
	Timeout        time.Duration
	MaxUploadBytes int64
}

// Service implements interfaces.DocumentService.
type Service struct {
	documents  interfaces.DocumentStorage
	chunks     interfaces.ChunkStorage
	workspaces interfaces.WorkspaceStorage
	messages   interfaces.MessageStorage
	extractor  interfaces.TextExtractor
	embedder   interfaces.EmbeddingService
	opts       Options
	logger     arbor.ILogger
}

// NewService creates a document service.
func NewService(
	documents interfaces.DocumentStorage,
	chunks interfaces.ChunkStorage,
	workspaces interfaces.WorkspaceStorage,
	messages interfaces.MessageStorage,
	extractor interfaces.TextExtractor,
	embedder interfaces.EmbeddingService,
	opts Options,
	logger arbor.ILogger,
) *Service {
	return &Service{
		documents:  documents,
		chunks:     chunks,
		workspaces: workspaces,
		messages:   messages,
		extractor:  extractor,
		embedder:   embedder,
		opts:       opts,
		logger:     logger,
	}
}

var _ interfaces.DocumentService = (*Service)(nil)

// Upload stores a standalone document for document-scope chat. The content
// is extracted but never chunked or embedded.
func (s *Service) Upload(ctx context.Context, userID string, upload *models.Upload) (*models.Document, error) {
	docType, err := s.validateUpload(upload)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, upload.Name, upload.Data, upload.MimeType)
	if err != nil {
		return nil, err
	}
	// A document with no text (e.g. a scanned PDF without a text layer)
	// cannot be chatted about; reject it before anything is persisted.
	if strings.TrimSpace(text) == "" {
		return nil, &models.ExtractionError{Name: upload.Name, Err: errNoTextContent}
	}

	now := time.Now()
	doc := &models.Document{
		ID:        common.NewDocumentID(),
		UserID:    userID,
		Name:      upload.Name,
		Type:      docType,
		Content:   text,
		Size:      humanSize(upload.Size),
		Status:    models.StatusReady,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.documents.SaveDocument(doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("name", doc.Name).
		Str("size", doc.Size).
		Msg("Standalone document uploaded")

	return doc, nil
}

// UploadToWorkspace runs the full ingestion pipeline. The returned document
// carries its final lifecycle status: INDEXED on success, FAILED when any
// stage after creation fails. A FAILED document keeps zero chunks.
func (s *Service) UploadToWorkspace(ctx context.Context, userID, workspaceID string, upload *models.Upload) (*models.Document, error) {
	if _, err := s.ownedWorkspace(workspaceID, userID); err != nil {
		return nil, err
	}

	docType, err := s.validateUpload(upload)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, upload.Name, upload.Data, upload.MimeType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &models.Document{
		ID:          common.NewDocumentID(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Name:        upload.Name,
		Type:        docType,
		Content:     text,
		Size:        humanSize(upload.Size),
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.documents.SaveDocument(doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	if err := s.transition(doc, models.StatusProcessing); err != nil {
		return nil, err
	}

	ingestCtx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ingestCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	if err := s.index(ingestCtx, doc, text); err != nil {
		s.logger.Warn().
			Err(err).
			Str("document_id", doc.ID).
			Str("name", doc.Name).
			Msg("Ingestion failed, marking document FAILED")
		if failErr := s.markFailed(doc); failErr != nil {
			return nil, failErr
		}
		return doc, nil
	}

	if err := s.transition(doc, models.StatusIndexed); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("workspace_id", workspaceID).
		Str("name", doc.Name).
		Msg("Document indexed")

	return doc, nil
}

// index chunks, embeds and persists the document text. Any error leaves no
// chunks behind.
func (s *Service) index(ctx context.Context, doc *models.Document, text string) error {
	// Whitespace-only text would pass chunking but index nothing useful.
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("document %s: %w", doc.Name, errNoTextContent)
	}

	pieces, err := chunker.Split(text, s.opts.ChunkSize, s.opts.Overlap)
	if err != nil {
		return err
	}
	if len(pieces) == 0 {
		return fmt.Errorf("document %s produced no chunks", doc.Name)
	}

	vectors, err := s.embedder.GenerateEmbeddings(ctx, pieces)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	now := time.Now()
	records := make([]*models.Chunk, len(pieces))
	for i, content := range pieces {
		records[i] = &models.Chunk{
			ID:          common.NewChunkID(),
			WorkspaceID: doc.WorkspaceID,
			DocumentID:  doc.ID,
			Content:     content,
			Embedding:   vectors[i],
			Metadata: models.ChunkMetadata{
				Source:     doc.Name,
				Page:       1,
				ChunkIndex: i,
			},
			CreatedAt: now,
		}
	}

	// Groups are written sequentially; a failure aborts indexing and the
	// already-written groups are removed by the FAILED cleanup.
	for start := 0; start < len(records); start += s.opts.GroupSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("ingestion timed out: %w", err)
		}
		end := start + s.opts.GroupSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.chunks.SaveChunks(records[start:end]); err != nil {
			return fmt.Errorf("failed to save chunk group %d-%d: %w", start, end, err)
		}
	}

	s.logger.Debug().
		Str("document_id", doc.ID).
		Int("chunks", len(records)).
		Msg("Chunks persisted")

	return nil
}

// markFailed transitions the document to FAILED and removes any chunks
// written before the failure. A cleanup error is logged but does not stop
// the transition: the document must always reach a terminal state.
func (s *Service) markFailed(doc *models.Document) error {
	if err := s.chunks.DeleteByDocument(doc.ID); err != nil {
		s.logger.Error().
			Err(err).
			Str("document_id", doc.ID).
			Msg("Failed to remove chunks of failed document")
	}
	return s.transition(doc, models.StatusFailed)
}

func (s *Service) transition(doc *models.Document, to models.DocumentStatus) error {
	if err := doc.Transition(to); err != nil {
		return err
	}
	if err := s.documents.SaveDocument(doc); err != nil {
		return fmt.Errorf("failed to persist document status %s: %w", to, err)
	}
	return nil
}

// Get returns a document owned by the user.
func (s *Service) Get(ctx context.Context, id, userID string) (*models.Document, error) {
	return s.ownedDocument(id, userID)
}

// List returns all documents owned by the user.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Document, error) {
	return s.documents.ListDocuments(userID)
}

// ListWorkspace returns the documents of a workspace owned by the user.
func (s *Service) ListWorkspace(ctx context.Context, workspaceID, userID string) ([]*models.Document, error) {
	if _, err := s.ownedWorkspace(workspaceID, userID); err != nil {
		return nil, err
	}
	return s.documents.ListWorkspaceDocuments(workspaceID)
}

// Delete removes a document together with its chunks and conversation.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.ownedDocument(id, userID); err != nil {
		return err
	}

	if err := s.chunks.DeleteByDocument(id); err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", id, err)
	}
	if err := s.messages.DeleteByDocument(id); err != nil {
		return fmt.Errorf("failed to delete messages for %s: %w", id, err)
	}
	if err := s.documents.DeleteDocument(id); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}

	s.logger.Info().Str("document_id", id).Msg("Document deleted")
	return nil
}

// validateUpload enforces size and type limits before extraction runs.
func (s *Service) validateUpload(upload *models.Upload) (models.DocumentType, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", fmt.Errorf("upload is empty")
	}
	if s.opts.MaxUploadBytes > 0 && upload.Size > s.opts.MaxUploadBytes {
		return "", fmt.Errorf("file %s exceeds the maximum upload size of %d bytes", upload.Name, s.opts.MaxUploadBytes)
	}

	switch {
	case upload.MimeType == "application/pdf":
		return models.DocumentTypePDF, nil
	case strings.HasPrefix(upload.MimeType, "text/"):
		return models.DocumentTypeText, nil
	case strings.HasSuffix(strings.ToLower(upload.Name), ".md"),
		strings.HasSuffix(strings.ToLower(upload.Name), ".txt"):
		return models.DocumentTypeText, nil
	default:
		return "", fmt.Errorf("unsupported file type %q for %s", upload.MimeType, upload.Name)
	}
}

func (s *Service) ownedDocument(id, userID string) (*models.Document, error) {
	doc, err := s.documents.GetDocument(id)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrAccessDenied)
	}
	return doc, nil
}

func (s *Service) ownedWorkspace(id, userID string) (*models.Workspace, error) {
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

// humanSize renders a byte count the way the API presents document sizes.
func humanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
