package badger

import (
	"fmt"
	"math"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

// ChunkStorage implements the ChunkStorage interface for Badger. Badger has
// no native vector index; similarity search scans the workspace's chunks
// and ranks them by cosine similarity in memory.
type ChunkStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChunkStorage creates a new ChunkStorage instance
func NewChunkStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChunkStorage {
	return &ChunkStorage{
		db:     db,
		logger: logger,
	}
}

// SaveChunks persists one group of chunk records.
func (s *ChunkStorage) SaveChunks(chunks []*models.Chunk) error {
	for _, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("chunk ID is required")
		}
		if err := s.db.Store().Upsert(chunk.ID, chunk); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

func (s *ChunkStorage) CountByDocument(documentID string) (int, error) {
	count, err := s.db.Store().Count(&models.Chunk{}, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(count), nil
}

func (s *ChunkStorage) DeleteByDocument(documentID string) error {
	err := s.db.Store().DeleteMatching(&models.Chunk{}, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete chunks for document %s: %w", documentID, err)
	}
	return nil
}

func (s *ChunkStorage) DeleteByWorkspace(workspaceID string) error {
	err := s.db.Store().DeleteMatching(&models.Chunk{}, badgerhold.Where("WorkspaceID").Eq(workspaceID))
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete chunks for workspace %s: %w", workspaceID, err)
	}
	return nil
}

// SearchSimilar returns at most topK chunks from the workspace with cosine
// similarity strictly greater than minSimilarity, ranked descending. Ties
// keep insertion order. An unknown workspace id yields empty results.
func (s *ChunkStorage) SearchSimilar(workspaceID string, query []float32, topK int, minSimilarity float64) ([]models.SearchResult, error) {
	if len(query) == 0 {
		return nil, &models.ConfigurationError{Reason: "query embedding is empty"}
	}

	var chunks []models.Chunk
	if err := s.db.Store().Find(&chunks, badgerhold.Where("WorkspaceID").Eq(workspaceID)); err != nil {
		return nil, fmt.Errorf("failed to load workspace chunks: %w", err)
	}

	// Establish insertion order before ranking so equal similarities keep
	// a deterministic order.
	sort.SliceStable(chunks, func(i, j int) bool {
		if !chunks[i].CreatedAt.Equal(chunks[j].CreatedAt) {
			return chunks[i].CreatedAt.Before(chunks[j].CreatedAt)
		}
		return chunks[i].Metadata.ChunkIndex < chunks[j].Metadata.ChunkIndex
	})

	var results []models.SearchResult
	for i := range chunks {
		if len(chunks[i].Embedding) != len(query) {
			return nil, &models.ConfigurationError{
				Reason: fmt.Sprintf("embedding dimension mismatch: chunk %s has %d, query has %d",
					chunks[i].ID, len(chunks[i].Embedding), len(query)),
			}
		}
		similarity := cosineSimilarity(query, chunks[i].Embedding)
		if similarity > minSimilarity {
			results = append(results, models.SearchResult{
				Chunk:      &chunks[i],
				Similarity: similarity,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// accumulating in float64 to limit rounding drift. Zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
