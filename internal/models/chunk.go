package models

import "time"

// ChunkMetadata carries source attribution for a chunk.
type ChunkMetadata struct {
	Source     string `json:"source"` // originating document name
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"` // position within the document
}

// Chunk is a bounded substring of a document's text together with its
// embedding vector. Chunks are created only during ingestion and never
// updated; they are deleted when their document is deleted.
type Chunk struct {
	ID          string        `json:"id" badgerhold:"key"`
	WorkspaceID string        `json:"workspace_id"`
	DocumentID  string        `json:"document_id"`
	Content     string        `json:"content"`
	Embedding   []float32     `json:"embedding"`
	Metadata    ChunkMetadata `json:"metadata"`
	CreatedAt   time.Time     `json:"created_at"`
}

// SearchResult pairs a retrieved chunk with its cosine similarity to the query.
type SearchResult struct {
	Chunk      *Chunk  `json:"chunk"`
	Similarity float64 `json:"similarity"`
}
