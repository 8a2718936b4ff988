package interfaces

import "context"

// EmbeddingService generates vector embeddings for chunks and queries.
type EmbeddingService interface {
	// Generate embedding for raw text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Generate embeddings for a batch of texts. The result has the same
	// length and order as the input. Any failure aborts the whole batch;
	// callers must not commit vectors from a batch that did not fully
	// succeed. The service does not retry internally.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// Generate query embedding (may have different preparation than document embedding)
	GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error)

	// Get model information
	ModelName() string
	Dimension() int

	// Check if service is available
	IsAvailable(ctx context.Context) bool
}
