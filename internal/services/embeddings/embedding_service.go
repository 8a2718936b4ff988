// Package embeddings converts chunks and queries into fixed-dimension
// vectors, batching calls to the embedding provider with partial-failure
// isolation: a batch either fully succeeds or returns nothing.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

// Service implements the EmbeddingService interface
type Service struct {
	llmService     interfaces.LLMService
	dimension      int
	maxConcurrency int
	limiter        *rate.Limiter
	logger         arbor.ILogger
}

// NewService creates a new embedding service. The dimension is the fixed
// configuration constant shared with the vector store schema.
func NewService(llmService interfaces.LLMService, dimension, maxConcurrency, rateLimit int, logger arbor.ILogger) interfaces.EmbeddingService {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if rateLimit <= 0 {
		rateLimit = 1
	}
	return &Service{
		llmService:     llmService,
		dimension:      dimension,
		maxConcurrency: maxConcurrency,
		limiter:        rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		logger:         logger,
	}
}

// GenerateEmbedding creates a vector embedding for text.
func (s *Service) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, &models.EmbeddingServiceError{Err: fmt.Errorf("text cannot be empty")}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &models.EmbeddingServiceError{Err: err}
	}

	start := time.Now()
	embedding, err := s.llmService.Embed(ctx, text)
	if err != nil {
		return nil, &models.EmbeddingServiceError{Err: err}
	}

	if len(embedding) == 0 {
		return nil, &models.EmbeddingServiceError{Err: fmt.Errorf("LLM service returned empty embedding")}
	}
	if len(embedding) != s.dimension {
		// Wrong dimensionality means the model and store disagree; this is a
		// deployment problem, not a per-record one.
		return nil, &models.ConfigurationError{Reason: fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(embedding))}
	}

	s.logger.Debug().
		Int("embedding_dim", len(embedding)).
		Dur("duration", time.Since(start)).
		Msg("Generated embedding")

	return embedding, nil
}

// GenerateEmbeddings embeds a batch of texts. Items are embedded
// concurrently but the result sequence preserves input order. The first
// failure cancels the remaining work and the whole batch is aborted: callers
// never see a partially populated result.
func (s *Service) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	results := make([][]float32, len(texts))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, text := range texts {
		g.Go(func() error {
			vec, err := s.GenerateEmbedding(groupCtx, text)
			if err != nil {
				return fmt.Errorf("embedding %d of %d failed: %w", i+1, len(texts), err)
			}
			results[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().
			Err(err).
			Int("batch_size", len(texts)).
			Msg("Embedding batch aborted")
		var confErr *models.ConfigurationError
		if errors.As(err, &confErr) {
			return nil, confErr
		}
		return nil, &models.EmbeddingServiceError{Err: err}
	}

	s.logger.Debug().
		Int("batch_size", len(texts)).
		Dur("duration", time.Since(start)).
		Msg("Embedding batch completed")

	return results, nil
}

// GenerateQueryEmbedding generates an embedding for a search query. Queries
// currently use the same preparation as document chunks.
func (s *Service) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	return s.GenerateEmbedding(ctx, query)
}

// ModelName returns the mode of the underlying provider.
func (s *Service) ModelName() string {
	return string(s.llmService.GetMode())
}

// Dimension returns the configured embedding dimension.
func (s *Service) Dimension() int {
	return s.dimension
}

// IsAvailable checks if the embedding service is available.
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.llmService == nil {
		return false
	}

	if err := s.llmService.HealthCheck(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("LLM service not available")
		return false
	}

	return true
}
