package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/common"
	"github.com/ternarybob/corpus/internal/interfaces"
)

// Services bundles the provider split: Gemini always serves embeddings
// (Claude has no embedding API), while the completion provider is selected
// by llm.completion_provider in configuration.
type Services struct {
	// Embedder serves the embedding pipeline and query embeddings.
	Embedder interfaces.LLMService
	// Completer serves chat completions.
	Completer interfaces.LLMService
}

// NewServices creates the LLM services for the configured providers.
func NewServices(cfg *common.Config, logger arbor.ILogger) (*Services, error) {
	logger.Info().
		Str("completion_provider", cfg.LLM.CompletionProvider).
		Msg("Initializing LLM services")

	gemini, err := NewGeminiService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini service: %w", err)
	}

	switch cfg.LLM.CompletionProvider {
	case "gemini":
		return &Services{Embedder: gemini, Completer: gemini}, nil

	case "claude":
		claude, err := NewClaudeService(&cfg.Claude, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude service: %w", err)
		}
		return &Services{Embedder: gemini, Completer: claude}, nil

	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", cfg.LLM.CompletionProvider)
	}
}

// Close releases both providers.
func (s *Services) Close() error {
	var firstErr error
	if s.Embedder != nil {
		if err := s.Embedder.Close(); err != nil {
			firstErr = err
		}
	}
	if s.Completer != nil && s.Completer != s.Embedder {
		if err := s.Completer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
