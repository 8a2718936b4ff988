package websearch

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/interfaces"
)

// DisabledService is returned when no web search API key is configured.
// Searches resolve to zero results so retrieval proceeds with internal
// context only.
type DisabledService struct {
	logger arbor.ILogger
}

// NewDisabledService creates a web search service that performs no searches.
func NewDisabledService(logger arbor.ILogger) *DisabledService {
	logger.Warn().Msg("Web search is disabled - no API key configured")
	return &DisabledService{logger: logger}
}

var _ interfaces.WebSearchService = (*DisabledService)(nil)

// Search returns no results.
func (s *DisabledService) Search(ctx context.Context, query string) ([]interfaces.WebResult, error) {
	s.logger.Debug().Str("query", query).Msg("Web search skipped - service disabled")
	return nil, nil
}

// IsEnabled always reports false.
func (s *DisabledService) IsEnabled() bool {
	return false
}
