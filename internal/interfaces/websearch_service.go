package interfaces

import "context"

// WebResult is one entry returned by the web search collaborator. Results are
// not assumed authoritative or deduplicated.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// WebSearchService performs live web searches for the retrieval orchestrator.
type WebSearchService interface {
	// Search returns an ordered sequence of results, possibly empty.
	Search(ctx context.Context, query string) ([]WebResult, error)

	// IsEnabled reports whether a search backend is configured.
	IsEnabled() bool
}
