package retrieval

import (
	"strings"

	"github.com/ternarybob/corpus/internal/models"
)

// WebSearchPolicy decides when internal retrieval results should be
// supplemented with a live web search.
type WebSearchPolicy struct {
	keywords            []string
	confidenceThreshold float64
}

// NewWebSearchPolicy creates a policy with the given trigger keywords and
// confidence threshold. A web search fires when the query contains a
// keyword, internal retrieval found nothing, or the best internal match
// scored below the threshold.
func NewWebSearchPolicy(keywords []string, confidenceThreshold float64) *WebSearchPolicy {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &WebSearchPolicy{
		keywords:            lowered,
		confidenceThreshold: confidenceThreshold,
	}
}

// ShouldSearch reports whether a web search should run for the given query
// and internal retrieval results.
func (p *WebSearchPolicy) ShouldSearch(query string, results []models.SearchResult) bool {
	if p.matchesKeyword(query) {
		return true
	}
	if len(results) == 0 {
		return true
	}
	return results[0].Similarity < p.confidenceThreshold
}

func (p *WebSearchPolicy) matchesKeyword(query string) bool {
	lowered := strings.ToLower(query)
	for _, kw := range p.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
