package interfaces

import (
	"context"

	"github.com/ternarybob/corpus/internal/models"
)

// RetrievalContext is the combined context produced for one chat turn:
// rendered source blocks plus the citations they were built from.
type RetrievalContext struct {
	// Text is the rendered context passed to the completion model. Never
	// empty: when nothing was retrieved it carries an explicit
	// no-information signal so the model can fall back to general knowledge.
	Text string

	Documents []models.DocumentCitation
	Web       []models.WebCitation

	// WebSearched reports whether the web search policy fired for this turn.
	WebSearched bool
}

// RetrievalService merges internal similarity search with optional live web
// search into a single ranked context.
type RetrievalService interface {
	Retrieve(ctx context.Context, workspaceID, query string) (*RetrievalContext, error)
}
