// Package retrieval assembles the context handed to the completion model
// for workspace conversations. It combines vector search over indexed
// chunks with an optional live web search.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

// NoContextText is returned when neither internal retrieval nor web search
// produced any usable context.
const NoContextText = "No specific information found in the workspace documents for this query."

// Orchestrator implements interfaces.RetrievalService.
type Orchestrator struct {
	embedder      interfaces.EmbeddingService
	chunks        interfaces.ChunkStorage
	webSearch     interfaces.WebSearchService
	policy        *WebSearchPolicy
	topK          int
	minSimilarity float64
	previewLength int
	logger        arbor.ILogger
}

// Options configures the Orchestrator.
type Options struct {
	TopK             int
	MinSimilarity    float64
	WebKeywords      []string
	WebConfidence    float64
	WebPreviewLength int
}

// NewOrchestrator creates a retrieval orchestrator.
func NewOrchestrator(embedder interfaces.EmbeddingService, chunks interfaces.ChunkStorage, webSearch interfaces.WebSearchService, opts Options, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		embedder:      embedder,
		chunks:        chunks,
		webSearch:     webSearch,
		policy:        NewWebSearchPolicy(opts.WebKeywords, opts.WebConfidence),
		topK:          opts.TopK,
		minSimilarity: opts.MinSimilarity,
		previewLength: opts.WebPreviewLength,
		logger:        logger,
	}
}

var _ interfaces.RetrievalService = (*Orchestrator)(nil)

// Retrieve embeds the query, searches the workspace's indexed chunks, and
// runs a web search when the trigger policy fires. Web search failures are
// logged and ignored so retrieval degrades to internal results only.
func (o *Orchestrator) Retrieve(ctx context.Context, workspaceID, query string) (*interfaces.RetrievalContext, error) {
	start := time.Now()

	queryVector, err := o.embedder.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := o.chunks.SearchSimilar(workspaceID, queryVector, o.topK, o.minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	retrieved := &interfaces.RetrievalContext{}

	var webResults []interfaces.WebResult
	if o.webSearch != nil && o.webSearch.IsEnabled() && o.policy.ShouldSearch(query, results) {
		retrieved.WebSearched = true
		webResults, err = o.webSearch.Search(ctx, query)
		if err != nil {
			o.logger.Warn().Err(err).Str("query", query).Msg("Web search failed, continuing with internal results")
			webResults = nil
		}
	}

	retrieved.Text = o.buildContextText(results, webResults)
	retrieved.Documents = documentCitations(results)
	retrieved.Web = webCitations(webResults)

	o.logger.Debug().
		Str("workspace_id", workspaceID).
		Int("chunks", len(results)).
		Int("web_results", len(webResults)).
		Bool("web_searched", retrieved.WebSearched).
		Dur("duration", time.Since(start)).
		Msg("Retrieval completed")

	return retrieved, nil
}

func (o *Orchestrator) buildContextText(results []models.SearchResult, webResults []interfaces.WebResult) string {
	var sb strings.Builder

	if len(results) > 0 {
		sb.WriteString("### Internal Document Context:\n")
		for _, r := range results {
			fmt.Fprintf(&sb, "- Source: %s (Page %d):\n%s\n\n", r.Chunk.Metadata.Source, r.Chunk.Metadata.Page, r.Chunk.Content)
		}
	}

	if len(webResults) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("### Web Search Context:\n")
		for _, r := range webResults {
			fmt.Fprintf(&sb, "- Source: [%s](%s):\n%s\n\n", r.Title, r.URL, o.preview(r.Content))
		}
	}

	if sb.Len() == 0 {
		return NoContextText
	}
	return strings.TrimRight(sb.String(), "\n")
}

// preview truncates web content so a single noisy page cannot dominate the
// prompt.
func (o *Orchestrator) preview(content string) string {
	runes := []rune(content)
	if o.previewLength <= 0 || len(runes) <= o.previewLength {
		return content
	}
	return string(runes[:o.previewLength]) + "..."
}

func documentCitations(results []models.SearchResult) []models.DocumentCitation {
	seen := make(map[models.DocumentCitation]struct{}, len(results))
	citations := make([]models.DocumentCitation, 0, len(results))
	for _, r := range results {
		c := models.DocumentCitation{Name: r.Chunk.Metadata.Source, Page: r.Chunk.Metadata.Page}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		citations = append(citations, c)
	}
	return citations
}

func webCitations(webResults []interfaces.WebResult) []models.WebCitation {
	citations := make([]models.WebCitation, 0, len(webResults))
	for _, r := range webResults {
		citations = append(citations, models.WebCitation{Title: r.Title, URL: r.URL})
	}
	return citations
}
