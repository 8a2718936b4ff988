// Package websearch provides the live web search client used by the
// retrieval orchestrator. Results supplement internal retrieval and are
// never treated as authoritative; callers handle failures by continuing
// with zero web results.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/corpus/internal/interfaces"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 2

	// DefaultMaxResults bounds how many results one search returns.
	DefaultMaxResults = 3
)

// Client is a search API client for a Firecrawl-style search endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	maxResults int
	converter  *md.Converter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithMaxResults bounds the number of results per search.
func WithMaxResults(maxResults int) ClientOption {
	return func(c *Client) {
		if maxResults > 0 {
			c.maxResults = maxResults
		}
	}
}

// NewClient creates a new web search client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		maxResults: DefaultMaxResults,
		converter:  md.NewConverter("", true, nil),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile-time interface assertion
var _ interfaces.WebSearchService = (*Client)(nil)

// searchRequest is the JSON body sent to the search endpoint.
type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// searchResponse is the JSON payload returned by the search endpoint.
type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Markdown    string `json:"markdown"`
		Content     string `json:"content"`
		HTML        string `json:"html"`
		Description string `json:"description"`
	} `json:"data"`
}

// Search queries the web search API and returns an ordered sequence of
// results, possibly empty. Result content is normalized to markdown.
func (c *Client) Search(ctx context.Context, query string) ([]interfaces.WebResult, error) {
	if !c.IsEnabled() {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	body, err := json.Marshal(searchRequest{Query: query, Limit: c.maxResults})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]interfaces.WebResult, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		results = append(results, interfaces.WebResult{
			Title:   item.Title,
			URL:     item.URL,
			Content: c.normalizeContent(item.Markdown, item.Content, item.HTML, item.Description),
		})
		if len(results) >= c.maxResults {
			break
		}
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("query", query).
			Int("results", len(results)).
			Dur("duration", time.Since(start)).
			Msg("Web search completed")
	}

	return results, nil
}

// IsEnabled reports whether a search backend is configured.
func (c *Client) IsEnabled() bool {
	return c.apiKey != ""
}

// normalizeContent picks the best available content field, converting raw
// HTML to markdown so downstream prompt assembly works with one format.
func (c *Client) normalizeContent(markdown, content, html, description string) string {
	if markdown != "" {
		return markdown
	}
	if content != "" {
		return content
	}
	if html != "" {
		if converted := c.htmlToMarkdown(html); converted != "" {
			return converted
		}
	}
	return description
}

// htmlToMarkdown strips boilerplate elements and converts the remaining
// document body to markdown. Conversion failures fall back to empty output.
func (c *Client) htmlToMarkdown(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, footer, header, iframe").Remove()

	body := doc.Find("body")
	inner, err := body.Html()
	if err != nil || strings.TrimSpace(inner) == "" {
		inner = html
	}

	converted, err := c.converter.ConvertString(inner)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug().Err(err).Msg("HTML to markdown conversion failed")
		}
		return ""
	}
	return strings.TrimSpace(converted)
}
