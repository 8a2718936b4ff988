// Package app assembles the application: configuration, storage, services
// and handlers, in dependency order.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/common"
	"github.com/ternarybob/corpus/internal/handlers"
	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/services/chat"
	"github.com/ternarybob/corpus/internal/services/documents"
	"github.com/ternarybob/corpus/internal/services/embeddings"
	"github.com/ternarybob/corpus/internal/services/extract"
	"github.com/ternarybob/corpus/internal/services/llm"
	"github.com/ternarybob/corpus/internal/services/maintenance"
	"github.com/ternarybob/corpus/internal/services/retrieval"
	"github.com/ternarybob/corpus/internal/services/websearch"
	"github.com/ternarybob/corpus/internal/services/workspaces"
	"github.com/ternarybob/corpus/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Backend services
	LLM              *llm.Services
	EmbeddingService interfaces.EmbeddingService
	WebSearchService interfaces.WebSearchService

	// Domain services
	RetrievalService interfaces.RetrievalService
	DocumentService  interfaces.DocumentService
	WorkspaceService interfaces.WorkspaceService
	ChatService      interfaces.ChatService
	Sweeper          *maintenance.Sweeper

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	DocumentHandler  *handlers.DocumentHandler
	WorkspaceHandler *handlers.WorkspaceHandler
	ChatHandler      *handlers.ChatHandler
}

// New wires the application together. Construction fails fast on
// configuration errors; it does not call any remote API.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	llmServices, err := llm.NewServices(config, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize LLM services: %w", err)
	}

	embedder := embeddings.NewService(
		llmServices.Embedder,
		config.LLM.EmbedDimension,
		config.LLM.MaxConcurrency,
		config.LLM.RateLimit,
		logger,
	)

	webSearch := newWebSearchService(config, logger)

	retrievalService := retrieval.NewOrchestrator(
		embedder,
		storageManager.ChunkStorage(),
		webSearch,
		retrieval.Options{
			TopK:             config.Retrieval.TopK,
			MinSimilarity:    config.Retrieval.MinSimilarity,
			WebKeywords:      config.Retrieval.WebKeywords,
			WebConfidence:    config.Retrieval.WebConfidenceThreshold,
			WebPreviewLength: config.Retrieval.WebPreviewLength,
		},
		logger,
	)

	ingestTimeout, _ := time.ParseDuration(config.Ingest.Timeout)
	documentService := documents.NewService(
		storageManager.DocumentStorage(),
		storageManager.ChunkStorage(),
		storageManager.WorkspaceStorage(),
		storageManager.MessageStorage(),
		extract.NewService(logger),
		embedder,
		documents.Options{
			ChunkSize:      config.Ingest.ChunkSize,
			Overlap:        config.Ingest.Overlap,
			GroupSize:      config.Ingest.GroupSize,
			Timeout:        ingestTimeout,
			MaxUploadBytes: config.Ingest.MaxUploadBytes,
		},
		logger,
	)

	workspaceService := workspaces.NewService(
		storageManager.WorkspaceStorage(),
		storageManager.DocumentStorage(),
		storageManager.ChunkStorage(),
		storageManager.MessageStorage(),
		logger,
	)

	chatService := chat.NewService(
		llmServices.Completer,
		retrievalService,
		storageManager.DocumentStorage(),
		storageManager.WorkspaceStorage(),
		storageManager.MessageStorage(),
		logger,
	)

	var sweeper *maintenance.Sweeper
	if config.Maintenance.Enabled {
		retention, _ := time.ParseDuration(config.Maintenance.FailedRetention)
		sweeper = maintenance.NewSweeper(
			storageManager.DocumentStorage(),
			storageManager.ChunkStorage(),
			storageManager.MessageStorage(),
			config.Maintenance.Schedule,
			retention,
			logger,
		)
		if err := sweeper.Start(); err != nil {
			llmServices.Close()
			storageManager.Close()
			return nil, err
		}
	}

	documentHandler := handlers.NewDocumentHandler(documentService, config.Ingest.MaxUploadBytes, logger)

	app := &App{
		Config:           config,
		Logger:           logger,
		StorageManager:   storageManager,
		LLM:              llmServices,
		EmbeddingService: embedder,
		WebSearchService: webSearch,
		RetrievalService: retrievalService,
		DocumentService:  documentService,
		WorkspaceService: workspaceService,
		ChatService:      chatService,
		Sweeper:          sweeper,
		APIHandler:       handlers.NewAPIHandler(chatService, embedder, logger),
		DocumentHandler:  documentHandler,
		WorkspaceHandler: handlers.NewWorkspaceHandler(workspaceService, documentService, documentHandler, logger),
		ChatHandler:      handlers.NewChatHandler(chatService, logger),
	}

	logger.Info().
		Str("completion_provider", config.LLM.CompletionProvider).
		Str("embed_model", config.LLM.EmbedModel).
		Bool("web_search", webSearch.IsEnabled()).
		Msg("Application initialized")

	return app, nil
}

// newWebSearchService builds the live client when an API key is configured,
// otherwise the disabled no-op service.
func newWebSearchService(config *common.Config, logger arbor.ILogger) interfaces.WebSearchService {
	if config.WebSearch.APIKey == "" {
		return websearch.NewDisabledService(logger)
	}

	timeout, _ := time.ParseDuration(config.WebSearch.Timeout)
	return websearch.NewClient(
		config.WebSearch.Endpoint,
		config.WebSearch.APIKey,
		websearch.WithLogger(logger),
		websearch.WithRateLimit(config.WebSearch.RateLimit),
		websearch.WithMaxResults(config.WebSearch.MaxResults),
		websearch.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

// Close releases application resources in reverse dependency order.
func (a *App) Close() error {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	if a.LLM != nil {
		if err := a.LLM.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM services")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
