package interfaces

import (
	"context"
)

// LLMMode represents the operational mode of the LLM service
type LLMMode string

const (
	// LLMModeCloud indicates the service uses cloud-based LLM APIs
	LLMModeCloud LLMMode = "cloud"

	// LLMModeOffline indicates the service uses local/offline models
	LLMModeOffline LLMMode = "offline"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// LLMService defines the interface for language model operations: embedding
// generation and chat completions. Implementations wrap a single provider;
// the factory in services/llm selects providers per concern.
type LLMService interface {
	// Embed generates a fixed-dimension embedding vector for the given text.
	// The dimensionality is a configuration constant shared with the vector
	// store; a mismatch is a deployment-time configuration error.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Chat generates a completion response from the conversation history.
	// The messages slice carries the full context in chronological order,
	// including the system prompt.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the service is operational.
	HealthCheck(ctx context.Context) error

	// GetMode returns the operational mode of the service.
	GetMode() LLMMode

	// Close releases resources held by the service.
	Close() error
}
