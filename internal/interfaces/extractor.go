package interfaces

import "context"

// TextExtractor converts uploaded file bytes into plain text.
type TextExtractor interface {
	// Extract returns the plain text content of the file. Corrupt input
	// surfaces as a models.ExtractionError; empty output is treated by the
	// caller as an ingestion failure.
	Extract(ctx context.Context, name string, data []byte, mimeType string) (string, error)
}
