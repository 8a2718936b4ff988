// Package chunker splits extracted document text into overlapping fixed-size
// segments, the unit of embedding and retrieval.
package chunker

import (
	"fmt"

	"github.com/ternarybob/corpus/internal/models"
)

const (
	// DefaultChunkSize is the default window size in characters.
	DefaultChunkSize = 1000
	// DefaultOverlap is the default overlap between consecutive windows.
	DefaultOverlap = 200
)

// Split divides text into chunks of chunkSize characters, each overlapping
// the previous by overlap characters. The window starts at offset 0 and
// advances by chunkSize-overlap until it passes the end of the text, so the
// last chunk may be shorter. Text shorter than chunkSize yields exactly one
// chunk; empty text yields zero chunks, which callers treat as an ingestion
// failure.
//
// Split is a pure function: same input, same output, no state.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, &models.ConfigurationError{Reason: fmt.Sprintf("chunk size must be positive, got %d", chunkSize)}
	}
	if overlap < 0 {
		return nil, &models.ConfigurationError{Reason: fmt.Sprintf("overlap must not be negative, got %d", overlap)}
	}
	if overlap >= chunkSize {
		// The window would never advance.
		return nil, &models.ConfigurationError{Reason: fmt.Sprintf("overlap (%d) must be smaller than chunk size (%d)", overlap, chunkSize)}
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}
