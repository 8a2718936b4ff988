// Package extract converts uploaded file bytes into plain text. PDF content
// is processed with pdfcpu; plain text and markdown pass through unchanged.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/corpus/internal/interfaces"
	"github.com/ternarybob/corpus/internal/models"
)

// Service implements the TextExtractor interface using pdfcpu
type Service struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.TextExtractor = (*Service)(nil)

// NewService creates a new text extraction service
func NewService(logger arbor.ILogger) *Service {
	tempDir := filepath.Join(os.TempDir(), "corpus-pdf")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		logger.Warn().Err(err).Str("dir", tempDir).Msg("Failed to create PDF staging directory")
	}

	return &Service{
		logger:  logger,
		tempDir: tempDir,
	}
}

// Extract returns the plain text content of an uploaded file.
func (s *Service) Extract(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("file is empty")}
	}

	switch mimeType {
	case "application/pdf":
		return s.extractPDF(ctx, name, data)
	default:
		if !utf8.Valid(data) {
			return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("file is not valid UTF-8 text")}
		}
		return string(data), nil
	}
}

// extractPDF extracts text from all pages of a PDF. pdfcpu operates on
// files, so the upload is staged in a temp directory for the duration of
// the call. Staging paths are unique per call; uploads may run concurrently.
func (s *Service) extractPDF(ctx context.Context, name string, data []byte) (string, error) {
	staged, err := os.CreateTemp(s.tempDir, "extract_*.pdf")
	if err != nil {
		return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("failed to stage temp PDF file: %w", err)}
	}
	tempFile := staged.Name()
	defer os.Remove(tempFile)

	if _, err := staged.Write(data); err != nil {
		staged.Close()
		return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("failed to stage temp PDF file: %w", err)}
	}
	if err := staged.Close(); err != nil {
		return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("failed to stage temp PDF file: %w", err)}
	}

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("failed to read PDF: %w", err)}
	}
	pageCount := pdfCtx.PageCount

	s.logger.Debug().
		Str("name", name).
		Int("pages", pageCount).
		Msg("Extracting PDF text")

	outDir, err := os.MkdirTemp(s.tempDir, "pages_")
	if err != nil {
		return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("failed to create extraction dir: %w", err)}
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("failed to extract PDF content: %w", err)}
	}

	// Collect per-page content files in page order.
	files, err := os.ReadDir(outDir)
	if err != nil {
		return "", &models.ExtractionError{Name: name, Err: fmt.Errorf("failed to read extraction dir: %w", err)}
	}

	pageTexts := make(map[int]string)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		if text := pageTexts[pageNum]; text != "" {
			if builder.Len() > 0 {
				builder.WriteString("\n\n")
			}
			builder.WriteString(text)
		}
	}

	return builder.String(), nil
}
