package extract

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/corpus/internal/common"
	"github.com/ternarybob/corpus/internal/models"
)

func TestNewService_CreatesStagingDir(t *testing.T) {
	svc := NewService(common.GetLogger())

	info, err := os.Stat(svc.tempDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExtract_PlainText(t *testing.T) {
	svc := NewService(common.GetLogger())

	text, err := svc.Extract(context.Background(), "notes.txt", []byte("hello world"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtract_Markdown(t *testing.T) {
	svc := NewService(common.GetLogger())

	content := "# Title\n\nSome *markdown* content."
	text, err := svc.Extract(context.Background(), "readme.md", []byte(content), "text/markdown")
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestExtract_EmptyFile(t *testing.T) {
	svc := NewService(common.GetLogger())

	_, err := svc.Extract(context.Background(), "empty.txt", nil, "text/plain")
	require.Error(t, err)

	var extErr *models.ExtractionError
	assert.True(t, errors.As(err, &extErr), "expected ExtractionError, got %T", err)
}

func TestExtract_CorruptPDF(t *testing.T) {
	svc := NewService(common.GetLogger())

	_, err := svc.Extract(context.Background(), "broken.pdf", []byte("not a pdf at all"), "application/pdf")
	require.Error(t, err)

	var extErr *models.ExtractionError
	assert.True(t, errors.As(err, &extErr), "expected ExtractionError, got %T", err)
	assert.Equal(t, "broken.pdf", extErr.Name)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	svc := NewService(common.GetLogger())

	_, err := svc.Extract(context.Background(), "binary.txt", []byte{0xff, 0xfe, 0x00}, "text/plain")
	require.Error(t, err)

	var extErr *models.ExtractionError
	assert.True(t, errors.As(err, &extErr))
}
