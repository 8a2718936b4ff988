package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/corpus/internal/models"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 1000, config.Ingest.ChunkSize)
	assert.Equal(t, 200, config.Ingest.Overlap)
	assert.Equal(t, 50, config.Ingest.GroupSize)
	assert.Equal(t, 5, config.Retrieval.TopK)
	assert.Equal(t, 0.5, config.Retrieval.MinSimilarity)
	assert.Equal(t, 0.6, config.Retrieval.WebConfidenceThreshold)
}

func TestValidate_OverlapMustStayBelowChunkSize(t *testing.T) {
	config := DefaultConfig()
	config.Ingest.Overlap = config.Ingest.ChunkSize

	err := config.Validate()
	require.Error(t, err)

	var confErr *models.ConfigurationError
	assert.True(t, errors.As(err, &confErr))
}

func TestValidate_InvalidDuration(t *testing.T) {
	config := DefaultConfig()
	config.Ingest.Timeout = "sixty seconds"

	err := config.Validate()
	require.Error(t, err)

	var confErr *models.ConfigurationError
	assert.True(t, errors.As(err, &confErr))
}

func TestValidate_InvalidCompletionProvider(t *testing.T) {
	config := DefaultConfig()
	config.LLM.CompletionProvider = "gpt"

	assert.Error(t, config.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[ingest]
chunk_size = 500
overlap = 100

[retrieval]
web_keywords = ["breaking"]
`), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 500, config.Ingest.ChunkSize)
	assert.Equal(t, 100, config.Ingest.Overlap)
	assert.Equal(t, []string{"breaking"}, config.Retrieval.WebKeywords)
	// Untouched sections keep defaults.
	assert.Equal(t, 5, config.Retrieval.TopK)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("CORPUS_SERVER_PORT", "7070")
	t.Setenv("GEMINI_API_KEY", "env-key")

	config, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "env-key", config.Gemini.APIKey)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := DefaultConfig()

	ApplyFlagOverrides(config, 6060, "0.0.0.0")
	assert.Equal(t, 6060, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	// Zero values leave config untouched.
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 6060, config.Server.Port)
}
