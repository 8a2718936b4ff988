package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStatusTransitions(t *testing.T) {
	tests := []struct {
		from DocumentStatus
		to   DocumentStatus
		want bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusIndexed, true},
		{StatusProcessing, StatusFailed, true},
		{StatusPending, StatusIndexed, false},
		{StatusPending, StatusFailed, false},
		{StatusIndexed, StatusProcessing, false},
		{StatusIndexed, StatusFailed, false},
		{StatusFailed, StatusProcessing, false},
		{StatusFailed, StatusIndexed, false},
		{StatusReady, StatusProcessing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDocumentStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusIndexed.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusReady.Terminal())
}

func TestDocumentTransition(t *testing.T) {
	doc := &Document{ID: "doc-1", Status: StatusPending}

	require.NoError(t, doc.Transition(StatusProcessing))
	assert.Equal(t, StatusProcessing, doc.Status)
	assert.False(t, doc.UpdatedAt.IsZero())

	require.NoError(t, doc.Transition(StatusFailed))
	assert.Equal(t, StatusFailed, doc.Status)

	// Terminal states reject further moves.
	err := doc.Transition(StatusProcessing)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, doc.Status)
}
