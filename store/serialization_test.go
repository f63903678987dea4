package store

import (
	"testing"
	"time"

	"github.com/poiesic/intake/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntrySerialization_RoundTrip(t *testing.T) {
	entry := &core.MemoryEntry{
		ProcessingID: core.NewProcessingID(),
		Timestamp:    time.Date(2026, 8, 20, 14, 2, 11, 123456789, time.UTC),
		Metadata:     map[string]any{"source": "file", "filename": "order.json"},
		Classification: &core.Classification{
			Format:     core.FormatJSON,
			Intent:     core.IntentOrder,
			Confidence: 0.95,
			Timestamp:  time.Date(2026, 8, 20, 14, 2, 11, 0, time.UTC),
		},
		Extraction: &core.Extraction{
			Agent:      "json_agent",
			Fields:     map[string]any{"type": "structured_data"},
			Confidence: 0.9,
			Timestamp:  time.Date(2026, 8, 20, 14, 2, 12, 0, time.UTC),
		},
		ConversationID: core.ConversationIDFromContent("thread"),
		AgentHistory:   []string{"intake", "classifier", "json_agent"},
	}

	data, err := MarshalEntry(entry)
	require.NoError(t, err)

	decoded, err := UnmarshalEntry(data)
	require.NoError(t, err)

	assert.Equal(t, entry.ProcessingID, decoded.ProcessingID)
	assert.True(t, entry.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, entry.Metadata, decoded.Metadata)
	assert.Equal(t, entry.Classification.Intent, decoded.Classification.Intent)
	assert.Equal(t, entry.Extraction.Agent, decoded.Extraction.Agent)
	assert.Equal(t, entry.ConversationID, decoded.ConversationID)
	assert.Equal(t, entry.AgentHistory, decoded.AgentHistory)
}

func TestUnmarshalEntry_CorruptData(t *testing.T) {
	_, err := UnmarshalEntry([]byte("not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
