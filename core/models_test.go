package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcessingID(t *testing.T) {
	id1 := NewProcessingID()
	id2 := NewProcessingID()

	require.NotEmpty(t, id1)
	require.NotEmpty(t, id2)
	assert.NotEqual(t, id1, id2, "processing IDs must be unique")
}

func TestConversationIDFromContent(t *testing.T) {
	tests := []struct {
		name  string
		text1 string
		text2 string
		equal bool
	}{
		{"identical content", "msg-id-123@example.com", "msg-id-123@example.com", true},
		{"different content", "msg-id-123@example.com", "msg-id-456@example.com", false},
		{"empty vs non-empty", "", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := ConversationIDFromContent(tt.text1)
			id2 := ConversationIDFromContent(tt.text2)

			assert.Len(t, string(id1), 16, "conversation IDs are 16 hex chars")
			if tt.equal {
				assert.Equal(t, id1, id2)
			} else {
				assert.NotEqual(t, id1, id2)
			}
		})
	}
}

func TestConversationIDFromContent_Deterministic(t *testing.T) {
	// Same input across calls yields the same ID (required for threading).
	const content = "alice@example.com|request for quote|2026-01-15"
	first := ConversationIDFromContent(content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ConversationIDFromContent(content))
	}
}

func TestDocumentText(t *testing.T) {
	doc := &Document{Content: []byte("hello world")}
	assert.Equal(t, "hello world", doc.Text())
}
