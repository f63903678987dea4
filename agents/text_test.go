package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/intake/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextAgent_Process(t *testing.T) {
	agent := NewTextAgent()
	doc := &core.Document{Content: []byte("line one\nline two with words")}

	extraction, err := agent.Process(context.Background(), doc, core.Classification{Intent: core.IntentSupport})
	require.NoError(t, err)

	assert.Equal(t, TextAgentName, extraction.Agent)
	assert.Equal(t, "line one\nline two with words", extraction.Fields["content_preview"])
	assert.Equal(t, "support", extraction.Fields["detected_intent"])

	stats, ok := extraction.Fields["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, stats["lines"])
	assert.Equal(t, 7, stats["words"])
}

func TestTextAgent_PreviewTruncated(t *testing.T) {
	agent := NewTextAgent()
	doc := &core.Document{Content: []byte(strings.Repeat("x", 2000))}

	extraction, err := agent.Process(context.Background(), doc, core.Classification{})
	require.NoError(t, err)

	preview, ok := extraction.Fields["content_preview"].(string)
	require.True(t, ok)
	assert.Len(t, preview, textPreviewLen)

	stats := extraction.Fields["stats"].(map[string]any)
	assert.Equal(t, 2000, stats["length"], "stats reflect the full content, not the preview")
}

func TestTextAgent_ConfidenceReflectsIntent(t *testing.T) {
	agent := NewTextAgent()
	doc := &core.Document{Content: []byte("some content")}
	ctx := context.Background()

	specific, err := agent.Process(ctx, doc, core.Classification{Intent: core.IntentInvoice})
	require.NoError(t, err)
	generic, err := agent.Process(ctx, doc, core.Classification{Intent: core.IntentGeneral})
	require.NoError(t, err)

	assert.Greater(t, specific.Confidence, generic.Confidence)
}
