package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/intake/agents"
	"github.com/poiesic/intake/ai/mock"
	"github.com/poiesic/intake/classify"
	"github.com/poiesic/intake/core"
	"github.com/poiesic/intake/store"
	storebadger "github.com/poiesic/intake/store/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPipeline(t *testing.T) (*Pipeline, store.MemoryRepository) {
	t.Helper()

	repo, backend, err := storebadger.NewInMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider()
	classifier, err := classify.NewClassifier(provider.IntentClassifier())
	require.NoError(t, err)

	registry, err := agents.NewRegistry(agents.NewTextAgent())
	require.NoError(t, err)
	emailAgent, err := agents.NewEmailAgent(provider.DocumentAnalyzer())
	require.NoError(t, err)
	registry.Register(core.FormatEmail, emailAgent)
	registry.Register(core.FormatJSON, agents.NewJSONAgent())
	registry.Register(core.FormatPDF, agents.NewPDFAgent())
	registry.Register(core.FormatText, agents.NewTextAgent())

	p, err := NewPipeline(classifier, registry, repo)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return p, repo
}

func TestPipeline_ProcessEmail(t *testing.T) {
	p, repo := setupPipeline(t)
	ctx := context.Background()

	doc := &core.Document{
		Content: []byte("From: Alice <alice@acme.com>\nTo: sales@corp.com\nSubject: Need a quote\n\nPlease send a quotation for 100 units."),
		Source:  "file",
	}

	result, err := p.Process(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, core.StatusProcessed, result.Status)
	assert.Equal(t, core.FormatEmail, result.Classification.Format)
	assert.Equal(t, core.IntentRFQ, result.Classification.Intent)
	assert.NotEmpty(t, result.ProcessingID)
	assert.Equal(t, agents.EmailAgentName, result.Metadata["agent"])

	entry, err := repo.Get(ctx, result.ProcessingID)
	require.NoError(t, err)
	assert.Equal(t, "file", entry.Metadata["source"])
	assert.NotNil(t, entry.Classification)
	assert.NotNil(t, entry.Extraction)
	assert.NotEmpty(t, entry.ConversationID, "email extractions are threaded")
	assert.Equal(t, []string{"intake", "classifier", agents.EmailAgentName}, entry.AgentHistory)

	history, err := repo.ConversationHistory(ctx, entry.ConversationID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPipeline_ProcessJSON(t *testing.T) {
	p, repo := setupPipeline(t)
	ctx := context.Background()

	result, err := p.Process(ctx, &core.Document{
		Content: []byte(`{"order_id": "ORD-1", "total": 99.5, "order": "widgets"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, core.StatusProcessed, result.Status)
	assert.Equal(t, core.FormatJSON, result.Classification.Format)
	assert.Contains(t, result.Extracted, "envelope")

	entry, err := repo.Get(ctx, result.ProcessingID)
	require.NoError(t, err)
	assert.Empty(t, entry.ConversationID, "only email extractions are threaded")
}

// failingAgent always errors, standing in for an agent that cannot extract.
type failingAgent struct{}

func (failingAgent) Name() string { return "failing_agent" }

func (failingAgent) Process(ctx context.Context, doc *core.Document, classification core.Classification) (*core.Extraction, error) {
	return nil, errors.New("extraction exploded")
}

func TestPipeline_AgentErrorYieldsErrorResult(t *testing.T) {
	repo, backend, err := storebadger.NewInMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider()
	classifier, err := classify.NewClassifier(provider.IntentClassifier())
	require.NoError(t, err)
	registry, err := agents.NewRegistry(failingAgent{})
	require.NoError(t, err)

	p, err := NewPipeline(classifier, registry, repo)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	ctx := context.Background()
	result, err := p.Process(ctx, &core.Document{Content: []byte("plain text, no structure")})
	require.NoError(t, err, "agent failures must not fail Process")

	assert.Equal(t, core.StatusError, result.Status)
	assert.Contains(t, result.Metadata["error"], "extraction exploded")

	// Metadata and classification were still recorded before the failure
	entry, err := repo.Get(ctx, result.ProcessingID)
	require.NoError(t, err)
	assert.NotNil(t, entry.Classification)
	assert.Nil(t, entry.Extraction)

	assert.Equal(t, 1, p.Stats()["failing_agent"].Errors)
}

func TestPipeline_InvalidDocument(t *testing.T) {
	p, _ := setupPipeline(t)

	_, err := p.Process(context.Background(), &core.Document{})
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestPipeline_ProcessBatch(t *testing.T) {
	p, _ := setupPipeline(t)
	ctx := context.Background()

	docs := make([]*core.Document, 10)
	for i := range docs {
		docs[i] = &core.Document{
			Content: []byte(fmt.Sprintf(`{"order_id": "ORD-%d", "total": %d}`, i, i*10)),
		}
	}

	results, err := p.ProcessBatch(ctx, docs)
	require.NoError(t, err)
	require.Len(t, results, len(docs))

	for i, result := range results {
		require.NotNil(t, result, "result %d missing", i)
		assert.Equal(t, core.StatusProcessed, result.Status)
		envelope := result.Extracted["envelope"].(map[string]any)
		assert.Equal(t, fmt.Sprintf("ORD-%d", i), envelope["id"], "results preserve input order")
	}

	stats := p.Stats()
	assert.Equal(t, 10, stats[agents.JSONAgentName].Processed)
	assert.InDelta(t, stats[agents.JSONAgentName].AvgConfidence, 0.95, 0.1)
}

func TestPipeline_RequiredDependencies(t *testing.T) {
	provider := mock.NewMockProvider()
	classifier, err := classify.NewClassifier(provider.IntentClassifier())
	require.NoError(t, err)
	registry, err := agents.NewRegistry(agents.NewTextAgent())
	require.NoError(t, err)

	_, err = NewPipeline(nil, registry, nil)
	assert.ErrorIs(t, err, ErrClassifierRequired)

	_, err = NewPipeline(classifier, nil, nil)
	assert.ErrorIs(t, err, ErrRegistryRequired)

	_, err = NewPipeline(classifier, registry, nil)
	assert.ErrorIs(t, err, ErrMemoryRequired)
}
