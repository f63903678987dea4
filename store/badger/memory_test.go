package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/intake/core"
	"github.com/poiesic/intake/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T, opts ...Option) store.MemoryRepository {
	t.Helper()
	repo, backend, err := NewInMemoryRepository(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestMemoryRepository_EntryLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	id := core.NewProcessingID()

	require.NoError(t, repo.PutMetadata(ctx, id, map[string]any{"source": "file"}))
	require.NoError(t, repo.PutClassification(ctx, id, &core.Classification{
		Format:     core.FormatEmail,
		Intent:     core.IntentRFQ,
		Confidence: 0.9,
		Timestamp:  time.Now().UTC(),
	}))
	require.NoError(t, repo.PutExtraction(ctx, id, &core.Extraction{
		ProcessingID: id,
		Agent:        "email_agent",
		Fields:       map[string]any{"type": "email_communication"},
		Confidence:   0.8,
		Timestamp:    time.Now().UTC(),
	}))

	entry, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.ProcessingID)
	assert.Equal(t, map[string]any{"source": "file"}, entry.Metadata)
	assert.Equal(t, core.IntentRFQ, entry.Classification.Intent)
	assert.Equal(t, "email_agent", entry.Extraction.Agent)
	assert.Equal(t, []string{"intake", "classifier", "email_agent"}, entry.AgentHistory,
		"history records each stage in order")

	classification, err := repo.GetClassification(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.FormatEmail, classification.Format)

	metadata, err := repo.GetMetadata(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "file", metadata["source"])
}

func TestMemoryRepository_GetMissing(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, core.NewProcessingID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryRepository_GetClassificationMissing(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	id := core.NewProcessingID()

	require.NoError(t, repo.PutMetadata(ctx, id, nil))

	_, err := repo.GetClassification(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound, "entry without classification reports not found")
}

func TestMemoryRepository_Conversations(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	thread := core.ConversationIDFromContent("alice@acme.com|quote request|2026-08-20")

	var ids []core.ProcessingID
	for i := 0; i < 3; i++ {
		id := core.NewProcessingID()
		ids = append(ids, id)
		require.NoError(t, repo.PutMetadata(ctx, id, nil))
		require.NoError(t, repo.SetConversation(ctx, id, thread))
		time.Sleep(2 * time.Millisecond)
	}

	// Unrelated entry in another thread
	other := core.NewProcessingID()
	require.NoError(t, repo.PutMetadata(ctx, other, nil))
	require.NoError(t, repo.SetConversation(ctx, other, core.ConversationIDFromContent("other")))

	history, err := repo.ConversationHistory(ctx, thread)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, entry := range history {
		assert.Equal(t, ids[i], entry.ProcessingID, "history is ordered oldest first")
		assert.Equal(t, thread, entry.ConversationID)
	}
}

func TestMemoryRepository_SetConversationMissingEntry(t *testing.T) {
	repo := setupRepo(t)

	err := repo.SetConversation(context.Background(), core.NewProcessingID(), "abc")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryRepository_List(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	var ids []core.ProcessingID
	for i := 0; i < 5; i++ {
		id := core.NewProcessingID()
		ids = append(ids, id)
		require.NoError(t, repo.PutMetadata(ctx, id, map[string]any{"n": i}))
		time.Sleep(2 * time.Millisecond)
	}

	recent, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[4], recent[0].ProcessingID, "most recent first")
	assert.Equal(t, ids[3], recent[1].ProcessingID)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5, "non-positive limit returns everything")
}

func TestMemoryRepository_Search(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	invoiceID := core.NewProcessingID()
	require.NoError(t, repo.PutMetadata(ctx, invoiceID, map[string]any{"filename": "invoice.eml"}))
	require.NoError(t, repo.PutExtraction(ctx, invoiceID, &core.Extraction{
		Agent:      "email_agent",
		Fields:     map[string]any{"contact": map[string]any{"organization": "Acme"}},
		Confidence: 0.8,
		Timestamp:  time.Now().UTC(),
	}))

	otherID := core.NewProcessingID()
	require.NoError(t, repo.PutMetadata(ctx, otherID, map[string]any{"filename": "notes.txt"}))

	results, err := repo.Search(ctx, "acme", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, invoiceID, results[0].ProcessingID)

	none, err := repo.Search(ctx, "globex", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	id := core.NewProcessingID()

	require.NoError(t, repo.PutMetadata(ctx, id, nil))
	require.NoError(t, repo.SetConversation(ctx, id, "thread1"))

	require.NoError(t, repo.Delete(ctx, id))

	_, err := repo.Get(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	history, err := repo.ConversationHistory(ctx, "thread1")
	require.NoError(t, err)
	assert.Empty(t, history, "delete removes conversation index entries")

	assert.ErrorIs(t, repo.Delete(ctx, id), store.ErrNotFound)
}

func TestMemoryRepository_DeleteAll(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.PutMetadata(ctx, core.NewProcessingID(), nil))
	}

	require.NoError(t, repo.DeleteAll(ctx))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEntries)
}

func TestMemoryRepository_MaxEntriesEviction(t *testing.T) {
	repo := setupRepo(t, WithMaxEntries(3))
	ctx := context.Background()

	var ids []core.ProcessingID
	for i := 0; i < 5; i++ {
		id := core.NewProcessingID()
		ids = append(ids, id)
		require.NoError(t, repo.PutMetadata(ctx, id, nil))
		time.Sleep(2 * time.Millisecond)
	}

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEntries, "store never exceeds the cap")

	_, err = repo.Get(ctx, ids[0])
	assert.ErrorIs(t, err, store.ErrNotFound, "oldest entries are evicted")
	_, err = repo.Get(ctx, ids[1])
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = repo.Get(ctx, ids[4])
	assert.NoError(t, err, "newest entries survive")
}

func TestMemoryRepository_Cleanup(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.PutMetadata(ctx, core.NewProcessingID(), nil))
	}

	t.Run("recent entries survive a generous max age", func(t *testing.T) {
		removed, err := repo.Cleanup(ctx, time.Hour)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})

	t.Run("zero max age expires everything", func(t *testing.T) {
		time.Sleep(2 * time.Millisecond)
		removed, err := repo.Cleanup(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalEntries)
		assert.False(t, stats.LastCleanup.IsZero(), "cleanup time is recorded")
	})
}

func TestMemoryRepository_Stats(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	id1 := core.NewProcessingID()
	id2 := core.NewProcessingID()
	id3 := core.NewProcessingID()
	require.NoError(t, repo.PutMetadata(ctx, id1, nil))
	require.NoError(t, repo.PutMetadata(ctx, id2, nil))
	require.NoError(t, repo.PutMetadata(ctx, id3, nil))

	require.NoError(t, repo.SetConversation(ctx, id1, "threadA"))
	require.NoError(t, repo.SetConversation(ctx, id2, "threadA"))
	require.NoError(t, repo.SetConversation(ctx, id3, "threadB"))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.ActiveConversations)
}
