package store

import (
	"context"
	"time"

	"github.com/poiesic/intake/core"
)

// MemoryRepository is the shared processing memory. Every pipeline stage
// writes its contribution under the document's processing ID, building up an
// auditable entry incrementally.
// Implementations must be thread-safe and support concurrent access.
type MemoryRepository interface {
	// PutMetadata creates the memory entry for a processing ID with the
	// caller-supplied metadata. This is the first write for any entry;
	// later writes for the same ID update the entry in place.
	PutMetadata(ctx context.Context, id core.ProcessingID, metadata map[string]any) error

	// PutClassification records the classification for a processing ID.
	// Creates the entry if PutMetadata was never called.
	PutClassification(ctx context.Context, id core.ProcessingID, classification *core.Classification) error

	// PutExtraction records the agent extraction for a processing ID.
	// Creates the entry if it does not exist and appends the agent name
	// to the entry's history.
	PutExtraction(ctx context.Context, id core.ProcessingID, extraction *core.Extraction) error

	// SetConversation links a processing ID to a conversation thread and
	// indexes it for history lookups.
	// Returns ErrNotFound if the entry does not exist.
	SetConversation(ctx context.Context, id core.ProcessingID, conversationID core.ConversationID) error

	// Get retrieves the full memory entry for a processing ID.
	// Returns ErrNotFound if no entry exists.
	Get(ctx context.Context, id core.ProcessingID) (*core.MemoryEntry, error)

	// GetClassification retrieves only the classification for a processing ID.
	// Returns ErrNotFound if the entry or its classification is missing.
	GetClassification(ctx context.Context, id core.ProcessingID) (*core.Classification, error)

	// GetMetadata retrieves only the metadata for a processing ID.
	// Returns ErrNotFound if no entry exists.
	GetMetadata(ctx context.Context, id core.ProcessingID) (map[string]any, error)

	// ConversationHistory retrieves all entries linked to a conversation,
	// ordered by timestamp ascending.
	ConversationHistory(ctx context.Context, conversationID core.ConversationID) ([]*core.MemoryEntry, error)

	// List retrieves up to limit entries, most recent first.
	// A limit <= 0 returns all entries.
	List(ctx context.Context, limit int) ([]*core.MemoryEntry, error)

	// Search retrieves entries whose recorded text matches every word of
	// the query (stop words excluded), most recent first, up to limit.
	Search(ctx context.Context, query string, limit int) ([]*core.MemoryEntry, error)

	// Delete removes an entry and its index keys.
	// Returns ErrNotFound if no entry exists.
	Delete(ctx context.Context, id core.ProcessingID) error

	// DeleteAll removes every entry and index.
	DeleteAll(ctx context.Context) error

	// Cleanup removes entries older than maxAge and returns how many
	// were removed.
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)

	// Stats summarizes the current state of the store.
	Stats(ctx context.Context) (*core.MemoryStats, error)

	// Close closes the repository and releases resources.
	Close() error
}
