// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/intake/core"
	"github.com/poiesic/intake/store"
)

// History step names recorded as pipeline stages touch an entry.
const (
	stepIntake     = "intake"
	stepClassifier = "classifier"
)

// MemoryRepository implements store.MemoryRepository for BadgerDB.
type MemoryRepository struct {
	backend    *Backend
	maxEntries int
	logger     *slog.Logger
}

var _ store.MemoryRepository = (*MemoryRepository)(nil)

// Option configures a MemoryRepository.
type Option func(*MemoryRepository)

// WithMaxEntries caps how many entries the store keeps. When a new entry
// would exceed the cap, the oldest entries are evicted. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(r *MemoryRepository) {
		r.maxEntries = n
	}
}

// NewMemoryRepository creates a BadgerDB-backed memory repository.
func NewMemoryRepository(backend *Backend, opts ...Option) (store.MemoryRepository, error) {
	r := &MemoryRepository{
		backend: backend,
		logger:  slog.Default().With("component", "memory-store"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close releases repository resources. The backend is owned by the caller
// and closed separately.
func (r *MemoryRepository) Close() error {
	return nil
}

// PutMetadata creates or updates the entry's caller-supplied metadata.
func (r *MemoryRepository) PutMetadata(ctx context.Context, id core.ProcessingID, metadata map[string]any) error {
	return r.upsert(id, stepIntake, func(entry *core.MemoryEntry) {
		entry.Metadata = metadata
	})
}

// PutClassification records the classification for a processing ID.
func (r *MemoryRepository) PutClassification(ctx context.Context, id core.ProcessingID, classification *core.Classification) error {
	return r.upsert(id, stepClassifier, func(entry *core.MemoryEntry) {
		entry.Classification = classification
	})
}

// PutExtraction records the agent extraction for a processing ID.
func (r *MemoryRepository) PutExtraction(ctx context.Context, id core.ProcessingID, extraction *core.Extraction) error {
	return r.upsert(id, extraction.Agent, func(entry *core.MemoryEntry) {
		entry.Extraction = extraction
	})
}

// SetConversation links an entry to a conversation thread.
func (r *MemoryRepository) SetConversation(ctx context.Context, id core.ProcessingID, conversationID core.ConversationID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := readEntry(tx, makeEntryKey(id))
		if err != nil {
			return err
		}
		if entry == nil {
			return store.ErrNotFound
		}

		// Re-link when the conversation changes
		if entry.ConversationID != "" && entry.ConversationID != conversationID {
			if err := tx.Delete(makeConversationKey(entry.ConversationID, id)); err != nil {
				return err
			}
		}

		entry.ConversationID = conversationID
		if err := tx.Set(makeConversationKey(conversationID, id), []byte(id)); err != nil {
			return err
		}
		if err := saveEntry(tx, id, entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves the full memory entry for a processing ID.
func (r *MemoryRepository) Get(ctx context.Context, id core.ProcessingID) (*core.MemoryEntry, error) {
	var result *core.MemoryEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntry(tx, makeEntryKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return store.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetClassification retrieves only the classification for a processing ID.
func (r *MemoryRepository) GetClassification(ctx context.Context, id core.ProcessingID) (*core.Classification, error) {
	entry, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Classification == nil {
		return nil, store.ErrNotFound
	}
	return entry.Classification, nil
}

// GetMetadata retrieves only the metadata for a processing ID.
func (r *MemoryRepository) GetMetadata(ctx context.Context, id core.ProcessingID) (map[string]any, error) {
	entry, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return entry.Metadata, nil
}

// ConversationHistory retrieves all entries in a conversation thread,
// ordered by timestamp ascending.
func (r *MemoryRepository) ConversationHistory(ctx context.Context, conversationID core.ConversationID) ([]*core.MemoryEntry, error) {
	var results []*core.MemoryEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialConversationKey(conversationID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = startKey
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			var id core.ProcessingID
			if err := iter.Item().Value(func(val []byte) error {
				id = core.ProcessingID(val)
				return nil
			}); err != nil {
				return err
			}

			entry, err := readEntry(tx, makeEntryKey(id))
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.MemoryEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return results, nil
}

// List retrieves up to limit entries, most recent first.
func (r *MemoryRepository) List(ctx context.Context, limit int) ([]*core.MemoryEntry, error) {
	var results []*core.MemoryEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Reverse iterator over the date index yields newest entries first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(entryDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}
			if limit > 0 && len(results) >= limit {
				break
			}

			var id core.ProcessingID
			if err := iter.Item().Value(func(val []byte) error {
				id = core.ProcessingID(val)
				return nil
			}); err != nil {
				return err
			}

			entry, err := readEntry(tx, makeEntryKey(id))
			if err != nil {
				return err
			}
			if entry != nil {
				results = append(results, entry)
			}
		}
		return nil
	}, false)
	return results, err
}

// Search retrieves entries matching every query word, most recent first.
func (r *MemoryRepository) Search(ctx context.Context, query string, limit int) ([]*core.MemoryEntry, error) {
	entries, err := r.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	var results []*core.MemoryEntry
	for _, entry := range entries {
		if store.EntryMatchesQuery(entry, query) {
			results = append(results, entry)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// Delete removes an entry and its index keys.
func (r *MemoryRepository) Delete(ctx context.Context, id core.ProcessingID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := readEntry(tx, makeEntryKey(id))
		if err != nil {
			return err
		}
		if entry == nil {
			return store.ErrNotFound
		}
		if err := deleteEntry(tx, entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteAll removes every entry and index.
func (r *MemoryRepository) DeleteAll(ctx context.Context) error {
	return r.backend.DropPrefixes(
		[]byte(entryPrefix),
		[]byte(conversationPrefix),
		[]byte(cleanupKey),
	)
}

// Cleanup removes entries older than maxAge and records the cleanup time.
func (r *MemoryRepository) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var expired []*core.MemoryEntry

		endKey := makePartialDateKey(cutoff)
		prefix := []byte(entryDatePrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key[:min(len(key), len(endKey))], endKey) > 0 {
				break
			}

			var id core.ProcessingID
			if err := iter.Item().Value(func(val []byte) error {
				id = core.ProcessingID(val)
				return nil
			}); err != nil {
				iter.Close()
				return err
			}

			entry, err := readEntry(tx, makeEntryKey(id))
			if err != nil {
				iter.Close()
				return err
			}
			if entry != nil {
				expired = append(expired, entry)
			}
		}
		iter.Close()

		for _, entry := range expired {
			if err := deleteEntry(tx, entry); err != nil {
				return err
			}
			removed++
		}

		cleanedAt, err := json.Marshal(time.Now().UTC())
		if err != nil {
			return err
		}
		if err := tx.Set([]byte(cleanupKey), cleanedAt); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, err
	}
	if removed > 0 {
		r.logger.Info("memory cleanup removed expired entries", "removed", removed, "max_age", maxAge)
	}
	return removed, nil
}

// Stats summarizes the current state of the store.
func (r *MemoryRepository) Stats(ctx context.Context) (*core.MemoryStats, error) {
	stats := &core.MemoryStats{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		stats.TotalEntries = countEntries(tx)

		// Distinct conversation IDs from the conversation index
		conversations := make(map[string]bool)
		convPrefix := []byte(conversationPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = convPrefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			rest := key[len(convPrefix):]
			if sep := strings.LastIndexByte(rest, ':'); sep > 0 {
				conversations[rest[:sep]] = true
			}
		}
		stats.ActiveConversations = len(conversations)

		item, err := tx.Get([]byte(cleanupKey))
		if err == nil {
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stats.LastCleanup)
			})
		}
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	}, false)
	return stats, err
}

// Helper functions

// upsert applies mutate to the entry for id, creating it (with date index
// and eviction) when absent, and appends step to the agent history.
func (r *MemoryRepository) upsert(id core.ProcessingID, step string, mutate func(*core.MemoryEntry)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEntryKey(id)
		entry, err := readEntry(tx, key)
		if err != nil {
			return err
		}

		created := entry == nil
		if created {
			entry = &core.MemoryEntry{
				ProcessingID: id,
				Timestamp:    time.Now().UTC(),
			}
			if err := tx.Set(makeDateKey(entry.Timestamp, id), []byte(id)); err != nil {
				return err
			}
		}

		mutate(entry)
		entry.AgentHistory = append(entry.AgentHistory, step)

		if err := saveEntry(tx, id, entry); err != nil {
			return err
		}

		if created && r.maxEntries > 0 {
			if err := r.evictOverflow(tx); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// evictOverflow removes the oldest entries until the store is back under
// its configured cap.
func (r *MemoryRepository) evictOverflow(tx *badger.Txn) error {
	excess := countEntries(tx) - r.maxEntries
	if excess <= 0 {
		return nil
	}

	var victims []*core.MemoryEntry
	prefix := []byte(entryDatePrefix + ":")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)

	for iter.Rewind(); iter.Valid() && len(victims) < excess; iter.Next() {
		var id core.ProcessingID
		if err := iter.Item().Value(func(val []byte) error {
			id = core.ProcessingID(val)
			return nil
		}); err != nil {
			iter.Close()
			return err
		}
		entry, err := readEntry(tx, makeEntryKey(id))
		if err != nil {
			iter.Close()
			return err
		}
		if entry != nil {
			victims = append(victims, entry)
		}
	}
	iter.Close()

	for _, entry := range victims {
		if err := deleteEntry(tx, entry); err != nil {
			return err
		}
		r.logger.Debug("evicted oldest entry", "processing_id", entry.ProcessingID)
	}
	return nil
}

// countEntries counts primary entry keys in the transaction.
func countEntries(tx *badger.Txn) int {
	prefix := []byte(entryPrefix + ":")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count
}

// readEntry reads a memory entry from the transaction.
// Returns nil without error when the key does not exist.
func readEntry(tx *badger.Txn, key []byte) (*core.MemoryEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.MemoryEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = store.UnmarshalEntry(val)
		return unmarshalErr
	})
	return entry, err
}

// saveEntry writes a memory entry to the transaction.
func saveEntry(tx *badger.Txn, id core.ProcessingID, entry *core.MemoryEntry) error {
	value, err := store.MarshalEntry(entry)
	if err != nil {
		return err
	}
	return tx.Set(makeEntryKey(id), value)
}

// deleteEntry removes an entry and its index keys within the transaction.
func deleteEntry(tx *badger.Txn, entry *core.MemoryEntry) error {
	if err := tx.Delete(makeDateKey(entry.Timestamp, entry.ProcessingID)); err != nil {
		return err
	}
	if entry.ConversationID != "" {
		if err := tx.Delete(makeConversationKey(entry.ConversationID, entry.ProcessingID)); err != nil {
			return err
		}
	}
	return tx.Delete(makeEntryKey(entry.ProcessingID))
}
