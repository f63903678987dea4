package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/intake/core"
)

// Key prefixes for different data types
const (
	entryPrefix        = "memrec"
	entryDatePrefix    = "memrecd"
	conversationPrefix = "memconv"
	cleanupKey         = "memclean"
)

// makeEntryKey generates a key for a memory entry by processing ID.
func makeEntryKey(id core.ProcessingID) []byte {
	return []byte(fmt.Sprintf("%s:%s", entryPrefix, id))
}

// makeDateKey generates a composite key for the date index.
// Format: prefix:timestamp:processingID
func makeDateKey(timestamp time.Time, id core.ProcessingID) []byte {
	prefix := entryDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + len(id)
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], []byte(id))
	return buf
}

// makePartialDateKey generates a partial key for date range scans.
// Format: prefix:timestamp
func makePartialDateKey(timestamp time.Time) []byte {
	prefix := entryDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeConversationKey generates a composite key for the conversation index.
// Format: prefix:conversationID:processingID
func makeConversationKey(conversationID core.ConversationID, id core.ProcessingID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", conversationPrefix, conversationID, id))
}

// makePartialConversationKey generates a partial key for conversation scans.
// Format: prefix:conversationID:
func makePartialConversationKey(conversationID core.ConversationID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", conversationPrefix, conversationID))
}
