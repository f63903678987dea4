package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ProcessingID correlates a single input's classification, extraction,
// and memory entry. Generated once per document at intake.
type ProcessingID string

// NewProcessingID generates a fresh random processing identifier.
func NewProcessingID() ProcessingID {
	return ProcessingID(uuid.NewString())
}

// ConversationID identifies an email thread. It is derived from message
// content so that replies within the same thread map to the same ID.
type ConversationID string

// ConversationIDFromContent generates a deterministic conversation ID from
// text using BLAKE2b hashing, truncated to 16 hex characters.
// Identical content produces identical IDs.
func ConversationIDFromContent(text string) ConversationID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 16 hex chars
	h.Write([]byte(text))
	return ConversationID(hex.EncodeToString(h.Sum(nil)))
}

// DocFormat identifies the detected format of an input document.
type DocFormat string

const (
	FormatJSON    DocFormat = "json"
	FormatEmail   DocFormat = "email"
	FormatPDF     DocFormat = "pdf"
	FormatText    DocFormat = "text"
	FormatUnknown DocFormat = "unknown"
)

// Formats lists all valid document formats.
var Formats = []DocFormat{FormatJSON, FormatEmail, FormatPDF, FormatText, FormatUnknown}

// Intent is the business classification of a document's purpose.
type Intent string

const (
	IntentInvoice    Intent = "invoice"
	IntentRFQ        Intent = "rfq"
	IntentComplaint  Intent = "complaint"
	IntentRegulation Intent = "regulation"
	IntentSupport    Intent = "support"
	IntentOrder      Intent = "order"
	IntentGeneral    Intent = "general"
	IntentUnknown    Intent = "unknown"
)

// Intents lists the intents a classifier may assign.
var Intents = []Intent{
	IntentInvoice,
	IntentRFQ,
	IntentComplaint,
	IntentRegulation,
	IntentSupport,
	IntentOrder,
	IntentGeneral,
	IntentUnknown,
}

// Status reports the outcome of a processing run.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusError     Status = "error"
	StatusPending   Status = "pending"
)

// Document is a raw input to the processing pipeline.
type Document struct {
	Content  []byte         // Raw bytes as received
	Filename string         // Original filename, if any
	Source   string         // Where the document came from (e.g. "file", "stdin")
	Metadata map[string]any // Caller-supplied metadata merged into the memory entry
}

// Text returns the document content as a string.
func (d *Document) Text() string {
	return string(d.Content)
}

// Classification labels a document with format, intent, and a confidence
// score. A failed classification carries the error message in Err and
// unknown format/intent with zero confidence.
type Classification struct {
	Format     DocFormat `json:"format"`
	Intent     Intent    `json:"intent"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	Err        string    `json:"error,omitempty"`
}

// Extraction is the normalized record produced by a format agent.
// ConversationID is set only by the email agent, which threads messages.
type Extraction struct {
	ProcessingID   ProcessingID   `json:"processing_id"`
	Agent          string         `json:"agent"`
	Fields         map[string]any `json:"fields"`
	Confidence     float64        `json:"confidence"`
	Timestamp      time.Time      `json:"timestamp"`
	ConversationID ConversationID `json:"conversation_id,omitempty"`
}

// Result is the combined record returned by the orchestrator for one document.
type Result struct {
	ProcessingID   ProcessingID   `json:"processing_id"`
	Status         Status         `json:"status"`
	Classification Classification `json:"classification"`
	Extracted      map[string]any `json:"extracted_data"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// MemoryEntry is the audit record kept in the shared memory store.
// AgentHistory records each pipeline step that touched the entry, in order.
type MemoryEntry struct {
	ProcessingID   ProcessingID    `json:"processing_id"`
	Timestamp      time.Time       `json:"timestamp"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	Extraction     *Extraction     `json:"extraction,omitempty"`
	ConversationID ConversationID  `json:"conversation_id,omitempty"`
	AgentHistory   []string        `json:"agent_history"`
}

// MemoryStats summarizes the state of the shared memory store.
type MemoryStats struct {
	TotalEntries        int       `json:"total_entries"`
	ActiveConversations int       `json:"active_conversations"`
	LastCleanup         time.Time `json:"last_cleanup"`
}
