package store

import (
	"fmt"
	"strings"

	"github.com/poiesic/intake/core"
)

// Stop words to filter out when matching query words
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// TokenizeQuery splits text into words, lowercases, trims punctuation, and
// removes stop words.
func TokenizeQuery(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// EntryMatchesQuery reports whether every query word (after stop-word
// filtering) appears in the entry's searchable text.
func EntryMatchesQuery(entry *core.MemoryEntry, query string) bool {
	queryWords := TokenizeQuery(query)
	if len(queryWords) == 0 {
		return false
	}

	docWords := TokenizeQuery(EntryText(entry))
	docWordSet := make(map[string]bool, len(docWords))
	for _, word := range docWords {
		docWordSet[word] = true
	}

	for _, word := range queryWords {
		if !docWordSet[word] {
			return false
		}
	}
	return true
}

// EntryText renders a memory entry as flat text for keyword matching:
// metadata values, classification labels, and extraction field values.
func EntryText(entry *core.MemoryEntry) string {
	var b strings.Builder

	for _, v := range entry.Metadata {
		fmt.Fprintf(&b, "%v ", v)
	}
	if entry.Classification != nil {
		fmt.Fprintf(&b, "%s %s ", entry.Classification.Format, entry.Classification.Intent)
	}
	if entry.Extraction != nil {
		b.WriteString(entry.Extraction.Agent)
		b.WriteByte(' ')
		appendFieldText(&b, entry.Extraction.Fields)
	}

	return b.String()
}

func appendFieldText(b *strings.Builder, v any) {
	switch val := v.(type) {
	case map[string]any:
		for _, child := range val {
			appendFieldText(b, child)
		}
	case []any:
		for _, child := range val {
			appendFieldText(b, child)
		}
	case []string:
		for _, child := range val {
			b.WriteString(child)
			b.WriteByte(' ')
		}
	case string:
		b.WriteString(val)
		b.WriteByte(' ')
	case nil:
	default:
		fmt.Fprintf(b, "%v ", val)
	}
}
