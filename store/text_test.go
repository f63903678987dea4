package store

import (
	"testing"

	"github.com/poiesic/intake/core"
	"github.com/stretchr/testify/assert"
)

func TestTokenizeQuery(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"lowercases and trims punctuation", "Hello, World!", []string{"hello", "world"}},
		{"removes stop words", "the invoice is from Acme", []string{"invoice", "acme"}},
		{"empty input", "", []string{}},
		{"only stop words", "the and of", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenizeQuery(tt.text))
		})
	}
}

func TestEntryMatchesQuery(t *testing.T) {
	entry := &core.MemoryEntry{
		Metadata: map[string]any{"filename": "invoice.eml"},
		Classification: &core.Classification{
			Format: core.FormatEmail,
			Intent: core.IntentInvoice,
		},
		Extraction: &core.Extraction{
			Agent: "email_agent",
			Fields: map[string]any{
				"contact": map[string]any{"email": "alice@acme.com", "organization": "Acme"},
				"request": map[string]any{"key_entities": []any{"Acme", "INV-42"}},
			},
		},
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"matches field value", "acme", true},
		{"matches intent label", "invoice", true},
		{"all words must match", "acme missingword", false},
		{"stop words are ignored", "the acme", true},
		{"empty query never matches", "", false},
		{"nested array values match", "INV-42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EntryMatchesQuery(entry, tt.query))
		})
	}
}
