package mock

import (
	"context"
	"strings"

	"github.com/poiesic/intake/ai"
	"github.com/poiesic/intake/core"
)

// MockDocumentAnalyzer is a test double for ai.DocumentAnalyzer.
// It allows custom behavior injection via function fields.
type MockDocumentAnalyzer struct {
	// AnalyzeRequestFunc is called by AnalyzeRequest if set.
	// If nil, uses a default word-based analysis.
	AnalyzeRequestFunc func(ctx context.Context, content string) (*ai.RequestAnalysis, error)

	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, returns empty entity lists for all requested types.
	ExtractEntitiesFunc func(ctx context.Context, content string, entityTypes []string) (map[string][]string, error)

	analyzeCalls int
	extractCalls int
}

// NewMockDocumentAnalyzer creates a mock document analyzer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockDocumentAnalyzer() *MockDocumentAnalyzer {
	return &MockDocumentAnalyzer{}
}

// AnalyzeRequest produces a simple mock analysis from the content.
// Default behavior: neutral sentiment, general intent, first few words as
// entities, summary from the first line.
func (m *MockDocumentAnalyzer) AnalyzeRequest(ctx context.Context, content string) (*ai.RequestAnalysis, error) {
	m.analyzeCalls++

	if m.AnalyzeRequestFunc != nil {
		return m.AnalyzeRequestFunc(ctx, content)
	}

	summary := content
	if idx := strings.IndexByte(summary, '\n'); idx >= 0 {
		summary = summary[:idx]
	}
	if len(summary) > 80 {
		summary = summary[:80]
	}

	words := strings.Fields(strings.ToLower(content))
	entities := make([]string, 0, 3)
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if len(word) > 5 {
			entities = append(entities, word)
		}
		if len(entities) >= 3 {
			break
		}
	}

	return &ai.RequestAnalysis{
		Intent:         core.IntentGeneral,
		Summary:        strings.TrimSpace(summary),
		KeyEntities:    entities,
		ActionRequired: "review",
		Sentiment:      "neutral",
	}, nil
}

// ExtractEntities returns empty entity lists for each requested type.
func (m *MockDocumentAnalyzer) ExtractEntities(ctx context.Context, content string, entityTypes []string) (map[string][]string, error) {
	m.extractCalls++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, content, entityTypes)
	}

	if len(entityTypes) == 0 {
		entityTypes = ai.DefaultEntityTypes
	}
	entities := make(map[string][]string, len(entityTypes))
	for _, entityType := range entityTypes {
		entities[entityType] = []string{}
	}
	return entities, nil
}

// AnalyzeCallCount returns the number of times AnalyzeRequest was called.
func (m *MockDocumentAnalyzer) AnalyzeCallCount() int {
	return m.analyzeCalls
}

// ExtractCallCount returns the number of times ExtractEntities was called.
func (m *MockDocumentAnalyzer) ExtractCallCount() int {
	return m.extractCalls
}

// Reset clears the call counts and custom functions.
func (m *MockDocumentAnalyzer) Reset() {
	m.analyzeCalls = 0
	m.extractCalls = 0
	m.AnalyzeRequestFunc = nil
	m.ExtractEntitiesFunc = nil
}
