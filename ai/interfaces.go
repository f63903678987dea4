package ai

import (
	"context"

	"github.com/poiesic/intake/core"
)

// IntentClassifier determines the business intent of document content.
// Implementations must be thread-safe for concurrent use.
type IntentClassifier interface {
	// ClassifyIntent analyzes content and returns the most likely intent.
	// The detected format is provided as a hint for the model.
	// Returns core.IntentGeneral when the model cannot decide.
	// Returns an error if the model call fails.
	ClassifyIntent(ctx context.Context, content string, format core.DocFormat) (core.Intent, error)
}

// DocumentAnalyzer extracts structured request details and entities from
// document content. Implementations must be thread-safe for concurrent use.
type DocumentAnalyzer interface {
	// AnalyzeRequest analyzes content and extracts what the sender is asking
	// for: intent, a short summary, key entities, the required action, and
	// sentiment. Returns an error if the model call fails.
	AnalyzeRequest(ctx context.Context, content string) (*RequestAnalysis, error)

	// ExtractEntities extracts entities of the given types from content.
	// If entityTypes is nil, DefaultEntityTypes is used.
	// The returned map has entity types as keys and found entities as values;
	// types with no matches map to empty slices.
	// Returns an error if the model call fails.
	ExtractEntities(ctx context.Context, content string, entityTypes []string) (map[string][]string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages IntentClassifier and
// DocumentAnalyzer instances, ensuring they share configuration and resources.
type Provider interface {
	// IntentClassifier returns the intent classification service.
	// The returned IntentClassifier is safe for concurrent use.
	IntentClassifier() IntentClassifier

	// DocumentAnalyzer returns the document analysis service.
	// The returned DocumentAnalyzer is safe for concurrent use.
	DocumentAnalyzer() DocumentAnalyzer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
