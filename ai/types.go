package ai

import "github.com/poiesic/intake/core"

// RequestAnalysis holds the structured details a DocumentAnalyzer extracts
// from document content.
type RequestAnalysis struct {
	// Intent is the model's view of what the sender is trying to achieve.
	Intent core.Intent

	// Summary is a brief description of what the sender is asking for.
	Summary string

	// KeyEntities are important names, products, services, or topics mentioned.
	KeyEntities []string

	// ActionRequired names the action needed from the recipient
	// (e.g. "prepare_quote", "review", "manual_review").
	ActionRequired string

	// Sentiment is one of the values in Sentiments.
	Sentiment string
}

// Sentiments defines the valid sentiment labels an analyzer may assign.
var Sentiments = []string{"positive", "neutral", "negative"}

// DefaultEntityTypes defines the entity categories extracted when the caller
// does not specify its own list.
var DefaultEntityTypes = []string{
	"person",
	"organization",
	"location",
	"date",
	"money",
	"email",
	"phone",
}
