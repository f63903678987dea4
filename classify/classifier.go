package classify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/intake/ai"
	"github.com/poiesic/intake/core"
)

// intentPatterns maps each intent to the keywords that indicate it.
// Pattern matching runs before the model is consulted; a pattern hit avoids
// a model round trip entirely.
var intentPatterns = map[core.Intent][]string{
	core.IntentInvoice:    {"invoice", "bill", "payment", "amount due", "total:", "$", "€", "£"},
	core.IntentRFQ:        {"request for quote", "rfq", "quotation", "price", "estimate", "proposal"},
	core.IntentComplaint:  {"complaint", "issue", "problem", "dissatisfied", "unhappy", "concern"},
	core.IntentRegulation: {"regulation", "compliance", "policy", "legal", "requirement", "standard"},
	core.IntentSupport:    {"help", "support", "assistance", "question", "inquiry"},
	core.IntentOrder:      {"order", "purchase", "buy", "procurement", "delivery"},
}

// emailIndicators are header fields and salutations that suggest email content.
var emailIndicators = []string{
	"from:", "to:", "subject:", "date:",
	"message-id:", "received:", "reply-to:",
	"dear", "hi", "hello", "best regards", "sincerely",
}

// emailHeaderIndicators are the strong header signals used for confidence scoring.
var emailHeaderIndicators = []string{"from:", "to:", "subject:"}

// Classifier labels document content with format and intent.
// Format detection is purely heuristic; intent uses keyword patterns first
// and falls back to the model when patterns are inconclusive.
type Classifier struct {
	intents ai.IntentClassifier
	logger  *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClassifier creates a classifier backed by the given intent service.
func NewClassifier(intents ai.IntentClassifier, opts ...Option) (*Classifier, error) {
	if intents == nil {
		return nil, ErrIntentClassifierRequired
	}
	c := &Classifier{
		intents: intents,
		logger:  slog.Default().With("component", "classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Classify labels content with format, intent, and confidence.
// Classification never fails hard: when the model is unreachable the result
// degrades to pattern-only intent, and an unrecoverable failure yields the
// unknown/unknown fallback with the error recorded in Err. The pipeline
// stores whatever comes back.
func (c *Classifier) Classify(ctx context.Context, content string) core.Classification {
	format := DetectFormat(content)
	intent := c.classifyIntent(ctx, content, format)

	return core.Classification{
		Format:     format,
		Intent:     intent,
		Confidence: scoreConfidence(content, format, intent),
		Timestamp:  time.Now().UTC(),
	}
}

// classifyIntent resolves intent via patterns, then the model.
func (c *Classifier) classifyIntent(ctx context.Context, content string, format core.DocFormat) core.Intent {
	if intent := PatternIntent(content); intent != core.IntentUnknown {
		return intent
	}

	intent, err := c.intents.ClassifyIntent(ctx, content, format)
	if err != nil {
		// Patterns already came up empty, so the intent stays unknown and
		// earns no confidence boost.
		c.logger.Warn("intent classification via model failed", "err", err)
		return core.IntentUnknown
	}
	return intent
}

// DetectFormat detects the format of input content using static heuristics.
func DetectFormat(content string) core.DocFormat {
	trimmed := strings.TrimSpace(content)

	// JSON: must parse, not just look braced
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if json.Valid([]byte(trimmed)) {
			return core.FormatJSON
		}
	}

	// Raw PDF bytes must be recognized before the email scan: binary
	// content streams routinely contain substrings like "to:" or "hi".
	if strings.HasPrefix(trimmed, "%PDF-") {
		return core.FormatPDF
	}

	lower := strings.ToLower(trimmed)

	for _, indicator := range emailIndicators {
		if strings.Contains(lower, indicator) {
			return core.FormatEmail
		}
	}

	// Text previously extracted from a PDF
	if strings.Contains(lower, "[pdf content]") ||
		strings.Contains(lower, "extracted text from") {
		return core.FormatPDF
	}

	return core.FormatText
}

// PatternIntent classifies intent based on keyword patterns.
// Returns core.IntentUnknown when no pattern matches.
func PatternIntent(content string) core.Intent {
	lower := strings.ToLower(content)

	best := core.IntentUnknown
	bestScore := 0
	for _, intent := range core.Intents {
		patterns, ok := intentPatterns[intent]
		if !ok {
			continue
		}
		score := 0
		for _, pattern := range patterns {
			if strings.Contains(lower, pattern) {
				score++
			}
		}
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}
	return best
}

// scoreConfidence computes the confidence score for a classification.
// Base confidence comes from format detection certainty, boosted when the
// pattern matcher agrees with the assigned intent. Clamped to [0, 1].
func scoreConfidence(content string, format core.DocFormat, intent core.Intent) float64 {
	confidence := 0.0

	switch format {
	case core.FormatJSON:
		if json.Valid([]byte(strings.TrimSpace(content))) {
			confidence += 0.8
		} else {
			confidence += 0.3
		}
	case core.FormatEmail:
		lower := strings.ToLower(content)
		matches := 0
		for _, indicator := range emailHeaderIndicators {
			if strings.Contains(lower, indicator) {
				matches++
			}
		}
		confidence += min(0.7, float64(matches)*0.25)
	case core.FormatPDF:
		confidence += 0.6
	default:
		confidence += 0.4
	}

	if intent != core.IntentUnknown {
		if PatternIntent(content) == intent {
			confidence += 0.2
		} else {
			confidence += 0.1
		}
	}

	return min(1.0, confidence)
}

// Fallback returns the classification recorded when classification itself
// fails: unknown format and intent with zero confidence and the error message
// preserved for the audit trail.
func Fallback(err error) core.Classification {
	c := core.Classification{
		Format:     core.FormatUnknown,
		Intent:     core.IntentUnknown,
		Confidence: 0,
		Timestamp:  time.Now().UTC(),
	}
	if err != nil {
		c.Err = "classification failed: " + err.Error()
	}
	return c
}
