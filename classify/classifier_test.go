package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/intake/ai/mock"
	"github.com/poiesic/intake/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    core.DocFormat
	}{
		{"valid JSON object", `{"customer_id": "CUST_001", "total": 1250.0}`, core.FormatJSON},
		{"invalid JSON braces fall through", `{not json at all`, core.FormatText},
		{"braced but unparseable", `{"unterminated": }`, core.FormatText},
		{"email headers", "From: alice@example.com\nTo: sales@corp.com\nSubject: Quote", core.FormatEmail},
		{"email salutation only", "Dear team,\nplease see below.", core.FormatEmail},
		{"raw pdf magic", "%PDF-1.7\n...", core.FormatPDF},
		{"raw pdf with email-like bytes", "%PDF-1.4\n1 0 obj\nstream\nhi to: dear\x00\x81\nendstream", core.FormatPDF},
		{"pdf extraction marker", "[PDF Content] Extracted text from report.pdf", core.FormatPDF},
		{"plain text", "quarterly numbers look fine", core.FormatText},
		{"empty content", "", core.FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.content))
		})
	}
}

func TestPatternIntent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    core.Intent
	}{
		{"invoice keywords", "Invoice attached, amount due: $1,250.00", core.IntentInvoice},
		{"rfq keywords", "Please send a quotation and price estimate", core.IntentRFQ},
		{"complaint keywords", "I am dissatisfied and unhappy with this issue", core.IntentComplaint},
		{"regulation keywords", "compliance with the new policy requirement", core.IntentRegulation},
		{"support keywords", "I have a question and need assistance", core.IntentSupport},
		{"order keywords", "purchase order for delivery next week", core.IntentOrder},
		{"no match", "the weather is nice today", core.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PatternIntent(tt.content))
		})
	}
}

func TestClassifier_PatternHitSkipsModel(t *testing.T) {
	classifier := mock.NewMockIntentClassifier()
	c, err := NewClassifier(classifier)
	require.NoError(t, err)

	result := c.Classify(context.Background(), "Invoice INV-001, amount due: $42")

	assert.Equal(t, core.IntentInvoice, result.Intent)
	assert.Zero(t, classifier.CallCount(), "pattern hit must not call the model")
}

func TestClassifier_ModelFallback(t *testing.T) {
	classifier := mock.NewMockIntentClassifier()
	classifier.ClassifyIntentFunc = func(ctx context.Context, content string, format core.DocFormat) (core.Intent, error) {
		return core.IntentSupport, nil
	}
	c, err := NewClassifier(classifier)
	require.NoError(t, err)

	result := c.Classify(context.Background(), "the weather is nice today")

	assert.Equal(t, core.IntentSupport, result.Intent)
	assert.Equal(t, 1, classifier.CallCount())
}

func TestClassifier_ModelErrorLeavesIntentUnknown(t *testing.T) {
	classifier := mock.NewMockIntentClassifier()
	classifier.ClassifyIntentFunc = func(ctx context.Context, content string, format core.DocFormat) (core.Intent, error) {
		return core.IntentUnknown, errors.New("connection refused")
	}
	c, err := NewClassifier(classifier)
	require.NoError(t, err)

	result := c.Classify(context.Background(), "lorem ipsum dolor sit amet")

	assert.Equal(t, core.IntentUnknown, result.Intent)
	// Text base only: an undetected intent earns no boost
	assert.InDelta(t, 0.4, result.Confidence, 0.001)
	assert.NoError(t, core.ValidateClassification(&result))
}

func TestClassifier_Confidence(t *testing.T) {
	classifier := mock.NewMockIntentClassifier()
	c, err := NewClassifier(classifier)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid JSON with agreeing pattern intent", func(t *testing.T) {
		result := c.Classify(ctx, `{"invoice": "INV-1", "amount": 10}`)
		assert.Equal(t, core.FormatJSON, result.Format)
		// 0.8 format base + 0.2 pattern agreement
		assert.InDelta(t, 1.0, result.Confidence, 0.001)
	})

	t.Run("email with all header indicators", func(t *testing.T) {
		result := c.Classify(ctx, "From: a@b.c\nTo: d@e.f\nSubject: invoice for payment")
		assert.Equal(t, core.FormatEmail, result.Format)
		// 0.7 header cap (3 matches capped) + 0.2 agreement
		assert.InDelta(t, 0.9, result.Confidence, 0.001)
	})

	t.Run("plain text no intent signal", func(t *testing.T) {
		classifier.Reset()
		classifier.ClassifyIntentFunc = func(ctx context.Context, content string, format core.DocFormat) (core.Intent, error) {
			return core.IntentGeneral, nil
		}
		result := c.Classify(ctx, "lorem ipsum dolor sit amet")
		assert.Equal(t, core.FormatText, result.Format)
		// 0.4 text base + 0.1 detected intent without pattern agreement
		assert.InDelta(t, 0.5, result.Confidence, 0.001)
	})

	t.Run("never exceeds one", func(t *testing.T) {
		result := c.Classify(ctx, `{"invoice": "x", "bill": "y", "payment": "z"}`)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	})
}

func TestFallback(t *testing.T) {
	c := Fallback(errors.New("model exploded"))

	assert.Equal(t, core.FormatUnknown, c.Format)
	assert.Equal(t, core.IntentUnknown, c.Intent)
	assert.Zero(t, c.Confidence)
	assert.Contains(t, c.Err, "model exploded")
	assert.NoError(t, core.ValidateClassification(&c))
}

func TestNewClassifier_RequiresService(t *testing.T) {
	_, err := NewClassifier(nil)
	assert.ErrorIs(t, err, ErrIntentClassifierRequired)
}
