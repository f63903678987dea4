package mock

import (
	"context"
	"strings"

	"github.com/poiesic/intake/core"
)

// MockIntentClassifier is a test double for ai.IntentClassifier.
// It allows custom behavior injection via function fields.
type MockIntentClassifier struct {
	// ClassifyIntentFunc is called by ClassifyIntent if set.
	// If nil, uses default keyword-based classification.
	ClassifyIntentFunc func(ctx context.Context, content string, format core.DocFormat) (core.Intent, error)

	callCount int
}

// NewMockIntentClassifier creates a mock intent classifier with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockIntentClassifier() *MockIntentClassifier {
	return &MockIntentClassifier{}
}

// ClassifyIntent classifies content using simple keyword matching.
// Default behavior: picks the first intent whose marker keyword appears.
func (m *MockIntentClassifier) ClassifyIntent(ctx context.Context, content string, format core.DocFormat) (core.Intent, error) {
	m.callCount++

	if m.ClassifyIntentFunc != nil {
		return m.ClassifyIntentFunc(ctx, content, format)
	}

	lower := strings.ToLower(content)
	markers := []struct {
		keyword string
		intent  core.Intent
	}{
		{"invoice", core.IntentInvoice},
		{"quote", core.IntentRFQ},
		{"complaint", core.IntentComplaint},
		{"compliance", core.IntentRegulation},
		{"help", core.IntentSupport},
		{"order", core.IntentOrder},
	}
	for _, marker := range markers {
		if strings.Contains(lower, marker.keyword) {
			return marker.intent, nil
		}
	}
	return core.IntentGeneral, nil
}

// CallCount returns the number of times ClassifyIntent was called.
func (m *MockIntentClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockIntentClassifier) Reset() {
	m.callCount = 0
	m.ClassifyIntentFunc = nil
}
