// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/intake/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock classifier and analyzer instances.
type MockProvider struct {
	classifier *MockIntentClassifier
	analyzer   *MockDocumentAnalyzer
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockClassifier()/GetMockAnalyzer() to access concrete types for
// test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		classifier: NewMockIntentClassifier(),
		analyzer:   NewMockDocumentAnalyzer(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(classifier *MockIntentClassifier, analyzer *MockDocumentAnalyzer) ai.Provider {
	return &MockProvider{
		classifier: classifier,
		analyzer:   analyzer,
	}
}

// IntentClassifier returns the mock intent classifier.
func (p *MockProvider) IntentClassifier() ai.IntentClassifier {
	return p.classifier
}

// DocumentAnalyzer returns the mock document analyzer.
func (p *MockProvider) DocumentAnalyzer() ai.DocumentAnalyzer {
	return p.analyzer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockClassifier returns the underlying mock classifier for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockClassifier() *MockIntentClassifier {
	return p.classifier
}

// GetMockAnalyzer returns the underlying mock analyzer for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockAnalyzer() *MockDocumentAnalyzer {
	return p.analyzer
}
