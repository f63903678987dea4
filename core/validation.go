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

package core

import (
	"fmt"
	"slices"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//
// NOT validated:
//   - Filename and Source (optional, informational)
//   - Metadata (free-form, caller-supplied)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if len(doc.Content) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	return nil
}

// ValidateClassification validates a Classification according to domain rules.
//
// Validation rules:
//   - Format must be a known DocFormat
//   - Intent must be a known Intent
//   - Confidence must be within [0, 1]
func ValidateClassification(c *Classification) error {
	if c == nil {
		return fmt.Errorf("%w: classification is nil", ErrInvalidClassification)
	}
	if err := ValidateFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidClassification, err)
	}
	if err := ValidateIntent(c.Intent); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidClassification, err)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidClassification, ErrInvalidConfidence, c.Confidence)
	}
	return nil
}

// ValidateExtraction validates an Extraction according to domain rules.
//
// Validation rules:
//   - ProcessingID must not be empty
//   - Agent must not be empty
//   - Confidence must be within [0, 1]
//
// NOT validated:
//   - Fields (agents produce free-form normalized records)
func ValidateExtraction(e *Extraction) error {
	if e == nil {
		return fmt.Errorf("%w: extraction is nil", ErrInvalidExtraction)
	}
	if e.ProcessingID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidExtraction, ErrEmptyProcessingID)
	}
	if e.Agent == "" {
		return fmt.Errorf("%w: %w", ErrInvalidExtraction, ErrEmptyAgentName)
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidExtraction, ErrInvalidConfidence, e.Confidence)
	}
	return nil
}

// ValidateFormat validates that a DocFormat has a known value.
func ValidateFormat(format DocFormat) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	return nil
}

// ValidateIntent validates that an Intent has a known value.
func ValidateIntent(intent Intent) error {
	if !slices.Contains(Intents, intent) {
		return fmt.Errorf("%w: %q", ErrInvalidIntent, intent)
	}
	return nil
}
