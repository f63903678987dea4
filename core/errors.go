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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyContent indicates the document content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidClassification indicates a Classification failed validation.
	ErrInvalidClassification = errors.New("invalid classification")

	// ErrInvalidConfidence indicates a confidence score outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")

	// ErrInvalidFormat indicates an unrecognized document format value.
	ErrInvalidFormat = errors.New("invalid document format")

	// ErrInvalidIntent indicates an unrecognized intent value.
	ErrInvalidIntent = errors.New("invalid intent")

	// ErrInvalidExtraction indicates an Extraction failed validation.
	ErrInvalidExtraction = errors.New("invalid extraction")

	// ErrEmptyProcessingID indicates a missing processing ID.
	ErrEmptyProcessingID = errors.New("processing ID cannot be empty")

	// ErrEmptyAgentName indicates an extraction without a producing agent.
	ErrEmptyAgentName = errors.New("agent name cannot be empty")
)
