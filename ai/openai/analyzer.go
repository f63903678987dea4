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


package openai

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/intake/ai"
	"github.com/poiesic/intake/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DocumentAnalyzer implements ai.DocumentAnalyzer using OpenAI-compatible chat APIs.
type DocumentAnalyzer struct {
	client       llms.Model
	contentLimit int
	logger       *slog.Logger
}

// requestAnalysis is an internal type used for JSON unmarshaling.
// It matches the structure expected from the model.
type requestAnalysis struct {
	Intent         string   `json:"intent"`
	RequestSummary string   `json:"request_summary"`
	KeyEntities    []string `json:"key_entities"`
	ActionRequired string   `json:"action_required"`
	Sentiment      string   `json:"sentiment"`
}

// newDocumentAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newDocumentAnalyzer(config *ai.Config) (*DocumentAnalyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &DocumentAnalyzer{
		client:       client,
		contentLimit: config.ContentLimit,
		logger:       slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewDocumentAnalyzer creates a new document analyzer using the provided
// configuration.
//
// Returns ai.DocumentAnalyzer interface to enforce abstraction.
func NewDocumentAnalyzer(config *ai.Config) (ai.DocumentAnalyzer, error) {
	return newDocumentAnalyzer(config)
}

// AnalyzeRequest extracts intent, summary, entities, required action, and
// sentiment from document content.
func (a *DocumentAnalyzer) AnalyzeRequest(ctx context.Context, content string) (*ai.RequestAnalysis, error) {
	content = truncate(content, a.contentLimit)

	var result requestAnalysis
	if err := generateJSON(ctx, a.client, a.logger, requestAnalysisPrompt, content, &result); err != nil {
		return nil, err
	}

	analysis := &ai.RequestAnalysis{
		Intent:         core.Intent(strings.ToLower(strings.TrimSpace(result.Intent))),
		Summary:        strings.TrimSpace(result.RequestSummary),
		KeyEntities:    result.KeyEntities,
		ActionRequired: strings.TrimSpace(result.ActionRequired),
		Sentiment:      strings.ToLower(strings.TrimSpace(result.Sentiment)),
	}

	// Clamp out-of-set values rather than failing the analysis
	if core.ValidateIntent(analysis.Intent) != nil {
		analysis.Intent = core.IntentGeneral
	}
	if !slices.Contains(ai.Sentiments, analysis.Sentiment) {
		analysis.Sentiment = "neutral"
	}
	if analysis.ActionRequired == "" {
		analysis.ActionRequired = "review"
	}
	if analysis.KeyEntities == nil {
		analysis.KeyEntities = []string{}
	}

	a.logger.Debug("analyzed request",
		"intent", analysis.Intent,
		"entities", len(analysis.KeyEntities),
		"sentiment", analysis.Sentiment)

	return analysis, nil
}

// ExtractEntities extracts entities of the given types from content.
func (a *DocumentAnalyzer) ExtractEntities(ctx context.Context, content string, entityTypes []string) (map[string][]string, error) {
	if len(entityTypes) == 0 {
		entityTypes = ai.DefaultEntityTypes
	}
	content = truncate(content, a.contentLimit)

	result := make(map[string][]string)
	systemPrompt := buildEntityPrompt(entityTypes)
	if err := generateJSON(ctx, a.client, a.logger, systemPrompt, content, &result); err != nil {
		return nil, err
	}

	// Guarantee every requested type has an entry
	entities := make(map[string][]string, len(entityTypes))
	for _, entityType := range entityTypes {
		if found, ok := result[entityType]; ok && found != nil {
			entities[entityType] = found
		} else {
			entities[entityType] = []string{}
		}
	}

	return entities, nil
}
