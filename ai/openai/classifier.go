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
	"strings"

	"github.com/poiesic/intake/ai"
	"github.com/poiesic/intake/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// IntentClassifier implements ai.IntentClassifier using OpenAI-compatible chat APIs.
type IntentClassifier struct {
	client       llms.Model
	contentLimit int
	logger       *slog.Logger
}

// intentResponse is the JSON structure the model is instructed to return.
type intentResponse struct {
	Intent string `json:"intent"`
}

// newIntentClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newIntentClassifier(config *ai.Config) (*IntentClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &IntentClassifier{
		client:       client,
		contentLimit: config.ContentLimit,
		logger:       slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewIntentClassifier creates a new intent classifier using the provided
// configuration.
//
// Returns ai.IntentClassifier interface to enforce abstraction.
func NewIntentClassifier(config *ai.Config) (ai.IntentClassifier, error) {
	return newIntentClassifier(config)
}

// ClassifyIntent labels content with a business intent using the model.
// Responses outside the known intent set fall back to core.IntentGeneral.
func (c *IntentClassifier) ClassifyIntent(ctx context.Context, content string, format core.DocFormat) (core.Intent, error) {
	content = truncate(content, c.contentLimit)

	var result intentResponse
	systemPrompt := buildIntentPrompt(format)
	if err := generateJSON(ctx, c.client, c.logger, systemPrompt, content, &result); err != nil {
		return core.IntentUnknown, err
	}

	intent := core.Intent(strings.ToLower(strings.TrimSpace(result.Intent)))
	if core.ValidateIntent(intent) != nil || intent == core.IntentUnknown {
		c.logger.Debug("model returned out-of-set intent, using general", "intent", result.Intent)
		return core.IntentGeneral, nil
	}

	return intent, nil
}
