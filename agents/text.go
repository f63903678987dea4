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

package agents

import (
	"context"
	"strings"
	"time"

	"github.com/poiesic/intake/core"
)

// TextAgentName identifies the text agent in records and history.
const TextAgentName = "text_agent"

// textPreviewLen caps the content preview stored in the record.
const textPreviewLen = 500

// TextAgent is the fallback for plain text and unrecognized formats. It keeps
// a content preview and basic shape statistics so nothing is dropped.
type TextAgent struct{}

// NewTextAgent creates the fallback text agent.
func NewTextAgent() *TextAgent {
	return &TextAgent{}
}

// Name returns the agent identifier.
func (a *TextAgent) Name() string {
	return TextAgentName
}

// Process stores a preview record for content no specialized agent handles.
func (a *TextAgent) Process(ctx context.Context, doc *core.Document, classification core.Classification) (*core.Extraction, error) {
	content := doc.Text()

	preview := content
	if len(preview) > textPreviewLen {
		preview = preview[:textPreviewLen]
	}

	fields := map[string]any{
		"type":            "unstructured_text",
		"content_preview": preview,
		"stats": map[string]any{
			"length": len(content),
			"lines":  strings.Count(content, "\n") + 1,
			"words":  len(strings.Fields(content)),
		},
		"detected_intent": string(classification.Intent),
		"processing":      map[string]any{"agent": TextAgentName, "auto_categorized": true},
	}

	confidence := 0.4
	if classification.Intent != core.IntentUnknown && classification.Intent != core.IntentGeneral {
		confidence += 0.1
	}

	return &core.Extraction{
		Agent:      TextAgentName,
		Fields:     fields,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	}, nil
}
