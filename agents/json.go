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
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/intake/core"
)

// JSONAgentName identifies the JSON agent in records and history.
const JSONAgentName = "json_agent"

// maxKeyFields caps how many flattened fields the agent promotes into the
// normalized record.
const maxKeyFields = 20

// oversizedStringLen is the threshold above which a string value is flagged
// as an anomaly.
const oversizedStringLen = 1000

// importantFieldPatterns mark field names that carry business meaning and
// should be promoted first.
var importantFieldPatterns = []string{
	"id", "number", "reference", "customer", "vendor", "supplier",
	"amount", "total", "price", "cost", "currency",
	"date", "due", "deadline", "timestamp",
	"status", "type", "priority",
	"email", "phone", "contact", "address",
	"item", "product", "quantity", "description",
}

// JSONAgent validates and reshapes JSON payloads into a normalized envelope,
// flagging structural anomalies along the way.
type JSONAgent struct {
	logger *slog.Logger
}

// NewJSONAgent creates a JSON extraction agent.
func NewJSONAgent() *JSONAgent {
	return &JSONAgent{
		logger: slog.Default().With("component", "json-agent"),
	}
}

// Name returns the agent identifier.
func (a *JSONAgent) Name() string {
	return JSONAgentName
}

// Process parses the document as JSON and produces a normalized envelope
// record. Unparseable content is a hard failure: unlike the lenient email
// and text agents there is nothing useful to extract from broken JSON.
func (a *JSONAgent) Process(ctx context.Context, doc *core.Document, classification core.Classification) (*core.Extraction, error) {
	var payload any
	if err := json.Unmarshal(doc.Content, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	structure := analyzeStructure(payload)
	flat := flattenFields(payload)
	keyFields := selectKeyFields(flat)
	anomalies := detectAnomalies(flat, payload)
	confidence := jsonConfidence(structure, keyFields, anomalies)

	a.logger.Debug("json payload analyzed",
		"fields", len(flat), "key_fields", len(keyFields), "anomalies", len(anomalies))

	fields := map[string]any{
		"type": "structured_data",
		"envelope": map[string]any{
			"id":        envelopeID(flat),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"source":    doc.Source,
			"data_type": string(classification.Intent),
			"data":      keyFields,
		},
		"structure":  structure,
		"anomalies":  anomalies,
		"processing": map[string]any{"agent": JSONAgentName, "auto_categorized": true},
	}

	return &core.Extraction{
		Agent:      JSONAgentName,
		Fields:     fields,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// analyzeStructure summarizes the shape of a decoded JSON value.
func analyzeStructure(payload any) map[string]any {
	structure := map[string]any{
		"root_type":   jsonTypeName(payload),
		"total_keys":  0,
		"max_depth":   jsonDepth(payload),
		"array_count": 0,
	}

	switch v := payload.(type) {
	case map[string]any:
		structure["total_keys"] = countKeys(v)
		structure["array_count"] = countArrays(v)
	case []any:
		structure["array_count"] = 1 + countArraysInSlice(v)
	}

	return structure
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return "unknown"
}

func jsonDepth(v any) int {
	switch val := v.(type) {
	case map[string]any:
		max := 0
		for _, child := range val {
			if d := jsonDepth(child); d > max {
				max = d
			}
		}
		return 1 + max
	case []any:
		max := 0
		for _, child := range val {
			if d := jsonDepth(child); d > max {
				max = d
			}
		}
		return 1 + max
	}
	return 0
}

func countKeys(m map[string]any) int {
	total := len(m)
	for _, v := range m {
		switch child := v.(type) {
		case map[string]any:
			total += countKeys(child)
		case []any:
			for _, item := range child {
				if obj, ok := item.(map[string]any); ok {
					total += countKeys(obj)
				}
			}
		}
	}
	return total
}

func countArrays(m map[string]any) int {
	count := 0
	for _, v := range m {
		switch child := v.(type) {
		case []any:
			count++
			count += countArraysInSlice(child)
		case map[string]any:
			count += countArrays(child)
		}
	}
	return count
}

func countArraysInSlice(s []any) int {
	count := 0
	for _, v := range s {
		switch child := v.(type) {
		case []any:
			count++
			count += countArraysInSlice(child)
		case map[string]any:
			count += countArrays(child)
		}
	}
	return count
}

// flatField is one leaf of the flattened payload, keyed by dotted path.
type flatField struct {
	Path  string
	Value any
}

// flattenFields walks the payload and returns its leaves in dotted-path form,
// sorted for deterministic output.
func flattenFields(payload any) []flatField {
	var fields []flatField
	flattenInto("", payload, &fields)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return fields
}

func flattenInto(prefix string, v any, out *[]flatField) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			*out = append(*out, flatField{Path: prefix, Value: val})
			return
		}
		for k, child := range val {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			flattenInto(path, child, out)
		}
	case []any:
		if len(val) == 0 {
			*out = append(*out, flatField{Path: prefix, Value: val})
			return
		}
		for i, child := range val {
			flattenInto(fmt.Sprintf("%s[%d]", prefix, i), child, out)
		}
	default:
		*out = append(*out, flatField{Path: prefix, Value: val})
	}
}

// selectKeyFields picks the most business-relevant leaves, important-looking
// names first, capped at maxKeyFields.
func selectKeyFields(flat []flatField) map[string]any {
	key := make(map[string]any, maxKeyFields)

	for _, f := range flat {
		if len(key) >= maxKeyFields {
			break
		}
		if isImportantField(f.Path) {
			key[f.Path] = f.Value
		}
	}
	for _, f := range flat {
		if len(key) >= maxKeyFields {
			break
		}
		if _, taken := key[f.Path]; !taken {
			key[f.Path] = f.Value
		}
	}

	return key
}

func isImportantField(path string) bool {
	lower := strings.ToLower(path)
	for _, pattern := range importantFieldPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// detectAnomalies flags structural oddities in the payload: empty containers,
// nulls, oversized strings, and arrays mixing value types.
func detectAnomalies(flat []flatField, payload any) []string {
	var anomalies []string

	for _, f := range flat {
		switch v := f.Value.(type) {
		case map[string]any:
			if len(v) == 0 {
				anomalies = append(anomalies, "empty_object: "+f.Path)
			}
		case []any:
			if len(v) == 0 {
				anomalies = append(anomalies, "empty_array: "+f.Path)
			}
		case nil:
			anomalies = append(anomalies, "null_value: "+f.Path)
		case string:
			if len(v) > oversizedStringLen {
				anomalies = append(anomalies, "oversized_string: "+f.Path)
			}
		}
	}

	anomalies = append(anomalies, mixedTypeArrays("", payload)...)
	return anomalies
}

func mixedTypeArrays(prefix string, v any) []string {
	var anomalies []string
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			anomalies = append(anomalies, mixedTypeArrays(path, child)...)
		}
	case []any:
		types := make(map[string]bool)
		for _, item := range val {
			types[jsonTypeName(item)] = true
		}
		if len(types) > 1 {
			anomalies = append(anomalies, "mixed_types: "+prefix)
		}
		for i, item := range val {
			anomalies = append(anomalies, mixedTypeArrays(fmt.Sprintf("%s[%d]", prefix, i), item)...)
		}
	}
	return anomalies
}

// envelopeID picks an identifier field from the payload when one exists,
// otherwise generates a fresh processing-style ID.
func envelopeID(flat []flatField) string {
	for _, candidate := range []string{"id", "transaction_id", "order_id", "invoice_number", "reference"} {
		for _, f := range flat {
			if strings.EqualFold(f.Path, candidate) {
				if s, ok := f.Value.(string); ok && s != "" {
					return s
				}
				if n, ok := f.Value.(float64); ok {
					return fmt.Sprintf("%v", n)
				}
			}
		}
	}
	return string(core.NewProcessingID())
}

// jsonConfidence scores extraction quality. Valid JSON starts at 0.8; each
// anomaly costs 0.1, key-field coverage and structure add small boosts.
func jsonConfidence(structure map[string]any, keyFields map[string]any, anomalies []string) float64 {
	confidence := 0.8

	confidence -= 0.1 * float64(len(anomalies))

	if len(keyFields) > 0 {
		confidence += 0.1
	}
	if structure["root_type"] == "object" {
		confidence += 0.05
	}

	return max(0.0, min(1.0, confidence))
}
