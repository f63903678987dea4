package agents

import (
	"context"
	"testing"

	"github.com/poiesic/intake/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONAgent_Process(t *testing.T) {
	agent := NewJSONAgent()
	doc := &core.Document{
		Content: []byte(`{"id": "ORD-7", "customer": "Acme", "total": 1250.5, "items": [{"sku": "A1", "qty": 2}]}`),
		Source:  "file",
	}

	extraction, err := agent.Process(context.Background(), doc, core.Classification{Intent: core.IntentOrder})
	require.NoError(t, err)

	assert.Equal(t, JSONAgentName, extraction.Agent)
	assert.Greater(t, extraction.Confidence, 0.8)

	envelope, ok := extraction.Fields["envelope"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ORD-7", envelope["id"])
	assert.Equal(t, "file", envelope["source"])
	assert.Equal(t, "order", envelope["data_type"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", data["customer"])
	assert.Equal(t, 1250.5, data["total"])
}

func TestJSONAgent_InvalidJSONFails(t *testing.T) {
	agent := NewJSONAgent()
	doc := &core.Document{Content: []byte(`{"broken":`)}

	_, err := agent.Process(context.Background(), doc, core.Classification{})
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestJSONAgent_Anomalies(t *testing.T) {
	agent := NewJSONAgent()
	doc := &core.Document{
		Content: []byte(`{"a": {}, "b": [], "c": null, "d": [1, "two", true]}`),
	}

	extraction, err := agent.Process(context.Background(), doc, core.Classification{})
	require.NoError(t, err)

	anomalies, ok := extraction.Fields["anomalies"].([]string)
	require.True(t, ok)
	assert.Contains(t, anomalies, "empty_object: a")
	assert.Contains(t, anomalies, "empty_array: b")
	assert.Contains(t, anomalies, "null_value: c")
	assert.Contains(t, anomalies, "mixed_types: d")
	assert.Less(t, extraction.Confidence, 0.8, "anomalies must lower confidence")
}

func TestAnalyzeStructure(t *testing.T) {
	var payload any = map[string]any{
		"order": map[string]any{"id": "1", "lines": []any{map[string]any{"sku": "A"}}},
	}

	structure := analyzeStructure(payload)

	assert.Equal(t, "object", structure["root_type"])
	assert.Equal(t, 4, structure["max_depth"])
	assert.Equal(t, 1, structure["array_count"])
	assert.Equal(t, 4, structure["total_keys"])
}

func TestSelectKeyFields_PrefersImportantAndCaps(t *testing.T) {
	payload := make(map[string]any)
	for i := 0; i < 30; i++ {
		payload["filler_"+string(rune('a'+i))] = i
	}
	payload["customer_id"] = "CUST_001"
	payload["total_amount"] = 99.5

	flat := flattenFields(payload)
	key := selectKeyFields(flat)

	assert.Len(t, key, maxKeyFields)
	assert.Contains(t, key, "customer_id")
	assert.Contains(t, key, "total_amount")
}
