package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/intake/core"
)

const intentResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "intent": {
      "type": "string",
      "enum": [%s]
    }
  },
  "required": ["intent"],
  "additionalProperties": false
}`

const intentPromptTemplate = `Classify the business intent of the given %s content and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Choose exactly one intent from: %s.
- "invoice" covers bills, payment requests, and amounts due.
- "rfq" covers requests for quotes, price estimates, and proposals.
- "complaint" covers expressions of dissatisfaction or reported problems.
- "regulation" covers compliance, policy, and legal requirement documents.
- "support" covers help requests, questions, and inquiries.
- "order" covers purchases, procurement, and delivery requests.
- Use "general" when no other category clearly applies. Do not guess.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Please find attached invoice INV-2024-001 for $1,250.00, due February 15."
Output:
{"intent": "invoice"}

Example:
Input: "Could you send us a quote for 500 units of part A-113?"
Output:
{"intent": "rfq"}`

const requestAnalysisPrompt = `Analyze the given document and extract what the sender is asking for. Return the result as JSON.

Output ONLY valid JSON with exactly these keys:
{
  "intent": "what the sender is trying to achieve (invoice, rfq, complaint, regulation, support, order, or general)",
  "request_summary": "brief summary of what they are asking for",
  "key_entities": ["important names, products, services, or topics mentioned"],
  "action_required": "what action, if any, is needed from the recipient (e.g. prepare_quote, review)",
  "sentiment": "positive, neutral, or negative"
}

Rules:
- Do not include any preamble or explanation; start with { and end with }.
- key_entities must contain only strings that appear in or are clearly implied by the document.
- If nothing specific is requested, use "review" for action_required.
- The JSON must parse without errors; no trailing commas and no extra keys.`

const entityPromptTemplate = `Extract the following types of entities from the given content: %s

Format your response as JSON with entity types as keys and lists of found entities as values.
Example: {"person": ["John Doe", "Jane Smith"], "organization": ["ABC Corp"], "date": ["2024-01-15"]}

Rules:
- Do not include any preamble or explanation; start with { and end with }.
- Include only entities that are explicitly mentioned in the content. Do not hallucinate.
- Use an empty list for entity types with no matches.
- The JSON must parse without errors.`

// buildIntentPrompt creates the intent classification system prompt with the
// detected format and valid intents embedded.
func buildIntentPrompt(format core.DocFormat) string {
	quoted := make([]string, 0, len(core.Intents))
	names := make([]string, 0, len(core.Intents))
	for _, intent := range core.Intents {
		if intent == core.IntentUnknown {
			continue
		}
		quoted = append(quoted, fmt.Sprintf("%q", string(intent)))
		names = append(names, string(intent))
	}
	schema := fmt.Sprintf(intentResponseSchema, strings.Join(quoted, ", "))
	return fmt.Sprintf(intentPromptTemplate, format, schema, strings.Join(names, ", "))
}

// buildEntityPrompt creates the entity extraction system prompt for the
// requested entity types.
func buildEntityPrompt(entityTypes []string) string {
	return fmt.Sprintf(entityPromptTemplate, strings.Join(entityTypes, ", "))
}
