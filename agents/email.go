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
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/intake/ai"
	"github.com/poiesic/intake/core"
)

// EmailAgentName identifies the email agent in records and history.
const EmailAgentName = "email_agent"

// headerPatterns extract RFC-822-style headers from loosely formatted email text.
var headerPatterns = map[string]*regexp.Regexp{
	"from":       regexp.MustCompile(`(?im)^from:\s*(.+?)\s*$`),
	"to":         regexp.MustCompile(`(?im)^to:\s*(.+?)\s*$`),
	"subject":    regexp.MustCompile(`(?im)^subject:\s*(.+?)\s*$`),
	"date":       regexp.MustCompile(`(?im)^date:\s*(.+?)\s*$`),
	"message_id": regexp.MustCompile(`(?im)^message-id:\s*(.+?)\s*$`),
	"reply_to":   regexp.MustCompile(`(?im)^reply-to:\s*(.+?)\s*$`),
}

// addressPattern matches a bare email address inside a header value.
var addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// subjectPrefixPattern strips Re:/Fwd: prefixes for conversation threading.
var subjectPrefixPattern = regexp.MustCompile(`(?i)^(re:|fwd?:)\s*`)

// urgencyIndicators maps urgency levels to their trigger phrases.
var urgencyIndicators = map[string][]string{
	"high":   {"urgent", "asap", "emergency", "critical", "immediate", "rush", "!!!"},
	"medium": {"soon", "priority", "important", "quickly", "expedite"},
	"low":    {"when possible", "no rush", "low priority", "convenience"},
}

// subjectUrgencyIndicators boost urgency when found near the top of the message.
var subjectUrgencyIndicators = []string{"urgent", "asap", "important", "priority"}

// EmailAgent extracts CRM-style records from email content: headers, sender
// identity, urgency, and a model-assisted request analysis.
type EmailAgent struct {
	analyzer ai.DocumentAnalyzer
	logger   *slog.Logger
}

// NewEmailAgent creates an email extraction agent.
func NewEmailAgent(analyzer ai.DocumentAnalyzer) (*EmailAgent, error) {
	if analyzer == nil {
		return nil, ErrAnalyzerRequired
	}
	return &EmailAgent{
		analyzer: analyzer,
		logger:   slog.Default().With("component", "email-agent"),
	}, nil
}

// Name returns the agent identifier.
func (a *EmailAgent) Name() string {
	return EmailAgentName
}

// Process extracts a CRM-style record from email content.
// A failed model analysis degrades to a manual-review record; header and
// urgency extraction are purely local and always succeed.
func (a *EmailAgent) Process(ctx context.Context, doc *core.Document, classification core.Classification) (*core.Extraction, error) {
	content := doc.Text()

	headers := extractHeaders(content)
	sender := extractSender(headers["from"])
	urgency := classifyUrgency(content)
	analysis := a.analyzeRequest(ctx, content)
	a.enrichEntities(ctx, content, &sender, analysis)
	conversationID := conversationID(headers)

	confidence := emailConfidence(headers, sender, analysis)
	requiresFollowup := urgency.Level == "high" || urgency.Level == "medium"

	fields := map[string]any{
		"type": "email_communication",
		"contact": map[string]any{
			"email":        sender.Email,
			"name":         sender.Name,
			"domain":       sender.Domain,
			"organization": sender.Organization,
		},
		"email_details": map[string]any{
			"subject":    headers["subject"],
			"date":       headers["date"],
			"message_id": headers["message_id"],
			"reply_to":   headers["reply_to"],
		},
		"request": map[string]any{
			"intent":          string(analysis.Intent),
			"summary":         analysis.Summary,
			"key_entities":    analysis.KeyEntities,
			"action_required": analysis.ActionRequired,
			"sentiment":       analysis.Sentiment,
		},
		"priority": map[string]any{
			"urgency_level":      urgency.Level,
			"urgency_confidence": urgency.Confidence,
			"urgency_indicators": urgency.Indicators,
		},
		"processing": map[string]any{
			"agent":             EmailAgentName,
			"requires_followup": requiresFollowup,
			"auto_categorized":  true,
		},
	}

	return &core.Extraction{
		Agent:          EmailAgentName,
		Fields:         fields,
		Confidence:     confidence,
		Timestamp:      time.Now().UTC(),
		ConversationID: conversationID,
	}, nil
}

// analyzeRequest runs the model-assisted analysis, substituting a
// manual-review fallback when the model is unavailable.
func (a *EmailAgent) analyzeRequest(ctx context.Context, content string) *ai.RequestAnalysis {
	analysis, err := a.analyzer.AnalyzeRequest(ctx, content)
	if err != nil {
		a.logger.Warn("request analysis failed, using fallback", "err", err)
		return &ai.RequestAnalysis{
			Intent:         core.IntentGeneral,
			Summary:        "Unable to analyze request",
			KeyEntities:    []string{},
			ActionRequired: "manual_review",
			Sentiment:      "neutral",
		}
	}
	return analysis
}

// enrichEntities backfills the record with model-based entity extraction:
// key entities when the request analysis produced none, and the sender
// organization when the domain carried no signal. Extraction failure leaves
// the record as is.
func (a *EmailAgent) enrichEntities(ctx context.Context, content string, sender *senderInfo, analysis *ai.RequestAnalysis) {
	if len(analysis.KeyEntities) > 0 && sender.Organization != "" {
		return
	}

	entities, err := a.analyzer.ExtractEntities(ctx, content, ai.DefaultEntityTypes)
	if err != nil {
		a.logger.Debug("entity extraction failed", "err", err)
		return
	}

	if len(analysis.KeyEntities) == 0 {
		for _, entityType := range ai.DefaultEntityTypes {
			analysis.KeyEntities = append(analysis.KeyEntities, entities[entityType]...)
		}
	}
	if sender.Organization == "" && len(entities["organization"]) > 0 {
		sender.Organization = entities["organization"][0]
	}
}

// extractHeaders pulls known header fields out of email content.
// Only headers that are present appear in the returned map.
func extractHeaders(content string) map[string]string {
	headers := make(map[string]string)
	for name, pattern := range headerPatterns {
		if match := pattern.FindStringSubmatch(content); match != nil {
			headers[name] = strings.TrimSpace(match[1])
		}
	}
	return headers
}

// senderInfo holds the identity extracted from the From header.
type senderInfo struct {
	Email        string
	Name         string
	Domain       string
	Organization string
}

// extractSender parses sender identity from a From header value.
// Prefers a proper RFC 5322 parse, falling back to regex extraction for
// malformed header values.
func extractSender(from string) senderInfo {
	var info senderInfo
	if from == "" {
		return info
	}

	if addr, err := mail.ParseAddress(from); err == nil {
		info.Email = addr.Address
		info.Name = strings.Trim(addr.Name, `"' `)
	} else if match := addressPattern.FindString(from); match != "" {
		info.Email = match
		// Name is whatever precedes the address or angle bracket
		if idx := strings.IndexAny(from, "<"); idx > 0 {
			info.Name = strings.Trim(from[:idx], `"' `)
		}
	}

	if at := strings.LastIndex(info.Email, "@"); at >= 0 {
		info.Domain = info.Email[at+1:]
		info.Organization = organizationFromDomain(info.Domain)
	}

	return info
}

// freemailDomains are consumer providers that carry no organization signal.
var freemailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
	"aol.com":     true,
	"icloud.com":  true,
}

// organizationFromDomain guesses an organization name from a corporate
// email domain. Consumer mail providers yield no organization.
func organizationFromDomain(domain string) string {
	if domain == "" || freemailDomains[strings.ToLower(domain)] {
		return ""
	}
	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// urgency is the result of keyword-tier urgency classification.
type urgency struct {
	Level      string
	Confidence float64
	Indicators map[string]int
}

// classifyUrgency scores content against the urgency keyword tiers.
// Defaults to medium when nothing matches; a high-urgency word near the top
// of the message upgrades a default medium to high.
func classifyUrgency(content string) urgency {
	lower := strings.ToLower(content)

	scores := make(map[string]int)
	for level, indicators := range urgencyIndicators {
		count := 0
		for _, indicator := range indicators {
			if strings.Contains(lower, indicator) {
				count++
			}
		}
		if count > 0 {
			scores[level] = count
		}
	}

	level := "medium"
	confidence := 0.3
	if len(scores) > 0 {
		best := 0
		for _, candidate := range []string{"high", "medium", "low"} {
			if scores[candidate] > best {
				best = scores[candidate]
				level = candidate
			}
		}
		confidence = float64(best) / float64(len(urgencyIndicators[level]))
	}

	head := lower
	if len(head) > 200 {
		head = head[:200]
	}
	for _, indicator := range subjectUrgencyIndicators {
		if strings.Contains(head, indicator) && level == "medium" {
			level = "high"
			confidence += 0.2
			break
		}
	}

	return urgency{
		Level:      level,
		Confidence: min(1.0, confidence),
		Indicators: scores,
	}
}

// conversationID derives a thread identifier for the email.
// Message-ID wins when present; otherwise sender, normalized subject, and
// date prefix are combined so replies land in the same thread.
func conversationID(headers map[string]string) core.ConversationID {
	if messageID := headers["message_id"]; messageID != "" {
		return core.ConversationIDFromContent(messageID)
	}

	subject := subjectPrefixPattern.ReplaceAllString(strings.ToLower(headers["subject"]), "")
	date := headers["date"]
	if len(date) > 10 {
		date = date[:10]
	}

	return core.ConversationIDFromContent(headers["from"] + "|" + strings.TrimSpace(subject) + "|" + date)
}

// emailConfidence scores how complete the extraction is.
// Base 0.4 for email format, boosted by extracted headers, sender identity,
// and a successful request analysis. Clamped to [0, 1].
func emailConfidence(headers map[string]string, sender senderInfo, analysis *ai.RequestAnalysis) float64 {
	confidence := 0.4

	headerScore := 0.0
	for _, value := range headers {
		if value != "" {
			headerScore += 0.1
		}
	}
	confidence += min(0.3, headerScore)

	if sender.Email != "" {
		confidence += 0.15
	}
	if sender.Name != "" {
		confidence += 0.05
	}
	if sender.Organization != "" {
		confidence += 0.05
	}

	if analysis.Intent != core.IntentGeneral {
		confidence += 0.1
	}
	if analysis.Summary != "" {
		confidence += 0.05
	}

	return min(1.0, confidence)
}
