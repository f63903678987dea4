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
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/poiesic/intake/core"
)

// PDFAgentName identifies the PDF agent in records and history.
const PDFAgentName = "pdf_agent"

// pdfPreviewLen caps the extracted text preview stored in the record.
const pdfPreviewLen = 500

// PDFAgent reads PDF documents and extracts structure, metadata, and a text
// preview into a normalized record.
type PDFAgent struct {
	conf   *model.Configuration
	logger *slog.Logger
}

// NewPDFAgent creates a PDF extraction agent.
func NewPDFAgent() *PDFAgent {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFAgent{
		conf:   conf,
		logger: slog.Default().With("component", "pdf-agent"),
	}
}

// Name returns the agent identifier.
func (a *PDFAgent) Name() string {
	return PDFAgentName
}

// Process extracts metadata and a text preview from PDF content.
// Content that is not a readable PDF (e.g. pre-extracted text that was only
// classified as PDF) degrades to a raw-preview record rather than failing.
func (a *PDFAgent) Process(ctx context.Context, doc *core.Document, classification core.Classification) (*core.Extraction, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc.Content), a.conf)
	if err != nil {
		a.logger.Warn("content not readable as PDF, storing raw preview", "err", err)
		return a.rawPreviewExtraction(doc), nil
	}

	preview := a.extractPreview(pdfCtx)

	fields := map[string]any{
		"type": "pdf_document",
		"document": map[string]any{
			"page_count": pdfCtx.PageCount,
			"title":      pdfCtx.Title,
			"author":     pdfCtx.Author,
			"producer":   pdfCtx.Producer,
			"version":    pdfCtx.HeaderVersion.String(),
		},
		"content_preview": preview,
		"processing":      map[string]any{"agent": PDFAgentName, "auto_categorized": true},
	}

	confidence := 0.6
	if preview != "" {
		confidence += 0.2
	}
	if pdfCtx.Title != "" {
		confidence += 0.1
	}

	return &core.Extraction{
		Agent:      PDFAgentName,
		Fields:     fields,
		Confidence: min(1.0, confidence),
		Timestamp:  time.Now().UTC(),
	}, nil
}

// extractPreview pulls raw content-stream text from the first page.
// Content streams carry operators alongside text, so this is a best-effort
// preview, not a faithful text extraction.
func (a *PDFAgent) extractPreview(pdfCtx *model.Context) string {
	if pdfCtx.PageCount == 0 {
		return ""
	}

	r, err := pdfcpu.ExtractPageContent(pdfCtx, 1)
	if err != nil || r == nil {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	preview := previewText(string(raw))
	if len(preview) > pdfPreviewLen {
		preview = preview[:pdfPreviewLen]
	}
	return preview
}

// rawPreviewExtraction produces a low-confidence record for content that was
// classified as PDF but could not be parsed, typically extracted text
// carrying a "[PDF Content]" marker.
func (a *PDFAgent) rawPreviewExtraction(doc *core.Document) *core.Extraction {
	preview := doc.Text()
	if len(preview) > pdfPreviewLen {
		preview = preview[:pdfPreviewLen]
	}

	fields := map[string]any{
		"type":            "pdf_document",
		"document":        map[string]any{"page_count": 0, "parse_error": true},
		"content_preview": strings.TrimSpace(preview),
		"processing":      map[string]any{"agent": PDFAgentName, "auto_categorized": true},
	}

	return &core.Extraction{
		Agent:      PDFAgentName,
		Fields:     fields,
		Confidence: 0.3,
		Timestamp:  time.Now().UTC(),
	}
}

// previewText strips non-printable bytes from raw content-stream data,
// keeping only text that is useful in a preview.
func previewText(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r == '\n' || r == ' ' || (r >= 0x20 && r < 0x7f) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
