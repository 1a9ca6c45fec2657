package ai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/amishk599/coverletter/internal/model"
)

var errNoJSONObject = errors.New("no JSON object in reply")

// MetadataExtractor recovers the recruiter email, company name and job title
// from a job description. It is best-effort: every failure yields empty fields.
type MetadataExtractor struct {
	provider model.LLMProvider
	logger   *slog.Logger
}

// NewMetadataExtractor creates an extractor backed by provider.
func NewMetadataExtractor(provider model.LLMProvider, logger *slog.Logger) *MetadataExtractor {
	return &MetadataExtractor{provider: provider, logger: logger}
}

// Extract never returns an error; failures are logged and produce zero Metadata.
func (e *MetadataExtractor) Extract(ctx context.Context, jobDescription string) model.Metadata {
	prompt, err := MetadataPrompt(jobDescription)
	if err != nil {
		e.logger.Warn("metadata extraction failed", "error", err)
		return model.Metadata{}
	}

	raw, err := e.provider.Complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("metadata extraction failed", "error", err)
		return model.Metadata{}
	}

	meta, err := parseMetadata(raw)
	if err != nil {
		e.logger.Warn("metadata reply not parseable", "error", err)
		return model.Metadata{}
	}

	e.logger.Debug("metadata extracted",
		"has_email", meta.HREmail != "",
		"company", meta.CompanyName,
		"title", meta.JobTitle,
	)
	return meta
}

// rawMetadata is the JSON shape the extraction prompt asks for. Fields are decoded
// loosely so a number or null in one field does not discard the others.
type rawMetadata struct {
	HREmail     any `json:"hrEmail"`
	CompanyName any `json:"companyName"`
	JobTitle    any `json:"jobTitle"`
}

// parseMetadata finds the first complete JSON object in raw and reads the three fields.
// Surrounding prose, code fences and stray braces before the object are tolerated.
func parseMetadata(raw string) (model.Metadata, error) {
	text := cleanJSONBlock(raw)

	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		var rm rawMetadata
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		if err := dec.Decode(&rm); err != nil {
			continue
		}
		return model.Metadata{
			HREmail:     stringField(rm.HREmail),
			CompanyName: stringField(rm.CompanyName),
			JobTitle:    stringField(rm.JobTitle),
		}, nil
	}
	return model.Metadata{}, errNoJSONObject
}

func stringField(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// cleanJSONBlock removes markdown code fences that models add around JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.Contains(first, " ") && !strings.Contains(first, "{") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
