package ai

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/amishk599/coverletter/internal/model"
)

//go:embed prompts/base.md
var baseGuidelinesRaw string

//go:embed prompts/extraction.md
var extractionPromptRaw string

//go:embed prompts/styles/*.md
var styleFiles embed.FS

//go:embed prompts/letter_user.tmpl
var letterUserRaw string

//go:embed prompts/extraction_user.tmpl
var extractionUserRaw string

// LetterUserTemplate renders the user message carrying the CV and job description.
var LetterUserTemplate = template.Must(template.New("letter_user").Parse(letterUserRaw))

// ExtractionUserTemplate renders the user message for metadata extraction.
var ExtractionUserTemplate = template.Must(template.New("extraction_user").Parse(extractionUserRaw))

// styleBlocks maps every tone to its guideline fragment. Loaded once at package init.
var styleBlocks = mustLoadStyles()

func mustLoadStyles() map[model.Tone]string {
	blocks := make(map[model.Tone]string, len(model.Tones))
	for _, tone := range model.Tones {
		data, err := styleFiles.ReadFile("prompts/styles/" + string(tone) + ".md")
		if err != nil {
			panic(fmt.Sprintf("missing style prompt for %s: %v", tone, err))
		}
		blocks[tone] = strings.TrimSpace(string(data))
	}
	return blocks
}

// SystemPrompt assembles the base guidelines plus exactly one style block.
// Unrecognized styles get the professional block.
func SystemPrompt(style string) string {
	return strings.TrimSpace(baseGuidelinesRaw) + "\n\n" + styleBlocks[model.ParseTone(style)]
}

// ExtractionPrompt returns the system prompt for metadata extraction.
func ExtractionPrompt() string {
	return strings.TrimSpace(extractionPromptRaw)
}

// LetterPrompt builds the full prompt for one letter generation.
func LetterPrompt(req model.LetterRequest) (model.Prompt, error) {
	var buf bytes.Buffer
	if err := LetterUserTemplate.Execute(&buf, req); err != nil {
		return model.Prompt{}, fmt.Errorf("render letter prompt: %w", err)
	}
	return model.Prompt{System: SystemPrompt(string(req.Tone)), User: buf.String()}, nil
}

// MetadataPrompt builds the prompt for extracting recipient metadata from a job description.
func MetadataPrompt(jobDescription string) (model.Prompt, error) {
	var buf bytes.Buffer
	if err := ExtractionUserTemplate.Execute(&buf, struct{ JobDescription string }{jobDescription}); err != nil {
		return model.Prompt{}, fmt.Errorf("render extraction prompt: %w", err)
	}
	return model.Prompt{System: ExtractionPrompt(), User: buf.String()}, nil
}
