package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/amishk599/coverletter/internal/model"
)

// GeminiProvider calls Google's Gemini API through the genai SDK.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiProvider creates a Gemini-backed provider. An empty apiKey yields a provider
// whose calls fail with model.ErrMissingAPIKey, matching the OpenAI provider.
// baseURL may be empty to use the SDK default endpoint.
func NewGeminiProvider(ctx context.Context, baseURL, apiKey, modelName string, temperature float64, httpClient *http.Client) (*GeminiProvider, error) {
	p := &GeminiProvider{
		model:       modelName,
		temperature: float32(temperature),
	}
	if apiKey == "" {
		return p, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

// Complete sends the prompt with the system text as a system instruction.
func (p *GeminiProvider) Complete(ctx context.Context, prompt model.Prompt) (string, error) {
	if p.client == nil {
		return "", model.ErrMissingAPIKey
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt.User), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr(p.temperature),
	})
	if err != nil {
		return "", mapGeminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("llm returned no candidates")
	}
	return resp.Text(), nil
}

// mapGeminiError converts SDK API errors into model.HTTPError so the retry
// decorator treats both providers alike.
func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &model.HTTPError{StatusCode: apiErr.Code, Err: errors.New(strings.TrimSpace(apiErr.Message))}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &model.HTTPError{StatusCode: apiErrPtr.Code, Err: errors.New(strings.TrimSpace(apiErrPtr.Message))}
	}
	return fmt.Errorf("gemini request: %w", err)
}
