package ai

import (
	"strconv"
	"time"

	"github.com/amishk599/coverletter/internal/model"
)

var (
	_ model.LLMProvider = (*OpenAIProvider)(nil)
	_ model.LLMProvider = (*GeminiProvider)(nil)
)

// Default request parameters for letter generation.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultTemperature   = 0.7
)

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
