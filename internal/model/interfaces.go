package model

import "context"

// LLMProvider sends one prompt to a chat-completion model and returns the raw reply text.
type LLMProvider interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LetterWriter turns a validated request into a cover letter.
type LetterWriter interface {
	Write(ctx context.Context, req LetterRequest) (Letter, error)
}

// TextExtractor pulls plain text out of an uploaded CV document.
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

// JobPageFetcher downloads a job posting and returns its readable text.
type JobPageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Notifier delivers operator alerts.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}
