package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/coverletter/internal/model"
)

var _ model.LetterWriter = (*LetterWriter)(nil)

// LetterWriter generates a cover letter and, concurrently, the email metadata for it.
type LetterWriter struct {
	provider  model.LLMProvider
	extractor *MetadataExtractor // nil disables metadata extraction
	notifier  model.Notifier
	logger    *slog.Logger
}

// NewLetterWriter creates a writer. extractor may be nil; notifier receives an alert
// whenever the letter call itself fails upstream.
func NewLetterWriter(provider model.LLMProvider, extractor *MetadataExtractor, notifier model.Notifier, logger *slog.Logger) *LetterWriter {
	return &LetterWriter{
		provider:  provider,
		extractor: extractor,
		notifier:  notifier,
		logger:    logger,
	}
}

// Write validates req, then issues the letter and metadata calls concurrently and
// waits for both. Metadata failures never affect the letter.
func (w *LetterWriter) Write(ctx context.Context, req model.LetterRequest) (model.Letter, error) {
	if err := req.Validate(); err != nil {
		return model.Letter{}, err
	}
	req.Tone = model.ParseTone(string(req.Tone))

	prompt, err := LetterPrompt(req)
	if err != nil {
		return model.Letter{}, err
	}

	start := time.Now()
	var (
		body string
		meta model.Metadata
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := w.provider.Complete(gCtx, prompt)
		if err != nil {
			return fmt.Errorf("generate cover letter: %w", err)
		}
		body = strings.TrimSpace(text)
		return nil
	})
	if w.extractor != nil {
		g.Go(func() error {
			meta = w.extractor.Extract(gCtx, req.JobDescription)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		w.alert(ctx, req.Tone, err)
		return model.Letter{}, err
	}
	if body == "" {
		return model.Letter{}, model.ErrEmptyLetter
	}

	w.logger.Info("cover letter generated",
		"tone", req.Tone,
		"chars", len(body),
		"has_email", meta.HREmail != "",
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return model.Letter{Body: body, Tone: req.Tone, Metadata: meta}, nil
}

func (w *LetterWriter) alert(ctx context.Context, tone model.Tone, cause error) {
	w.logger.Error("cover letter generation failed", "tone", tone, "error", cause)
	if w.notifier == nil || ctx.Err() != nil {
		return
	}
	a := model.Alert{
		Kind:    "generation_failed",
		Tone:    tone,
		Message: cause.Error(),
		At:      time.Now(),
	}
	if err := w.notifier.Notify(ctx, a); err != nil {
		w.logger.Warn("alert delivery failed", "error", err)
	}
}
