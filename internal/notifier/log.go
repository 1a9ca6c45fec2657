package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/coverletter/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes alerts to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each alert via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the alert with kind, tone and message.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(ctx context.Context, a model.Alert) error {
	args := []any{"kind", a.Kind, "message", a.Message}
	if a.Tone != "" {
		args = append(args, "tone", a.Tone)
	}
	if !a.At.IsZero() {
		args = append(args, "at", a.At)
	}
	n.logger.WarnContext(ctx, "alert", args...)
	return nil
}
