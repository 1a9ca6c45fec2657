package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/amishk599/coverletter/internal/ai"
	"github.com/amishk599/coverletter/internal/config"
	"github.com/amishk599/coverletter/internal/extract"
	"github.com/amishk599/coverletter/internal/model"
	"github.com/amishk599/coverletter/internal/notifier"
	"github.com/amishk599/coverletter/internal/ratelimit"
	"github.com/amishk599/coverletter/internal/retry"
)

const defaultConfigFile = "config.yaml"

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "coverletter",
	Short: "Cover letter generator",
	Long:  "Coverletter turns a CV and a job description into a tailored cover letter, ready to send from Gmail.",
	// With no subcommand the web wizard is served.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: COVERLETTER_CONFIG env var or ./config.yaml when present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > COVERLETTER_CONFIG env var > "./config.yaml" if it exists > defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("COVERLETTER_CONFIG"); env != "" {
			path = env
		} else if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	return config.Load(path)
}

func setupLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// newBaseProvider creates the configured chat-completion provider, rate limited
// when ai.min_delay is set.
func newBaseProvider(ctx context.Context, cfg config.AIConfig, httpClient *http.Client) (model.LLMProvider, error) {
	var p model.LLMProvider
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := ai.NewGeminiProvider(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Temperature, httpClient)
		if err != nil {
			return nil, err
		}
		p = g
	default:
		p = ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Temperature, httpClient)
	}

	if cfg.MinDelay > 0 {
		p = ratelimit.NewRateLimitedProvider(p, ratelimit.NewLimiter(cfg.MinDelay), cfg.Provider)
	}
	return p, nil
}

// buildWriter wires provider, retries, metadata extraction and alerts into a LetterWriter.
// The letter and metadata calls get separate retry budgets.
func buildWriter(ctx context.Context, cfg *config.Config, n model.Notifier, logger *slog.Logger) (*ai.LetterWriter, error) {
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	base, err := newBaseProvider(ctx, cfg.AI, httpClient)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", cfg.AI.Provider, err)
	}
	if cfg.AI.APIKey == "" {
		logger.Warn("no API key configured; generation requests will fail", "provider", cfg.AI.Provider)
	}

	letterProvider := retry.NewRetryProvider(base, cfg.Retry.MaxRetries, cfg.Retry.Delay, logger)

	var extractor *ai.MetadataExtractor
	if cfg.Metadata.Enabled {
		metaProvider := retry.NewRetryProvider(base, cfg.Metadata.MaxRetries, cfg.Retry.Delay, logger)
		extractor = ai.NewMetadataExtractor(metaProvider, logger)
	}

	logger.Debug("letter writer configured",
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"max_retries", cfg.Retry.MaxRetries,
		"retry_delay", cfg.Retry.Delay.String(),
		"metadata", cfg.Metadata.Enabled,
	)
	return ai.NewLetterWriter(letterProvider, extractor, n, logger), nil
}

// setup loads config and builds the writer shared by the generate and wizard commands.
func setup(ctx context.Context, logger *slog.Logger) (*config.Config, *ai.LetterWriter, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	writer, err := buildWriter(ctx, cfg, n, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, writer, nil
}

// readDocument extracts the text of a PDF, DOCX or plain text file.
func readDocument(path string, logger *slog.Logger) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text, err := extract.New(logger).Extract(filepath.Base(path), data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// userError unwraps to the message a user should see for a generation failure.
func userError(err error) error {
	switch {
	case errors.Is(err, model.ErrMissingAPIKey):
		return fmt.Errorf("%w: set OPENAI_API_KEY or GEMINI_API_KEY, or ai.api_key in the config file", model.ErrMissingAPIKey)
	case errors.Is(err, model.ErrRetriesExhausted):
		return fmt.Errorf("the AI service is rate limiting requests, try again in a minute: %w", err)
	default:
		return err
	}
}
