package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/coverletter/internal/model"
)

// Config is the root configuration for the cover letter service.
type Config struct {
	Server       ServerConfig
	AI           AIConfig
	Retry        RetryConfig
	Metadata     MetadataConfig
	JobPage      JobPageConfig
	Notification NotificationConfig
	Defaults     DefaultsConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration // must cover a full generation including one retry delay
	MaxUploadBytes    int64
	ClientMinInterval time.Duration // minimum gap between generate calls from one client; 0 disables
}

// AIConfig selects and configures the chat-completion provider.
type AIConfig struct {
	Provider    string // "openai" or "gemini"
	BaseURL     string // empty means the provider default
	Model       string
	APIKey      string // expanded from env var by Load; may be empty
	Temperature float64
	Timeout     time.Duration // per-request timeout
	MinDelay    time.Duration // minimum gap between outbound requests
}

// RetryConfig controls the rate-limit retry of the letter call.
type RetryConfig struct {
	MaxRetries int
	Delay      time.Duration
}

// MetadataConfig controls the best-effort recipient/company/title extraction.
type MetadataConfig struct {
	Enabled    bool
	MaxRetries int
}

// JobPageConfig controls importing a job description from a URL.
type JobPageConfig struct {
	Enabled bool
	Timeout time.Duration
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// DefaultsConfig holds values preselected in the user interfaces.
type DefaultsConfig struct {
	Tone model.Tone
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultAddr              = ":3000"
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 180 * time.Second
	defaultMaxUploadBytes    = 10 << 20
	defaultClientMinInterval = 5 * time.Second
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultOpenAIModel       = "gpt-4o-mini"
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultTemperature       = 0.7
	defaultAITimeout         = 60 * time.Second
	defaultMaxRetries        = 1
	defaultRetryDelay        = 30 * time.Second
	defaultJobPageTimeout    = 15 * time.Second
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server       rawServerConfig    `yaml:"server"`
	AI           rawAIConfig        `yaml:"ai"`
	Retry        rawRetryConfig     `yaml:"retry"`
	Metadata     rawMetadataConfig  `yaml:"metadata"`
	JobPage      rawJobPageConfig   `yaml:"job_page"`
	Notification NotificationConfig `yaml:"notification"`
	Defaults     rawDefaultsConfig  `yaml:"defaults"`
}

type rawServerConfig struct {
	Addr              string `yaml:"addr"`
	ReadTimeout       string `yaml:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes"`
	ClientMinInterval string `yaml:"client_min_interval"`
}

type rawAIConfig struct {
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     string   `yaml:"timeout"`
	MinDelay    string   `yaml:"min_delay"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	Delay      string `yaml:"delay"`
}

type rawMetadataConfig struct {
	Enabled    *bool `yaml:"enabled"`
	MaxRetries *int  `yaml:"max_retries"`
}

type rawJobPageConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Timeout string `yaml:"timeout"`
}

type rawDefaultsConfig struct {
	Tone string `yaml:"tone"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// An empty path yields the defaults, with the API key taken from the environment.
func Load(path string) (*Config, error) {
	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	var err error
	d := func(field, value string, def time.Duration) time.Duration {
		if err != nil || value == "" {
			return def
		}
		parsed, perr := time.ParseDuration(value)
		if perr != nil {
			err = fmt.Errorf("parse %s %q: %w", field, value, perr)
			return def
		}
		return parsed
	}

	provider := strings.ToLower(strings.TrimSpace(raw.AI.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:              orDefault(raw.Server.Addr, defaultAddr),
			ReadTimeout:       d("server.read_timeout", raw.Server.ReadTimeout, defaultReadTimeout),
			WriteTimeout:      d("server.write_timeout", raw.Server.WriteTimeout, defaultWriteTimeout),
			MaxUploadBytes:    raw.Server.MaxUploadBytes,
			ClientMinInterval: d("server.client_min_interval", raw.Server.ClientMinInterval, defaultClientMinInterval),
		},
		AI: AIConfig{
			Provider:    provider,
			BaseURL:     raw.AI.BaseURL,
			Model:       raw.AI.Model,
			APIKey:      raw.AI.APIKey,
			Temperature: defaultTemperature,
			Timeout:     d("ai.timeout", raw.AI.Timeout, defaultAITimeout),
			MinDelay:    d("ai.min_delay", raw.AI.MinDelay, 0),
		},
		Retry: RetryConfig{
			MaxRetries: intOrDefault(raw.Retry.MaxRetries, defaultMaxRetries),
			Delay:      d("retry.delay", raw.Retry.Delay, defaultRetryDelay),
		},
		Metadata: MetadataConfig{
			Enabled:    boolOrDefault(raw.Metadata.Enabled, true),
			MaxRetries: intOrDefault(raw.Metadata.MaxRetries, defaultMaxRetries),
		},
		JobPage: JobPageConfig{
			Enabled: boolOrDefault(raw.JobPage.Enabled, true),
			Timeout: d("job_page.timeout", raw.JobPage.Timeout, defaultJobPageTimeout),
		},
		Notification: raw.Notification,
		Defaults: DefaultsConfig{
			Tone: model.Tone(strings.ToLower(strings.TrimSpace(raw.Defaults.Tone))),
		},
	}
	if err != nil {
		return nil, err
	}

	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = defaultMaxUploadBytes
	}
	if raw.AI.Temperature != nil {
		cfg.AI.Temperature = *raw.AI.Temperature
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}
	if cfg.Defaults.Tone == "" {
		cfg.Defaults.Tone = model.DefaultTone
	}

	switch provider {
	case ProviderOpenAI:
		cfg.AI.BaseURL = orDefault(cfg.AI.BaseURL, defaultOpenAIBaseURL)
		cfg.AI.Model = orDefault(cfg.AI.Model, defaultOpenAIModel)
		cfg.AI.APIKey = orDefault(cfg.AI.APIKey, os.Getenv("OPENAI_API_KEY"))
	case ProviderGemini:
		cfg.AI.Model = orDefault(cfg.AI.Model, defaultGeminiModel)
		cfg.AI.APIKey = orDefault(cfg.AI.APIKey, os.Getenv("GEMINI_API_KEY"))
		cfg.AI.APIKey = orDefault(cfg.AI.APIKey, os.Getenv("GOOGLE_API_KEY"))
	}
	cfg.AI.BaseURL = strings.TrimRight(cfg.AI.BaseURL, "/")

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive, got %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if cfg.Server.ClientMinInterval < 0 {
		return fmt.Errorf("server.client_min_interval must not be negative, got %v", cfg.Server.ClientMinInterval)
	}

	switch cfg.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("ai.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.AI.Provider)
	}
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", cfg.AI.Temperature)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.MinDelay < 0 {
		return fmt.Errorf("ai.min_delay must not be negative, got %v", cfg.AI.MinDelay)
	}

	if cfg.Retry.MaxRetries < 0 || cfg.Metadata.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if cfg.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative, got %v", cfg.Retry.Delay)
	}
	if cfg.JobPage.Timeout <= 0 {
		return fmt.Errorf("job_page.timeout must be positive, got %v", cfg.JobPage.Timeout)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if !cfg.Defaults.Tone.Valid() {
		return fmt.Errorf("defaults.tone %q is not one of %v", cfg.Defaults.Tone, model.Tones)
	}

	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
