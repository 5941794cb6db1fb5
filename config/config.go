package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Obsidian inbox bot specifics
	Telegram       TelegramConfig
	GitHub         GitHubConfig
	Smart          SmartProcessingConfig
	GoogleCalendar GoogleCalendarConfig

	// LLM Provider Abstraction
	LLM LLMConfig

	// Webhooks
	Webhook WebhookConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type TelegramConfig struct {
	BotToken      string
	WebhookURL    string
	AllowedUserID int64
}

// GitHubConfig points at the repository that backs the Obsidian vault.
// Repo is in "owner/name" form. InboxPath is the vault folder daily
// notes are written to.
type GitHubConfig struct {
	Token     string
	Repo      string
	Branch    string
	InboxPath string
}

// SmartProcessingConfig controls the LLM-backed note structuring pass.
// When disabled, notes are saved raw without an LLM round trip.
type SmartProcessingConfig struct {
	Enabled            bool
	Temperature        float64
	MaxTokens          int
	MaxRequestsPerHour int
	MaxTextLength      int
}

type GoogleCalendarConfig struct {
	Enabled         bool
	CredentialsPath string
	CalendarID      string
}

// LLMConfig holds configuration for the LLM provider abstraction layer
type LLMConfig struct {
	Providers       []ProviderConfig `yaml:"providers"`
	FallbackEnabled bool             `yaml:"fallback_enabled"`
	RetryAttempts   int              `yaml:"retry_attempts"`
	RetryDelay      string           `yaml:"retry_delay"`
	MaxTotalTimeout string           `yaml:"max_total_timeout"`
}

// ProviderConfig holds configuration for a single LLM provider
type ProviderConfig struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	Priority int    `yaml:"priority"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

type WebhookConfig struct {
	Enabled         bool
	Secret          string
	RateLimitPerMin int
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Telegram
	cfg.Telegram.BotToken = viper.GetString("telegram.bot_token")
	cfg.Telegram.WebhookURL = viper.GetString("telegram.webhook_url")
	cfg.Telegram.AllowedUserID = viper.GetInt64("telegram.allowed_user_id")
	if tgToken := viper.GetString("telegram_bot_token"); tgToken != "" {
		cfg.Telegram.BotToken = tgToken
	}
	if tgUserID := viper.GetInt64("telegram_allowed_user_id"); tgUserID != 0 {
		cfg.Telegram.AllowedUserID = tgUserID
	}

	// GitHub vault repository
	cfg.GitHub.Token = viper.GetString("github.token")
	cfg.GitHub.Repo = viper.GetString("github.repo")
	cfg.GitHub.Branch = viper.GetString("github.branch")
	cfg.GitHub.InboxPath = viper.GetString("github.inbox_path")
	if ghToken := viper.GetString("github_token"); ghToken != "" {
		cfg.GitHub.Token = ghToken
	}
	if ghRepo := viper.GetString("github_repo"); ghRepo != "" {
		cfg.GitHub.Repo = ghRepo
	}

	// Smart processing
	cfg.Smart.Enabled = viper.GetBool("smart_processing.enabled")
	cfg.Smart.Temperature = viper.GetFloat64("smart_processing.temperature")
	cfg.Smart.MaxTokens = viper.GetInt("smart_processing.max_tokens")
	cfg.Smart.MaxRequestsPerHour = viper.GetInt("smart_processing.max_requests_per_hour")
	cfg.Smart.MaxTextLength = viper.GetInt("smart_processing.max_text_length")

	// Google Calendar
	cfg.GoogleCalendar.Enabled = viper.GetBool("google_calendar.enabled")
	cfg.GoogleCalendar.CredentialsPath = viper.GetString("google_calendar.credentials_path")
	cfg.GoogleCalendar.CalendarID = viper.GetString("google_calendar.calendar_id")
	if googleCreds := viper.GetString("google_calendar_credentials"); googleCreds != "" {
		cfg.GoogleCalendar.CredentialsPath = googleCreds
	}

	// LLM Provider Abstraction
	cfg.LLM.FallbackEnabled = viper.GetBool("llm.fallback_enabled")
	cfg.LLM.RetryAttempts = viper.GetInt("llm.retry_attempts")
	cfg.LLM.RetryDelay = viper.GetString("llm.retry_delay")
	cfg.LLM.MaxTotalTimeout = viper.GetString("llm.max_total_timeout")

	// Load provider configurations
	if viper.IsSet("llm.providers") {
		providersRaw := viper.Get("llm.providers")
		if providersList, ok := providersRaw.([]interface{}); ok {
			for _, p := range providersList {
				if providerMap, ok := p.(map[string]interface{}); ok {
					provider := ProviderConfig{
						Name:     getStringFromMap(providerMap, "name"),
						Enabled:  getBoolFromMap(providerMap, "enabled"),
						Priority: getIntFromMap(providerMap, "priority"),
						APIKey:   expandEnvVar(getStringFromMap(providerMap, "api_key")),
						BaseURL:  getStringFromMap(providerMap, "base_url"),
						Model:    getStringFromMap(providerMap, "model"),
						Timeout:  getStringFromMap(providerMap, "timeout"),
					}
					cfg.LLM.Providers = append(cfg.LLM.Providers, provider)
				}
			}
		}
	}

	// Fall back to a single openai provider from the flat env key when no
	// providers section is present
	if len(cfg.LLM.Providers) == 0 {
		if openaiKey := viper.GetString("openai_api_key"); openaiKey != "" {
			cfg.LLM.Providers = append(cfg.LLM.Providers, ProviderConfig{
				Name:     "openai",
				Enabled:  true,
				Priority: 1,
				APIKey:   openaiKey,
				Model:    viper.GetString("smart_processing.model"),
			})
		}
	}

	if cfg.Smart.Enabled && len(cfg.LLM.Providers) == 0 {
		return nil, fmt.Errorf("smart processing enabled but no LLM providers configured - add llm.providers to config.yaml or set OPENAI_API_KEY")
	}

	// Webhooks
	cfg.Webhook.Enabled = viper.GetBool("webhook.enabled")
	cfg.Webhook.Secret = viper.GetString("webhook.secret")
	if webhookSecret := viper.GetString("telegram_webhook_secret"); webhookSecret != "" {
		cfg.Webhook.Secret = webhookSecret
	}
	cfg.Webhook.RateLimitPerMin = viper.GetInt("webhook.rate_limit_per_min")

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)
	viper.SetDefault("github.branch", "main")
	viper.SetDefault("github.inbox_path", "00_Inbox")
	viper.SetDefault("smart_processing.enabled", true)
	viper.SetDefault("smart_processing.model", "gpt-4o-mini")
	viper.SetDefault("smart_processing.temperature", 0.3)
	viper.SetDefault("smart_processing.max_tokens", 500)
	viper.SetDefault("smart_processing.max_requests_per_hour", 20)
	viper.SetDefault("smart_processing.max_text_length", 10000)
	viper.SetDefault("webhook.rate_limit_per_min", 60)
	viper.SetDefault("webhook.enabled", true)

	// LLM defaults
	viper.SetDefault("llm.fallback_enabled", true)
	viper.SetDefault("llm.retry_attempts", 3)
	viper.SetDefault("llm.retry_delay", "2s")
	viper.SetDefault("llm.max_total_timeout", "60s")
}

func validate(cfg *Config) error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required (TELEGRAM_BOT_TOKEN)")
	}
	if cfg.GitHub.Token == "" {
		return fmt.Errorf("github token is required (GITHUB_TOKEN)")
	}
	if cfg.GitHub.Repo == "" {
		return fmt.Errorf("github repo is required (GITHUB_REPO, owner/name form)")
	}
	if !strings.Contains(cfg.GitHub.Repo, "/") {
		return fmt.Errorf("github repo %q must be in owner/name form", cfg.GitHub.Repo)
	}
	return nil
}

// expandEnvVar expands environment variables in the format ${VAR_NAME}
func expandEnvVar(value string) string {
	if value == "" {
		return value
	}

	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		// Try viper first (handles both env and config)
		if envValue := viper.GetString(envVar); envValue != "" {
			return envValue
		}
		if envValue := viper.GetString(strings.ToLower(envVar)); envValue != "" {
			return envValue
		}
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
	}

	return value
}

// Helper functions to safely extract values from map[string]interface{}
func getStringFromMap(m map[string]interface{}, key string) string {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	if val, ok := m[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

func getIntFromMap(m map[string]interface{}, key string) int {
	if val, ok := m[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
		// Handle float64 from JSON unmarshaling
		if f, ok := val.(float64); ok {
			return int(f)
		}
	}
	return 0
}
