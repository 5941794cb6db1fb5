package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"obsidian-inbox-bot/config"
	_ "obsidian-inbox-bot/docs" // Swagger docs
	"obsidian-inbox-bot/internal/httpserver"
	tgDelivery "obsidian-inbox-bot/internal/note/delivery/telegram"
	githubRepo "obsidian-inbox-bot/internal/note/repository/github"
	"obsidian-inbox-bot/internal/note/usecase"
	"obsidian-inbox-bot/internal/ratelimit"
	"obsidian-inbox-bot/internal/session"
	"obsidian-inbox-bot/pkg/gcalendar"
	"obsidian-inbox-bot/pkg/llmprovider"
	"obsidian-inbox-bot/pkg/log"
	"obsidian-inbox-bot/pkg/openai"
	"obsidian-inbox-bot/pkg/telegram"
)

// @title       Obsidian Inbox Bot API
// @description Telegram bot that captures notes into an Obsidian vault on GitHub, with LLM-assisted tagging, summaries and task extraction.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Obsidian Inbox Bot...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)
	logger.Infof(ctx, "Vault repository: %s (%s)", cfg.GitHub.Repo, cfg.GitHub.InboxPath)

	// 3. Telegram Bot client
	telegramBot := telegram.NewBot(cfg.Telegram.BotToken)

	// 4. Vault repository
	githubClient := githubRepo.NewClient(cfg.GitHub.Token, cfg.GitHub.Repo, cfg.GitHub.Branch)
	vaultRepo := githubRepo.New(githubClient, cfg.GitHub.InboxPath, logger)

	// 5. LLM providers and transcription (only needed for smart processing)
	var llmManager *llmprovider.Manager
	var transcriber openai.IOpenAI

	if cfg.Smart.Enabled {
		providers, provErr := llmprovider.InitializeProviders(&cfg.LLM)
		if provErr != nil {
			logger.Error(ctx, "Failed to initialize LLM providers: ", provErr)
			return
		}
		llmManager = llmprovider.NewManager(providers, &llmprovider.Config{
			FallbackEnabled: cfg.LLM.FallbackEnabled,
			RetryAttempts:   cfg.LLM.RetryAttempts,
			RetryDelay:      parseDurationOr(cfg.LLM.RetryDelay, 2*time.Second),
			MaxTotalTimeout: parseDurationOr(cfg.LLM.MaxTotalTimeout, 0),
		}, logger)

		if key := openAIKey(cfg); key != "" {
			client, clientErr := openai.New(openai.Config{APIKey: key})
			if clientErr != nil {
				logger.Warnf(ctx, "Voice transcription not available: %v", clientErr)
			} else {
				transcriber = client
			}
		} else {
			logger.Warn(ctx, "No OpenAI key configured, voice transcription disabled")
		}
	} else {
		logger.Info(ctx, "Smart processing disabled, notes are saved raw")
	}

	// 6. Google Calendar client (optional)
	var calendarClient *gcalendar.Client
	if cfg.GoogleCalendar.Enabled && cfg.GoogleCalendar.CredentialsPath != "" {
		calendarClient, err = gcalendar.NewClientFromCredentialsFile(ctx, cfg.GoogleCalendar.CredentialsPath)
		if err != nil {
			logger.Warnf(ctx, "Google Calendar not available (optional): %v", err)
			logger.Warn(ctx, "→ Run `go run scripts/gcal-auth/main.go` to generate token.json")
		} else {
			logger.Info(ctx, "✅ Google Calendar initialized")
		}
	}

	// 7. Session store and rate limits
	sessions := session.NewStore(session.DefaultTTL)
	quota := ratelimit.NewWindow(cfg.Smart.MaxRequestsPerHour, time.Hour)

	var webhookLimiter *ratelimit.SourceLimiter
	if cfg.Webhook.RateLimitPerMin > 0 {
		webhookLimiter = ratelimit.NewSourceLimiter(cfg.Webhook.RateLimitPerMin)
	}

	// 8. Note UseCase and Telegram delivery
	noteUC := usecase.New(logger, llmManager, transcriber, calendarClient, vaultRepo, sessions, quota, usecase.Config{
		SmartEnabled:  cfg.Smart.Enabled,
		Temperature:   cfg.Smart.Temperature,
		MaxTokens:     cfg.Smart.MaxTokens,
		MaxTextLength: cfg.Smart.MaxTextLength,
		CalendarID:    cfg.GoogleCalendar.CalendarID,
		Timezone:      "Local",
	})

	telegramHandler := tgDelivery.New(logger, noteUC, telegramBot, sessions, tgDelivery.Config{
		AllowedUserID: cfg.Telegram.AllowedUserID,
		WebhookSecret: cfg.Webhook.Secret,
		InboxPath:     cfg.GitHub.InboxPath,
	})

	// 9. Webhook registration
	if cfg.Telegram.WebhookURL != "" {
		if whErr := telegramBot.SetWebhook(cfg.Telegram.WebhookURL, cfg.Webhook.Secret); whErr != nil {
			logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
		} else {
			logger.Infof(ctx, "✅ Telegram webhook registered at %s", cfg.Telegram.WebhookURL)
		}
	}

	// 10. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		TelegramHandler: telegramHandler,
		WebhookLimiter:  webhookLimiter,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 11. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}

// openAIKey finds the API key for the openai provider: it powers both
// extraction fallback and Whisper transcription.
func openAIKey(cfg *config.Config) string {
	for _, p := range cfg.LLM.Providers {
		if p.Name == "openai" && p.Enabled {
			return p.APIKey
		}
	}
	return ""
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
