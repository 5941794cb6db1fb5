package httpserver

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	tgDelivery "obsidian-inbox-bot/internal/note/delivery/telegram"
	"obsidian-inbox-bot/internal/ratelimit"
	"obsidian-inbox-bot/pkg/log"
)

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string
	startedAt   time.Time

	telegramHandler tgDelivery.Handler
	webhookLimiter  *ratelimit.SourceLimiter
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string

	TelegramHandler tgDelivery.Handler

	// WebhookLimiter throttles the webhook endpoint per source; nil
	// disables throttling.
	WebhookLimiter *ratelimit.SourceLimiter
}

// New creates a new HTTPServer instance.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:               logger,
		gin:             gin.New(),
		port:            cfg.Port,
		mode:            cfg.Mode,
		environment:     cfg.Environment,
		startedAt:       time.Now(),
		telegramHandler: cfg.TelegramHandler,
		webhookLimiter:  cfg.WebhookLimiter,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv *HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	return nil
}
