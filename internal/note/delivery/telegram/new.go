package telegram

import (
	"github.com/gin-gonic/gin"

	"obsidian-inbox-bot/internal/note"
	"obsidian-inbox-bot/internal/session"
	pkgLog "obsidian-inbox-bot/pkg/log"
	pkgTelegram "obsidian-inbox-bot/pkg/telegram"
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// Config carries the delivery-layer settings.
type Config struct {
	AllowedUserID int64  // single-user bot; everyone else is ignored
	WebhookSecret string // X-Telegram-Bot-Api-Secret-Token value, empty disables the check
	InboxPath     string // shown in /help
}

// New creates a new Telegram delivery handler.
func New(
	l pkgLog.Logger,
	uc note.UseCase,
	bot *pkgTelegram.Bot,
	sessions *session.Store,
	cfg Config,
) Handler {
	return &handler{
		l:        l,
		uc:       uc,
		bot:      bot,
		sessions: sessions,
		cfg:      cfg,
	}
}
