package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/note"
	"obsidian-inbox-bot/internal/session"
	pkgLog "obsidian-inbox-bot/pkg/log"
	pkgResponse "obsidian-inbox-bot/pkg/response"
	pkgTelegram "obsidian-inbox-bot/pkg/telegram"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type handler struct {
	l        pkgLog.Logger
	uc       note.UseCase
	bot      *pkgTelegram.Bot
	sessions *session.Store
	cfg      Config
}

// HandleWebhook is the Gin handler for incoming Telegram webhook updates.
// It responds with HTTP 200 immediately and processes the update in a
// background goroutine: the pipeline (transcription + LLM + GitHub) can take
// longer than Telegram's webhook timeout.
func (h *handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cfg.WebhookSecret != "" && c.GetHeader(secretTokenHeader) != h.cfg.WebhookSecret {
		h.l.Warnf(ctx, "telegram handler: webhook secret token mismatch from %s", c.ClientIP())
		pkgResponse.Unauthorized(c)
		return
	}

	var update pkgTelegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to parse update: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	if update.Message == nil && update.CallbackQuery == nil {
		pkgResponse.OK(c, map[string]string{"status": "ignored"})
		return
	}

	go func() {
		// Detach from the HTTP request context, which is cancelled after
		// the response is written.
		bgCtx := context.Background()
		h.processUpdate(bgCtx, &update)
	}()

	pkgResponse.OK(c, map[string]string{"status": "accepted"})
}

func (h *handler) processUpdate(ctx context.Context, update *pkgTelegram.Update) {
	if update.CallbackQuery != nil {
		h.processCallback(ctx, update.CallbackQuery)
		return
	}
	h.processMessage(ctx, update.Message)
}

func (h *handler) processMessage(ctx context.Context, msg *pkgTelegram.Message) {
	if msg.From == nil {
		return
	}
	if !h.isAuthorized(msg.From.ID) {
		h.l.Warnf(ctx, "telegram handler: unauthorized message from user %d (@%s)", msg.From.ID, msg.From.Username)
		return
	}

	switch msg.Text {
	case "/start":
		h.reply(ctx, msg.Chat.ID,
			"👋 Привет! Я бот для сохранения заметок в Obsidian.\n\n"+
				"Просто отправь мне текстовое или голосовое сообщение, и я сохраню его в твой Obsidian Vault через GitHub.\n\n"+
				"Команды:\n"+
				"/start - это сообщение\n"+
				"/help - помощь")
		return
	case "/help":
		h.reply(ctx, msg.Chat.ID,
			"📝 Как использовать бота:\n\n"+
				"1. Отправь мне текстовое или голосовое сообщение\n"+
				"2. Я обработаю его и покажу превью с тегами, резюме и задачами\n"+
				"3. Подтверди сохранение или отредактируй поля кнопками\n"+
				"4. Заметка попадет в дневной файл YYYY-MM-DD.md\n\n"+
				fmt.Sprintf("📁 Путь сохранения: %s/\n", h.cfg.InboxPath)+
				"🏷️ Теги: [inbox, telegram]")
		return
	}

	sc := model.Scope{UserID: msg.From.ID, Username: msg.From.Username, ChatID: msg.Chat.ID}

	// A pending edit mode turns this message into a field edit reply.
	if field, ok := h.sessions.EditMode(sc.UserID); ok {
		h.processEditReply(ctx, sc, field, msg)
		return
	}

	input := note.IngestInput{Text: msg.Text, MessageID: msg.MessageID}

	if msg.Voice != nil {
		data, err := h.downloadVoice(ctx, msg.Voice)
		if err != nil {
			h.l.Errorf(ctx, "telegram handler: voice download failed: %v", err)
			h.reply(ctx, msg.Chat.ID, "❌ Не удалось загрузить голосовое сообщение")
			return
		}
		input.VoiceData = data
		input.VoiceFilename = "voice.oga"
		input.VoiceDuration = msg.Voice.Duration
		input.VoiceLanguage = "ru"
	} else if msg.Text == "" {
		h.reply(ctx, msg.Chat.ID, "❌ Поддерживаются только текстовые и голосовые сообщения")
		return
	}

	out, err := h.uc.Ingest(ctx, sc, input)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, ingestErrorMessage(err))
		return
	}

	// Without smart processing the note is already committed.
	if out.Saved != nil {
		h.reply(ctx, msg.Chat.ID, out.Saved.Message)
		return
	}

	h.sendPreview(ctx, sc)
}

// processEditReply applies the user's typed value to the field they chose
// and re-sends the preview.
func (h *handler) processEditReply(ctx context.Context, sc model.Scope, field session.EditField, msg *pkgTelegram.Message) {
	_, err := h.uc.ApplyEdit(ctx, sc, field, msg.Text)
	if errors.Is(err, note.ErrNoSession) {
		h.sessions.ClearEditMode(sc.UserID)
		h.reply(ctx, msg.Chat.ID, "⚠️ Сессия истекла")
		return
	}
	if err != nil {
		h.l.Errorf(ctx, "telegram handler: ApplyEdit failed: %v", err)
		h.reply(ctx, msg.Chat.ID, "❌ Не удалось применить изменения")
		return
	}

	sess, ok := h.uc.Session(sc)
	if !ok {
		h.reply(ctx, msg.Chat.ID, "⚠️ Сессия истекла")
		return
	}

	text := "✅ Обновлено!\n\n" + previewText(sess)
	if _, err := h.bot.SendMessageWithKeyboard(sc.ChatID, text, "Markdown", previewKeyboard()); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to send updated preview: %v", err)
	}
}

func (h *handler) sendPreview(ctx context.Context, sc model.Scope) {
	sess, ok := h.uc.Session(sc)
	if !ok {
		return
	}

	text := previewText(sess)
	if !sess.Result.Success {
		text = failurePreviewText(sess)
	}
	sent, err := h.bot.SendMessageWithKeyboard(sc.ChatID, text, "Markdown", previewKeyboard())
	if err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to send preview: %v", err)
		return
	}

	// Remember the preview message so callbacks can edit it in place.
	sess.MessageID = sent.MessageID
	h.sessions.Put(sess)
}

func (h *handler) downloadVoice(ctx context.Context, voice *pkgTelegram.Voice) ([]byte, error) {
	file, err := h.bot.GetFile(voice.FileID)
	if err != nil {
		return nil, err
	}
	return h.bot.DownloadFile(file.FilePath)
}

func (h *handler) isAuthorized(userID int64) bool {
	return userID == h.cfg.AllowedUserID
}

func (h *handler) reply(ctx context.Context, chatID int64, text string) {
	if _, err := h.bot.SendMessage(chatID, text); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to send message: %v", err)
	}
}

// ingestErrorMessage maps domain errors to the user-facing text.
func ingestErrorMessage(err error) string {
	switch {
	case errors.Is(err, note.ErrEmptyInput):
		return "❌ Пустой текст"
	case errors.Is(err, note.ErrTextTooLong):
		return "❌ Текст слишком длинный для обработки"
	case errors.Is(err, note.ErrTranscribe):
		return "❌ Не удалось распознать голосовое сообщение"
	default:
		return fmt.Sprintf("❌ Произошла ошибка: %v", err)
	}
}
