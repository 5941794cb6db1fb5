package telegram

import (
	"context"
	"errors"
	"fmt"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/note"
	"obsidian-inbox-bot/internal/session"
	pkgTelegram "obsidian-inbox-bot/pkg/telegram"
)

func (h *handler) processCallback(ctx context.Context, cb *pkgTelegram.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		return
	}
	if !h.isAuthorized(cb.From.ID) {
		h.l.Warnf(ctx, "telegram handler: unauthorized callback from user %d", cb.From.ID)
		return
	}

	sc := model.Scope{UserID: cb.From.ID, Username: cb.From.Username, ChatID: cb.Message.Chat.ID}

	sess, ok := h.uc.Session(sc)
	if !ok {
		h.answerCallback(ctx, cb.ID, "⚠️ Сессия истекла. Отправьте заметку заново.")
		return
	}

	switch cb.Data {
	case "approve":
		h.handleApprove(ctx, sc, cb)
	case "edit_tags":
		h.handleEdit(ctx, sc, cb, sess, session.EditTags)
	case "edit_summary":
		h.handleEdit(ctx, sc, cb, sess, session.EditSummary)
	case "edit_tasks":
		h.handleEdit(ctx, sc, cb, sess, session.EditTasks)
	case "regenerate":
		h.handleRegenerate(ctx, sc, cb)
	case "save_raw":
		h.handleSaveRaw(ctx, sc, cb)
	default:
		h.answerCallback(ctx, cb.ID, "❌ Неизвестное действие")
	}
}

func (h *handler) handleApprove(ctx context.Context, sc model.Scope, cb *pkgTelegram.CallbackQuery) {
	h.answerCallback(ctx, cb.ID, "💾 Сохраняю...")

	out, err := h.uc.Approve(ctx, sc)
	if err != nil {
		h.editCallbackMessage(ctx, cb, saveErrorMessage(err))
		return
	}
	h.editCallbackMessage(ctx, cb, out.Ref.Message)
}

func (h *handler) handleSaveRaw(ctx context.Context, sc model.Scope, cb *pkgTelegram.CallbackQuery) {
	h.answerCallback(ctx, cb.ID, "💾 Сохраняю без обработки...")

	out, err := h.uc.SaveRaw(ctx, sc)
	if err != nil {
		h.editCallbackMessage(ctx, cb, saveErrorMessage(err))
		return
	}
	h.editCallbackMessage(ctx, cb, out.Ref.Message)
}

func (h *handler) handleEdit(ctx context.Context, sc model.Scope, cb *pkgTelegram.CallbackQuery, sess *session.Session, field session.EditField) {
	h.sessions.SetEditMode(sc.UserID, field)

	h.answerCallback(ctx, cb.ID, "")
	if _, err := h.bot.SendMessageWithMode(sc.ChatID, editPrompt(field, sess), "Markdown"); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to send edit prompt: %v", err)
	}
}

func (h *handler) handleRegenerate(ctx context.Context, sc model.Scope, cb *pkgTelegram.CallbackQuery) {
	h.answerCallback(ctx, cb.ID, "🔄 Обрабатываю заново...")
	h.editCallbackMessage(ctx, cb, "🤖 Обрабатываю через AI...")

	out, err := h.uc.Regenerate(ctx, sc)
	if err != nil {
		h.editCallbackMessage(ctx, cb, saveErrorMessage(err))
		return
	}

	sess, ok := h.uc.Session(sc)
	if !ok {
		return
	}

	if !out.Result.Success {
		h.editCallbackMessage(ctx, cb, failurePreviewText(sess))
		return
	}

	if err := h.bot.EditMessageText(sc.ChatID, cb.Message.MessageID, previewText(sess), "Markdown", previewKeyboard()); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to edit preview: %v", err)
	}
}

func (h *handler) answerCallback(ctx context.Context, callbackID, text string) {
	if err := h.bot.AnswerCallbackQuery(callbackID, text); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to answer callback: %v", err)
	}
}

func (h *handler) editCallbackMessage(ctx context.Context, cb *pkgTelegram.CallbackQuery, text string) {
	if err := h.bot.EditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text, "", nil); err != nil {
		h.l.Errorf(ctx, "telegram handler: failed to edit message: %v", err)
	}
}

func saveErrorMessage(err error) string {
	if errors.Is(err, note.ErrNoSession) {
		return "⚠️ Сессия истекла. Отправьте заметку заново."
	}
	return fmt.Sprintf("❌ Произошла ошибка: %v", err)
}
