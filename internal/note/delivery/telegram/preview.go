package telegram

import (
	"fmt"
	"strings"

	"obsidian-inbox-bot/internal/session"
	pkgTelegram "obsidian-inbox-bot/pkg/telegram"
)

// previewContentLimit caps how much of the original text the preview shows.
const previewContentLimit = 300

// previewText renders the smart-processing preview for a session.
func previewText(sess *session.Session) string {
	result := sess.Result

	tagsStr := "нет"
	if len(result.Tags) > 0 {
		tagsStr = strings.Join(result.Tags, ", ")
	}

	tasksStr := "нет"
	if len(result.ActionItems) > 0 {
		lines := make([]string, 0, len(result.ActionItems))
		for _, item := range result.ActionItems {
			lines = append(lines, item.Markdown())
		}
		tasksStr = strings.Join(lines, "\n")
	}

	voiceInfo := ""
	if sess.IsVoice {
		voiceInfo = fmt.Sprintf(" 🎤 (Длительность: %dс, Язык: %s)", sess.VoiceDuration, sess.VoiceLanguage)
	}

	content := sess.OriginalText
	if runes := []rune(content); len(runes) > previewContentLimit {
		content = string(runes[:previewContentLimit]) + "..."
	}

	return fmt.Sprintf(`🤖 **Smart Processing завершена!**%s

📝 **Summary:** %s
🏷️ **Tags:** %s
✅ **Задачи:** %d

--- **Превью заметки** ---
**Summary:** %s

### Содержание
%s

### Задачи
%s
---

Выберите действие:`,
		voiceInfo,
		result.Summary,
		tagsStr,
		len(result.ActionItems),
		result.Summary,
		content,
		tasksStr,
	)
}

// failurePreviewText renders the preview for a failed extraction; only
// saving raw or retrying makes sense then.
func failurePreviewText(sess *session.Session) string {
	return fmt.Sprintf(
		"❌ Ошибка при обработке: %s\n\nПопробуйте еще раз или сохраните без обработки.",
		sess.Result.Error,
	)
}

// previewKeyboard builds the six-button decision keyboard.
func previewKeyboard() *pkgTelegram.InlineKeyboardMarkup {
	return &pkgTelegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]pkgTelegram.InlineKeyboardButton{
			{
				{Text: "✅ Сохранить", CallbackData: "approve"},
				{Text: "✏️ Теги", CallbackData: "edit_tags"},
			},
			{
				{Text: "✏️ Резюме", CallbackData: "edit_summary"},
				{Text: "✏️ Задачи", CallbackData: "edit_tasks"},
			},
			{
				{Text: "🔄 Заново", CallbackData: "regenerate"},
				{Text: "❌ Как есть", CallbackData: "save_raw"},
			},
		},
	}
}

// editPrompt builds the instruction message shown when the user taps one of
// the edit buttons.
func editPrompt(field session.EditField, sess *session.Session) string {
	switch field {
	case session.EditTags:
		return fmt.Sprintf(
			"✏️ **Редактирование тегов**\n\n"+
				"Текущие теги: `%s`\n\n"+
				"Отправьте новые теги через запятую (английский, lowercase):\n"+
				"Пример: `project, idea, urgent`",
			strings.Join(sess.Result.Tags, ", "))
	case session.EditSummary:
		return fmt.Sprintf(
			"✏️ **Редактирование резюме**\n\n"+
				"Текущее резюме: `%s`\n\n"+
				"Отправьте новое резюме (макс 200 символов):",
			sess.Result.Summary)
	case session.EditTasks:
		current := "нет"
		if len(sess.Result.ActionItems) > 0 {
			lines := make([]string, 0, len(sess.Result.ActionItems))
			for _, item := range sess.Result.ActionItems {
				lines = append(lines, item.Text)
			}
			current = strings.Join(lines, "\n")
		}
		return fmt.Sprintf(
			"✏️ **Редактирование задач**\n\n"+
				"Текущие задачи:\n%s\n\n"+
				"Отправьте новые задачи (по одной на строку):\n"+
				"Пример:\n`Купить молоко\nПозвонить маме\nОтправить отчет`",
			current)
	}
	return ""
}
