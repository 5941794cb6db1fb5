package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/note/repository"
	"obsidian-inbox-bot/pkg/extraction"
	pkgLog "obsidian-inbox-bot/pkg/log"
)

type implRepository struct {
	client    *Client
	inboxPath string // vault folder for daily notes, e.g. "00_Inbox"
	l         pkgLog.Logger
}

// New creates a GitHub-backed vault repository.
func New(client *Client, inboxPath string, l pkgLog.Logger) repository.VaultRepository {
	return &implRepository{
		client:    client,
		inboxPath: inboxPath,
		l:         l,
	}
}

func (r *implRepository) SaveNote(ctx context.Context, opt repository.SaveNoteOptions) (model.NoteRef, error) {
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}

	filename := now.Format("2006-01-02") + ".md"
	filePath := fmt.Sprintf("%s/%s", r.inboxPath, filename)
	timeFormatted := now.Format("15:04")

	entry := r.buildEntry(timeFormatted, opt)

	existing, err := r.client.GetFile(ctx, filePath)
	switch {
	case err == nil:
		commitMsg := fmt.Sprintf("Add note to %s at %s", filename, timeFormatted)
		if opt.IsVoice {
			commitMsg = fmt.Sprintf("Add voice note to %s at %s", filename, timeFormatted)
		}
		if err := r.client.UpdateFile(ctx, filePath, commitMsg, existing.Content+entry, existing.SHA); err != nil {
			r.l.Errorf(ctx, "vault repository: failed to update %s: %v", filePath, err)
			return model.NoteRef{}, err
		}
		msg := fmt.Sprintf("✅ Added to %s", filename)
		if opt.IsVoice {
			msg = fmt.Sprintf("✅ Added voice note to %s", filename)
		}
		return model.NoteRef{Path: filePath, Filename: filename, Created: false, Message: msg}, nil

	case errors.Is(err, ErrNotFound):
		content := r.buildDailyNote(now, entry, opt)
		commitMsg := fmt.Sprintf("Create daily note: %s", filename)
		if err := r.client.CreateFile(ctx, filePath, commitMsg, content); err != nil {
			r.l.Errorf(ctx, "vault repository: failed to create %s: %v", filePath, err)
			return model.NoteRef{}, err
		}
		msg := fmt.Sprintf("✅ Created %s", filename)
		if opt.IsVoice {
			msg = fmt.Sprintf("✅ Created %s with voice note", filename)
		}
		return model.NoteRef{Path: filePath, Filename: filename, Created: true, Message: msg}, nil

	default:
		r.l.Errorf(ctx, "vault repository: failed to fetch %s: %v", filePath, err)
		return model.NoteRef{}, err
	}
}

// buildEntry renders one note entry, leading newline included so it can be
// appended directly to an existing daily file.
func (r *implRepository) buildEntry(timeFormatted string, opt repository.SaveNoteOptions) string {
	if opt.Processed && opt.Result != nil {
		return r.buildProcessedEntry(timeFormatted, opt)
	}
	if opt.IsVoice {
		return fmt.Sprintf("\n## %s 🎤\n\n%s\n\n---\n*Источник: Telegram Voice Message • Длительность: %dс • Язык: %s*\n",
			timeFormatted, opt.Text, opt.VoiceDuration, opt.VoiceLanguage)
	}
	return fmt.Sprintf("\n## %s\n\n%s\n", timeFormatted, opt.Text)
}

func (r *implRepository) buildProcessedEntry(timeFormatted string, opt repository.SaveNoteOptions) string {
	res := opt.Result

	header := fmt.Sprintf("## %s", timeFormatted)
	if opt.IsVoice {
		header = fmt.Sprintf("## %s 🎤", timeFormatted)
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(header)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("**Summary:** %s", res.Summary))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("### Содержание\n\n%s", opt.Text))

	if len(res.ActionItems) > 0 {
		lines := make([]string, 0, len(res.ActionItems))
		for _, item := range res.ActionItems {
			lines = append(lines, item.Markdown())
		}
		sb.WriteString(fmt.Sprintf("\n### Задачи\n\n%s", strings.Join(lines, "\n")))
	}

	if opt.IsVoice {
		sb.WriteString(fmt.Sprintf("\n---\n*Источник: Telegram Voice Message • Длительность: %dс • Язык: %s | Обработано: Smart Processing v%s (%s)*\n",
			opt.VoiceDuration, opt.VoiceLanguage, extraction.ProcessingVersion, res.ModelUsed))
	} else {
		sb.WriteString(fmt.Sprintf("\n---\n*Источник: Telegram | Обработано: Smart Processing v%s (%s)*\n",
			extraction.ProcessingVersion, res.ModelUsed))
	}

	return sb.String()
}

// buildDailyNote produces the full file content for a new daily note:
// frontmatter, title, first entry.
func (r *implRepository) buildDailyNote(now time.Time, entry string, opt repository.SaveNoteOptions) string {
	dateFormatted := now.Format("2006-01-02")
	dateDisplay := now.Format("02.01.2006")

	var frontmatter string
	if opt.Processed && opt.Result != nil {
		res := opt.Result
		tags := []string{"inbox", "telegram"}
		if opt.IsVoice {
			tags = append(tags, "voice")
		}
		tags = append(tags, res.Tags...)

		datesLine := ""
		if len(res.DatesMentioned) > 0 {
			datesLine = fmt.Sprintf("\ndates_mentioned: [%s]", strings.Join(res.DatesMentioned, ", "))
		}

		frontmatter = fmt.Sprintf(`---
date: %s
tags: [%s]
processed: true
processing_model: %s
processing_version: %s%s
---`, dateFormatted, strings.Join(tags, ", "), res.ModelUsed, extraction.ProcessingVersion, datesLine)
	} else {
		tags := "inbox, telegram, unprocessed"
		if opt.IsVoice {
			tags = "inbox, telegram, voice, unprocessed"
		}
		frontmatter = fmt.Sprintf(`---
date: %s
tags: [%s]
processed: false
---`, dateFormatted, tags)
	}

	noteContent := strings.TrimLeft(entry, "\n")
	return fmt.Sprintf("%s\n\n# Заметки за %s\n\n%s", frontmatter, dateDisplay, noteContent)
}
