package usecase

import (
	"context"
	"strings"
	"time"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/note"
	"obsidian-inbox-bot/internal/note/repository"
	"obsidian-inbox-bot/internal/session"
	"obsidian-inbox-bot/pkg/extraction"
	"obsidian-inbox-bot/pkg/gcalendar"
)

func (uc *implUseCase) Approve(ctx context.Context, sc model.Scope) (note.SaveOutput, error) {
	sess, ok := uc.sessions.Get(sc.UserID)
	if !ok {
		return note.SaveOutput{}, note.ErrNoSession
	}

	opt := repository.SaveNoteOptions{
		Text:          sess.OriginalText,
		IsVoice:       sess.IsVoice,
		VoiceDuration: sess.VoiceDuration,
		VoiceLanguage: sess.VoiceLanguage,
		Now:           uc.now(),
	}
	if sess.Result.Success {
		opt.Processed = true
		opt.Result = &sess.Result
	}

	ref, err := uc.repo.SaveNote(ctx, opt)
	if err != nil {
		uc.l.Errorf(ctx, "Approve: failed to save note for user %d: %v", sc.UserID, err)
		return note.SaveOutput{}, err
	}

	if sess.Result.Success {
		uc.syncCalendar(ctx, sess.Result.ActionItems)
	}

	uc.sessions.Delete(sc.UserID)
	return note.SaveOutput{Ref: ref}, nil
}

func (uc *implUseCase) SaveRaw(ctx context.Context, sc model.Scope) (note.SaveOutput, error) {
	sess, ok := uc.sessions.Get(sc.UserID)
	if !ok {
		return note.SaveOutput{}, note.ErrNoSession
	}

	ref, err := uc.repo.SaveNote(ctx, repository.SaveNoteOptions{
		Text:          sess.OriginalText,
		IsVoice:       sess.IsVoice,
		VoiceDuration: sess.VoiceDuration,
		VoiceLanguage: sess.VoiceLanguage,
		Now:           uc.now(),
	})
	if err != nil {
		uc.l.Errorf(ctx, "SaveRaw: failed to save note for user %d: %v", sc.UserID, err)
		return note.SaveOutput{}, err
	}

	uc.sessions.Delete(sc.UserID)
	return note.SaveOutput{Ref: ref}, nil
}

func (uc *implUseCase) Regenerate(ctx context.Context, sc model.Scope) (note.IngestOutput, error) {
	sess, ok := uc.sessions.Get(sc.UserID)
	if !ok {
		return note.IngestOutput{}, note.ErrNoSession
	}

	language := sess.VoiceLanguage
	if language == "" {
		language = "ru"
	}

	var result extraction.Result
	if !uc.quota.Allow(sc.UserID) {
		uc.l.Warnf(ctx, "Regenerate: processing quota exceeded for user %d", sc.UserID)
		result = extraction.Failure("Превышен лимит обработки запросов, попробуйте позже")
	} else {
		result = uc.process(ctx, sess.OriginalText, language)
	}

	sess.Result = result
	sess.Edited = false
	uc.sessions.Put(sess)

	return note.IngestOutput{
		SessionID: sess.ID,
		Result:    result,
		Text:      sess.OriginalText,
		IsVoice:   sess.IsVoice,
	}, nil
}

func (uc *implUseCase) ApplyEdit(ctx context.Context, sc model.Scope, field session.EditField, text string) (note.IngestOutput, error) {
	sess, ok := uc.sessions.Get(sc.UserID)
	if !ok {
		return note.IngestOutput{}, note.ErrNoSession
	}

	switch field {
	case session.EditTags:
		sess.Result.Tags = parseTagsInput(text)
	case session.EditSummary:
		sess.Result.Summary = truncateRunes(strings.TrimSpace(text), extraction.MaxSummaryLength)
	case session.EditTasks:
		sess.Result.ActionItems = parseTasksInput(text, sess.Result.ActionItems)
	}

	sess.Edited = true
	uc.sessions.Put(sess)
	uc.sessions.ClearEditMode(sc.UserID)

	return note.IngestOutput{
		SessionID: sess.ID,
		Result:    sess.Result,
		Text:      sess.OriginalText,
		IsVoice:   sess.IsVoice,
	}, nil
}

func (uc *implUseCase) Session(sc model.Scope) (*session.Session, bool) {
	return uc.sessions.Get(sc.UserID)
}

// syncCalendar pushes action items carrying both a date and a time to
// Google Calendar. Failures are logged and never block the save.
func (uc *implUseCase) syncCalendar(ctx context.Context, items []extraction.ActionItem) {
	if uc.calendar == nil {
		return
	}

	loc, err := time.LoadLocation(uc.timezone)
	if err != nil {
		loc = time.Local
	}
	reference := uc.now().In(loc)

	for _, item := range items {
		if item.Date == "" || item.Time == "" {
			continue
		}

		start, ok := resolveEventStart(item.Date, item.Time, reference, loc)
		if !ok {
			continue
		}

		_, err := uc.calendar.CreateEvent(ctx, gcalendar.CreateEventRequest{
			CalendarID: uc.calendarID,
			Summary:    item.Text,
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Timezone:   uc.timezone,
		})
		if err != nil {
			uc.l.Warnf(ctx, "syncCalendar: event creation failed for %q (non-fatal): %v", item.Text, err)
		}
	}
}

// resolveEventStart combines an item date (ISO or the today/tomorrow display
// token) and an HH:MM time into a concrete timestamp.
func resolveEventStart(date, clock string, reference time.Time, loc *time.Location) (time.Time, bool) {
	var day time.Time
	switch date {
	case "today":
		day = reference
	case "tomorrow":
		day = reference.AddDate(0, 0, 1)
	default:
		parsed, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return time.Time{}, false
		}
		day = parsed
	}

	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}
