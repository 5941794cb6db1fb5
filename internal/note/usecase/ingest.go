package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/note"
	"obsidian-inbox-bot/internal/note/repository"
	"obsidian-inbox-bot/pkg/extraction"
	"obsidian-inbox-bot/pkg/llmprovider"
)

func (uc *implUseCase) Ingest(ctx context.Context, sc model.Scope, input note.IngestInput) (note.IngestOutput, error) {
	text := input.Text
	isVoice := len(input.VoiceData) > 0

	if isVoice {
		if uc.transcriber == nil {
			return note.IngestOutput{}, note.ErrTranscribe
		}
		transcribed, err := uc.transcriber.Transcribe(ctx, input.VoiceFilename, input.VoiceData)
		if err != nil {
			uc.l.Errorf(ctx, "Ingest: transcription failed for user %d: %v", sc.UserID, err)
			return note.IngestOutput{}, fmt.Errorf("%w: %v", note.ErrTranscribe, err)
		}
		text = transcribed
	}

	if strings.TrimSpace(text) == "" {
		return note.IngestOutput{}, note.ErrEmptyInput
	}
	if len([]rune(text)) > uc.maxTextLength {
		return note.IngestOutput{}, note.ErrTextTooLong
	}

	language := input.VoiceLanguage
	if language == "" {
		language = "ru"
	}

	if !uc.smartEnabled {
		ref, err := uc.repo.SaveNote(ctx, repository.SaveNoteOptions{
			Text:          text,
			IsVoice:       isVoice,
			VoiceDuration: input.VoiceDuration,
			VoiceLanguage: language,
			Now:           uc.now(),
		})
		if err != nil {
			return note.IngestOutput{}, err
		}
		return note.IngestOutput{Text: text, IsVoice: isVoice, Saved: &ref}, nil
	}

	var result extraction.Result
	if !uc.quota.Allow(sc.UserID) {
		uc.l.Warnf(ctx, "Ingest: processing quota exceeded for user %d", sc.UserID)
		result = extraction.Failure("Превышен лимит обработки запросов, попробуйте позже")
	} else {
		result = uc.process(ctx, text, language)
	}

	sess := uc.sessions.Start(sc.UserID, sc.ChatID, text)
	sess.MessageID = input.MessageID
	sess.Result = result
	sess.IsVoice = isVoice
	sess.VoiceDuration = input.VoiceDuration
	sess.VoiceLanguage = language
	uc.sessions.Put(sess)

	return note.IngestOutput{
		SessionID: sess.ID,
		Result:    result,
		Text:      text,
		IsVoice:   isVoice,
	}, nil
}

// process runs one extraction round: model call, payload sanitation,
// reconciliation with the rule-based parser. Failures never propagate as
// errors; the caller always gets a Result it can fall back on.
func (uc *implUseCase) process(ctx context.Context, text, language string) extraction.Result {
	resp, err := uc.llm.GenerateContent(ctx, &llmprovider.Request{
		System:      systemPrompt,
		User:        buildUserPrompt(text, language),
		Temperature: uc.temperature,
		MaxTokens:   uc.maxTokens,
		JSONMode:    true,
	})
	if err != nil {
		uc.l.Errorf(ctx, "process: extraction request failed: %v", err)
		return extraction.Failure(fmt.Sprintf("Ошибка обработки: %v", err))
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(sanitizeJSONResponse(resp.Text)), &payload); err != nil {
		uc.l.Errorf(ctx, "process: failed to parse model response %q: %v", resp.Text, err)
		return extraction.Failure("LLM вернул некорректные данные")
	}

	result, ok := extraction.Sanitize(payload)
	if !ok {
		uc.l.Errorf(ctx, "process: model response failed validation: %q", resp.Text)
		return extraction.Failure("LLM вернул некорректные данные")
	}

	uc.reconcile(&result, text)
	result.ModelUsed = resp.ModelName

	uc.l.Infof(ctx, "process: extraction succeeded via %s (%s), %d action items",
		resp.ProviderName, resp.ModelName, len(result.ActionItems))
	return result
}
