package usecase

import (
	"context"
	"errors"
	"testing"

	"obsidian-inbox-bot/internal/note"
	"obsidian-inbox-bot/internal/session"
	"obsidian-inbox-bot/pkg/extraction"
)

func ingestNote(t *testing.T, uc *implUseCase, text string) {
	t.Helper()
	if _, err := uc.Ingest(context.Background(), testScope, note.IngestInput{Text: text}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
}

func TestApproveSavesProcessedAndClosesSession(t *testing.T) {
	provider := &mockProvider{text: `{"summary":"Созвон","tags":["meeting"],"action_items":[{"text":"созвон с командой"}]}`}
	repo := &mockVaultRepo{}
	uc := newTestUseCase(provider, repo)
	ingestNote(t, uc, "созвон с командой завтра")

	out, err := uc.Approve(context.Background(), testScope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Ref.Filename != "2026-02-17.md" {
		t.Errorf("unexpected ref: %+v", out.Ref)
	}
	if repo.lastSave == nil || !repo.lastSave.Processed {
		t.Error("approve must save with processing metadata")
	}
	if repo.lastSave.Result == nil || repo.lastSave.Result.Summary != "Созвон" {
		t.Error("approve must carry the session result")
	}
	if _, ok := uc.Session(testScope); ok {
		t.Error("session must close after approval")
	}
}

func TestApproveFailedResultSavesRaw(t *testing.T) {
	provider := &mockProvider{err: errors.New("unavailable")}
	repo := &mockVaultRepo{}
	uc := newTestUseCase(provider, repo)
	ingestNote(t, uc, "заметка")

	_, err := uc.Approve(context.Background(), testScope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastSave.Processed {
		t.Error("a failed extraction must fall back to an unprocessed save")
	}
}

func TestSaveRawIgnoresResult(t *testing.T) {
	provider := &mockProvider{text: `{"summary":"s","tags":["t"],"action_items":[]}`}
	repo := &mockVaultRepo{}
	uc := newTestUseCase(provider, repo)
	ingestNote(t, uc, "заметка")

	if _, err := uc.SaveRaw(context.Background(), testScope); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastSave.Processed || repo.lastSave.Result != nil {
		t.Error("raw save must not carry processing metadata")
	}
	if _, ok := uc.Session(testScope); ok {
		t.Error("session must close after raw save")
	}
}

func TestSaveOperationsRequireSession(t *testing.T) {
	uc := newTestUseCase(&mockProvider{}, &mockVaultRepo{})

	if _, err := uc.Approve(context.Background(), testScope); !errors.Is(err, note.ErrNoSession) {
		t.Errorf("Approve: expected ErrNoSession, got %v", err)
	}
	if _, err := uc.SaveRaw(context.Background(), testScope); !errors.Is(err, note.ErrNoSession) {
		t.Errorf("SaveRaw: expected ErrNoSession, got %v", err)
	}
	if _, err := uc.Regenerate(context.Background(), testScope); !errors.Is(err, note.ErrNoSession) {
		t.Errorf("Regenerate: expected ErrNoSession, got %v", err)
	}
	if _, err := uc.ApplyEdit(context.Background(), testScope, session.EditTags, "x"); !errors.Is(err, note.ErrNoSession) {
		t.Errorf("ApplyEdit: expected ErrNoSession, got %v", err)
	}
}

func TestRegenerateRerunsPipeline(t *testing.T) {
	provider := &mockProvider{text: `{"summary":"Первая","tags":["a"],"action_items":[]}`}
	uc := newTestUseCase(provider, &mockVaultRepo{})
	ingestNote(t, uc, "заметка")

	provider.text = `{"summary":"Вторая","tags":["b"],"action_items":[]}`
	out, err := uc.Regenerate(context.Background(), testScope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Result.Summary != "Вторая" {
		t.Errorf("expected regenerated summary, got %q", out.Result.Summary)
	}

	sess, _ := uc.Session(testScope)
	if sess.Result.Summary != "Вторая" {
		t.Error("session must hold the regenerated result")
	}
	if sess.Edited {
		t.Error("regeneration resets the edited flag")
	}
}

func TestApplyEditTags(t *testing.T) {
	provider := &mockProvider{text: `{"summary":"s","tags":["old"],"action_items":[]}`}
	uc := newTestUseCase(provider, &mockVaultRepo{})
	ingestNote(t, uc, "заметка")

	out, err := uc.ApplyEdit(context.Background(), testScope, session.EditTags, "Project Idea, MEETING, health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"project-idea", "meeting", "health"}
	if len(out.Result.Tags) != len(want) {
		t.Fatalf("unexpected tags: %v", out.Result.Tags)
	}
	for i, tag := range want {
		if out.Result.Tags[i] != tag {
			t.Errorf("tag %d: expected %q, got %q", i, tag, out.Result.Tags[i])
		}
	}

	sess, _ := uc.Session(testScope)
	if !sess.Edited {
		t.Error("edit must mark the session edited")
	}
}

func TestApplyEditSummaryTruncates(t *testing.T) {
	provider := &mockProvider{text: `{"summary":"s","tags":[],"action_items":[]}`}
	uc := newTestUseCase(provider, &mockVaultRepo{})
	ingestNote(t, uc, "заметка")

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'б'
	}
	out, err := uc.ApplyEdit(context.Background(), testScope, session.EditSummary, string(long))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len([]rune(out.Result.Summary)); got != extraction.MaxSummaryLength {
		t.Errorf("expected summary truncated to %d runes, got %d", extraction.MaxSummaryLength, got)
	}
}

func TestApplyEditTasksPreservesMetadataByPosition(t *testing.T) {
	provider := &mockProvider{text: `{"summary":"s","tags":[],"action_items":[{"text":"старая задача","date":"2026-02-20","time":"10:00","priority":"high","tags":["work"]}]}`}
	uc := newTestUseCase(provider, &mockVaultRepo{})
	ingestNote(t, uc, "заметка")

	out, err := uc.ApplyEdit(context.Background(), testScope, session.EditTasks, "новая формулировка\nвторая задача")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Result.ActionItems) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out.Result.ActionItems))
	}

	first := out.Result.ActionItems[0]
	if first.Text != "новая формулировка" {
		t.Errorf("unexpected text: %q", first.Text)
	}
	if first.Date != "2026-02-20" || first.Time != "10:00" || first.Priority != "high" {
		t.Errorf("metadata from the previous item must be preserved: %+v", first)
	}
	if len(first.Tags) != 1 || first.Tags[0] != "work" {
		t.Errorf("item tags must be preserved: %v", first.Tags)
	}

	second := out.Result.ActionItems[1]
	if second.Date != "" || second.Priority != "" {
		t.Errorf("items without a predecessor start clean: %+v", second)
	}
}
