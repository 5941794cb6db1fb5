package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"obsidian-inbox-bot/internal/note/repository"
	"obsidian-inbox-bot/internal/note/repository/github"
	"obsidian-inbox-bot/pkg/extraction"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Info(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Error(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Fatal(ctx context.Context, args ...any)                 {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...any) {}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha"`
}

func decodePut(t *testing.T, r *http.Request) putRequest {
	t.Helper()
	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("failed to decode PUT body: %v", err)
	}
	return req
}

func TestSaveNoteCreatesDailyFile(t *testing.T) {
	now := time.Date(2026, 2, 17, 14, 30, 0, 0, time.UTC)
	path := "/repos/owner/vault/contents/00_Inbox/2026-02-17.md"

	var created putRequest
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = decodePut(t, r)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{}`))
		}
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := github.NewClient("test-token", "owner/vault", "main")
	client.SetBaseURL(ts.URL)
	repo := github.New(client, "00_Inbox", &mockLogger{})

	ref, err := repo.SaveNote(context.Background(), repository.SaveNoteOptions{
		Text:      "Позвонить маме",
		Processed: true,
		Result: &extraction.Result{
			Summary:        "Звонок маме",
			Tags:           []string{"семья"},
			ActionItems:    []extraction.ActionItem{{Text: "позвонить маме", Date: "2026-02-18", Priority: "high"}},
			DatesMentioned: []string{"2026-02-18"},
			Success:        true,
			ModelUsed:      "gpt-4o-mini",
		},
		Now: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ref.Created {
		t.Error("expected Created=true for a new daily file")
	}
	if ref.Filename != "2026-02-17.md" {
		t.Errorf("unexpected filename: %s", ref.Filename)
	}
	if ref.Message != "✅ Created 2026-02-17.md" {
		t.Errorf("unexpected message: %s", ref.Message)
	}
	if created.Message != "Create daily note: 2026-02-17.md" {
		t.Errorf("unexpected commit message: %s", created.Message)
	}

	raw, err := base64.StdEncoding.DecodeString(created.Content)
	if err != nil {
		t.Fatalf("content is not valid base64: %v", err)
	}
	content := string(raw)

	for _, want := range []string{
		"date: 2026-02-17",
		"tags: [inbox, telegram, семья]",
		"processed: true",
		"processing_model: gpt-4o-mini",
		"dates_mentioned: [2026-02-18]",
		"# Заметки за 17.02.2026",
		"## 14:30",
		"**Summary:** Звонок маме",
		"### Содержание",
		"Позвонить маме",
		"### Задачи",
		"- [ ] позвонить маме 📅 2026-02-18 ⏫",
		"*Источник: Telegram | Обработано: Smart Processing v1.0 (gpt-4o-mini)*",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("daily note missing %q\ncontent:\n%s", want, content)
		}
	}
}

func TestSaveNoteAppendsToExistingFile(t *testing.T) {
	now := time.Date(2026, 2, 17, 9, 5, 0, 0, time.UTC)
	path := "/repos/owner/vault/contents/00_Inbox/2026-02-17.md"
	existing := "---\ndate: 2026-02-17\ntags: [inbox, telegram]\nprocessed: false\n---\n\n# Заметки за 17.02.2026\n\n## 08:00\n\nстарая заметка\n"

	var updated putRequest
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]string{
				"content":  base64.StdEncoding.EncodeToString([]byte(existing)),
				"encoding": "base64",
				"sha":      "abc123",
			})
		case http.MethodPut:
			updated = decodePut(t, r)
			w.Write([]byte(`{}`))
		}
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := github.NewClient("test-token", "owner/vault", "main")
	client.SetBaseURL(ts.URL)
	repo := github.New(client, "00_Inbox", &mockLogger{})

	ref, err := repo.SaveNote(context.Background(), repository.SaveNoteOptions{
		Text: "Новая заметка",
		Now:  now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ref.Created {
		t.Error("expected Created=false when appending")
	}
	if ref.Message != "✅ Added to 2026-02-17.md" {
		t.Errorf("unexpected message: %s", ref.Message)
	}
	if updated.SHA != "abc123" {
		t.Errorf("expected update to carry the existing sha, got %q", updated.SHA)
	}
	if updated.Message != "Add note to 2026-02-17.md at 09:05" {
		t.Errorf("unexpected commit message: %s", updated.Message)
	}

	raw, _ := base64.StdEncoding.DecodeString(updated.Content)
	content := string(raw)
	if !strings.HasPrefix(content, existing) {
		t.Error("updated content should preserve the existing file")
	}
	if !strings.Contains(content, "\n## 09:05\n\nНовая заметка\n") {
		t.Errorf("updated content missing appended entry:\n%s", content)
	}
}

func TestSaveNoteVoiceRaw(t *testing.T) {
	now := time.Date(2026, 2, 17, 18, 45, 0, 0, time.UTC)
	path := "/repos/owner/vault/contents/00_Inbox/2026-02-17.md"

	var created putRequest
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = decodePut(t, r)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{}`))
		}
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := github.NewClient("test-token", "owner/vault", "main")
	client.SetBaseURL(ts.URL)
	repo := github.New(client, "00_Inbox", &mockLogger{})

	ref, err := repo.SaveNote(context.Background(), repository.SaveNoteOptions{
		Text:          "Расшифровка голосового",
		IsVoice:       true,
		VoiceDuration: 12,
		VoiceLanguage: "ru",
		Now:           now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Message != "✅ Created 2026-02-17.md with voice note" {
		t.Errorf("unexpected message: %s", ref.Message)
	}

	raw, _ := base64.StdEncoding.DecodeString(created.Content)
	content := string(raw)
	for _, want := range []string{
		"tags: [inbox, telegram, voice, unprocessed]",
		"processed: false",
		"## 18:45 🎤",
		"*Источник: Telegram Voice Message • Длительность: 12с • Язык: ru*",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("voice note missing %q\ncontent:\n%s", want, content)
		}
	}
}

func TestSaveNoteAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := github.NewClient("bad-token", "owner/vault", "main")
	client.SetBaseURL(ts.URL)
	repo := github.New(client, "00_Inbox", &mockLogger{})

	_, err := repo.SaveNote(context.Background(), repository.SaveNoteOptions{Text: "x"})
	if err == nil {
		t.Fatal("expected error on API failure")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status code in error, got: %v", err)
	}
}
