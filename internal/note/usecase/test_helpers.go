package usecase

import (
	"context"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/note/repository"
	"obsidian-inbox-bot/pkg/llmprovider"
	"obsidian-inbox-bot/pkg/openai"
)

// Mock logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) Debugf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Info(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Infof(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Warnf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Error(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) Errorf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Fatal(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) Fatalf(ctx context.Context, template string, arg ...any) {}

// Mock provider returning a canned extraction payload
type mockProvider struct {
	text string
	err  error
}

func (m *mockProvider) GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llmprovider.Response{Text: m.text, ProviderName: "mock", ModelName: "mock-model", Usage: &llmprovider.Usage{}}, nil
}

func (m *mockProvider) Name() string  { return "mock" }
func (m *mockProvider) Model() string { return "mock-model" }

func managerFromProvider(p llmprovider.Provider) *llmprovider.Manager {
	cfg := &llmprovider.Config{
		FallbackEnabled: false,
		RetryAttempts:   1,
	}
	return llmprovider.NewManager([]llmprovider.Provider{p}, cfg, &mockLogger{})
}

// Mock vault repository recording the last save
type mockVaultRepo struct {
	lastSave *repository.SaveNoteOptions
	saves    int
	err      error
}

func (m *mockVaultRepo) SaveNote(ctx context.Context, opt repository.SaveNoteOptions) (model.NoteRef, error) {
	if m.err != nil {
		return model.NoteRef{}, m.err
	}
	m.lastSave = &opt
	m.saves++
	return model.NoteRef{
		Path:     "00_Inbox/2026-02-17.md",
		Filename: "2026-02-17.md",
		Message:  "✅ Added to 2026-02-17.md",
	}, nil
}

// Mock transcriber
type mockTranscriber struct {
	text string
	err  error
}

func (m *mockTranscriber) GenerateContent(ctx context.Context, req *openai.Request) (*openai.Response, error) {
	return nil, nil
}

func (m *mockTranscriber) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	return m.text, m.err
}
