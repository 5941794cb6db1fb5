package usecase

import (
	"time"

	"obsidian-inbox-bot/internal/note/repository"
	"obsidian-inbox-bot/internal/ratelimit"
	"obsidian-inbox-bot/internal/session"
	"obsidian-inbox-bot/pkg/gcalendar"
	"obsidian-inbox-bot/pkg/llmprovider"
	pkgLog "obsidian-inbox-bot/pkg/log"
	"obsidian-inbox-bot/pkg/openai"
)

type implUseCase struct {
	l           pkgLog.Logger
	llm         *llmprovider.Manager
	transcriber openai.IOpenAI
	calendar    *gcalendar.Client
	repo        repository.VaultRepository
	sessions    *session.Store
	quota       *ratelimit.Window

	smartEnabled  bool
	temperature   float64
	maxTokens     int
	maxTextLength int
	calendarID    string
	timezone      string

	now func() time.Time // injectable for tests
}

// Config carries the tunables for the note UseCase.
type Config struct {
	SmartEnabled  bool
	Temperature   float64
	MaxTokens     int
	MaxTextLength int
	CalendarID    string
	Timezone      string
}

// New creates a new note UseCase instance. transcriber and calendar may
// be nil; voice notes then fail with ErrTranscribe and calendar sync is
// skipped.
func New(
	l pkgLog.Logger,
	llm *llmprovider.Manager,
	transcriber openai.IOpenAI,
	calendar *gcalendar.Client,
	repo repository.VaultRepository,
	sessions *session.Store,
	quota *ratelimit.Window,
	cfg Config,
) *implUseCase {
	return &implUseCase{
		l:             l,
		llm:           llm,
		transcriber:   transcriber,
		calendar:      calendar,
		repo:          repo,
		sessions:      sessions,
		quota:         quota,
		smartEnabled:  cfg.SmartEnabled,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
		maxTextLength: cfg.MaxTextLength,
		calendarID:    cfg.CalendarID,
		timezone:      cfg.Timezone,
		now:           time.Now,
	}
}
