package repository

import (
	"context"
	"time"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/pkg/extraction"
)

// VaultRepository is the interface for committing notes to the Obsidian
// vault.
type VaultRepository interface {
	// SaveNote appends the note to today's daily file, creating the file
	// with frontmatter when it does not exist yet.
	SaveNote(ctx context.Context, opt SaveNoteOptions) (model.NoteRef, error)
}

// SaveNoteOptions describes one note entry.
type SaveNoteOptions struct {
	Text      string             // note body (transcription for voice notes)
	Processed bool               // true when Result carries smart-processing output
	Result    *extraction.Result // required when Processed

	IsVoice       bool
	VoiceDuration int    // seconds
	VoiceLanguage string // e.g. "ru"

	Now time.Time // entry timestamp; zero means time.Now
}
