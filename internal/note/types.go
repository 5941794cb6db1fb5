package note

import (
	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/pkg/extraction"
)

// IngestInput is an incoming note. Exactly one of Text or VoiceData is
// set: voice notes are transcribed before processing.
type IngestInput struct {
	Text          string
	VoiceData     []byte // raw audio bytes, transcribed when non-nil
	VoiceFilename string // e.g. "voice.oga", tells the transcriber the format
	VoiceDuration int    // seconds
	VoiceLanguage string // defaults to "ru"
	MessageID     int64  // originating Telegram message
}

// IngestOutput is the result of running the pipeline on one note.
type IngestOutput struct {
	SessionID string
	Result    extraction.Result
	Text      string         // the text that was processed (transcription for voice)
	IsVoice   bool
	Saved     *model.NoteRef // set when the note was committed without a preview
}

// SaveOutput reports a committed note.
type SaveOutput struct {
	Ref model.NoteRef
}
