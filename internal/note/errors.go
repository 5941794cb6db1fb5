package note

import "errors"

// Domain-specific errors for the note package.
var (
	ErrEmptyInput  = errors.New("input text is empty")
	ErrTextTooLong = errors.New("input text exceeds the processing limit")
	ErrNoSession   = errors.New("no active session")
	ErrTranscribe  = errors.New("voice transcription failed")
)
