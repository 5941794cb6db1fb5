package model

// NoteRef identifies a note committed to the vault repository.
type NoteRef struct {
	Path     string // file path inside the repository, e.g. "00_Inbox/2026-02-17.md"
	Filename string // base file name, e.g. "2026-02-17.md"
	Created  bool   // true when the daily note file was created, false when appended
	Message  string // user-facing confirmation message
}
