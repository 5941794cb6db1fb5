package note

import (
	"context"

	"obsidian-inbox-bot/internal/model"
	"obsidian-inbox-bot/internal/session"
)

// UseCase defines the business logic interface for the note domain.
type UseCase interface {
	// Ingest runs the smart-processing pipeline on an incoming note and
	// opens a preview session. When smart processing is disabled the note
	// is saved raw immediately and Saved is set on the output.
	Ingest(ctx context.Context, sc model.Scope, input IngestInput) (IngestOutput, error)

	// Approve commits the user's current session to the vault as a
	// processed note and closes the session.
	Approve(ctx context.Context, sc model.Scope) (SaveOutput, error)

	// SaveRaw commits the session's original text without processing
	// metadata and closes the session.
	SaveRaw(ctx context.Context, sc model.Scope) (SaveOutput, error)

	// Regenerate re-runs the extraction pipeline on the session's
	// original text and updates the session in place.
	Regenerate(ctx context.Context, sc model.Scope) (IngestOutput, error)

	// ApplyEdit replaces one field of the session's extraction result
	// with user-supplied text and updates the session in place.
	ApplyEdit(ctx context.Context, sc model.Scope, field session.EditField, text string) (IngestOutput, error)

	// Session returns the user's active session, if any.
	Session(sc model.Scope) (*session.Session, bool)
}
