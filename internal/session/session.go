// Package session keeps per-user processing sessions between the preview
// message and the inline-button decision. Sessions expire after a fixed
// TTL so a forgotten preview cannot be acted on days later.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"obsidian-inbox-bot/pkg/extraction"
)

// DefaultTTL matches the original interactive flow: a preview is actionable
// for 10 minutes.
const DefaultTTL = 10 * time.Minute

// EditField names the session field a user is currently re-typing.
type EditField string

const (
	EditTags    EditField = "tags"
	EditSummary EditField = "summary"
	EditTasks   EditField = "tasks"
)

// Session is one note waiting for the user's approve/edit decision.
type Session struct {
	ID            string
	UserID        int64
	ChatID        int64
	MessageID     int64 // preview message, edited in place on state changes
	OriginalText  string
	Result        extraction.Result
	IsVoice       bool
	VoiceDuration int
	VoiceLanguage string
	Edited        bool
	CreatedAt     time.Time
}

// Store holds at most one active session per user plus the user's edit mode.
type Store struct {
	sessions *expirable.LRU[int64, *Session]

	mu       sync.Mutex
	editMode map[int64]EditField
}

// NewStore creates a session store with the given TTL. A non-positive TTL
// falls back to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: expirable.NewLRU[int64, *Session](1024, nil, ttl),
		editMode: make(map[int64]EditField),
	}
}

// Start creates and stores a new session for the user, replacing any
// previous one.
func (s *Store) Start(userID, chatID int64, text string) *Session {
	sess := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		ChatID:       chatID,
		OriginalText: text,
		CreatedAt:    time.Now(),
	}
	s.sessions.Add(userID, sess)
	return sess
}

// Get returns the user's active session, if any.
func (s *Store) Get(userID int64) (*Session, bool) {
	return s.sessions.Get(userID)
}

// Put stores an updated session.
func (s *Store) Put(sess *Session) {
	s.sessions.Add(sess.UserID, sess)
}

// Delete removes the user's session and clears any pending edit mode.
func (s *Store) Delete(userID int64) {
	s.sessions.Remove(userID)
	s.ClearEditMode(userID)
}

// SetEditMode marks the user as re-typing the given field.
func (s *Store) SetEditMode(userID int64, field EditField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode[userID] = field
}

// EditMode reports the field the user is currently editing, if any.
func (s *Store) EditMode(userID int64) (EditField, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	field, ok := s.editMode[userID]
	return field, ok
}

// ClearEditMode removes the user's edit marker.
func (s *Store) ClearEditMode(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.editMode, userID)
}
