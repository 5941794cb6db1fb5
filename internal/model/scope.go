package model

// Scope carries the identity of the user a request is executed for.
type Scope struct {
	UserID   int64  // Telegram user ID
	Username string // Telegram username, may be empty
	ChatID   int64  // Telegram chat the reply goes to
}
