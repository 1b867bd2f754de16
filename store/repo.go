package store

import (
	"context"

	"github.com/gsem/gradebot/sessions"
	"github.com/gsem/gradebot/tokens"
)

// Tx is the capability set available inside one atomic section.
// Records returned by Get/List are copies; changes must be written back with Put.
type Tx interface {
	// GetToken returns the token record, or an error matching errors.ErrNotFound
	GetToken(token string) (*tokens.Token, error)

	// PutToken creates or replaces a token record
	PutToken(t *tokens.Token) error

	// ListTokens returns every token record ordered by token string
	ListTokens() []*tokens.Token

	// GetSession returns the session record of a token, or an error matching errors.ErrNotFound
	GetSession(token string) (*sessions.Session, error)

	// PutSession creates or replaces the session record of s.Token, keeping insertion order
	PutSession(s *sessions.Session) error

	// ListSessions returns every session record in insertion order
	ListSessions() []*sessions.Session
}

// Store runs read-modify-write cycles over the token and session tables.
// Each call is serialised with every other call on the same Store; a
// failing Update callback leaves the persisted state untouched.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
}

// ActiveSessionFor returns the active session bound to handle, or an error
// matching errors.ErrNotFound. Empty handles never match.
func ActiveSessionFor(tx Tx, handle string) (*sessions.Session, error) {
	if handle == "" {
		return nil, notFound("active session", handle)
	}
	for _, s := range tx.ListSessions() {
		if s.HeldBy(handle) {
			return s, nil
		}
	}
	return nil, notFound("active session", handle)
}
