package store

import (
	"sort"

	apperrors "github.com/gsem/gradebot/internal/errors"
	"github.com/gsem/gradebot/sessions"
	"github.com/gsem/gradebot/tokens"
	"github.com/pkg/errors"
)

var _ Tx = (*Tables)(nil)

// Tables is an in-memory copy of both tables. Store implementations load
// it, hand it to the callback as the Tx and persist whatever it marks dirty.
type Tables struct {
	tokens       map[string]*tokens.Token
	sessions     []*sessions.Session
	sessionIndex map[string]int // token -> position in sessions

	TokensDirty   bool
	SessionsDirty bool
}

func NewTables() *Tables {
	return &Tables{
		tokens:       make(map[string]*tokens.Token),
		sessionIndex: make(map[string]int),
	}
}

// LoadTables builds tables from decoded records. Token records take their
// key from the map; duplicate session tokens keep the last record.
func LoadTables(tokenRecords map[string]*tokens.Token, sessionRecords []*sessions.Session) *Tables {
	t := NewTables()
	for key, rec := range tokenRecords {
		if rec == nil {
			continue
		}
		rec.Token = key
		t.tokens[key] = rec
	}
	for _, s := range sessionRecords {
		if s == nil {
			continue
		}
		t.putSession(s)
	}
	return t
}

// TokenRecords returns the token table in its persisted shape.
func (t *Tables) TokenRecords() map[string]*tokens.Token {
	return t.tokens
}

// SessionRecords returns the session table in its persisted shape.
func (t *Tables) SessionRecords() []*sessions.Session {
	return t.sessions
}

// Clone deep copies the tables, used to discard changes of a failed callback.
func (t *Tables) Clone() *Tables {
	c := NewTables()
	for k, v := range t.tokens {
		c.tokens[k] = v.Clone()
	}
	for _, s := range t.sessions {
		c.putSession(s.Clone())
	}
	return c
}

func (t *Tables) GetToken(token string) (*tokens.Token, error) {
	rec, ok := t.tokens[token]
	if !ok {
		return nil, notFound("token", token)
	}
	return rec.Clone(), nil
}

func (t *Tables) PutToken(rec *tokens.Token) error {
	if rec == nil || rec.Token == "" {
		return errors.New("[Tables.PutToken] token is required")
	}
	t.tokens[rec.Token] = rec.Clone()
	t.TokensDirty = true
	return nil
}

func (t *Tables) ListTokens() []*tokens.Token {
	list := make([]*tokens.Token, 0, len(t.tokens))
	for _, rec := range t.tokens {
		list = append(list, rec.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Token < list[j].Token
	})
	return list
}

func (t *Tables) GetSession(token string) (*sessions.Session, error) {
	i, ok := t.sessionIndex[token]
	if !ok {
		return nil, notFound("session", token)
	}
	return t.sessions[i].Clone(), nil
}

func (t *Tables) PutSession(s *sessions.Session) error {
	if s == nil || s.Token == "" {
		return errors.New("[Tables.PutSession] session token is required")
	}
	t.putSession(s.Clone())
	t.SessionsDirty = true
	return nil
}

func (t *Tables) ListSessions() []*sessions.Session {
	list := make([]*sessions.Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		list = append(list, s.Clone())
	}
	return list
}

func (t *Tables) putSession(s *sessions.Session) {
	if i, ok := t.sessionIndex[s.Token]; ok {
		t.sessions[i] = s
		return
	}
	t.sessionIndex[s.Token] = len(t.sessions)
	t.sessions = append(t.sessions, s)
}

func notFound(kind, key string) error {
	return apperrors.Wrapf(apperrors.ErrNotFound, "%s %q", kind, key)
}
