package auth

import (
	"context"
	"time"

	apperrors "github.com/gsem/gradebot/internal/errors"
	"github.com/gsem/gradebot/internal/utils"
	"github.com/gsem/gradebot/sessions"
	"github.com/gsem/gradebot/store"
	"github.com/gsem/gradebot/tokens"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service is the session lifecycle manager. It owns every transition of a
// token's in-use flag and of a session's binding:
//
//	issued/unused -> bound/active <-> bound/inactive
//
// Each exported method runs as one atomic section of the store.
type Service struct {
	store   store.Store
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes the lifecycle manager over the given store.
func NewService(st store.Store, options ...ServiceOption) (*Service, error) {
	if st == nil {
		return nil, errors.New("[NewService] store is required")
	}
	s := &Service{
		store:   st,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// IssueTokens persists a freshly imported roster batch. Existing tokens are
// never overwritten; a collision aborts the whole batch.
func (s *Service) IssueTokens(ctx context.Context, batch map[string]*tokens.Token) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		for key, rec := range batch {
			if _, err := tx.GetToken(key); err == nil {
				return ErrTokenAlreadyIssued
			} else if !apperrors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			rec = rec.Clone()
			rec.Token = key
			rec.InUse = false
			rec.BoundHandle = nil
			if err := tx.PutToken(rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "[Service.IssueTokens]")
	}
	log.Info().Int("count", len(batch)).Msg("Issued tokens")
	return nil
}

// ValidateLogin checks a login attempt and returns the supplied token.
func (s *Service) ValidateLogin(ctx context.Context, id sessions.Identity, args []string) (string, error) {
	var token string
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		token, err = validateLogin(tx, id, args)
		return err
	})
	if err != nil {
		return "", errors.Wrap(err, "[Service.ValidateLogin]")
	}
	return token, nil
}

// LogIn binds token to id, creating the session on first use and
// reactivating it (progress intact) on every later use.
func (s *Service) LogIn(ctx context.Context, token string, id sessions.Identity) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		return s.logIn(tx, token, id)
	})
	if err != nil {
		return errors.Wrap(err, "[Service.LogIn]")
	}
	return nil
}

// Login validates the arguments of a login command and logs in within one
// atomic section, so two concurrent attempts cannot both bind the token.
func (s *Service) Login(ctx context.Context, id sessions.Identity, args []string) (string, error) {
	var token string
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var err error
		if token, err = validateLogin(tx, id, args); err != nil {
			return err
		}
		return s.logIn(tx, token, id)
	})
	if err != nil {
		return "", errors.Wrap(err, "[Service.Login]")
	}
	return token, nil
}

// LogOut deactivates the identity's session and frees its token.
func (s *Service) LogOut(ctx context.Context, id sessions.Identity) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		session, err := store.ActiveSessionFor(tx, id.Handle)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return ErrNoActiveSession
		} else if err != nil {
			return err
		}

		session.Unbind()
		if err := tx.PutSession(session); err != nil {
			return err
		}

		tok, err := tx.GetToken(session.Token)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			log.Warn().Str("handle", id.Handle).Msg("Session without token record logged out")
			return nil
		} else if err != nil {
			return err
		}
		tok.InUse = false
		tok.BoundHandle = nil
		return tx.PutToken(tok)
	})
	if err != nil {
		return errors.Wrap(err, "[Service.LogOut]")
	}
	log.Info().Str("handle", id.Handle).Msg("User logged out")
	return nil
}

// CurrentTokenFor returns the token of the identity's active session.
func (s *Service) CurrentTokenFor(ctx context.Context, id sessions.Identity) (string, error) {
	var token string
	err := s.store.View(ctx, func(tx store.Tx) error {
		session, err := store.ActiveSessionFor(tx, id.Handle)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return ErrTokenNotFound
		} else if err != nil {
			return err
		}
		token = session.Token
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "[Service.CurrentTokenFor]")
	}
	return token, nil
}

// WasTokenUsedBefore reports whether a session record exists for token.
func (s *Service) WasTokenUsedBefore(ctx context.Context, token string) (bool, error) {
	var used bool
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		used, err = wasTokenUsedBefore(tx, token)
		return err
	})
	if err != nil {
		return false, errors.Wrap(err, "[Service.WasTokenUsedBefore]")
	}
	return used, nil
}

func validateLogin(tx store.Tx, id sessions.Identity, args []string) (string, error) {
	if id.Anonymous() {
		return "", ErrAnonymousUser
	}
	if _, err := store.ActiveSessionFor(tx, id.Handle); err == nil {
		return "", ErrAlreadyLoggedIn
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	switch {
	case len(args) == 0:
		return "", ErrNoArguments
	case len(args) > 1:
		return "", ErrTooManyArguments
	}

	token := args[0]
	if _, err := tx.GetToken(token); apperrors.Is(err, apperrors.ErrNotFound) {
		return "", ErrInvalidToken
	} else if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) logIn(tx store.Tx, token string, id sessions.Identity) error {
	if id.Anonymous() {
		return ErrAnonymousUser
	}
	if _, err := store.ActiveSessionFor(tx, id.Handle); err == nil {
		return ErrAlreadyLoggedIn
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	tok, err := tx.GetToken(token)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return ErrInvalidToken
	} else if err != nil {
		return err
	}
	if tok.InUse && utils.Value(tok.BoundHandle) != id.Handle {
		return ErrTokenAlreadyInUse
	}

	usedBefore, err := wasTokenUsedBefore(tx, token)
	if err != nil {
		return err
	}

	var session *sessions.Session
	if usedBefore {
		if session, err = tx.GetSession(token); err != nil {
			return err
		}
		if session.Active && !session.HeldBy(id.Handle) {
			return ErrTokenAlreadyInUse
		}
	} else {
		session = &sessions.Session{
			Token:     token,
			FirstName: tok.FirstName,
			LastName:  tok.LastName,
			Group:     tok.Group,
			StartedAt: s.nowTime(),
			Deadline:  tok.Deadline.Time,
			Progress:  sessions.Progress{},
		}
	}
	session.Bind(id)
	if err := tx.PutSession(session); err != nil {
		return err
	}

	tok.InUse = true
	tok.BoundHandle = utils.Ptr(id.Handle)
	if err := tx.PutToken(tok); err != nil {
		return err
	}

	log.Info().
		Str("handle", id.Handle).
		Str("group", tok.Group).
		Bool("returning", usedBefore).
		Msg("User logged in")
	return nil
}

func wasTokenUsedBefore(tx store.Tx, token string) (bool, error) {
	_, err := tx.GetSession(token)
	switch {
	case err == nil:
		return true, nil
	case apperrors.Is(err, apperrors.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
