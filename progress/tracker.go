package progress

import (
	"context"

	"github.com/gsem/gradebot/auth"
	apperrors "github.com/gsem/gradebot/internal/errors"
	"github.com/gsem/gradebot/sessions"
	"github.com/gsem/gradebot/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Tracker records completed tasks on active sessions. It is the only
// writer of a session's progress map.
type Tracker struct {
	store store.Store
}

func NewTracker(st store.Store) (*Tracker, error) {
	if st == nil {
		return nil, errors.New("[NewTracker] store is required")
	}
	return &Tracker{store: st}, nil
}

// MarkDone sets task as completed on the token's session. Marking a task
// twice is a no-op.
func (t *Tracker) MarkDone(ctx context.Context, token, task string) error {
	err := t.store.Update(ctx, func(tx store.Tx) error {
		session, err := activeSession(tx, token)
		if err != nil {
			return err
		}
		if session.Progress[task] {
			return nil
		}
		if session.Progress == nil {
			session.Progress = sessions.Progress{}
		}
		session.Progress[task] = true
		return tx.PutSession(session)
	})
	if err != nil {
		return errors.Wrap(err, "[Tracker.MarkDone]")
	}
	log.Info().Str("token", token).Str("task", task).Msg("Task marked as done")
	return nil
}

// GetProgress returns a copy of the progress map of the token's session.
func (t *Tracker) GetProgress(ctx context.Context, token string) (sessions.Progress, error) {
	var progress sessions.Progress
	err := t.store.View(ctx, func(tx store.Tx) error {
		session, err := activeSession(tx, token)
		if err != nil {
			return err
		}
		progress = session.Progress.Clone()
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Tracker.GetProgress]")
	}
	return progress, nil
}

func activeSession(tx store.Tx, token string) (*sessions.Session, error) {
	session, err := tx.GetSession(token)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, auth.ErrNoActiveSession
	} else if err != nil {
		return nil, err
	}
	if !session.Active {
		return nil, auth.ErrNoActiveSession
	}
	return session, nil
}
