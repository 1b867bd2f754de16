package progress

import (
	"context"
	"sort"

	apperrors "github.com/gsem/gradebot/internal/errors"
	"github.com/gsem/gradebot/sessions"
	"github.com/gsem/gradebot/store"
	"github.com/pkg/errors"
)

// Row is one student's line in a progress report.
type Row struct {
	Token     string
	FirstName string
	LastName  string
	Group     string
	Active    bool
	Progress  sessions.Progress
}

// Report joins every issued token with its session, if any, ordered by
// group then last name then first name. Tokens never logged in get an
// empty progress map.
func (t *Tracker) Report(ctx context.Context) ([]Row, error) {
	var rows []Row
	err := t.store.View(ctx, func(tx store.Tx) error {
		for _, tok := range tx.ListTokens() {
			row := Row{
				Token:     tok.Token,
				FirstName: tok.FirstName,
				LastName:  tok.LastName,
				Group:     tok.Group,
				Progress:  sessions.Progress{},
			}
			session, err := tx.GetSession(tok.Token)
			if err == nil {
				row.Active = session.Active
				row.Progress = session.Progress.Clone()
			} else if !apperrors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Tracker.Report]")
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	return rows, nil
}
