package tokens

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CaptionDateLayout is the date format admins put in the roster caption.
const CaptionDateLayout = "02.01.2006"

// rosterFields is last name, first name and group.
const rosterFields = 3

// NewTokenFunc generates token identifiers. It can be overridden in tests.
var NewTokenFunc = func() string {
	return uuid.New().String()
}

// ImportRoster reads one "last_name first_name group" per line and returns
// a fresh, unused token record per student keyed by token string.
// Blank lines are skipped; a short line aborts the whole import.
func ImportRoster(r io.Reader, deadline Date) (map[string]*Token, error) {
	batch := make(map[string]*Token)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < rosterFields {
			return nil, &MalformedRosterLineError{Line: lineNo, Text: line}
		}

		token := NewTokenFunc()
		for _, exists := batch[token]; exists; _, exists = batch[token] {
			token = NewTokenFunc()
		}
		batch[token] = &Token{
			Token:     token,
			LastName:  fields[0],
			FirstName: fields[1],
			Group:     fields[2],
			Deadline:  deadline,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "[ImportRoster] scanner")
	}
	if len(batch) == 0 {
		return nil, ErrEmptyRoster
	}
	return batch, nil
}

// ParseDeadline parses the caption sent with a roster file. Exactly one
// DD.MM.YYYY date is expected and it must not be before today.
func ParseDeadline(caption string, now time.Time) (Date, error) {
	args := strings.Fields(caption)
	switch {
	case len(args) == 0:
		return Date{}, ErrNoArguments
	case len(args) > 1:
		return Date{}, ErrTooManyArguments
	}

	t, err := time.Parse(CaptionDateLayout, args[0])
	if err != nil {
		return Date{}, ErrWrongDateFormat
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if t.Before(today) {
		return Date{}, ErrDateInPast
	}
	return Date{t}, nil
}

// SortedBatch orders token records by group, then last and first name.
func SortedBatch(batch map[string]*Token) []*Token {
	list := make([]*Token, 0, len(batch))
	for _, t := range batch {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.Token < b.Token
	})
	return list
}

// FormatBatch lists freshly issued tokens for the admin.
func FormatBatch(batch map[string]*Token) string {
	var sb strings.Builder
	for _, t := range SortedBatch(batch) {
		fmt.Fprintf(&sb, "%s -->\n\t%s, %s, until %s\n\n", t.Token, t.FullName(), t.Group, t.Deadline)
	}
	return sb.String()
}
