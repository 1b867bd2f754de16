package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "github.com/gsem/gradebot/internal/errors"
	"github.com/gsem/gradebot/sessions"
	"github.com/gsem/gradebot/store"
	"github.com/gsem/gradebot/tokens"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ store.Store = (*Store)(nil)

// sessionFile is the on-disk shape of the session table.
type sessionFile struct {
	Sessions []*sessions.Session `json:"sessions"`
}

// Store keeps the token table and the session table in two JSON files.
// Every View/Update re-reads both files under the store lock; Update writes
// each changed table to a temp file in the same folder and renames it over
// the original.
type Store struct {
	tokensPath   string
	sessionsPath string
	lock         store.Lock
}

// Open creates missing folders and empty table files, then returns the store.
func Open(tokensPath, sessionsPath string) (*Store, error) {
	if tokensPath == "" || sessionsPath == "" {
		return nil, errors.New("[jsonstore.Open] both table paths are required")
	}
	s := &Store{
		tokensPath:   tokensPath,
		sessionsPath: sessionsPath,
		lock:         store.NewLock(),
	}
	if err := createIfMissing(tokensPath, map[string]*tokens.Token{}); err != nil {
		return nil, apperrors.Storage(err, "[jsonstore.Open] tokens")
	}
	if err := createIfMissing(sessionsPath, sessionFile{Sessions: []*sessions.Session{}}); err != nil {
		return nil, apperrors.Storage(err, "[jsonstore.Open] sessions")
	}
	return s, nil
}

func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := s.lock.Acquire(ctx); err != nil {
		return errors.Wrap(err, "[jsonstore.View] acquire")
	}
	defer s.lock.Release()

	tables, err := s.load()
	if err != nil {
		return err
	}
	return fn(tables)
}

func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := s.lock.Acquire(ctx); err != nil {
		return errors.Wrap(err, "[jsonstore.Update] acquire")
	}
	defer s.lock.Release()

	tables, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(tables); err != nil {
		return err
	}

	if tables.SessionsDirty {
		if err := writeFileAtomic(s.sessionsPath, sessionFile{Sessions: tables.SessionRecords()}); err != nil {
			return apperrors.Storage(err, "[jsonstore.Update] write sessions")
		}
	}
	if tables.TokensDirty {
		if err := writeFileAtomic(s.tokensPath, tables.TokenRecords()); err != nil {
			if tables.SessionsDirty {
				log.Error().Err(err).
					Str("sessions", s.sessionsPath).
					Str("tokens", s.tokensPath).
					Msg("Update half applied: sessions written, tokens not")
			}
			return apperrors.Storage(err, "[jsonstore.Update] write tokens")
		}
	}
	return nil
}

func (s *Store) load() (*store.Tables, error) {
	tokenRecords := map[string]*tokens.Token{}
	if err := readJSON(s.tokensPath, &tokenRecords); err != nil {
		return nil, apperrors.Storage(err, "[jsonstore] read tokens")
	}
	var sf sessionFile
	if err := readJSON(s.sessionsPath, &sf); err != nil {
		return nil, apperrors.Storage(err, "[jsonstore] read sessions")
	}
	return store.LoadTables(tokenRecords, sf.Sessions), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func createIfMissing(path string, empty any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Creating empty table file")
	return writeFileAtomic(path, empty)
}

// writeFileAtomic writes v as indented JSON next to path and renames it into place.
func writeFileAtomic(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
