package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/model"
)

// JSONStore keeps the pool as an indented JSON array in a single file.
// Writes go to a temporary file that is renamed over the pool, so a failed
// write never truncates it.
type JSONStore struct {
	path string
	lock *flock.Flock
}

// NewJSON returns a store backed by the file at path.
func NewJSON(path string) *JSONStore {
	return &JSONStore{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the pool file path.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Migrate(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return eris.Wrapf(err, "json: create directory for %s", s.path)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

// Lock takes an exclusive advisory lock on the pool. It fails fast with
// ErrLocked when another process holds it.
func (s *JSONStore) Lock(_ context.Context) (Unlock, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, eris.Wrapf(err, "json: create directory for %s", s.path)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, eris.Wrapf(err, "json: lock %s", s.path)
	}
	if !ok {
		return nil, ErrLocked
	}
	return s.lock.Unlock, nil
}

func (s *JSONStore) Load(_ context.Context) ([]model.Lead, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Info("json: pool file not found, starting empty", zap.String("path", s.path))
		return []model.Lead{}, nil
	}
	if err != nil {
		zap.L().Warn("json: pool file unreadable, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []model.Lead{}, nil
	}

	var leads []model.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		zap.L().Warn("json: pool file corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []model.Lead{}, nil
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	return leads, nil
}

func (s *JSONStore) Save(_ context.Context, leads []model.Lead) error {
	if leads == nil {
		leads = []model.Lead{}
	}
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return eris.Wrap(err, "json: marshal pool")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "json: create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "json: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "json: write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "json: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "json: close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return eris.Wrapf(err, "json: replace %s", s.path)
	}

	zap.L().Debug("json: saved pool", zap.String("path", s.path), zap.Int("leads", len(leads)))
	return nil
}
