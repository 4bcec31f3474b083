// Package file persists the store state as a single JSON document on local
// disk, rewriting it after every successful transaction.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"poms/internal/infra/persistence/bucket"
	"poms/internal/infra/persistence/memory"
	"poms/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// DefaultPath is used when no path is configured.
const DefaultPath = "poms_data.json"

// Store keeps state in memory and mirrors it to a JSON document.
type Store struct {
	*memory.Store
	path    string
	mu      sync.Mutex
	loaded  bool
	loadErr error
}

// NewStore opens the document at path. A missing file leaves the store
// empty; an unreadable or undecodable one does too, with the failure kept in
// LoadError.
func NewStore(path string, engine *domain.RulesEngine, triggers *domain.TriggerEngine) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{Store: memory.NewStore(engine, triggers), path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		s.loadErr = fmt.Errorf("read state: %w", err)
		return s, nil
	}
	var doc domain.StateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.loadErr = fmt.Errorf("decode %s: %w", path, err)
		return s, nil
	}
	s.ImportState(doc.Snapshot)
	s.loaded = true
	return s, nil
}

// RunInTransaction applies fn and rewrites the document if it committed. A
// write failure is reported as domain.PersistenceError; the in-memory commit
// stands.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := s.persist(); err != nil {
		return res, domain.PersistenceError{Op: "save", Err: err}
	}
	return res, nil
}

// Flush writes the current state regardless of pending changes.
func (s *Store) Flush(context.Context) error {
	if err := s.persist(); err != nil {
		return domain.PersistenceError{Op: "flush", Err: err}
	}
	return nil
}

// Loaded reports whether a valid document was read at open.
func (s *Store) Loaded() bool { return s.loaded }

// LoadError returns the read or decode failure observed at open, if any.
func (s *Store) LoadError() error { return s.loadErr }

// Path returns the configured document path.
func (s *Store) Path() string { return s.path }

func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := domain.StateDocument{
		Snapshot:  s.ExportState(),
		LastSaved: bucket.Timestamp(s.NowFunc()()),
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dirs: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".poms-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
