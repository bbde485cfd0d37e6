package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/antopolskiy/taskt/internal/filelock"
)

// JSONFile keeps the whole document in one JSON object on disk.
type JSONFile struct {
	mu     sync.Mutex
	path   string
	doc    map[string]json.RawMessage
	staged staging
	closed bool
}

var _ Reloader = (*JSONFile)(nil)

// OpenJSONFile loads path, treating a missing file as an empty document.
func OpenJSONFile(path string) (*JSONFile, error) {
	s := &JSONFile{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the document file path.
func (s *JSONFile) Path() string {
	return s.path
}

func (s *JSONFile) lockPath() string {
	return s.path + ".lock"
}

func (s *JSONFile) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.doc = make(map[string]json.RawMessage)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}
	doc := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", s.path, err)
		}
	}
	s.doc = doc
	return nil
}

// Get implements DocStore.
func (s *JSONFile) Get(_ context.Context, key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	raw, ok := s.staged.get(key)
	if !ok {
		raw, ok = s.doc[key]
	}
	if !ok {
		return false, nil
	}
	return true, decode(key, raw, v)
}

// Set implements DocStore.
func (s *JSONFile) Set(_ context.Context, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.staged.set(key, v)
}

// Save writes the merged document to a temp file and renames it over the
// original while holding the file lock.
func (s *JSONFile) Save(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	next := make(map[string]json.RawMessage, len(s.doc)+len(s.staged.keys))
	for k, v := range s.doc {
		next[k] = v
	}
	_ = s.staged.each(func(k string, raw []byte) error {
		next[k] = raw
		return nil
	})
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	unlock, err := filelock.Lock(s.lockPath())
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	s.doc = next
	s.staged.reset()
	return nil
}

// Reload re-reads the file, discarding staged values.
func (s *JSONFile) Reload(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	unlock, err := filelock.Lock(s.lockPath())
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()
	s.staged.reset()
	return s.load()
}

// Close implements DocStore. Unsaved values are discarded.
func (s *JSONFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.staged.reset()
	return nil
}
