package prefs

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// keyPattern restricts keys to names that are safe as file names.
var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid preference key %q", key)
	}
	return nil
}

// FileStore keeps each key in its own JSON file.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.config/cloverquilt/prefs.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "get home dir")
	}
	return filepath.Join(home, ".config", "cloverquilt", "prefs"), nil
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/cloverquilt/prefs/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create prefs dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) keyPath(key string) string {
	return filepath.Join(s.baseDir, key+".json")
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "read %s", key)
	}
	return data, true, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so readers never see a partial value.
	tmp, err := os.CreateTemp(s.baseDir, key+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", key)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", key)
	}
	if err := os.Rename(tmp.Name(), s.keyPath(key)); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", key)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStore, err, "remove %s", key)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the preference files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
