package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a durable keyed JSON store mirroring backend records locally.
// Each key maps to one file; writes go through a temp file and rename so a
// crash never leaves a half-written entry. Unparsable entries are treated
// as absent rather than fatal.
type Store struct {
	dir string

	mu sync.Mutex
}

// ErrInvalidKey is returned when a key cannot be mapped to a file name.
var ErrInvalidKey = errors.New("localstore: invalid key")

// New constructs a Store rooted at dir, creating the directory when absent.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("localstore: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// GetJSON loads the entry for key into dst. The second return value reports
// whether a usable entry existed; a missing or corrupt entry yields false
// with a nil error (cache-miss semantics).
func (s *Store) GetJSON(key string, dst any) (bool, error) {
	if s == nil {
		return false, errors.New("localstore: store not initialised")
	}
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	data, readErr := os.ReadFile(path)
	s.mu.Unlock()

	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("localstore: read %s: %w", key, readErr)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// Corrupt cache entries regenerate from defaults.
		return false, nil
	}
	return true, nil
}

// PutJSON serialises value and durably replaces the entry for key.
func (s *Store) PutJSON(key string, value any) error {
	if s == nil {
		return errors.New("localstore: store not initialised")
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("localstore: temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("localstore: write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("localstore: sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localstore: close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localstore: replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key; a missing entry is not an error.
func (s *Store) Delete(key string) error {
	if s == nil {
		return errors.New("localstore: store not initialised")
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("localstore: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	name := sanitizeKey(key)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "._")
	if len(name) > 120 {
		name = name[:120]
	}
	return name
}
