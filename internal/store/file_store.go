package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"primis/internal/domain"
)

var (
	// ErrInvalidKey is returned for keys that are empty or could escape the storage root.
	ErrInvalidKey = errors.New("invalid storage key")

	keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// FileStorage keeps one file per key under dir.
//
// With a non-empty passphrase every value is sealed with scrypt +
// ChaCha20-Poly1305 before it touches the disk.
type FileStorage struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFileStorage returns a FileStorage rooted at dir. The directory is
// created on first write.
func NewFileStorage(dir, passphrase string) *FileStorage {
	return &FileStorage{dir: dir, passphrase: passphrase}
}

// Dir returns the storage root.
func (s *FileStorage) Dir() string { return s.dir }

// Load returns the value stored under key and whether it was present.
func (s *FileStorage) Load(key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(filepath.Join(s.dir, key))
	if err != nil {
		return nil, false, err
	}
	if b == nil {
		return nil, false, nil
	}
	if s.passphrase != "" {
		if b, err = open(s.passphrase, key, b); err != nil {
			return nil, false, fmt.Errorf("open %s: %w", key, err)
		}
	}
	return b, true, nil
}

// Save writes value under key, replacing any previous value atomically.
func (s *FileStorage) Save(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	if s.passphrase != "" {
		N, r, p := scryptParamsDefault()
		sealedValue, err := seal(s.passphrase, key, value, N, r, p)
		if err != nil {
			return fmt.Errorf("seal %s: %w", key, err)
		}
		value = sealedValue
	}
	return writeFile(filepath.Join(s.dir, key), value, 0o600)
}

// Delete removes every given key. Missing keys are ignored.
func (s *FileStorage) Delete(keys ...string) error {
	for _, key := range keys {
		if err := checkKey(key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if err := removeFile(filepath.Join(s.dir, key)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Compile-time assertion that FileStorage implements domain.Storage.
var _ domain.Storage = (*FileStorage)(nil)
