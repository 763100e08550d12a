package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when the requested document does not
// exist. Callers that treat a missing document as a normal first-run state
// check for it with errors.Is; any other error is a real I/O or decode
// failure.
var ErrNotFound = errors.New("document not found")

// Store reads and writes one pretty-printed JSON document per
// (user, document name) pair under a root directory.
type Store struct {
	root   string
	logger *zap.Logger
}

// New creates a store rooted at dir. A nil logger disables logging.
func New(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: dir, logger: logger}
}

// UserDir returns the directory holding all documents for a user.
func (s *Store) UserDir(user string) string {
	return filepath.Join(s.root, "users", user)
}

func (s *Store) docPath(user, name string) string {
	return filepath.Join(s.UserDir(user), name+".json")
}

// Save serializes v to pretty JSON and writes it over any existing
// document, creating the user's directory on first use. The write goes
// through a temp file and rename so a crash never leaves a half-written
// document at the canonical path.
func (s *Store) Save(user, name string, v any) error {
	dir := s.UserDir(user)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("create user directory failed",
			zap.String("user", user), zap.Error(err))
		return fmt.Errorf("unable to create directory for %s: %w", user, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode document %s/%s: %w", user, name, err)
	}

	if err := WriteAtomic(s.docPath(user, name), data); err != nil {
		s.logger.Error("save document failed",
			zap.String("user", user), zap.String("document", name), zap.Error(err))
		return fmt.Errorf("unable to save document %s/%s: %w", user, name, err)
	}
	return nil
}

// Load decodes the named document into v. Returns ErrNotFound when the
// document does not exist. Unknown JSON fields are ignored so documents
// written by newer versions still load.
func (s *Store) Load(user, name string, v any) error {
	data, err := os.ReadFile(s.docPath(user, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, user, name)
		}
		s.logger.Error("read document failed",
			zap.String("user", user), zap.String("document", name), zap.Error(err))
		return fmt.Errorf("unable to read document %s/%s: %w", user, name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Error("decode document failed",
			zap.String("user", user), zap.String("document", name), zap.Error(err))
		return fmt.Errorf("unable to decode document %s/%s: %w", user, name, err)
	}
	return nil
}

// Exists reports whether the named document is present on disk.
func (s *Store) Exists(user, name string) bool {
	_, err := os.Stat(s.docPath(user, name))
	return err == nil
}

// Delete removes the named document. Deleting an absent document is a
// success.
func (s *Store) Delete(user, name string) error {
	err := os.Remove(s.docPath(user, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to delete document %s/%s: %w", user, name, err)
	}
	return nil
}

// DeleteUser removes a user's directory with every document in it.
// Removing an absent directory is a success.
func (s *Store) DeleteUser(user string) error {
	if err := os.RemoveAll(s.UserDir(user)); err != nil {
		return fmt.Errorf("unable to delete documents for %s: %w", user, err)
	}
	return nil
}
