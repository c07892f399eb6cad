// Package credentials stores per-session protocol key material on disk,
// one directory per session id.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps each session's credentials under <basePath>/<sessionID>.
type FileStore struct {
	basePath string
}

// NewFileStore creates the store rooted at basePath.
func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// Prepare ensures the session's directory exists and returns its path.
func (s *FileStore) Prepare(sessionID string) (string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("prepare credential dir for %s: %w", sessionID, err)
	}
	return dir, nil
}

// Delete removes the session's directory and everything in it. A missing
// directory is not an error.
func (s *FileStore) Delete(sessionID string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete credential dir for %s: %w", sessionID, err)
	}
	return nil
}

func (s *FileStore) sessionDir(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id is empty")
	}
	// Session ids come from external callers; keep them from escaping the base dir.
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return filepath.Join(s.basePath, sessionID), nil
}
