package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

type fileContents struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// FileStore persists the session as a JSON file (used by the CLI).
//
// The file is re-read on every Token/Role call so that a login or logout made by another process is picked up immediately.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// DefaultFilePath returns the session file location under the user's config directory
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not locate user config directory: %w", err)
	}
	return filepath.Join(dir, "ccadash", "session.json"), nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Token() string {
	return f.read().Token
}

func (f *FileStore) Role() Role {
	return f.read().Role
}

func (f *FileStore) Set(token string, role Role) error {
	if err := validateSet(token, role); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(fileContents{Token: token, Role: role})
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// read returns the persisted contents. An unreadable file is treated as signed out.
func (f *FileStore) read() fileContents {
	f.mu.Lock()
	defer f.mu.Unlock()

	var contents fileContents

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("could not read session file",
				slog.String("path", f.path),
				slog.String("error", err.Error()),
			)
		}
		return contents
	}

	if err := json.Unmarshal(data, &contents); err != nil {
		f.logger.Warn("session file is corrupt - ignoring",
			slog.String("path", f.path),
			slog.String("error", err.Error()),
		)
		return fileContents{}
	}

	contents.Role = ParseRole(string(contents.Role))
	return contents
}

// write replaces the file atomically (temp file + rename) with owner-only permissions
func (f *FileStore) write(contents fileContents) error {
	data, err := json.Marshal(contents)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set session file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
