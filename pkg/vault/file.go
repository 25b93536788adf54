// Package vault provides durable client-side storage for the access token:
// a single value that survives process restarts, written on successful
// login, removed on logout, and read back only at process start.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/legalaipro/lexauth/core"
)

// FileVault keeps the token in a mode-0600 file. Writes go through a
// temp-file rename so a crash never leaves a half-written token behind.
type FileVault struct {
	path string
	mu   sync.Mutex
}

var _ core.TokenVault = (*FileVault)(nil)

// NewFileVault creates a vault at path, creating parent directories as
// needed.
func NewFileVault(path string) (*FileVault, error) {
	if path == "" {
		return nil, fmt.Errorf("vault path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	return &FileVault{path: path}, nil
}

// DefaultPath places the vault under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "lexauth", "access_token"), nil
}

func (v *FileVault) Load() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", core.ErrTokenNotFound
	}
	return token, nil
}

func (v *FileVault) Store(token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := os.Rename(tmp, v.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit token: %w", err)
	}
	return nil
}

func (v *FileVault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
