// Package session persists the current field user between runs. There is
// no authentication: the profile is trusted as entered at login.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tellfind/internal/models"
)

// Manager reads and writes the current-user file.
type Manager struct {
	path string
}

// NewManager returns a manager storing the profile at path.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		return nil, fmt.Errorf("session path is required")
	}
	return &Manager{path: path}, nil
}

// Current returns the logged-in user, or (nil, nil) when nobody is
// logged in or the stored profile is invalid.
func (m *Manager) Current() (*models.User, error) {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, nil
	}
	if err := user.Validate(); err != nil {
		return nil, nil
	}
	return &user, nil
}

// SetCurrent validates and persists the profile.
func (m *Manager) SetCurrent(user models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, raw, 0o600)
}

// Clear logs the user out. Clearing an absent session is a no-op.
func (m *Manager) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
