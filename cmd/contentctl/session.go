package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// session is what login leaves on disk
type session struct {
	Server      string    `json:"server"`
	Email       string    `json:"email"`
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// loadSession returns nil when there is no usable session
func (a *cli) loadSession() (*session, error) {
	data, err := afero.ReadFile(a.fs, a.sessionPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", a.sessionPath, err)
	}
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	return &s, nil
}

func (a *cli) saveSession(s *session) error {
	if err := a.fs.MkdirAll(filepath.Dir(a.sessionPath), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(a.fs, a.sessionPath, data, 0o600)
}

func (a *cli) clearSession() error {
	if err := a.fs.Remove(a.sessionPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
