// Package storage persists conversation history and persona key overrides
// as JSON blobs in the data directory. Persistence is best effort: a
// corrupt or unreadable blob is treated as absent, never as a fatal error.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"xiaozhou/internal/chat"
	"xiaozhou/internal/logging"
	"xiaozhou/internal/persona"
)

const (
	historyFile = "history.json"
	keysFile    = "keys.json"
)

// Manager reads and writes the two persisted blobs.
type Manager struct {
	dataDir string
}

// NewManager creates a manager rooted at dataDir, creating it if needed.
func NewManager(dataDir string) (*Manager, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return &Manager{dataDir: dataDir}, nil
}

// HistoryPath returns the path of the history blob.
func (m *Manager) HistoryPath() string {
	return filepath.Join(m.dataDir, historyFile)
}

// KeysPath returns the path of the key-overrides blob.
func (m *Manager) KeysPath() string {
	return filepath.Join(m.dataDir, keysFile)
}

// SaveSessions writes the full session list.
func (m *Manager) SaveSessions(sessions []chat.ChatSession) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.HistoryPath(), data, 0644)
}

// LoadSessions reads the persisted session list. A missing or corrupt blob
// yields an empty list.
func (m *Manager) LoadSessions() []chat.ChatSession {
	data, err := os.ReadFile(m.HistoryPath())
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("failed to read history, starting fresh", "error", err)
		}
		return nil
	}

	var sessions []chat.ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		logging.Warn("history blob is corrupt, starting fresh", "error", err)
		return nil
	}
	return sessions
}

// SaveKeyOverrides writes the persona key overrides. Keys are stored with
// owner-only permissions.
func (m *Manager) SaveKeyOverrides(overrides []persona.KeyOverride) error {
	data, err := json.MarshalIndent(overrides, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.KeysPath(), data, 0600)
}

// LoadKeyOverrides reads the persisted key overrides. A missing or corrupt
// blob yields no overrides.
func (m *Manager) LoadKeyOverrides() []persona.KeyOverride {
	data, err := os.ReadFile(m.KeysPath())
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("failed to read key overrides", "error", err)
		}
		return nil
	}

	var overrides []persona.KeyOverride
	if err := json.Unmarshal(data, &overrides); err != nil {
		logging.Warn("key overrides blob is corrupt, ignoring", "error", err)
		return nil
	}
	return overrides
}
