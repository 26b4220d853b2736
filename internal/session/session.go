package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/kobzarvs/vtext/internal/logger"
)

// FileState stores the caret of a single file
type FileState struct {
	Caret           int `json:"caret"`
	SelectionLength int `json:"selection_length,omitempty"`
}

// Session stores the complete editor session state
type Session struct {
	Files      map[string]FileState `json:"files"`
	ActiveFile string               `json:"active_file,omitempty"`
	LastSaved  time.Time            `json:"last_saved"`
}

// Manager handles session persistence. It is used from the UI goroutine
// only.
type Manager struct {
	session Session
	path    string
	dirty   bool
}

// NewManager returns a manager backed by the file at path and loads it
// when it exists.
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		session: Session{Files: make(map[string]FileState)},
		path:    path,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultPath is session.json under $VTEXT_STATE_HOME, $XDG_STATE_HOME/vtext
// or ~/.local/state/vtext.
func DefaultPath() (string, error) {
	if v := os.Getenv("VTEXT_STATE_HOME"); v != "" {
		return filepath.Join(v, "session.json"), nil
	}
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "vtext", "session.json"), nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("session: discarding corrupt file", "path", m.path, "error", err)
		return nil
	}
	if session.Files == nil {
		session.Files = make(map[string]FileState)
	}
	m.session = session
	return nil
}

// Save persists the session to disk when something changed
func (m *Manager) Save() error {
	if !m.dirty {
		return nil
	}

	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return err
	}

	m.dirty = false
	return nil
}

// FileState returns the saved state for a file
func (m *Manager) FileState(absPath string) (FileState, bool) {
	state, ok := m.session.Files[absPath]
	return state, ok
}

// SetFileState updates the state for a file and makes it the active one
func (m *Manager) SetFileState(absPath string, state FileState) {
	if cur, ok := m.session.Files[absPath]; ok && cur == state && m.session.ActiveFile == absPath {
		return
	}
	m.session.Files[absPath] = state
	m.session.ActiveFile = absPath
	m.dirty = true
}

// ActiveFile returns the last active file
func (m *Manager) ActiveFile() string {
	return m.session.ActiveFile
}
