package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	sessionFile = "session.json"

	// MaxHistory is the number of turns retained in the client-side session.
	// Durable memory lives in the vector store and is not bounded by this.
	MaxHistory = 15
)

// HistoryEntry is one completed turn shown in the chat session history.
type HistoryEntry struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Agent     string    `json:"agent"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the persisted interactive session history.
type Session struct {
	Entries []HistoryEntry `json:"entries"`
}

// Append records a turn. A turn whose query equals the previous turn's query
// is skipped and Append returns false. The oldest entries are dropped once
// the session exceeds MaxHistory.
func (s *Session) Append(e HistoryEntry) bool {
	if n := len(s.Entries); n > 0 && s.Entries[n-1].Query == e.Query {
		return false
	}

	s.Entries = append(s.Entries, e)
	if len(s.Entries) > MaxHistory {
		s.Entries = s.Entries[len(s.Entries)-MaxHistory:]
	}
	return true
}

// Recent returns up to n entries, newest first.
func (s *Session) Recent(n int) []HistoryEntry {
	if n <= 0 || n > len(s.Entries) {
		n = len(s.Entries)
	}

	out := make([]HistoryEntry, 0, n)
	for i := len(s.Entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.Entries[i])
	}
	return out
}

// LoadSession reads session.json from the resolved .kotori/ directory.
// A missing directory or file yields an empty session.
func (m *Manager) LoadSession(overrideDir string) (*Session, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}
	if target == "" {
		return &Session{}, nil
	}

	data, err := os.ReadFile(filepath.Join(target, sessionFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	return s, nil
}

// SaveSession writes the session to session.json, creating ~/.kotori/ if
// no directory resolves.
func (m *Manager) SaveSession(overrideDir string, s *Session) error {
	if s == nil {
		return errors.New("cannot save nil session")
	}

	target, err := m.EnsureTarget(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.WriteFile(filepath.Join(target, sessionFile), data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// ClearSession removes session.json. Clearing a session that does not exist
// is not an error.
func (m *Manager) ClearSession(overrideDir string) error {
	target, err := m.Target(overrideDir)
	if err != nil || target == "" {
		return err
	}

	err = os.Remove(filepath.Join(target, sessionFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
