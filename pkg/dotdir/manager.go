// Package dotdir manages the .kotori/ and ~/.kotori directories.
//
// The directory holds config.toml, credentials.toml, the local sqlite-vec
// database, and the interactive chat session history.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the kotori directory.
	dirName = ".kotori"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .kotori/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.kotori/ dir
//  3. Home ~/.kotori/ dir
//
// If none of these exist, Target returns an empty string and no error.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating kotori directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if isDir(filepath.Join(cwd, dirName)) {
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if isDir(filepath.Join(home, dirName)) {
		return filepath.Join(home, dirName), nil
	}

	return "", nil
}

// EnsureTarget behaves like Target but creates ~/.kotori/ when nothing
// else resolves. Commands that must write state (auth, ingest, chat history)
// use this.
func (m *Manager) EnsureTarget(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	if target != "" {
		return target, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	target = filepath.Join(home, dirName)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("creating kotori dir: %w", err)
	}
	return target, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
