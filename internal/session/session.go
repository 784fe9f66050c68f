// Package session persists the API access token between invocations.
// A Store is created once and handed to whatever needs the token.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoSession is returned by Load when no token has been saved
var ErrNoSession = errors.New("not logged in")

// Session is an authenticated API session
type Session struct {
	Token     string    `yaml:"token"`
	TokenType string    `yaml:"token_type,omitempty"`
	Email     string    `yaml:"email,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

// Store loads, saves and clears the session file. An empty path keeps the
// session in memory only.
type Store struct {
	path string

	mu      sync.RWMutex
	current *Session
}

// NewStore creates a store backed by path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Load reads the session file. A missing file or an empty token is ErrNoSession.
func (s *Store) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.current == nil {
			return nil, ErrNoSession
		}
		sess := *s.current
		return &sess, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.current = nil
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	if sess.Token == "" {
		s.current = nil
		return nil, ErrNoSession
	}

	s.current = &sess
	out := sess
	return &out, nil
}

// Save replaces the session and writes it to disk
func (s *Store) Save(sess Session) error {
	if sess.Token == "" {
		return errors.New("session token is empty")
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		dir := filepath.Dir(s.path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating session directory: %w", err)
		}

		data, err := yaml.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("marshaling session: %w", err)
		}

		if err := os.WriteFile(s.path, data, 0600); err != nil {
			return fmt.Errorf("writing session file: %w", err)
		}
	}

	s.current = &sess
	return nil
}

// Clear forgets the session and removes the file
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// Token returns the token of the last loaded or saved session, or ""
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Authenticated reports whether a token is present
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}
