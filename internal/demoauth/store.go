package demoauth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// StorageKey is the entry holding the token in the storage file.
	StorageKey = "demo_auth_token"
	DemoToken  = "demo-token"

	minPasswordLength = 6
)

var (
	ErrInvalidEmail  = errors.New("Please enter a valid email.")
	ErrShortPassword = errors.New("Password must be at least 6 characters.")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail is a practical shape check, not RFC validation.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Store keeps the demo token in a small YAML file. The token authenticates
// nothing on the server; it only gates navigation in the dashboard.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is auth.yaml under the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "employee-dashboard", "auth.yaml")
}

func (s *Store) Path() string {
	return s.path
}

// Token returns the stored token, or "" when there is none or the file
// cannot be read.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return ""
	}
	return values[StorageKey]
}

func (s *Store) IsAuthed() bool {
	return s.Token() != ""
}

// Login checks the credentials' shape and stores the demo token. There is no
// server round-trip.
func (s *Store) Login(email, password string) error {
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return ErrShortPassword
	}
	return s.set(DemoToken)
}

// Logout forgets the token.
func (s *Store) Logout() error {
	return s.set("")
}

func (s *Store) set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		values = map[string]string{}
	}
	if token == "" {
		delete(values, StorageKey)
	} else {
		values[StorageKey] = token
	}
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}
