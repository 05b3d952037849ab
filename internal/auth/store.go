// Package auth authenticates protocol requests against the configured users.
//
// A [Store] loads each user's secret on first use and keeps it for the life of the process; edits to a
// password file are not picked up until restart. A [Gate] applies the protocol's two credential schemes.
package auth

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/desertthunder/tonearm/internal/shared"
)

// User is a configured account as seen by handlers.
type User struct {
	Name     string
	Email    string
	Scrobble bool
}

// Store caches user secrets loaded from configuration.
type Store struct {
	users map[string]shared.UserConfig

	mu      sync.Mutex
	secrets map[string]string
}

// NewStore creates a Store over the configured users.
func NewStore(users map[string]shared.UserConfig) *Store {
	copied := make(map[string]shared.UserConfig, len(users))
	for name, u := range users {
		copied[name] = u
	}
	return &Store{users: copied, secrets: make(map[string]string)}
}

// Open reports whether no users are configured, in which case every request is accepted.
func (s *Store) Open() bool {
	return len(s.users) == 0
}

// Names returns the configured user names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// User returns the settings for name.
func (s *Store) User(name string) (User, bool) {
	u, ok := s.users[name]
	if !ok {
		return User{}, false
	}
	return User{Name: name, Email: u.Email, Scrobble: u.Scrobble}, true
}

// Secret returns the plaintext secret for name, reading the password file the first time it is needed.
func (s *Store) Secret(name string) (string, bool, error) {
	u, ok := s.users[name]
	if !ok {
		return "", false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if secret, ok := s.secrets[name]; ok {
		return secret, true, nil
	}

	secret := u.Password
	if u.PasswordFile != "" {
		b, err := os.ReadFile(u.PasswordFile)
		if err != nil {
			return "", true, fmt.Errorf("failed to read password file for %s: %w", name, err)
		}
		secret = strings.TrimRight(string(b), "\r\n")
	}

	s.secrets[name] = secret
	return secret, true, nil
}
