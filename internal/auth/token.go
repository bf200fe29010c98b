package auth

import (
	"strings"
	"sync"
)

// TokenStore holds acquired credential values keyed by logical name.
type TokenStore struct {
	mu     sync.RWMutex
	byName map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{byName: make(map[string]string)}
}

func (s *TokenStore) Set(name, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || value == "" {
		return
	}
	s.mu.Lock()
	s.byName[name] = value
	s.mu.Unlock()
}

func (s *TokenStore) Get(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	s.mu.RLock()
	v, ok := s.byName[name]
	s.mu.RUnlock()
	return v, ok
}

// Snapshot returns a copy of all stored values, for template data.
func (s *TokenStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.byName))
	for k, v := range s.byName {
		out[k] = v
	}
	return out
}

func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.byName = make(map[string]string)
	s.mu.Unlock()
}

var defaultStore = NewTokenStore()

// SetToken stores a value in the shared store under a logical name.
func SetToken(name, value string) { defaultStore.Set(name, value) }

// Token looks up a value by logical name in the shared store.
func Token(name string) (string, bool) { return defaultStore.Get(name) }

// Snapshot returns a copy of all values in the shared store.
func Snapshot() map[string]string { return defaultStore.Snapshot() }

// ClearTokens drops everything from the shared store.
func ClearTokens() { defaultStore.Clear() }
