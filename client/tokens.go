package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists the admin bearer token between calls.
type TokenStore interface {
	Get() string
	Set(token string) error
	Clear() error
	IsExpired() bool
}

// tokenExpired reads exp without verifying the signature; the server does
// that. Unparseable tokens count as expired, tokens without exp never expire.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// tokenSubject returns the unverified sub claim, used as the session name.
func tokenSubject(token string) string {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	return claims.Subject
}

// MemoryTokenStore keeps the token for the lifetime of the process.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{now: time.Now}
}

func (s *MemoryTokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.Set("")
}

func (s *MemoryTokenStore) IsExpired() bool {
	return tokenExpired(s.Get(), s.now())
}

// FileTokenStore persists the token as a JSON object keyed by the
// configured token and session key names, e.g.
//
//	{"cv_api_token": "<jwt>", "cv_api_session": "owner"}
type FileTokenStore struct {
	mu         sync.Mutex
	path       string
	tokenKey   string
	sessionKey string
	now        func() time.Time
}

// NewFileTokenStore stores under path. The file is created on first Set.
func NewFileTokenStore(path, tokenKey, sessionKey string) *FileTokenStore {
	return &FileTokenStore{
		path:       path,
		tokenKey:   tokenKey,
		sessionKey: sessionKey,
		now:        time.Now,
	}
}

// DefaultTokenPath is ~/.folio/session.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".folio", "session.json"), nil
}

func (s *FileTokenStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("corrupt token file %s: %w", s.path, err)
	}
	return values, nil
}

func (s *FileTokenStore) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return ""
	}
	return values[s.tokenKey]
}

// Session returns the subject recorded alongside the token.
func (s *FileTokenStore) Session() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return ""
	}
	return values[s.sessionKey]
}

func (s *FileTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		values = map[string]string{}
	}
	values[s.tokenKey] = token
	values[s.sessionKey] = tokenSubject(token)
	return s.save(values)
}

// Clear removes only this store's keys; unrelated keys in the file survive.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return os.Remove(s.path)
	}
	delete(values, s.tokenKey)
	delete(values, s.sessionKey)
	return s.save(values)
}

func (s *FileTokenStore) IsExpired() bool {
	return tokenExpired(s.Get(), s.now())
}
