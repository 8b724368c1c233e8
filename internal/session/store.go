package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TokenStore persists the raw token. Load returns "" when nothing usable is
// stored, including a token whose cookie has expired.
type TokenStore interface {
	Load() (string, error)
	Save(token string, expires time.Time) error
	Clear() error
}

// FileCookieStore keeps the token as an authToken cookie serialized to a file,
// so it survives process restarts the way a browser cookie does.
type FileCookieStore struct {
	path string
}

func NewFileCookieStore(path string) *FileCookieStore {
	return &FileCookieStore{path: path}
}

func (s *FileCookieStore) Load() (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read session cookie: %w", err)
	}

	var cookie http.Cookie
	if err := json.Unmarshal(raw, &cookie); err != nil {
		return "", fmt.Errorf("decode session cookie: %w", err)
	}
	if cookie.Name != CookieName || cookie.Value == "" {
		return "", nil
	}
	if !cookie.Expires.IsZero() && !time.Now().Before(cookie.Expires) {
		_ = s.Clear()
		return "", nil
	}
	return cookie.Value, nil
}

func (s *FileCookieStore) Save(token string, expires time.Time) error {
	cookie := http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires.UTC(),
		SameSite: http.SameSiteLaxMode,
	}
	raw, err := json.Marshal(cookie)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session cookie: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write session cookie: %w", err)
	}
	return nil
}

func (s *FileCookieStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session cookie: %w", err)
	}
	return nil
}

// MemoryStore is a TokenStore that lives only as long as the process.
type MemoryStore struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" || !time.Now().Before(m.expires) {
		return "", nil
	}
	return m.token, nil
}

func (m *MemoryStore) Save(token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.expires = token, expires
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.expires = "", time.Time{}
	return nil
}

// Expires reports the expiry the last Save was given.
func (m *MemoryStore) Expires() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expires
}
