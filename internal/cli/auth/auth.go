package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	service = "hireboard-cli"
)

// getKeyringKey returns the key holding the bearer token for one backend.
// Scheme and trailing slashes are dropped so http://host:8000/ and
// http://host:8000 share an entry.
func getKeyringKey(baseURL string) string {
	host := strings.TrimRight(baseURL, "/")
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Host + strings.TrimRight(u.Path, "/")
	}
	return fmt.Sprintf("token-%s", host)
}

// KeyringStore persists the bearer token in the OS keychain/credential manager
type KeyringStore struct {
	key string
}

// NewKeyringStore returns a store holding the token for the given backend
func NewKeyringStore(baseURL string) *KeyringStore {
	return &KeyringStore{key: getKeyringKey(baseURL)}
}

// Get returns the stored token, or "" if none has been saved
func (s *KeyringStore) Get() (string, error) {
	token, err := keyring.Get(service, s.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Set persists the token, replacing any previous one
func (s *KeyringStore) Set(token string) error {
	if err := keyring.Set(service, s.key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the token
func (s *KeyringStore) Clear() error {
	if err := keyring.Delete(service, s.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
