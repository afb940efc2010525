package auth

import "sync"

// TokenStore holds the single bearer token of the CLI.
// This allows us to swap the keyring for memory in tests
type TokenStore interface {
	// Get returns "" with a nil error when no token is stored.
	Get() (string, error)
	Set(token string) error
	Clear() error
}

var (
	_ TokenStore = (*KeyringStore)(nil)
	_ TokenStore = (*MemoryStore)(nil)
)

// MemoryStore keeps the token in process memory only
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store seeded with token (may be empty)
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
