package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()

	store := NewKeyringStore("http://localhost:8000")

	token, err := store.Get()
	require.NoError(t, err)
	require.Empty(t, token, "missing entry should read as empty")

	require.NoError(t, store.Set("abc"))
	token, err = store.Get()
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	require.NoError(t, store.Set("def"))
	token, err = store.Get()
	require.NoError(t, err)
	require.Equal(t, "def", token, "set should overwrite")

	require.NoError(t, store.Clear())
	token, err = store.Get()
	require.NoError(t, err)
	require.Empty(t, token)

	// Clearing twice is not an error
	require.NoError(t, store.Clear())
}

func TestKeyringStore_SurvivesNewInstance(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, NewKeyringStore("http://hr.example.com/").Set("persisted"))

	token, err := NewKeyringStore("https://hr.example.com").Get()
	require.NoError(t, err)
	require.Equal(t, "persisted", token)
}

func TestKeyringStore_SeparatesBackends(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, NewKeyringStore("http://a.example.com").Set("token-a"))

	token, err := NewKeyringStore("http://b.example.com").Get()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestGetKeyringKey(t *testing.T) {
	require.Equal(t, "token-localhost:8000", getKeyringKey("http://localhost:8000/"))
	require.Equal(t, "token-hr.example.com/api", getKeyringKey("https://hr.example.com/api/"))
	require.Equal(t, "token-not a url", getKeyringKey("not a url"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("seed")

	token, err := store.Get()
	require.NoError(t, err)
	require.Equal(t, "seed", token)

	require.NoError(t, store.Clear())
	token, _ = store.Get()
	require.Empty(t, token)
}
