package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	s := NewKeyringStore(keyring.NewArrayKeyring(nil))

	token, err := s.Get()
	require.NoError(t, err)
	assert.Empty(t, token, "empty store yields no token")

	require.NoError(t, s.Set("abc.def"))
	token, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	require.NoError(t, s.Set("rotated"))
	token, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "rotated", token)

	require.NoError(t, s.Clear())
	token, err = s.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestKeyringStoreClearWhenEmpty(t *testing.T) {
	s := NewKeyringStore(keyring.NewArrayKeyring(nil))
	assert.NoError(t, s.Clear())
	assert.NoError(t, s.Clear())
}

func TestKeyringStoreUsesFixedKey(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	s := NewKeyringStore(ring)
	require.NoError(t, s.Set("tok"))

	item, err := ring.Get(TokenKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), item.Data)
}

func TestFileBackendClearWhenSignedOut(t *testing.T) {
	s, err := Open(Options{Backends: []string{"file"}, FileDir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Clear(), "nothing stored yet")

	require.NoError(t, s.Set("abc.def"))
	token, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "already cleared")

	token, err = s.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
}
