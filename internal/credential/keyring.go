package credential

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/99designs/keyring"
)

const (
	serviceName = "goal-tracker"

	// TokenKey is the fixed keyring item key the session token lives under.
	TokenKey = "session-token"
)

// Store persists the session token across program runs.
type Store interface {
	// Get returns the persisted token, or "" when none is stored.
	Get() (string, error)
	// Set persists token, replacing any previous value.
	Set(token string) error
	// Clear removes the persisted token. Clearing an empty store is not an error.
	Clear() error
}

// Options configures the keyring backing a KeyringStore.
type Options struct {
	// Backends restricts the allowed keyring backends by name
	// ("keychain", "secret-service", "wincred", "pass", "file").
	// Empty means every supported backend.
	Backends []string

	// FileDir is the directory used by the encrypted file backend.
	FileDir string
}

var defaultBackends = []keyring.BackendType{
	keyring.KeychainBackend,
	keyring.SecretServiceBackend,
	keyring.WinCredBackend,
	keyring.PassBackend,
	keyring.FileBackend,
}

// KeyringStore is a Store backed by the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// Open returns a KeyringStore using the system keyring.
func Open(opts Options) (*KeyringStore, error) {
	backends := defaultBackends
	if len(opts.Backends) > 0 {
		backends = make([]keyring.BackendType, 0, len(opts.Backends))
		for _, b := range opts.Backends {
			backends = append(backends, keyring.BackendType(b))
		}
	}

	fileDir := opts.FileDir
	if fileDir == "" {
		fileDir = "~/.config/goal-tracker/credentials"
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          backends,
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("goal-tracker-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

// NewKeyringStore wraps an already opened keyring. Tests pass
// keyring.NewArrayKeyring here.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// Get retrieves the session token from the keyring.
func (s *KeyringStore) Get() (string, error) {
	item, err := s.ring.Get(TokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting credential %q: %w", TokenKey, err)
	}

	return string(item.Data), nil
}

// Set stores the session token in the keyring.
func (s *KeyringStore) Set(token string) error {
	err := s.ring.Set(keyring.Item{
		Key:   TokenKey,
		Data:  []byte(token),
		Label: "Goals Tracker session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", TokenKey, err)
	}

	return nil
}

// Clear removes the session token from the keyring. The file backend
// reports a missing token as fs.ErrNotExist rather than ErrKeyNotFound.
func (s *KeyringStore) Clear() error {
	err := s.ring.Remove(TokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting credential %q: %w", TokenKey, err)
	}

	return nil
}
