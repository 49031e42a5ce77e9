package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const keyringService = "taskflow-cli"

// KeyringStore persists the session in the OS keychain/credential manager,
// one entry per field, namespaced by API base URL
type KeyringStore struct {
	namespace string
	mu        sync.Mutex
}

// NewKeyringStore returns a store for the API at baseURL
func NewKeyringStore(baseURL string) *KeyringStore {
	return &KeyringStore{namespace: strings.TrimRight(baseURL, "/")}
}

// key returns a unique key for a field per API
func (k *KeyringStore) key(field Field) string {
	return fmt.Sprintf("%s-%s", field, k.namespace)
}

func (k *KeyringStore) Get(field Field) (string, bool) {
	value, err := keyring.Get(keyringService, k.key(field))
	if err != nil {
		return "", false
	}
	return value, true
}

func (k *KeyringStore) Set(field Field, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := keyring.Set(keyringService, k.key(field), value); err != nil {
		return fmt.Errorf("failed to save %s: %w", field, err)
	}
	return nil
}

// ClearAll removes every field, ignoring entries that are already gone
func (k *KeyringStore) ClearAll() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var errs []error
	for _, field := range Fields {
		if err := keyring.Delete(keyringService, k.key(field)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", field, err))
		}
	}
	return errors.Join(errs...)
}
