package storage

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "odg-console"

// Keyring stores each key as a separate secret in the OS keychain/credential manager
type Keyring struct {
	service string
}

// NewKeyring returns a keyring-backed store under the given service name
func NewKeyring(service string) *Keyring {
	return &Keyring{service: service}
}

func (k *Keyring) Get(key string) (string, bool, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load %s from keyring: %w", key, err)
	}
	return value, true, nil
}

func (k *Keyring) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", key, err)
	}
	return nil
}

func (k *Keyring) Delete(key string) error {
	if err := keyring.Delete(k.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
