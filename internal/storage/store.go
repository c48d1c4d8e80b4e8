// Package storage persists the console's small key-value state (session
// token, role, verification flag, selected vendor) between invocations.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/odg-delivery/console/internal/config"
)

// Persisted keys
const (
	KeyToken      = "token"
	KeyRole       = "role"
	KeyIsVerified = "isVerified"
	KeyVendorID   = "vendorId"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is a durable string key-value store.
// Get reports ok=false for a missing key; Delete of a missing key is not an error.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Open returns the store selected by cfg.Driver
func Open(cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "file":
		path := cfg.Path
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "storage.json")
		}
		return NewFile(path), nil
	case "keyring":
		return NewKeyring(keyringService), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "storage.sqlite")
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
