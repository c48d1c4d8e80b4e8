package auth

import (
	"fmt"

	"github.com/odg-delivery/console/internal/storage"
)

// Session is the client-held authentication state
type Session struct {
	Token      string `json:"token"`
	Role       Role   `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

// Authenticated reports whether a token is present. The other fields do
// not matter without one.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// loadSession reads the persisted session keys
func loadSession(store storage.Store) (Session, error) {
	token, _, err := store.Get(storage.KeyToken)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load token: %w", err)
	}

	role, _, err := store.Get(storage.KeyRole)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load role: %w", err)
	}

	verified, _, err := store.Get(storage.KeyIsVerified)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load verification flag: %w", err)
	}

	return Session{
		Token:      token,
		Role:       Role(role),
		IsVerified: verified == "true",
	}, nil
}
