package domain

import (
	"fmt"
	"strings"
)

// DefaultKeyPrefix is prepended to the uid to form the catalog storage key
const DefaultKeyPrefix = "driveFiles_"

// Identity is the stable account reference of a signed-in user
type Identity struct {
	UID   string `yaml:"uid" json:"uid"`
	Email string `yaml:"email" json:"email"`
}

// NewIdentity validates and creates an identity
func NewIdentity(uid, email string) (*Identity, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("uid cannot be empty")
	}
	if strings.ContainsAny(uid, "/\\ \t\n") {
		return nil, fmt.Errorf("uid contains invalid characters: %q", uid)
	}

	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %q", email)
	}

	return &Identity{UID: uid, Email: email}, nil
}

// StorageKey returns the key under which this identity's catalog is stored.
// An empty prefix falls back to DefaultKeyPrefix.
func (i Identity) StorageKey(prefix string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + i.UID
}

// DisplayName returns the email when known, otherwise the uid
func (i Identity) DisplayName() string {
	if i.Email != "" {
		return i.Email
	}
	return i.UID
}
