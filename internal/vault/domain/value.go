// Package domain defines the models for legacy single-value secrets. Values
// use an immutable versioning system where each update creates a new row with
// an incremented version number, encrypted through an external keeper.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// VaultValue represents one encrypted version of a secret's legacy value.
type VaultValue struct {
	// ID is the unique identifier for this specific value version.
	ID uuid.UUID
	// SecretName is the owning secret.
	SecretName string
	// Version is the monotonically increasing version number for this secret.
	Version uint
	// Ciphertext contains the keeper-encrypted value.
	Ciphertext []byte
	// Plaintext holds the decrypted value in memory only; must be zeroed after use.
	Plaintext []byte `json:"-"`
	// CreatedAt is the UTC timestamp when this version was created.
	CreatedAt time.Time
	// DeletedAt marks when this version was soft-deleted (nil if active).
	DeletedAt *time.Time
}

// Zero overwrites a sensitive byte slice in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
