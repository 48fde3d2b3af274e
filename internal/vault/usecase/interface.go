// Package usecase implements business logic for legacy single-value secrets:
// keeper-encrypted versioned storage with soft deletion and physical sweep.
package usecase

import (
	"context"
	"time"

	vaultDomain "github.com/yury-opolev/safeexchange-sub000/internal/vault/domain"
)

// ValueRepository defines the interface for vault value persistence operations.
type ValueRepository interface {
	Create(ctx context.Context, value *vaultDomain.VaultValue) error
	GetLatest(ctx context.Context, secretName string) (*vaultDomain.VaultValue, error)
	GetByVersion(ctx context.Context, secretName string, version uint) (*vaultDomain.VaultValue, error)
	SoftDelete(ctx context.Context, secretName string, at time.Time) error
	Purge(ctx context.Context, secretName string) error
	ListSoftDeletedBefore(ctx context.Context, threshold time.Time, limit int) ([]string, error)
}

// ValueUseCase defines the interface for vault value business logic.
type ValueUseCase interface {
	// Set stores a new version of a secret's value.
	Set(ctx context.Context, secretName string, value []byte) error
	// Get retrieves and decrypts the latest version of a secret's value.
	//
	// Security Note: The returned value contains plaintext data in the
	// Plaintext field. Callers MUST zero it after use via domain.Zero.
	Get(ctx context.Context, secretName string) (*vaultDomain.VaultValue, error)
	// GetByVersion retrieves and decrypts a specific version.
	GetByVersion(ctx context.Context, secretName string, version uint) (*vaultDomain.VaultValue, error)
	// SoftDelete marks every version as deleted without removing ciphertext.
	SoftDelete(ctx context.Context, secretName string) error
	// Purge physically removes every version.
	Purge(ctx context.Context, secretName string) error
	// SweepSoftDeleted physically removes values soft-deleted longer ago than
	// the retention period. It returns the number of purged secrets.
	SweepSoftDeleted(ctx context.Context, retention time.Duration, limit int) (int, error)
}
