// Package usecase implements the purge engine: expired secrets are torn down
// lazily on access and in batches by a background sweep, removing chunk
// payloads, database rows and legacy vault values.
package usecase

import (
	"context"
	"time"

	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// MetadataRepository is the slice of secret object persistence the purge engine needs.
type MetadataRepository interface {
	Get(ctx context.Context, name string) (*secretDomain.ObjectMetadata, error)
	Delete(ctx context.Context, name string) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// ContentRepository is the slice of content persistence the purge engine needs.
type ContentRepository interface {
	ListBySecret(ctx context.Context, secretName string) ([]*secretDomain.ContentMetadata, error)
	ListChunks(ctx context.Context, contentName string) ([]*secretDomain.ChunkMetadata, error)
	DeleteBySecret(ctx context.Context, secretName string) error
}

// ChunkStore deletes chunk payloads by name.
type ChunkStore interface {
	Delete(ctx context.Context, name string) error
}

// PermissionRepository removes permission rows of a purged secret.
type PermissionRepository interface {
	DeleteBySecret(ctx context.Context, secretName string) error
}

// AccessRequestRepository removes access requests of a purged secret.
type AccessRequestRepository interface {
	DeleteBySecret(ctx context.Context, secretName string) error
}

// ValueRepository removes legacy vault values of a purged secret.
type ValueRepository interface {
	Purge(ctx context.Context, secretName string) error
}

// TxManager runs a function inside a database transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PurgeUseCase defines the interface for the purge engine.
type PurgeUseCase interface {
	// PurgeIfNeeded tears the secret down when its expiration has passed.
	// A missing secret is not an error.
	PurgeIfNeeded(ctx context.Context, secretName string) error
	// Purge tears the secret down unconditionally: chunk payloads, chunk and
	// content rows, permissions, access requests, vault values and the
	// object row itself.
	Purge(ctx context.Context, secretName string) error
	// SweepExpired purges a batch of expired secrets concurrently. A failing
	// item is logged and skipped. It returns the number of purged secrets.
	SweepExpired(ctx context.Context) (int, error)
}
