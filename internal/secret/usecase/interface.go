// Package usecase implements secret metadata management and the chunked
// content protocol: time-boxed exclusive access tickets serialize multi-step
// uploads, downloads are gated on a released ready state, and abandoned
// transfers are reclaimed lazily on the next touch of the content.
package usecase

import (
	"context"
	"io"
	"time"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// MetadataRepository defines the interface for secret object persistence operations.
type MetadataRepository interface {
	Create(ctx context.Context, obj *secretDomain.ObjectMetadata) error
	Get(ctx context.Context, name string) (*secretDomain.ObjectMetadata, error)
	Update(ctx context.Context, obj *secretDomain.ObjectMetadata) error
	Touch(ctx context.Context, name string, at time.Time) error
	Delete(ctx context.Context, name string) error
	ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// ContentRepository defines the interface for content and chunk persistence
// operations. Ticket transitions are compare-and-swap: each guarded call
// fails with ErrConflict when the stored ticket does not match.
type ContentRepository interface {
	Create(ctx context.Context, content *secretDomain.ContentMetadata) error
	Get(ctx context.Context, secretName, contentName string) (*secretDomain.ContentMetadata, error)
	ListBySecret(ctx context.Context, secretName string) ([]*secretDomain.ContentMetadata, error)
	UpdateInfo(ctx context.Context, secretName, contentName, contentType, fileName string, at time.Time) error
	AcquireTicket(ctx context.Context, contentName, ticket string, at time.Time) error
	SwapTicket(ctx context.Context, contentName, oldTicket, newTicket string, at time.Time) error
	ReleaseTicket(ctx context.Context, contentName, ticket string, status secretDomain.ContentStatus, at time.Time) error
	Clear(ctx context.Context, contentName, ticket string, at time.Time) error
	Delete(ctx context.Context, contentName, ticket string) error
	AppendChunk(ctx context.Context, chunk *secretDomain.ChunkMetadata, ticket string) error
	GetChunk(ctx context.Context, contentName, chunkName string) (*secretDomain.ChunkMetadata, error)
	ListChunks(ctx context.Context, contentName string) ([]*secretDomain.ChunkMetadata, error)
	DeleteChunks(ctx context.Context, contentName string) error
	DeleteBySecret(ctx context.Context, secretName string) error
}

// ChunkStore persists encrypted chunk payloads by name.
type ChunkStore interface {
	Upload(ctx context.Context, name string, data []byte) error
	Download(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// ValueStore holds legacy single-value secrets outside chunk storage.
type ValueStore interface {
	Set(ctx context.Context, secretName string, value []byte) error
}

// Authorizer is the slice of the authorization engine the secret operations need.
type Authorizer interface {
	IsAuthorized(ctx context.Context, subject identityDomain.Subject, secretName string, required permissionDomain.Mask) (bool, error)
	SetPermission(ctx context.Context, secretName string, target identityDomain.Subject, bits permissionDomain.Mask) error
}

// Purger removes a secret and its dependents when due.
type Purger interface {
	PurgeIfNeeded(ctx context.Context, secretName string) error
	Purge(ctx context.Context, secretName string) error
}

// TxManager runs a function inside a database transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateSecretParams carries the inputs for creating a secret.
type CreateSecretParams struct {
	Name          string
	Description   string
	Expiration    secretDomain.ExpirationMetadata
	KeepInStorage bool
	// Value is the legacy single-value payload, stored through the ValueStore
	// when KeepInStorage is false.
	Value []byte
}

// UpdateSecretParams carries the inputs for updating a secret's metadata.
type UpdateSecretParams struct {
	Description string
	Expiration  secretDomain.ExpirationMetadata
}

// MetadataUseCase manages secret objects and their lifecycle.
type MetadataUseCase interface {
	// Create registers a new secret with one blank main content item and a
	// full permission grant to the creator.
	Create(ctx context.Context, creator identityDomain.Subject, params CreateSecretParams) (*secretDomain.ObjectMetadata, error)
	// Get returns the secret's metadata and content list. Reading stamps the
	// last access time.
	Get(ctx context.Context, caller identityDomain.Subject, name string) (*secretDomain.ObjectMetadata, []*secretDomain.ContentMetadata, error)
	// Update persists description and expiration settings.
	Update(ctx context.Context, caller identityDomain.Subject, name string, params UpdateSecretParams) (*secretDomain.ObjectMetadata, error)
	// Delete purges the secret and everything it owns.
	Delete(ctx context.Context, caller identityDomain.Subject, name string) error
}

// UploadChunkParams carries the inputs for one chunk upload call.
type UploadChunkParams struct {
	SecretName  string
	ContentName string
	// Ticket is empty on the first call of a transfer and must carry the
	// minted value on every subsequent call.
	Ticket string
	// Final marks the last chunk: the ticket is cleared and the content
	// becomes ready.
	Final bool
	Data  []byte
}

// ContentUseCase manages content items and the chunk transfer protocol.
type ContentUseCase interface {
	// AddContent attaches a new blank content item to a secret.
	AddContent(ctx context.Context, caller identityDomain.Subject, secretName, contentType, fileName string) (*secretDomain.ContentMetadata, error)
	// UpdateContentInfo persists content type and file name.
	UpdateContentInfo(ctx context.Context, caller identityDomain.Subject, secretName, contentName, contentType, fileName string) error
	// DropContent deletes every chunk of a content item and resets it to blank.
	DropContent(ctx context.Context, caller identityDomain.Subject, secretName, contentName string) error
	// DeleteContent removes a non-main content item and its chunks.
	DeleteContent(ctx context.Context, caller identityDomain.Subject, secretName, contentName string) error
	// UploadChunk stores one chunk under the ticket protocol. It returns the
	// stored chunk name and the ticket the caller must present on the next
	// call, empty once the transfer is final.
	UploadChunk(ctx context.Context, caller identityDomain.Subject, params UploadChunkParams) (chunkName, ticket string, err error)
	// DownloadChunk returns one chunk's payload of a ready content item.
	DownloadChunk(ctx context.Context, caller identityDomain.Subject, secretName, contentName, chunkName string) ([]byte, error)
	// DownloadContent streams the whole content, chunks concatenated in order.
	DownloadContent(ctx context.Context, caller identityDomain.Subject, secretName, contentName string) (*secretDomain.ContentMetadata, io.ReadCloser, error)
}
