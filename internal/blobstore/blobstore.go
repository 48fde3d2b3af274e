// Package blobstore stores chunk payloads in a gocloud.dev blob bucket,
// encrypting every payload with ChaCha20-Poly1305 before upload. The chunk
// name is bound into the AEAD as associated data, so a blob moved or renamed
// inside the bucket fails authentication on download.
package blobstore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
	"golang.org/x/crypto/chacha20poly1305"

	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"

	// Register blob bucket drivers
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// ChunkStore persists encrypted chunk payloads by name.
type ChunkStore interface {
	// Upload encrypts and stores one chunk payload.
	Upload(ctx context.Context, name string, data []byte) error
	// Download retrieves and decrypts one chunk payload.
	Download(ctx context.Context, name string) ([]byte, error)
	// Exists reports whether a chunk payload is stored.
	Exists(ctx context.Context, name string) (bool, error)
	// Delete removes one chunk payload. Deleting an absent payload is a no-op.
	Delete(ctx context.Context, name string) error
	// Close releases the underlying bucket.
	Close() error
}

// EncryptedBucket implements ChunkStore over a gocloud.dev blob bucket.
type EncryptedBucket struct {
	bucket *blob.Bucket
	aead   cipher.AEAD
}

// NewEncryptedBucket opens the bucket at the given URL with the given
// 32-byte encryption key.
// Supports: file://, mem://, s3://, gs://, azblob://
func NewEncryptedBucket(ctx context.Context, bucketURL string, key []byte) (*EncryptedBucket, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create chunk cipher")
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open chunk bucket")
	}

	return &EncryptedBucket{bucket: bucket, aead: aead}, nil
}

// Upload encrypts the payload and writes it as nonce||ciphertext.
func (e *EncryptedBucket) Upload(ctx context.Context, name string, data []byte) error {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return apperrors.Wrap(err, "failed to generate nonce")
	}

	sealed := e.aead.Seal(nonce, nonce, data, []byte(name))
	if err := e.bucket.WriteAll(ctx, name, sealed, nil); err != nil {
		return apperrors.Wrap(err, "failed to upload chunk")
	}
	return nil
}

// Download reads and decrypts one payload.
func (e *EncryptedBucket) Download(ctx context.Context, name string) ([]byte, error) {
	sealed, err := e.bucket.ReadAll(ctx, name)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "chunk not found")
		}
		return nil, apperrors.Wrap(err, "failed to download chunk")
	}
	if len(sealed) < e.aead.NonceSize() {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "chunk payload truncated")
	}

	nonce, ciphertext := sealed[:e.aead.NonceSize()], sealed[e.aead.NonceSize():]
	data, err := e.aead.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt chunk")
	}
	return data, nil
}

// Exists reports whether a payload is stored under the name.
func (e *EncryptedBucket) Exists(ctx context.Context, name string) (bool, error) {
	exists, err := e.bucket.Exists(ctx, name)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check chunk existence")
	}
	return exists, nil
}

// Delete removes a payload. An absent payload is not an error so purge
// retries stay idempotent.
func (e *EncryptedBucket) Delete(ctx context.Context, name string) error {
	err := e.bucket.Delete(ctx, name)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return apperrors.Wrap(err, "failed to delete chunk")
	}
	return nil
}

// Close releases the underlying bucket.
func (e *EncryptedBucket) Close() error {
	return e.bucket.Close()
}
