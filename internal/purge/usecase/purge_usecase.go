package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/yury-opolev/safeexchange-sub000/internal/clock"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
)

// purgeUseCase implements the PurgeUseCase interface.
type purgeUseCase struct {
	metadataRepo      MetadataRepository
	contentRepo       ContentRepository
	chunkStore        ChunkStore
	permissionRepo    PermissionRepository
	accessRequestRepo AccessRequestRepository
	valueRepo         ValueRepository
	txManager         TxManager
	clock             clock.Clock
	batchSize         int
	concurrency       int
	logger            *slog.Logger
}

// NewPurgeUseCase creates a new PurgeUseCase.
func NewPurgeUseCase(
	metadataRepo MetadataRepository,
	contentRepo ContentRepository,
	chunkStore ChunkStore,
	permissionRepo PermissionRepository,
	accessRequestRepo AccessRequestRepository,
	valueRepo ValueRepository,
	txManager TxManager,
	clk clock.Clock,
	batchSize int,
	concurrency int,
	logger *slog.Logger,
) PurgeUseCase {
	return &purgeUseCase{
		metadataRepo:      metadataRepo,
		contentRepo:       contentRepo,
		chunkStore:        chunkStore,
		permissionRepo:    permissionRepo,
		accessRequestRepo: accessRequestRepo,
		valueRepo:         valueRepo,
		txManager:         txManager,
		clock:             clk,
		batchSize:         batchSize,
		concurrency:       concurrency,
		logger:            logger,
	}
}

// PurgeIfNeeded tears the secret down when its expiration has passed.
func (u *purgeUseCase) PurgeIfNeeded(ctx context.Context, secretName string) error {
	obj, err := u.metadataRepo.Get(ctx, secretName)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	if !obj.Expiration.IsExpired(u.clock.Now().UTC(), obj.LastAccessedAt) {
		return nil
	}

	u.logger.Info("purging expired secret", slog.String("secret_name", secretName))
	return u.Purge(ctx, secretName)
}

// Purge tears the secret down unconditionally. Chunk payloads go first so a
// failure leaves the database rows in place and the purge retryable; the row
// teardown then commits in one transaction.
func (u *purgeUseCase) Purge(ctx context.Context, secretName string) error {
	contents, err := u.contentRepo.ListBySecret(ctx, secretName)
	if err != nil {
		return err
	}

	for _, content := range contents {
		chunks, err := u.contentRepo.ListChunks(ctx, content.ContentName)
		if err != nil {
			return err
		}
		for _, chunk := range chunks {
			if err := u.chunkStore.Delete(ctx, chunk.ChunkName); err != nil {
				return apperrors.Wrap(err, "failed to delete chunk payload")
			}
		}
	}

	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.contentRepo.DeleteBySecret(txCtx, secretName); err != nil {
			return err
		}
		if err := u.permissionRepo.DeleteBySecret(txCtx, secretName); err != nil {
			return err
		}
		if err := u.accessRequestRepo.DeleteBySecret(txCtx, secretName); err != nil {
			return err
		}
		if err := u.valueRepo.Purge(txCtx, secretName); err != nil {
			return err
		}
		return u.metadataRepo.Delete(txCtx, secretName)
	})
}

// SweepExpired purges a batch of expired secrets concurrently.
func (u *purgeUseCase) SweepExpired(ctx context.Context) (int, error) {
	names, err := u.metadataRepo.ListExpired(ctx, u.clock.Now().UTC(), u.batchSize)
	if err != nil {
		return 0, err
	}

	var purged atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for _, name := range names {
		g.Go(func() error {
			if err := u.Purge(gCtx, name); err != nil {
				u.logger.Error("failed to purge expired secret",
					slog.String("secret_name", name),
					slog.Any("error", err),
				)
				return nil
			}
			purged.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(purged.Load()), err
	}
	return int(purged.Load()), nil
}
