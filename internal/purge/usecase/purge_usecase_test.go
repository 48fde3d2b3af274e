package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yury-opolev/safeexchange-sub000/internal/clock"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	"github.com/yury-opolev/safeexchange-sub000/internal/purge/usecase/mocks"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

type purgeDeps struct {
	metadataRepo      *mocks.MockMetadataRepository
	contentRepo       *mocks.MockContentRepository
	chunkStore        *mocks.MockChunkStore
	permissionRepo    *mocks.MockPermissionRepository
	accessRequestRepo *mocks.MockAccessRequestRepository
	valueRepo         *mocks.MockValueRepository
	txManager         *mocks.MockTxManager
	clock             *clock.FakeClock
}

func newPurgeUseCase(t *testing.T) (purgeDeps, PurgeUseCase) {
	t.Helper()

	deps := purgeDeps{
		metadataRepo:      new(mocks.MockMetadataRepository),
		contentRepo:       new(mocks.MockContentRepository),
		chunkStore:        new(mocks.MockChunkStore),
		permissionRepo:    new(mocks.MockPermissionRepository),
		accessRequestRepo: new(mocks.MockAccessRequestRepository),
		valueRepo:         new(mocks.MockValueRepository),
		txManager:         new(mocks.MockTxManager),
		clock:             clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := NewPurgeUseCase(
		deps.metadataRepo, deps.contentRepo, deps.chunkStore,
		deps.permissionRepo, deps.accessRequestRepo, deps.valueRepo,
		deps.txManager, deps.clock, 100, 4, logger,
	)
	return deps, uc
}

// expectFullTeardown registers the row teardown expectations of one purge.
func (d purgeDeps) expectFullTeardown(ctx context.Context, name string) {
	d.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
	d.contentRepo.On("DeleteBySecret", mock.Anything, name).Return(nil)
	d.permissionRepo.On("DeleteBySecret", mock.Anything, name).Return(nil)
	d.accessRequestRepo.On("DeleteBySecret", mock.Anything, name).Return(nil)
	d.valueRepo.On("Purge", mock.Anything, name).Return(nil)
	d.metadataRepo.On("Delete", mock.Anything, name).Return(nil)
}

func TestPurgeUseCase_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("removes payloads and every dependent row", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		deps.contentRepo.On("ListBySecret", ctx, "s1").Return([]*secretDomain.ContentMetadata{
			{ContentName: "content-a"},
			{ContentName: "content-b"},
		}, nil)
		deps.contentRepo.On("ListChunks", ctx, "content-a").Return([]*secretDomain.ChunkMetadata{
			{ChunkName: "content-a-00000000"},
			{ChunkName: "content-a-00000001"},
		}, nil)
		deps.contentRepo.On("ListChunks", ctx, "content-b").Return([]*secretDomain.ChunkMetadata{}, nil)
		deps.chunkStore.On("Delete", ctx, "content-a-00000000").Return(nil)
		deps.chunkStore.On("Delete", ctx, "content-a-00000001").Return(nil)
		deps.expectFullTeardown(ctx, "s1")

		require.NoError(t, uc.Purge(ctx, "s1"))
		deps.chunkStore.AssertExpectations(t)
		deps.permissionRepo.AssertExpectations(t)
		deps.accessRequestRepo.AssertExpectations(t)
		deps.valueRepo.AssertExpectations(t)
		deps.metadataRepo.AssertExpectations(t)
	})

	t.Run("blob failure leaves rows in place", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		deps.contentRepo.On("ListBySecret", ctx, "s1").Return([]*secretDomain.ContentMetadata{
			{ContentName: "content-a"},
		}, nil)
		deps.contentRepo.On("ListChunks", ctx, "content-a").Return([]*secretDomain.ChunkMetadata{
			{ChunkName: "content-a-00000000"},
		}, nil)
		deps.chunkStore.On("Delete", ctx, "content-a-00000000").Return(assert.AnError)

		err := uc.Purge(ctx, "s1")
		assert.Error(t, err)
		deps.metadataRepo.AssertNotCalled(t, "Delete")
		deps.contentRepo.AssertNotCalled(t, "DeleteBySecret")
	})
}

func TestPurgeUseCase_PurgeIfNeeded(t *testing.T) {
	ctx := context.Background()

	expired := func(deps purgeDeps) *secretDomain.ObjectMetadata {
		return &secretDomain.ObjectMetadata{
			ObjectName:     "s1",
			LastAccessedAt: deps.clock.Now().Add(-48 * time.Hour),
			Expiration: secretDomain.ExpirationMetadata{
				ExpireOnIdleTime: true,
				IdleTimeToExpire: 24 * time.Hour,
			},
		}
	}

	t.Run("expired secret is purged", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		deps.metadataRepo.On("Get", ctx, "s1").Return(expired(deps), nil)
		deps.contentRepo.On("ListBySecret", ctx, "s1").Return([]*secretDomain.ContentMetadata{}, nil)
		deps.expectFullTeardown(ctx, "s1")

		require.NoError(t, uc.PurgeIfNeeded(ctx, "s1"))
		deps.metadataRepo.AssertExpectations(t)
	})

	t.Run("live secret is untouched", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		obj := expired(deps)
		obj.LastAccessedAt = deps.clock.Now()
		deps.metadataRepo.On("Get", ctx, "s1").Return(obj, nil)

		require.NoError(t, uc.PurgeIfNeeded(ctx, "s1"))
		deps.metadataRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("missing secret is not an error", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		deps.metadataRepo.On("Get", ctx, "ghost").Return(nil, apperrors.ErrNotFound)

		require.NoError(t, uc.PurgeIfNeeded(ctx, "ghost"))
	})

	t.Run("scheduled expiration boundary counts as expired", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		obj := &secretDomain.ObjectMetadata{
			ObjectName:     "s1",
			LastAccessedAt: deps.clock.Now(),
			Expiration: secretDomain.ExpirationMetadata{
				ScheduleExpiration: true,
				ExpireAt:           deps.clock.Now(),
			},
		}
		deps.metadataRepo.On("Get", ctx, "s1").Return(obj, nil)
		deps.contentRepo.On("ListBySecret", ctx, "s1").Return([]*secretDomain.ContentMetadata{}, nil)
		deps.expectFullTeardown(ctx, "s1")

		require.NoError(t, uc.PurgeIfNeeded(ctx, "s1"))
		deps.metadataRepo.AssertExpectations(t)
	})
}

func TestPurgeUseCase_SweepExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("purges the whole batch", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		deps.metadataRepo.On("ListExpired", ctx, deps.clock.Now(), 100).
			Return([]string{"s1", "s2"}, nil)
		for _, name := range []string{"s1", "s2"} {
			deps.contentRepo.On("ListBySecret", mock.Anything, name).
				Return([]*secretDomain.ContentMetadata{}, nil)
			deps.expectFullTeardown(ctx, name)
		}

		purged, err := uc.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, purged)
	})

	t.Run("a failing item is skipped", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		deps.metadataRepo.On("ListExpired", ctx, deps.clock.Now(), 100).
			Return([]string{"bad", "good"}, nil)
		deps.contentRepo.On("ListBySecret", mock.Anything, "bad").Return(nil, assert.AnError)
		deps.contentRepo.On("ListBySecret", mock.Anything, "good").
			Return([]*secretDomain.ContentMetadata{}, nil)
		deps.expectFullTeardown(ctx, "good")

		purged, err := uc.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, purged)
	})

	t.Run("empty batch", func(t *testing.T) {
		deps, uc := newPurgeUseCase(t)
		deps.metadataRepo.On("ListExpired", ctx, deps.clock.Now(), 100).Return([]string{}, nil)

		purged, err := uc.SweepExpired(ctx)
		require.NoError(t, err)
		assert.Zero(t, purged)
	})
}
