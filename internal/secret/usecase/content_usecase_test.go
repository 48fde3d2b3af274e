package usecase_test

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
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/secret/usecase"
	"github.com/yury-opolev/safeexchange-sub000/internal/secret/usecase/mocks"
)

const testTicketTimeout = 10 * time.Minute

type contentDeps struct {
	metadataRepo *mocks.MockMetadataRepository
	contentRepo  *mocks.MockContentRepository
	chunkStore   *mocks.MockChunkStore
	authorizer   *mocks.MockAuthorizer
	purger       *mocks.MockPurger
	clock        *clock.FakeClock
}

func newContentUseCase(t *testing.T) (contentDeps, usecase.ContentUseCase) {
	t.Helper()

	deps := contentDeps{
		metadataRepo: new(mocks.MockMetadataRepository),
		contentRepo:  new(mocks.MockContentRepository),
		chunkStore:   new(mocks.MockChunkStore),
		authorizer:   new(mocks.MockAuthorizer),
		purger:       new(mocks.MockPurger),
		clock:        clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := usecase.NewContentUseCase(
		deps.metadataRepo, deps.contentRepo, deps.chunkStore,
		deps.authorizer, deps.purger, deps.clock,
		testTicketTimeout, 1024, logger,
	)
	return deps, uc
}

// allowAccess satisfies the common preamble of content operations.
func (d contentDeps) allowAccess(ctx context.Context, secretName string, bits permissionDomain.Mask) {
	d.purger.On("PurgeIfNeeded", ctx, secretName).Return(nil)
	d.authorizer.On("IsAuthorized", ctx, creator(), secretName, bits).Return(true, nil)
}

func blankContent() *secretDomain.ContentMetadata {
	return &secretDomain.ContentMetadata{
		ContentName: "content-a",
		SecretName:  "s1",
		Status:      secretDomain.ContentStatusBlank,
	}
}

func lockedContent(ticket string, setAt time.Time) *secretDomain.ContentMetadata {
	return &secretDomain.ContentMetadata{
		ContentName:  "content-a",
		SecretName:   "s1",
		Status:       secretDomain.ContentStatusUpdating,
		AccessTicket: ticket,
		TicketSetAt:  &setAt,
		ChunkCount:   1,
		TotalSize:    3,
	}
}

func readyContent() *secretDomain.ContentMetadata {
	return &secretDomain.ContentMetadata{
		ContentName: "content-a",
		SecretName:  "s1",
		Status:      secretDomain.ContentStatusReady,
		ChunkCount:  2,
		TotalSize:   6,
	}
}

func TestContentUseCase_UploadChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("first chunk mints a ticket", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(blankContent(), nil).Once()
		deps.contentRepo.On("AcquireTicket", ctx, "content-a", mock.MatchedBy(func(ticket string) bool {
			return ticket != ""
		}), deps.clock.Now()).Return(nil)
		acquired := lockedContent("", deps.clock.Now())
		acquired.ChunkCount = 0
		acquired.TotalSize = 0
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(acquired, nil).Once()
		deps.chunkStore.On("Upload", ctx, "content-a-00000000", []byte("abc")).Return(nil)
		deps.contentRepo.On("AppendChunk", ctx, mock.MatchedBy(func(chunk *secretDomain.ChunkMetadata) bool {
			return chunk.ChunkName == "content-a-00000000" && chunk.Index == 0 && chunk.Length == 3
		}), mock.Anything).Return(nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		chunkName, ticket, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Data:        []byte("abc"),
		})
		require.NoError(t, err)
		assert.Equal(t, "content-a-00000000", chunkName)
		assert.NotEmpty(t, ticket)
		deps.contentRepo.AssertExpectations(t)
	})

	t.Run("final chunk releases the ticket and readies the content", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").
			Return(lockedContent("ticket-1", deps.clock.Now()), nil)
		deps.chunkStore.On("Upload", ctx, "content-a-00000001", []byte("def")).Return(nil)
		deps.contentRepo.On("AppendChunk", ctx, mock.Anything, "ticket-1").Return(nil)
		deps.contentRepo.On("ReleaseTicket", ctx, "content-a", "ticket-1",
			secretDomain.ContentStatusReady, deps.clock.Now()).Return(nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		chunkName, ticket, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Ticket:      "ticket-1",
			Final:       true,
			Data:        []byte("def"),
		})
		require.NoError(t, err)
		assert.Equal(t, "content-a-00000001", chunkName)
		assert.Empty(t, ticket)
		deps.contentRepo.AssertExpectations(t)
	})

	t.Run("concurrent first chunk loses the ticket race", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(blankContent(), nil)
		deps.contentRepo.On("AcquireTicket", ctx, "content-a", mock.Anything, mock.Anything).
			Return(apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation"))

		_, _, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Data:        []byte("abc"),
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		deps.chunkStore.AssertNotCalled(t, "Upload")
	})

	t.Run("wrong ticket conflicts", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").
			Return(lockedContent("ticket-1", deps.clock.Now()), nil)

		_, _, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Ticket:      "ticket-2",
			Data:        []byte("abc"),
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		deps.chunkStore.AssertNotCalled(t, "Upload")
	})

	t.Run("orphaned payload is deleted when the append lands on a lost ticket", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").
			Return(lockedContent("ticket-1", deps.clock.Now()), nil)
		deps.chunkStore.On("Upload", ctx, "content-a-00000001", []byte("abc")).Return(nil)
		deps.contentRepo.On("AppendChunk", ctx, mock.Anything, "ticket-1").
			Return(apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation"))
		deps.chunkStore.On("Delete", ctx, "content-a-00000001").Return(nil)

		_, _, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Ticket:      "ticket-1",
			Data:        []byte("abc"),
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		deps.chunkStore.AssertExpectations(t)
	})

	t.Run("empty payload is rejected", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		_, _, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		deps.purger.AssertNotCalled(t, "PurgeIfNeeded")
	})

	t.Run("oversized payload is rejected", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		_, _, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Data:        make([]byte, 1025),
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		deps.purger.AssertNotCalled(t, "PurgeIfNeeded")
	})

	t.Run("missing write permission is forbidden", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.purger.On("PurgeIfNeeded", ctx, "s1").Return(nil)
		deps.authorizer.On("IsAuthorized", ctx, creator(), "s1", permissionDomain.Write).Return(false, nil)

		_, _, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Data:        []byte("abc"),
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestContentUseCase_StaleTicketReclamation(t *testing.T) {
	ctx := context.Background()

	t.Run("abandoned transfer is reclaimed before the next operation", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		stale := lockedContent("ticket-old", deps.clock.Now())
		deps.clock.Advance(testTicketTimeout + time.Minute)
		now := deps.clock.Now()

		deps.allowAccess(ctx, "s1", permissionDomain.Read)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(stale, nil).Once()
		deps.contentRepo.On("SwapTicket", ctx, "content-a", "ticket-old",
			mock.MatchedBy(func(fresh string) bool { return fresh != "" && fresh != "ticket-old" }),
			now).Return(nil)
		deps.contentRepo.On("ListChunks", ctx, "content-a").Return([]*secretDomain.ChunkMetadata{
			{ChunkName: "content-a-00000000", ContentName: "content-a"},
		}, nil)
		deps.chunkStore.On("Delete", ctx, "content-a-00000000").Return(nil)
		deps.contentRepo.On("DeleteChunks", ctx, "content-a").Return(nil)
		deps.contentRepo.On("Clear", ctx, "content-a", mock.Anything, now).Return(nil)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(blankContent(), nil).Once()

		_, _, err := uc.DownloadContent(ctx, creator(), "s1", "content-a")
		assert.ErrorIs(t, err, apperrors.ErrUnprocessable)
		deps.chunkStore.AssertExpectations(t)
		deps.chunkStore.AssertNotCalled(t, "Download")
		deps.contentRepo.AssertExpectations(t)
	})

	t.Run("losing the reclaim race re-reads the fresh state", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		stale := lockedContent("ticket-old", deps.clock.Now())
		deps.clock.Advance(testTicketTimeout + time.Minute)

		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(stale, nil).Once()
		deps.contentRepo.On("SwapTicket", ctx, "content-a", "ticket-old", mock.Anything, mock.Anything).
			Return(apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation"))
		deps.contentRepo.On("Get", ctx, "s1", "content-a").
			Return(lockedContent("ticket-racer", deps.clock.Now()), nil).Once()

		_, _, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Ticket:      "ticket-old",
			Data:        []byte("abc"),
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		deps.chunkStore.AssertNotCalled(t, "Delete", ctx, mock.Anything)
	})

	t.Run("fresh ticket survives the timeout check", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").
			Return(lockedContent("ticket-1", deps.clock.Now()), nil)
		deps.chunkStore.On("Upload", ctx, "content-a-00000001", []byte("abc")).Return(nil)
		deps.contentRepo.On("AppendChunk", ctx, mock.Anything, "ticket-1").Return(nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		_, ticket, err := uc.UploadChunk(ctx, creator(), usecase.UploadChunkParams{
			SecretName:  "s1",
			ContentName: "content-a",
			Ticket:      "ticket-1",
			Data:        []byte("abc"),
		})
		require.NoError(t, err)
		assert.Equal(t, "ticket-1", ticket)
		deps.contentRepo.AssertNotCalled(t, "SwapTicket")
	})
}

func TestContentUseCase_DownloadChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("ready content serves a chunk", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Read)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(readyContent(), nil)
		deps.contentRepo.On("GetChunk", ctx, "content-a", "content-a-00000000").
			Return(&secretDomain.ChunkMetadata{ChunkName: "content-a-00000000"}, nil)
		deps.chunkStore.On("Download", ctx, "content-a-00000000").Return([]byte("abc"), nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		data, err := uc.DownloadChunk(ctx, creator(), "s1", "content-a", "content-a-00000000")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), data)
	})

	t.Run("locked content conflicts", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Read)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").
			Return(lockedContent("ticket-1", deps.clock.Now()), nil)

		_, err := uc.DownloadChunk(ctx, creator(), "s1", "content-a", "content-a-00000000")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		deps.chunkStore.AssertNotCalled(t, "Download")
	})

	t.Run("blank content is unprocessable", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Read)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(blankContent(), nil)

		_, err := uc.DownloadChunk(ctx, creator(), "s1", "content-a", "content-a-00000000")
		assert.ErrorIs(t, err, apperrors.ErrUnprocessable)
	})

	t.Run("zero permission hides existence", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.purger.On("PurgeIfNeeded", ctx, "s1").Return(nil)
		deps.authorizer.On("IsAuthorized", ctx, creator(), "s1", permissionDomain.Read).Return(false, nil)

		_, err := uc.DownloadChunk(ctx, creator(), "s1", "content-a", "content-a-00000000")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestContentUseCase_DownloadContent(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks stream concatenated in order", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Read)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(readyContent(), nil)
		deps.contentRepo.On("ListChunks", ctx, "content-a").Return([]*secretDomain.ChunkMetadata{
			{ChunkName: "content-a-00000000"},
			{ChunkName: "content-a-00000001"},
		}, nil)
		deps.chunkStore.On("Download", ctx, "content-a-00000000").Return([]byte("abc"), nil)
		deps.chunkStore.On("Download", ctx, "content-a-00000001").Return([]byte("def"), nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		content, reader, err := uc.DownloadContent(ctx, creator(), "s1", "content-a")
		require.NoError(t, err)
		defer reader.Close()

		assert.Equal(t, int64(6), content.TotalSize)
		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, "abcdef", string(data))
	})

	t.Run("empty ready content streams nothing", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Read)
		ready := readyContent()
		ready.ChunkCount = 0
		ready.TotalSize = 0
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(ready, nil)
		deps.contentRepo.On("ListChunks", ctx, "content-a").Return([]*secretDomain.ChunkMetadata{}, nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		_, reader, err := uc.DownloadContent(ctx, creator(), "s1", "content-a")
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestContentUseCase_DropContent(t *testing.T) {
	ctx := context.Background()

	t.Run("resets the content to blank under a synthetic ticket", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(readyContent(), nil)
		deps.contentRepo.On("AcquireTicket", ctx, "content-a", mock.MatchedBy(func(ticket string) bool {
			return ticket != ""
		}), deps.clock.Now()).Return(nil)
		deps.contentRepo.On("ListChunks", ctx, "content-a").Return([]*secretDomain.ChunkMetadata{
			{ChunkName: "content-a-00000000"},
			{ChunkName: "content-a-00000001"},
		}, nil)
		deps.chunkStore.On("Delete", ctx, "content-a-00000000").Return(nil)
		deps.chunkStore.On("Delete", ctx, "content-a-00000001").Return(nil)
		deps.contentRepo.On("DeleteChunks", ctx, "content-a").Return(nil)
		deps.contentRepo.On("Clear", ctx, "content-a", mock.Anything, deps.clock.Now()).Return(nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		require.NoError(t, uc.DropContent(ctx, creator(), "s1", "content-a"))
		deps.chunkStore.AssertExpectations(t)
		deps.contentRepo.AssertExpectations(t)
	})

	t.Run("locked content conflicts", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").
			Return(lockedContent("ticket-1", deps.clock.Now()), nil)

		err := uc.DropContent(ctx, creator(), "s1", "content-a")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		deps.contentRepo.AssertNotCalled(t, "AcquireTicket")
	})
}

func TestContentUseCase_DeleteContent(t *testing.T) {
	ctx := context.Background()

	t.Run("removes a secondary content item", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(readyContent(), nil)
		deps.contentRepo.On("AcquireTicket", ctx, "content-a", mock.Anything, deps.clock.Now()).Return(nil)
		deps.contentRepo.On("ListChunks", ctx, "content-a").Return([]*secretDomain.ChunkMetadata{
			{ChunkName: "content-a-00000000"},
		}, nil)
		deps.chunkStore.On("Delete", ctx, "content-a-00000000").Return(nil)
		deps.contentRepo.On("DeleteChunks", ctx, "content-a").Return(nil)
		deps.contentRepo.On("Delete", ctx, "content-a", mock.Anything).Return(nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		require.NoError(t, uc.DeleteContent(ctx, creator(), "s1", "content-a"))
		deps.contentRepo.AssertExpectations(t)
	})

	t.Run("main content cannot be deleted", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		main := readyContent()
		main.IsMain = true
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(main, nil)

		err := uc.DeleteContent(ctx, creator(), "s1", "content-a")
		assert.ErrorIs(t, err, apperrors.ErrUnprocessable)
		deps.contentRepo.AssertNotCalled(t, "Delete")
	})
}

func TestContentUseCase_AddContent(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches a blank content item", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.metadataRepo.On("Get", ctx, "s1").Return(&secretDomain.ObjectMetadata{ObjectName: "s1"}, nil)
		deps.contentRepo.On("Create", ctx, mock.MatchedBy(func(content *secretDomain.ContentMetadata) bool {
			return content.SecretName == "s1" && !content.IsMain &&
				content.Status == secretDomain.ContentStatusBlank &&
				content.ContentType == "application/pdf" && content.FileName == "report.pdf"
		})).Return(nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		content, err := uc.AddContent(ctx, creator(), "s1", "application/pdf", "report.pdf")
		require.NoError(t, err)
		assert.Regexp(t, "^content-", content.ContentName)
	})

	t.Run("unknown secret", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.purger.On("PurgeIfNeeded", ctx, "ghost").Return(nil)
		deps.metadataRepo.On("Get", ctx, "ghost").Return(nil, apperrors.ErrNotFound)

		_, err := uc.AddContent(ctx, creator(), "ghost", "", "")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestContentUseCase_UpdateContentInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("persists content type and file name", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").Return(readyContent(), nil)
		deps.contentRepo.On("UpdateInfo", ctx, "s1", "content-a", "text/plain", "notes.txt",
			deps.clock.Now()).Return(nil)
		deps.metadataRepo.On("Touch", ctx, "s1", deps.clock.Now()).Return(nil)

		require.NoError(t, uc.UpdateContentInfo(ctx, creator(), "s1", "content-a", "text/plain", "notes.txt"))
	})

	t.Run("locked content conflicts", func(t *testing.T) {
		deps, uc := newContentUseCase(t)
		deps.allowAccess(ctx, "s1", permissionDomain.Write)
		deps.contentRepo.On("Get", ctx, "s1", "content-a").
			Return(lockedContent("ticket-1", deps.clock.Now()), nil)

		err := uc.UpdateContentInfo(ctx, creator(), "s1", "content-a", "text/plain", "notes.txt")
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		deps.contentRepo.AssertNotCalled(t, "UpdateInfo")
	})
}
