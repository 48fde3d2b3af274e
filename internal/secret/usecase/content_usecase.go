package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/yury-opolev/safeexchange-sub000/internal/clock"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// contentUseCase implements ContentUseCase.
type contentUseCase struct {
	metadataRepo  MetadataRepository
	contentRepo   ContentRepository
	chunkStore    ChunkStore
	authorizer    Authorizer
	purger        Purger
	clock         clock.Clock
	ticketTimeout time.Duration
	maxChunkSize  int
	logger        *slog.Logger
}

// NewContentUseCase creates a new ContentUseCase. A zero ticketTimeout
// disables stale-ticket reclamation.
func NewContentUseCase(
	metadataRepo MetadataRepository,
	contentRepo ContentRepository,
	chunkStore ChunkStore,
	authorizer Authorizer,
	purger Purger,
	clk clock.Clock,
	ticketTimeout time.Duration,
	maxChunkSize int,
	logger *slog.Logger,
) ContentUseCase {
	return &contentUseCase{
		metadataRepo:  metadataRepo,
		contentRepo:   contentRepo,
		chunkStore:    chunkStore,
		authorizer:    authorizer,
		purger:        purger,
		clock:         clk,
		ticketTimeout: ticketTimeout,
		maxChunkSize:  maxChunkSize,
		logger:        logger,
	}
}

// authorizeRead gates a read path. A caller with no permission learns only
// that the secret does not exist.
func (u *contentUseCase) authorizeRead(ctx context.Context, caller identityDomain.Subject, secretName string) error {
	allowed, err := u.authorizer.IsAuthorized(ctx, caller, secretName, permissionDomain.Read)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Wrap(apperrors.ErrNotFound, "secret not found")
	}
	return nil
}

// authorizeWrite gates a mutation path.
func (u *contentUseCase) authorizeWrite(ctx context.Context, caller identityDomain.Subject, secretName string) error {
	allowed, err := u.authorizer.IsAuthorized(ctx, caller, secretName, permissionDomain.Write)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Wrap(apperrors.ErrForbidden, "write access denied")
	}
	return nil
}

// loadContent runs the common preamble of every content operation: lazy
// purge check, authorization and stale-ticket reclamation.
func (u *contentUseCase) loadContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName string,
	write bool,
) (*secretDomain.ContentMetadata, error) {
	if err := u.purger.PurgeIfNeeded(ctx, secretName); err != nil {
		return nil, err
	}

	if write {
		if err := u.authorizeWrite(ctx, caller, secretName); err != nil {
			return nil, err
		}
	} else {
		if err := u.authorizeRead(ctx, caller, secretName); err != nil {
			return nil, err
		}
	}

	content, err := u.contentRepo.Get(ctx, secretName, contentName)
	if err != nil {
		return nil, err
	}
	return u.reclaimIfStale(ctx, content)
}

// reclaimIfStale treats a transfer whose ticket outlived the timeout as
// abandoned: the stale ticket is swapped for a private one, uploaded chunk
// blobs are deleted and the content returns to blank. Exactly one caller
// wins the swap; a racer re-reads the row and proceeds against the fresh
// state.
func (u *contentUseCase) reclaimIfStale(
	ctx context.Context,
	content *secretDomain.ContentMetadata,
) (*secretDomain.ContentMetadata, error) {
	now := u.clock.Now().UTC()
	if !content.TicketExpired(now, u.ticketTimeout) {
		return content, nil
	}

	reclaimTicket, err := secretDomain.NewAccessTicket()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate reclaim ticket")
	}

	err = u.contentRepo.SwapTicket(ctx, content.ContentName, content.AccessTicket, reclaimTicket, now)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			// Another request reclaimed first.
			return u.contentRepo.Get(ctx, content.SecretName, content.ContentName)
		}
		return nil, err
	}

	if err := u.deleteChunkData(ctx, content.ContentName); err != nil {
		return nil, err
	}
	if err := u.contentRepo.Clear(ctx, content.ContentName, reclaimTicket, now); err != nil {
		return nil, err
	}

	u.logger.Info("reclaimed abandoned content transfer",
		slog.String("secret_name", content.SecretName),
		slog.String("content_name", content.ContentName),
	)

	return u.contentRepo.Get(ctx, content.SecretName, content.ContentName)
}

// deleteChunkData removes every chunk blob and chunk record of a content item.
func (u *contentUseCase) deleteChunkData(ctx context.Context, contentName string) error {
	chunks, err := u.contentRepo.ListChunks(ctx, contentName)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		if err := u.chunkStore.Delete(ctx, chunk.ChunkName); err != nil {
			return apperrors.Wrap(err, "failed to delete chunk payload")
		}
	}
	return u.contentRepo.DeleteChunks(ctx, contentName)
}

// AddContent attaches a new blank content item to a secret.
func (u *contentUseCase) AddContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentType, fileName string,
) (*secretDomain.ContentMetadata, error) {
	if err := u.purger.PurgeIfNeeded(ctx, secretName); err != nil {
		return nil, err
	}
	if _, err := u.metadataRepo.Get(ctx, secretName); err != nil {
		return nil, err
	}
	if err := u.authorizeWrite(ctx, caller, secretName); err != nil {
		return nil, err
	}

	contentName, err := secretDomain.NewContentName()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate content name")
	}

	now := u.clock.Now().UTC()
	content := &secretDomain.ContentMetadata{
		ContentName: contentName,
		SecretName:  secretName,
		ContentType: contentType,
		FileName:    fileName,
		Status:      secretDomain.ContentStatusBlank,
		UpdatedAt:   now,
	}
	if err := u.contentRepo.Create(ctx, content); err != nil {
		return nil, err
	}
	if err := u.metadataRepo.Touch(ctx, secretName, now); err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateContentInfo persists content type and file name.
func (u *contentUseCase) UpdateContentInfo(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName, contentType, fileName string,
) error {
	content, err := u.loadContent(ctx, caller, secretName, contentName, true)
	if err != nil {
		return err
	}
	if content.IsLocked() {
		return apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation")
	}

	now := u.clock.Now().UTC()
	if err := u.contentRepo.UpdateInfo(ctx, secretName, contentName, contentType, fileName, now); err != nil {
		return err
	}
	return u.metadataRepo.Touch(ctx, secretName, now)
}

// UploadChunk stores one chunk under the ticket protocol.
func (u *contentUseCase) UploadChunk(
	ctx context.Context,
	caller identityDomain.Subject,
	params UploadChunkParams,
) (string, string, error) {
	if len(params.Data) == 0 {
		return "", "", apperrors.Wrap(apperrors.ErrInvalidInput, "empty chunk payload")
	}
	if u.maxChunkSize > 0 && len(params.Data) > u.maxChunkSize {
		return "", "", apperrors.Wrap(apperrors.ErrInvalidInput, "chunk payload too large")
	}

	content, err := u.loadContent(ctx, caller, params.SecretName, params.ContentName, true)
	if err != nil {
		return "", "", err
	}

	now := u.clock.Now().UTC()
	ticket := params.Ticket
	if ticket == "" {
		// Start of a transfer: mint a ticket and win the row or lose to a
		// concurrent holder.
		ticket, err = secretDomain.NewAccessTicket()
		if err != nil {
			return "", "", apperrors.Wrap(err, "failed to generate access ticket")
		}
		if err := u.contentRepo.AcquireTicket(ctx, params.ContentName, ticket, now); err != nil {
			return "", "", err
		}
		content, err = u.contentRepo.Get(ctx, params.SecretName, params.ContentName)
		if err != nil {
			return "", "", err
		}
	} else if content.AccessTicket != ticket {
		return "", "", apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation")
	}

	chunk := &secretDomain.ChunkMetadata{
		ChunkName:   secretDomain.ChunkName(params.ContentName, content.ChunkCount),
		ContentName: params.ContentName,
		SecretName:  params.SecretName,
		Index:       content.ChunkCount,
		Length:      int64(len(params.Data)),
		CreatedAt:   now,
	}

	if err := u.chunkStore.Upload(ctx, chunk.ChunkName, params.Data); err != nil {
		return "", "", apperrors.Wrap(err, "failed to upload chunk payload")
	}
	if err := u.contentRepo.AppendChunk(ctx, chunk, ticket); err != nil {
		// The record did not land; drop the orphaned payload.
		if deleteErr := u.chunkStore.Delete(ctx, chunk.ChunkName); deleteErr != nil {
			u.logger.Warn("failed to delete orphaned chunk payload",
				slog.String("chunk_name", chunk.ChunkName),
				slog.String("error", deleteErr.Error()),
			)
		}
		return "", "", err
	}

	if params.Final {
		if err := u.contentRepo.ReleaseTicket(ctx, params.ContentName, ticket, secretDomain.ContentStatusReady, now); err != nil {
			return "", "", err
		}
		ticket = ""
	}

	if err := u.metadataRepo.Touch(ctx, params.SecretName, now); err != nil {
		return "", "", err
	}
	return chunk.ChunkName, ticket, nil
}

// DownloadChunk returns one chunk's payload of a ready content item.
func (u *contentUseCase) DownloadChunk(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName, chunkName string,
) ([]byte, error) {
	content, err := u.loadContent(ctx, caller, secretName, contentName, false)
	if err != nil {
		return nil, err
	}
	if err := u.requireReadable(content); err != nil {
		return nil, err
	}

	chunk, err := u.contentRepo.GetChunk(ctx, contentName, chunkName)
	if err != nil {
		return nil, err
	}

	data, err := u.chunkStore.Download(ctx, chunk.ChunkName)
	if err != nil {
		return nil, err
	}

	if err := u.metadataRepo.Touch(ctx, secretName, u.clock.Now().UTC()); err != nil {
		return nil, err
	}
	return data, nil
}

// DownloadContent streams the whole content, chunks concatenated in order.
func (u *contentUseCase) DownloadContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName string,
) (*secretDomain.ContentMetadata, io.ReadCloser, error) {
	content, err := u.loadContent(ctx, caller, secretName, contentName, false)
	if err != nil {
		return nil, nil, err
	}
	if err := u.requireReadable(content); err != nil {
		return nil, nil, err
	}

	chunks, err := u.contentRepo.ListChunks(ctx, contentName)
	if err != nil {
		return nil, nil, err
	}

	if err := u.metadataRepo.Touch(ctx, secretName, u.clock.Now().UTC()); err != nil {
		return nil, nil, err
	}

	return content, newChunkStreamer(ctx, u.chunkStore, chunks), nil
}

// requireReadable gates downloads: a locked content conflicts, a content
// that is not ready is unprocessable.
func (u *contentUseCase) requireReadable(content *secretDomain.ContentMetadata) error {
	if content.IsLocked() {
		return apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation")
	}
	if content.Status != secretDomain.ContentStatusReady {
		return apperrors.Wrap(apperrors.ErrUnprocessable, "content is not ready")
	}
	return nil
}

// DropContent deletes every chunk of a content item and resets it to blank.
// The destructive cleanup holds a synthetic ticket so concurrent uploads and
// downloads observe the same mutual exclusion as a transfer.
func (u *contentUseCase) DropContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName string,
) error {
	content, err := u.loadContent(ctx, caller, secretName, contentName, true)
	if err != nil {
		return err
	}
	if content.IsLocked() {
		return apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation")
	}

	now := u.clock.Now().UTC()
	ticket, err := secretDomain.NewAccessTicket()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate access ticket")
	}
	if err := u.contentRepo.AcquireTicket(ctx, contentName, ticket, now); err != nil {
		return err
	}

	if err := u.deleteChunkData(ctx, contentName); err != nil {
		return err
	}
	if err := u.contentRepo.Clear(ctx, contentName, ticket, now); err != nil {
		return err
	}
	return u.metadataRepo.Touch(ctx, secretName, now)
}

// DeleteContent removes a non-main content item and its chunks.
func (u *contentUseCase) DeleteContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName string,
) error {
	content, err := u.loadContent(ctx, caller, secretName, contentName, true)
	if err != nil {
		return err
	}
	if content.IsMain {
		return apperrors.Wrap(apperrors.ErrUnprocessable, "main content cannot be deleted")
	}
	if content.IsLocked() {
		return apperrors.Wrap(apperrors.ErrConflict, "content is being updated by another operation")
	}

	now := u.clock.Now().UTC()
	ticket, err := secretDomain.NewAccessTicket()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate access ticket")
	}
	if err := u.contentRepo.AcquireTicket(ctx, contentName, ticket, now); err != nil {
		return err
	}

	if err := u.deleteChunkData(ctx, contentName); err != nil {
		return err
	}
	if err := u.contentRepo.Delete(ctx, contentName, ticket); err != nil {
		return err
	}
	return u.metadataRepo.Touch(ctx, secretName, now)
}

// chunkStreamer reads chunk payloads one at a time in sequence order.
type chunkStreamer struct {
	ctx    context.Context
	store  ChunkStore
	chunks []*secretDomain.ChunkMetadata
	buf    []byte
	next   int
}

func newChunkStreamer(ctx context.Context, store ChunkStore, chunks []*secretDomain.ChunkMetadata) *chunkStreamer {
	return &chunkStreamer{ctx: ctx, store: store, chunks: chunks}
}

func (s *chunkStreamer) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		if s.next >= len(s.chunks) {
			return 0, io.EOF
		}
		data, err := s.store.Download(s.ctx, s.chunks[s.next].ChunkName)
		if err != nil {
			return 0, err
		}
		s.buf = data
		s.next++
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *chunkStreamer) Close() error {
	s.buf = nil
	s.next = len(s.chunks)
	return nil
}
