package usecase

import (
	"context"
	"io"
	"time"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/metrics"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// metadataUseCaseWithMetrics decorates MetadataUseCase with metrics instrumentation.
type metadataUseCaseWithMetrics struct {
	next    MetadataUseCase
	metrics metrics.BusinessMetrics
}

// NewMetadataUseCaseWithMetrics wraps a MetadataUseCase with metrics recording.
func NewMetadataUseCaseWithMetrics(useCase MetadataUseCase, m metrics.BusinessMetrics) MetadataUseCase {
	return &metadataUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for secret creation.
func (s *metadataUseCaseWithMetrics) Create(
	ctx context.Context,
	creator identityDomain.Subject,
	params CreateSecretParams,
) (*secretDomain.ObjectMetadata, error) {
	start := time.Now()
	obj, err := s.next.Create(ctx, creator, params)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "secret_create", status)
	s.metrics.RecordDuration(ctx, "secret", "secret_create", time.Since(start), status)

	return obj, err
}

// Get records metrics for secret reads.
func (s *metadataUseCaseWithMetrics) Get(
	ctx context.Context,
	caller identityDomain.Subject,
	name string,
) (*secretDomain.ObjectMetadata, []*secretDomain.ContentMetadata, error) {
	start := time.Now()
	obj, contents, err := s.next.Get(ctx, caller, name)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "secret_get", status)
	s.metrics.RecordDuration(ctx, "secret", "secret_get", time.Since(start), status)

	return obj, contents, err
}

// Update records metrics for secret metadata updates.
func (s *metadataUseCaseWithMetrics) Update(
	ctx context.Context,
	caller identityDomain.Subject,
	name string,
	params UpdateSecretParams,
) (*secretDomain.ObjectMetadata, error) {
	start := time.Now()
	obj, err := s.next.Update(ctx, caller, name, params)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "secret_update", status)
	s.metrics.RecordDuration(ctx, "secret", "secret_update", time.Since(start), status)

	return obj, err
}

// Delete records metrics for secret deletion.
func (s *metadataUseCaseWithMetrics) Delete(
	ctx context.Context,
	caller identityDomain.Subject,
	name string,
) error {
	start := time.Now()
	err := s.next.Delete(ctx, caller, name)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "secret_delete", status)
	s.metrics.RecordDuration(ctx, "secret", "secret_delete", time.Since(start), status)

	return err
}

// contentUseCaseWithMetrics decorates ContentUseCase with metrics instrumentation.
type contentUseCaseWithMetrics struct {
	next    ContentUseCase
	metrics metrics.BusinessMetrics
}

// NewContentUseCaseWithMetrics wraps a ContentUseCase with metrics recording.
func NewContentUseCaseWithMetrics(useCase ContentUseCase, m metrics.BusinessMetrics) ContentUseCase {
	return &contentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// AddContent records metrics for content item creation.
func (s *contentUseCaseWithMetrics) AddContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentType, fileName string,
) (*secretDomain.ContentMetadata, error) {
	start := time.Now()
	content, err := s.next.AddContent(ctx, caller, secretName, contentType, fileName)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "content_add", status)
	s.metrics.RecordDuration(ctx, "secret", "content_add", time.Since(start), status)

	return content, err
}

// UpdateContentInfo records metrics for content info updates.
func (s *contentUseCaseWithMetrics) UpdateContentInfo(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName, contentType, fileName string,
) error {
	start := time.Now()
	err := s.next.UpdateContentInfo(ctx, caller, secretName, contentName, contentType, fileName)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "content_update_info", status)
	s.metrics.RecordDuration(ctx, "secret", "content_update_info", time.Since(start), status)

	return err
}

// DropContent records metrics for content drops.
func (s *contentUseCaseWithMetrics) DropContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName string,
) error {
	start := time.Now()
	err := s.next.DropContent(ctx, caller, secretName, contentName)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "content_drop", status)
	s.metrics.RecordDuration(ctx, "secret", "content_drop", time.Since(start), status)

	return err
}

// DeleteContent records metrics for content deletion.
func (s *contentUseCaseWithMetrics) DeleteContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName string,
) error {
	start := time.Now()
	err := s.next.DeleteContent(ctx, caller, secretName, contentName)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "content_delete", status)
	s.metrics.RecordDuration(ctx, "secret", "content_delete", time.Since(start), status)

	return err
}

// UploadChunk records metrics for chunk uploads.
func (s *contentUseCaseWithMetrics) UploadChunk(
	ctx context.Context,
	caller identityDomain.Subject,
	params UploadChunkParams,
) (chunkName, ticket string, err error) {
	start := time.Now()
	chunkName, ticket, err = s.next.UploadChunk(ctx, caller, params)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "chunk_upload", status)
	s.metrics.RecordDuration(ctx, "secret", "chunk_upload", time.Since(start), status)

	return chunkName, ticket, err
}

// DownloadChunk records metrics for chunk downloads.
func (s *contentUseCaseWithMetrics) DownloadChunk(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName, chunkName string,
) ([]byte, error) {
	start := time.Now()
	data, err := s.next.DownloadChunk(ctx, caller, secretName, contentName, chunkName)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "chunk_download", status)
	s.metrics.RecordDuration(ctx, "secret", "chunk_download", time.Since(start), status)

	return data, err
}

// DownloadContent records metrics for whole-content downloads.
func (s *contentUseCaseWithMetrics) DownloadContent(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName, contentName string,
) (*secretDomain.ContentMetadata, io.ReadCloser, error) {
	start := time.Now()
	content, reader, err := s.next.DownloadContent(ctx, caller, secretName, contentName)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secret", "content_download", status)
	s.metrics.RecordDuration(ctx, "secret", "content_download", time.Since(start), status)

	return content, reader, err
}
