// Package mocks provides mock implementations of the secret usecase interfaces.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/secret/usecase"
)

// MockMetadataRepository is a mock implementation of usecase.MetadataRepository.
type MockMetadataRepository struct {
	mock.Mock
}

func (m *MockMetadataRepository) Create(ctx context.Context, obj *secretDomain.ObjectMetadata) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *MockMetadataRepository) Get(ctx context.Context, name string) (*secretDomain.ObjectMetadata, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.ObjectMetadata), args.Error(1)
}

func (m *MockMetadataRepository) Update(ctx context.Context, obj *secretDomain.ObjectMetadata) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *MockMetadataRepository) Touch(ctx context.Context, name string, at time.Time) error {
	args := m.Called(ctx, name, at)
	return args.Error(0)
}

func (m *MockMetadataRepository) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockMetadataRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockContentRepository is a mock implementation of usecase.ContentRepository.
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, content *secretDomain.ContentMetadata) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func (m *MockContentRepository) Get(ctx context.Context, secretName, contentName string) (*secretDomain.ContentMetadata, error) {
	args := m.Called(ctx, secretName, contentName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.ContentMetadata), args.Error(1)
}

func (m *MockContentRepository) ListBySecret(ctx context.Context, secretName string) ([]*secretDomain.ContentMetadata, error) {
	args := m.Called(ctx, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretDomain.ContentMetadata), args.Error(1)
}

func (m *MockContentRepository) UpdateInfo(ctx context.Context, secretName, contentName, contentType, fileName string, at time.Time) error {
	args := m.Called(ctx, secretName, contentName, contentType, fileName, at)
	return args.Error(0)
}

func (m *MockContentRepository) AcquireTicket(ctx context.Context, contentName, ticket string, at time.Time) error {
	args := m.Called(ctx, contentName, ticket, at)
	return args.Error(0)
}

func (m *MockContentRepository) SwapTicket(ctx context.Context, contentName, oldTicket, newTicket string, at time.Time) error {
	args := m.Called(ctx, contentName, oldTicket, newTicket, at)
	return args.Error(0)
}

func (m *MockContentRepository) ReleaseTicket(ctx context.Context, contentName, ticket string, status secretDomain.ContentStatus, at time.Time) error {
	args := m.Called(ctx, contentName, ticket, status, at)
	return args.Error(0)
}

func (m *MockContentRepository) Clear(ctx context.Context, contentName, ticket string, at time.Time) error {
	args := m.Called(ctx, contentName, ticket, at)
	return args.Error(0)
}

func (m *MockContentRepository) Delete(ctx context.Context, contentName, ticket string) error {
	args := m.Called(ctx, contentName, ticket)
	return args.Error(0)
}

func (m *MockContentRepository) AppendChunk(ctx context.Context, chunk *secretDomain.ChunkMetadata, ticket string) error {
	args := m.Called(ctx, chunk, ticket)
	return args.Error(0)
}

func (m *MockContentRepository) GetChunk(ctx context.Context, contentName, chunkName string) (*secretDomain.ChunkMetadata, error) {
	args := m.Called(ctx, contentName, chunkName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.ChunkMetadata), args.Error(1)
}

func (m *MockContentRepository) ListChunks(ctx context.Context, contentName string) ([]*secretDomain.ChunkMetadata, error) {
	args := m.Called(ctx, contentName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretDomain.ChunkMetadata), args.Error(1)
}

func (m *MockContentRepository) DeleteChunks(ctx context.Context, contentName string) error {
	args := m.Called(ctx, contentName)
	return args.Error(0)
}

func (m *MockContentRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockChunkStore is a mock implementation of usecase.ChunkStore.
type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) Upload(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockChunkStore) Download(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockChunkStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockValueStore is a mock implementation of usecase.ValueStore.
type MockValueStore struct {
	mock.Mock
}

func (m *MockValueStore) Set(ctx context.Context, secretName string, value []byte) error {
	args := m.Called(ctx, secretName, value)
	return args.Error(0)
}

// MockAuthorizer is a mock implementation of usecase.Authorizer.
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) IsAuthorized(ctx context.Context, subject identityDomain.Subject, secretName string, required permissionDomain.Mask) (bool, error) {
	args := m.Called(ctx, subject, secretName, required)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizer) SetPermission(ctx context.Context, secretName string, target identityDomain.Subject, bits permissionDomain.Mask) error {
	args := m.Called(ctx, secretName, target, bits)
	return args.Error(0)
}

// MockPurger is a mock implementation of usecase.Purger.
type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) PurgeIfNeeded(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

func (m *MockPurger) Purge(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockTxManager is a mock implementation of usecase.TxManager.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockMetadataUseCase is a mock implementation of usecase.MetadataUseCase.
type MockMetadataUseCase struct {
	mock.Mock
}

func (m *MockMetadataUseCase) Create(ctx context.Context, creator identityDomain.Subject, params usecase.CreateSecretParams) (*secretDomain.ObjectMetadata, error) {
	args := m.Called(ctx, creator, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.ObjectMetadata), args.Error(1)
}

func (m *MockMetadataUseCase) Get(ctx context.Context, caller identityDomain.Subject, name string) (*secretDomain.ObjectMetadata, []*secretDomain.ContentMetadata, error) {
	args := m.Called(ctx, caller, name)
	var obj *secretDomain.ObjectMetadata
	var contents []*secretDomain.ContentMetadata
	if args.Get(0) != nil {
		obj = args.Get(0).(*secretDomain.ObjectMetadata)
	}
	if args.Get(1) != nil {
		contents = args.Get(1).([]*secretDomain.ContentMetadata)
	}
	return obj, contents, args.Error(2)
}

func (m *MockMetadataUseCase) Update(ctx context.Context, caller identityDomain.Subject, name string, params usecase.UpdateSecretParams) (*secretDomain.ObjectMetadata, error) {
	args := m.Called(ctx, caller, name, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.ObjectMetadata), args.Error(1)
}

func (m *MockMetadataUseCase) Delete(ctx context.Context, caller identityDomain.Subject, name string) error {
	args := m.Called(ctx, caller, name)
	return args.Error(0)
}

// MockContentUseCase is a mock implementation of usecase.ContentUseCase.
type MockContentUseCase struct {
	mock.Mock
}

func (m *MockContentUseCase) AddContent(ctx context.Context, caller identityDomain.Subject, secretName, contentType, fileName string) (*secretDomain.ContentMetadata, error) {
	args := m.Called(ctx, caller, secretName, contentType, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.ContentMetadata), args.Error(1)
}

func (m *MockContentUseCase) UpdateContentInfo(ctx context.Context, caller identityDomain.Subject, secretName, contentName, contentType, fileName string) error {
	args := m.Called(ctx, caller, secretName, contentName, contentType, fileName)
	return args.Error(0)
}

func (m *MockContentUseCase) DropContent(ctx context.Context, caller identityDomain.Subject, secretName, contentName string) error {
	args := m.Called(ctx, caller, secretName, contentName)
	return args.Error(0)
}

func (m *MockContentUseCase) DeleteContent(ctx context.Context, caller identityDomain.Subject, secretName, contentName string) error {
	args := m.Called(ctx, caller, secretName, contentName)
	return args.Error(0)
}

func (m *MockContentUseCase) UploadChunk(ctx context.Context, caller identityDomain.Subject, params usecase.UploadChunkParams) (string, string, error) {
	args := m.Called(ctx, caller, params)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockContentUseCase) DownloadChunk(ctx context.Context, caller identityDomain.Subject, secretName, contentName, chunkName string) ([]byte, error) {
	args := m.Called(ctx, caller, secretName, contentName, chunkName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockContentUseCase) DownloadContent(ctx context.Context, caller identityDomain.Subject, secretName, contentName string) (*secretDomain.ContentMetadata, io.ReadCloser, error) {
	args := m.Called(ctx, caller, secretName, contentName)
	var content *secretDomain.ContentMetadata
	var reader io.ReadCloser
	if args.Get(0) != nil {
		content = args.Get(0).(*secretDomain.ContentMetadata)
	}
	if args.Get(1) != nil {
		reader = args.Get(1).(io.ReadCloser)
	}
	return content, reader, args.Error(2)
}
