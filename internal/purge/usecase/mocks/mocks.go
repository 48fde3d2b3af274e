// Package mocks provides mock implementations of the purge usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// MockMetadataRepository is a mock implementation of usecase.MetadataRepository.
type MockMetadataRepository struct {
	mock.Mock
}

func (m *MockMetadataRepository) Get(ctx context.Context, name string) (*secretDomain.ObjectMetadata, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretDomain.ObjectMetadata), args.Error(1)
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

func (m *MockContentRepository) ListBySecret(ctx context.Context, secretName string) ([]*secretDomain.ContentMetadata, error) {
	args := m.Called(ctx, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretDomain.ContentMetadata), args.Error(1)
}

func (m *MockContentRepository) ListChunks(ctx context.Context, contentName string) ([]*secretDomain.ChunkMetadata, error) {
	args := m.Called(ctx, contentName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*secretDomain.ChunkMetadata), args.Error(1)
}

func (m *MockContentRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockChunkStore is a mock implementation of usecase.ChunkStore.
type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockPermissionRepository is a mock implementation of usecase.PermissionRepository.
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockAccessRequestRepository is a mock implementation of usecase.AccessRequestRepository.
type MockAccessRequestRepository struct {
	mock.Mock
}

func (m *MockAccessRequestRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockValueRepository is a mock implementation of usecase.ValueRepository.
type MockValueRepository struct {
	mock.Mock
}

func (m *MockValueRepository) Purge(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockTxManager is a mock implementation of usecase.TxManager. When the
// expectation returns nil, the wrapped function runs with the same context.
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

// MockPurgeUseCase is a mock implementation of usecase.PurgeUseCase.
type MockPurgeUseCase struct {
	mock.Mock
}

func (m *MockPurgeUseCase) PurgeIfNeeded(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

func (m *MockPurgeUseCase) Purge(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

func (m *MockPurgeUseCase) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
