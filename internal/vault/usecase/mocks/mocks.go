// Package mocks provides mock implementations of the vault usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/yury-opolev/safeexchange-sub000/internal/vault/domain"
)

// MockValueRepository is a mock implementation of usecase.ValueRepository.
type MockValueRepository struct {
	mock.Mock
}

func (m *MockValueRepository) Create(ctx context.Context, value *vaultDomain.VaultValue) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockValueRepository) GetLatest(ctx context.Context, secretName string) (*vaultDomain.VaultValue, error) {
	args := m.Called(ctx, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultValue), args.Error(1)
}

func (m *MockValueRepository) GetByVersion(ctx context.Context, secretName string, version uint) (*vaultDomain.VaultValue, error) {
	args := m.Called(ctx, secretName, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultValue), args.Error(1)
}

func (m *MockValueRepository) SoftDelete(ctx context.Context, secretName string, at time.Time) error {
	args := m.Called(ctx, secretName, at)
	return args.Error(0)
}

func (m *MockValueRepository) Purge(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

func (m *MockValueRepository) ListSoftDeletedBefore(ctx context.Context, threshold time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, threshold, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockKeeper is a mock implementation of service.Keeper.
type MockKeeper struct {
	mock.Mock
}

func (m *MockKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockValueUseCase is a mock implementation of usecase.ValueUseCase.
type MockValueUseCase struct {
	mock.Mock
}

func (m *MockValueUseCase) Set(ctx context.Context, secretName string, value []byte) error {
	args := m.Called(ctx, secretName, value)
	return args.Error(0)
}

func (m *MockValueUseCase) Get(ctx context.Context, secretName string) (*vaultDomain.VaultValue, error) {
	args := m.Called(ctx, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultValue), args.Error(1)
}

func (m *MockValueUseCase) GetByVersion(ctx context.Context, secretName string, version uint) (*vaultDomain.VaultValue, error) {
	args := m.Called(ctx, secretName, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.VaultValue), args.Error(1)
}

func (m *MockValueUseCase) SoftDelete(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

func (m *MockValueUseCase) Purge(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

func (m *MockValueUseCase) SweepSoftDeleted(ctx context.Context, retention time.Duration, limit int) (int, error) {
	args := m.Called(ctx, retention, limit)
	return args.Int(0), args.Error(1)
}
