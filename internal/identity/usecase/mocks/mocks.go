// Package mocks provides mock implementations for testing identity use cases.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// MockApplicationRepository is a mock implementation of ApplicationRepository for testing.
type MockApplicationRepository struct {
	mock.Mock
}

// Create mocks the Create method of ApplicationRepository.
func (m *MockApplicationRepository) Create(ctx context.Context, app *identityDomain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

// GetByID mocks the GetByID method of ApplicationRepository.
func (m *MockApplicationRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*identityDomain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Application), args.Error(1)
}

// MockGroupSnapshotRepository is a mock implementation of GroupSnapshotRepository for testing.
type MockGroupSnapshotRepository struct {
	mock.Mock
}

// Get mocks the Get method of GroupSnapshotRepository.
func (m *MockGroupSnapshotRepository) Get(
	ctx context.Context,
	userID string,
) (*identityDomain.GroupSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.GroupSnapshot), args.Error(1)
}

// Upsert mocks the Upsert method of GroupSnapshotRepository.
func (m *MockGroupSnapshotRepository) Upsert(
	ctx context.Context,
	snap *identityDomain.GroupSnapshot,
) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// MockGroupDirectory is a mock implementation of GroupDirectory for testing.
type MockGroupDirectory struct {
	mock.Mock
}

// GetGroupsOf mocks the GetGroupsOf method of GroupDirectory.
func (m *MockGroupDirectory) GetGroupsOf(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSecretService is a mock implementation of SecretService for testing.
type MockSecretService struct {
	mock.Mock
}

// GenerateSecret mocks the GenerateSecret method of SecretService.
func (m *MockSecretService) GenerateSecret() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashSecret mocks the HashSecret method of SecretService.
func (m *MockSecretService) HashSecret(plainSecret string) (string, error) {
	args := m.Called(plainSecret)
	return args.String(0), args.Error(1)
}

// CompareSecret mocks the CompareSecret method of SecretService.
func (m *MockSecretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	args := m.Called(plainSecret, hashedSecret)
	return args.Bool(0)
}
