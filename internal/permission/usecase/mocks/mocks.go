// Package mocks provides testify mocks for the permission usecase interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// MockPermissionRepository is a mock implementation of usecase.PermissionRepository.
type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) Get(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
) (*permissionDomain.SubjectPermissions, error) {
	args := m.Called(ctx, secretName, subjectType, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permissionDomain.SubjectPermissions), args.Error(1)
}

func (m *MockPermissionRepository) Grant(
	ctx context.Context,
	perm *permissionDomain.SubjectPermissions,
) error {
	args := m.Called(ctx, perm)
	return args.Error(0)
}

func (m *MockPermissionRepository) Revoke(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
	bits permissionDomain.Mask,
) error {
	args := m.Called(ctx, secretName, subjectType, subjectID, bits)
	return args.Error(0)
}

func (m *MockPermissionRepository) ListBySecret(
	ctx context.Context,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	args := m.Called(ctx, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.SubjectPermissions), args.Error(1)
}

func (m *MockPermissionRepository) ListBySubject(
	ctx context.Context,
	subjectType identityDomain.SubjectType,
	subjectID string,
) ([]*permissionDomain.SubjectPermissions, error) {
	args := m.Called(ctx, subjectType, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.SubjectPermissions), args.Error(1)
}

func (m *MockPermissionRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockGroupResolver is a mock implementation of usecase.GroupResolver.
type MockGroupResolver struct {
	mock.Mock
}

func (m *MockGroupResolver) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPurger is a mock implementation of usecase.Purger.
type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) PurgeIfNeeded(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockAuthorizationUseCase is a mock implementation of usecase.AuthorizationUseCase.
type MockAuthorizationUseCase struct {
	mock.Mock
}

func (m *MockAuthorizationUseCase) IsAuthorized(
	ctx context.Context,
	subject identityDomain.Subject,
	secretName string,
	required permissionDomain.Mask,
) (bool, error) {
	args := m.Called(ctx, subject, secretName, required)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizationUseCase) SetPermission(
	ctx context.Context,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	args := m.Called(ctx, secretName, target, bits)
	return args.Error(0)
}

func (m *MockAuthorizationUseCase) DeletePermission(
	ctx context.Context,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	args := m.Called(ctx, secretName, target, bits)
	return args.Error(0)
}

func (m *MockAuthorizationUseCase) Grant(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	args := m.Called(ctx, caller, secretName, target, bits)
	return args.Error(0)
}

func (m *MockAuthorizationUseCase) Revoke(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	args := m.Called(ctx, caller, secretName, target, bits)
	return args.Error(0)
}

func (m *MockAuthorizationUseCase) ListAccess(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	args := m.Called(ctx, caller, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.SubjectPermissions), args.Error(1)
}

func (m *MockAuthorizationUseCase) GrantHolders(
	ctx context.Context,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	args := m.Called(ctx, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.SubjectPermissions), args.Error(1)
}
