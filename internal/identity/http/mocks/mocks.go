// Package mocks provides mock implementations for testing identity HTTP middleware.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
)

// MockResolverUseCase is a mock implementation of ResolverUseCase for testing.
type MockResolverUseCase struct {
	mock.Mock
}

// ResolveApplication mocks the ResolveApplication method of ResolverUseCase.
func (m *MockResolverUseCase) ResolveApplication(
	ctx context.Context,
	token string,
) (*identityDomain.Subject, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Subject), args.Error(1)
}

// CreateApplication mocks the CreateApplication method of ResolverUseCase.
func (m *MockResolverUseCase) CreateApplication(
	ctx context.Context,
	name string,
) (string, *identityDomain.Application, error) {
	args := m.Called(ctx, name)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*identityDomain.Application), args.Error(2)
}
