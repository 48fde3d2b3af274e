// Package mocks provides testify mocks for the access request usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessrequestDomain "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/domain"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// MockAccessRequestRepository is a mock implementation of usecase.AccessRequestRepository.
type MockAccessRequestRepository struct {
	mock.Mock
}

func (m *MockAccessRequestRepository) Create(ctx context.Context, req *accessrequestDomain.AccessRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockAccessRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*accessrequestDomain.AccessRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessrequestDomain.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestRepository) FindInFlight(
	ctx context.Context,
	secretName string,
	subjectType identityDomain.SubjectType,
	subjectID string,
) (*accessrequestDomain.AccessRequest, error) {
	args := m.Called(ctx, secretName, subjectType, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessrequestDomain.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestRepository) Finish(
	ctx context.Context,
	id uuid.UUID,
	status accessrequestDomain.Status,
	finishedBy string,
	finishedAt time.Time,
) error {
	args := m.Called(ctx, id, status, finishedBy, finishedAt)
	return args.Error(0)
}

func (m *MockAccessRequestRepository) DeleteInProgress(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccessRequestRepository) ListBySubject(
	ctx context.Context,
	subjectType identityDomain.SubjectType,
	subjectID string,
) ([]*accessrequestDomain.AccessRequest, []*accessrequestDomain.AccessRequest, error) {
	args := m.Called(ctx, subjectType, subjectID)
	var outgoing, incoming []*accessrequestDomain.AccessRequest
	if args.Get(0) != nil {
		outgoing = args.Get(0).([]*accessrequestDomain.AccessRequest)
	}
	if args.Get(1) != nil {
		incoming = args.Get(1).([]*accessrequestDomain.AccessRequest)
	}
	return outgoing, incoming, args.Error(2)
}

func (m *MockAccessRequestRepository) DeleteBySecret(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockAuthorizer is a mock implementation of usecase.Authorizer.
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) IsAuthorized(
	ctx context.Context,
	subject identityDomain.Subject,
	secretName string,
	required permissionDomain.Mask,
) (bool, error) {
	args := m.Called(ctx, subject, secretName, required)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizer) SetPermission(
	ctx context.Context,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	args := m.Called(ctx, secretName, target, bits)
	return args.Error(0)
}

func (m *MockAuthorizer) GrantHolders(
	ctx context.Context,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	args := m.Called(ctx, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permissionDomain.SubjectPermissions), args.Error(1)
}

// MockPurger is a mock implementation of usecase.Purger.
type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) PurgeIfNeeded(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

// MockNotifier is a mock implementation of usecase.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) RequestCreated(ctx context.Context, req *accessrequestDomain.AccessRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockTxManager is a mock implementation of usecase.TxManager that runs the
// given function directly, without a real transaction.
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

// MockAccessRequestUseCase is a mock implementation of usecase.AccessRequestUseCase.
type MockAccessRequestUseCase struct {
	mock.Mock
}

func (m *MockAccessRequestUseCase) Create(
	ctx context.Context,
	requester identityDomain.Subject,
	secretName string,
	permission permissionDomain.Mask,
) (*accessrequestDomain.AccessRequest, error) {
	args := m.Called(ctx, requester, secretName, permission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessrequestDomain.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestUseCase) Approve(
	ctx context.Context,
	approver identityDomain.Subject,
	id uuid.UUID,
) (*accessrequestDomain.AccessRequest, error) {
	args := m.Called(ctx, approver, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessrequestDomain.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestUseCase) Reject(
	ctx context.Context,
	approver identityDomain.Subject,
	id uuid.UUID,
) (*accessrequestDomain.AccessRequest, error) {
	args := m.Called(ctx, approver, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessrequestDomain.AccessRequest), args.Error(1)
}

func (m *MockAccessRequestUseCase) Cancel(
	ctx context.Context,
	caller identityDomain.Subject,
	id uuid.UUID,
) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockAccessRequestUseCase) List(
	ctx context.Context,
	subject identityDomain.Subject,
) ([]*accessrequestDomain.AccessRequest, []*accessrequestDomain.AccessRequest, error) {
	args := m.Called(ctx, subject)
	var outgoing, incoming []*accessrequestDomain.AccessRequest
	if args.Get(0) != nil {
		outgoing = args.Get(0).([]*accessrequestDomain.AccessRequest)
	}
	if args.Get(1) != nil {
		incoming = args.Get(1).([]*accessrequestDomain.AccessRequest)
	}
	return outgoing, incoming, args.Error(2)
}
