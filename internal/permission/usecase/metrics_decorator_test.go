package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/metrics"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
	permissionMocks "github.com/yury-opolev/safeexchange-sub000/internal/permission/usecase/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func TestAuthorizationUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	caller := identityDomain.Subject{Type: identityDomain.SubjectTypeUser, ID: "alice"}
	target := identityDomain.Subject{Type: identityDomain.SubjectTypeUser, ID: "bob"}

	t.Run("records success for an authorized check", func(t *testing.T) {
		next := &permissionMocks.MockAuthorizationUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewAuthorizationUseCaseWithMetrics(next, m)

		next.On("IsAuthorized", ctx, caller, "payroll-db", permissionDomain.Read).Return(true, nil)
		m.On("RecordOperation", ctx, "permission", "is_authorized", "success").Once()
		m.On("RecordDuration", ctx, "permission", "is_authorized", mock.AnythingOfType("time.Duration"), "success").Once()

		ok, err := decorated.IsAuthorized(ctx, caller, "payroll-db", permissionDomain.Read)

		assert.NoError(t, err)
		assert.True(t, ok)
		m.AssertExpectations(t)
	})

	t.Run("records error status when grant fails", func(t *testing.T) {
		next := &permissionMocks.MockAuthorizationUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewAuthorizationUseCaseWithMetrics(next, m)

		next.On("Grant", ctx, caller, "payroll-db", target, permissionDomain.Read).Return(errors.New("database error"))
		m.On("RecordOperation", ctx, "permission", "grant", "error").Once()
		m.On("RecordDuration", ctx, "permission", "grant", mock.AnythingOfType("time.Duration"), "error").Once()

		err := decorated.Grant(ctx, caller, "payroll-db", target, permissionDomain.Read)

		assert.Error(t, err)
		m.AssertExpectations(t)
	})

	t.Run("passes revoke and list results through unchanged", func(t *testing.T) {
		next := &permissionMocks.MockAuthorizationUseCase{}
		m := &mockBusinessMetrics{}
		decorated := NewAuthorizationUseCaseWithMetrics(next, m)
		perms := []*permissionDomain.SubjectPermissions{
			{SecretName: "payroll-db", SubjectType: identityDomain.SubjectTypeUser, SubjectID: "alice", Mask: permissionDomain.Full},
		}

		next.On("Revoke", ctx, caller, "payroll-db", target, permissionDomain.Write).Return(nil)
		next.On("ListAccess", ctx, caller, "payroll-db").Return(perms, nil)
		m.On("RecordOperation", ctx, "permission", mock.AnythingOfType("string"), "success")
		m.On("RecordDuration", ctx, "permission", mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration"), "success")

		assert.NoError(t, decorated.Revoke(ctx, caller, "payroll-db", target, permissionDomain.Write))

		got, err := decorated.ListAccess(ctx, caller, "payroll-db")
		assert.NoError(t, err)
		assert.Equal(t, perms, got)
	})
}
