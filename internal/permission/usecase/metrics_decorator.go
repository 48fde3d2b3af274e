package usecase

import (
	"context"
	"time"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/metrics"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// authorizationUseCaseWithMetrics decorates AuthorizationUseCase with metrics instrumentation.
type authorizationUseCaseWithMetrics struct {
	next    AuthorizationUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthorizationUseCaseWithMetrics wraps an AuthorizationUseCase with metrics recording.
func NewAuthorizationUseCaseWithMetrics(useCase AuthorizationUseCase, m metrics.BusinessMetrics) AuthorizationUseCase {
	return &authorizationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// IsAuthorized records metrics for permission check operations.
func (s *authorizationUseCaseWithMetrics) IsAuthorized(
	ctx context.Context,
	subject identityDomain.Subject,
	secretName string,
	required permissionDomain.Mask,
) (bool, error) {
	start := time.Now()
	ok, err := s.next.IsAuthorized(ctx, subject, secretName, required)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "permission", "is_authorized", status)
	s.metrics.RecordDuration(ctx, "permission", "is_authorized", time.Since(start), status)

	return ok, err
}

// SetPermission records metrics for direct permission writes.
func (s *authorizationUseCaseWithMetrics) SetPermission(
	ctx context.Context,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	start := time.Now()
	err := s.next.SetPermission(ctx, secretName, target, bits)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "permission", "set_permission", status)
	s.metrics.RecordDuration(ctx, "permission", "set_permission", time.Since(start), status)

	return err
}

// DeletePermission records metrics for direct permission deletes.
func (s *authorizationUseCaseWithMetrics) DeletePermission(
	ctx context.Context,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	start := time.Now()
	err := s.next.DeletePermission(ctx, secretName, target, bits)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "permission", "delete_permission", status)
	s.metrics.RecordDuration(ctx, "permission", "delete_permission", time.Since(start), status)

	return err
}

// Grant records metrics for caller-facing grant operations.
func (s *authorizationUseCaseWithMetrics) Grant(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	start := time.Now()
	err := s.next.Grant(ctx, caller, secretName, target, bits)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "permission", "grant", status)
	s.metrics.RecordDuration(ctx, "permission", "grant", time.Since(start), status)

	return err
}

// Revoke records metrics for caller-facing revoke operations.
func (s *authorizationUseCaseWithMetrics) Revoke(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	start := time.Now()
	err := s.next.Revoke(ctx, caller, secretName, target, bits)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "permission", "revoke", status)
	s.metrics.RecordDuration(ctx, "permission", "revoke", time.Since(start), status)

	return err
}

// ListAccess records metrics for access listing operations.
func (s *authorizationUseCaseWithMetrics) ListAccess(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	start := time.Now()
	perms, err := s.next.ListAccess(ctx, caller, secretName)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "permission", "list_access", status)
	s.metrics.RecordDuration(ctx, "permission", "list_access", time.Since(start), status)

	return perms, err
}

// GrantHolders records metrics for grant holder lookups.
func (s *authorizationUseCaseWithMetrics) GrantHolders(
	ctx context.Context,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	start := time.Now()
	perms, err := s.next.GrantHolders(ctx, secretName)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "permission", "grant_holders", status)
	s.metrics.RecordDuration(ctx, "permission", "grant_holders", time.Since(start), status)

	return perms, err
}
