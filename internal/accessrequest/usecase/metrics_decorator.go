package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessrequestDomain "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/domain"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/metrics"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// accessRequestUseCaseWithMetrics decorates AccessRequestUseCase with metrics instrumentation.
type accessRequestUseCaseWithMetrics struct {
	next    AccessRequestUseCase
	metrics metrics.BusinessMetrics
}

// NewAccessRequestUseCaseWithMetrics wraps an AccessRequestUseCase with metrics recording.
func NewAccessRequestUseCaseWithMetrics(useCase AccessRequestUseCase, m metrics.BusinessMetrics) AccessRequestUseCase {
	return &accessRequestUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for access request creation.
func (s *accessRequestUseCaseWithMetrics) Create(
	ctx context.Context,
	requester identityDomain.Subject,
	secretName string,
	permission permissionDomain.Mask,
) (*accessrequestDomain.AccessRequest, error) {
	start := time.Now()
	request, err := s.next.Create(ctx, requester, secretName, permission)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "accessrequest", "request_create", status)
	s.metrics.RecordDuration(ctx, "accessrequest", "request_create", time.Since(start), status)

	return request, err
}

// Approve records metrics for access request approval.
func (s *accessRequestUseCaseWithMetrics) Approve(
	ctx context.Context,
	approver identityDomain.Subject,
	id uuid.UUID,
) (*accessrequestDomain.AccessRequest, error) {
	start := time.Now()
	request, err := s.next.Approve(ctx, approver, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "accessrequest", "request_approve", status)
	s.metrics.RecordDuration(ctx, "accessrequest", "request_approve", time.Since(start), status)

	return request, err
}

// Reject records metrics for access request rejection.
func (s *accessRequestUseCaseWithMetrics) Reject(
	ctx context.Context,
	approver identityDomain.Subject,
	id uuid.UUID,
) (*accessrequestDomain.AccessRequest, error) {
	start := time.Now()
	request, err := s.next.Reject(ctx, approver, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "accessrequest", "request_reject", status)
	s.metrics.RecordDuration(ctx, "accessrequest", "request_reject", time.Since(start), status)

	return request, err
}

// Cancel records metrics for access request cancellation.
func (s *accessRequestUseCaseWithMetrics) Cancel(
	ctx context.Context,
	caller identityDomain.Subject,
	id uuid.UUID,
) error {
	start := time.Now()
	err := s.next.Cancel(ctx, caller, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "accessrequest", "request_cancel", status)
	s.metrics.RecordDuration(ctx, "accessrequest", "request_cancel", time.Since(start), status)

	return err
}

// List records metrics for access request listing.
func (s *accessRequestUseCaseWithMetrics) List(
	ctx context.Context,
	subject identityDomain.Subject,
) (outgoing, incoming []*accessrequestDomain.AccessRequest, err error) {
	start := time.Now()
	outgoing, incoming, err = s.next.List(ctx, subject)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "accessrequest", "request_list", status)
	s.metrics.RecordDuration(ctx, "accessrequest", "request_list", time.Since(start), status)

	return outgoing, incoming, err
}
