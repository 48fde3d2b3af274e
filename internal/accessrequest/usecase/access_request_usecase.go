package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	accessrequestDomain "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/clock"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// accessRequestUseCase implements AccessRequestUseCase.
type accessRequestUseCase struct {
	requestRepo AccessRequestRepository
	authorizer  Authorizer
	purger      Purger
	notifier    Notifier
	txManager   TxManager
	clock       clock.Clock
	logger      *slog.Logger
}

// NewAccessRequestUseCase creates a new AccessRequestUseCase.
func NewAccessRequestUseCase(
	requestRepo AccessRequestRepository,
	authorizer Authorizer,
	purger Purger,
	notifier Notifier,
	txManager TxManager,
	clk clock.Clock,
	logger *slog.Logger,
) AccessRequestUseCase {
	return &accessRequestUseCase{
		requestRepo: requestRepo,
		authorizer:  authorizer,
		purger:      purger,
		notifier:    notifier,
		txManager:   txManager,
		clock:       clk,
		logger:      logger,
	}
}

// Create records a request for permission bits on a secret.
func (u *accessRequestUseCase) Create(
	ctx context.Context,
	requester identityDomain.Subject,
	secretName string,
	permission permissionDomain.Mask,
) (*accessrequestDomain.AccessRequest, error) {
	if permission.IsEmpty() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "no permission bits requested")
	}
	if !requester.Type.Valid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid subject type")
	}

	if err := u.purger.PurgeIfNeeded(ctx, secretName); err != nil {
		return nil, err
	}

	// At most one in-flight request per (secret, subject): an identical one is
	// returned as-is, one for different bits blocks the new request.
	existing, err := u.requestRepo.FindInFlight(ctx, secretName, requester.Type, requester.ID)
	if err == nil {
		if existing.Permission == permission {
			return existing, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrConflict, "another access request is already in flight")
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	holders, err := u.authorizer.GrantHolders(ctx, secretName)
	if err != nil {
		return nil, err
	}
	if len(holders) == 0 {
		// A live secret always has at least one grant holder, so an empty
		// list means the secret does not exist (or was just purged).
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "secret not found")
	}

	requestID, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate request id")
	}

	req := &accessrequestDomain.AccessRequest{
		ID:          requestID,
		SecretName:  secretName,
		SubjectType: requester.Type,
		SubjectID:   requester.ID,
		SubjectName: requester.DisplayName,
		Permission:  permission,
		Status:      accessrequestDomain.StatusInProgress,
		RequestedAt: u.clock.Now(),
	}
	for _, holder := range holders {
		if holder.SubjectType == requester.Type && holder.SubjectID == requester.ID {
			continue
		}
		req.Recipients = append(req.Recipients, accessrequestDomain.Recipient{
			RequestID:   requestID,
			SubjectType: holder.SubjectType,
			SubjectID:   holder.SubjectID,
			SubjectName: holder.SubjectName,
		})
	}
	if len(req.Recipients) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrUnprocessable, "no subject can approve this request")
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return u.requestRepo.Create(txCtx, req)
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			// Lost the race against a concurrent request from the same subject.
			// The winner may hold different permission bits, so re-read without
			// a permission filter before deciding between idempotent success
			// and a conflict.
			winner, findErr := u.requestRepo.FindInFlight(ctx, secretName, requester.Type, requester.ID)
			if findErr != nil {
				return nil, err
			}
			if winner.Permission == permission {
				return winner, nil
			}
			return nil, apperrors.Wrap(apperrors.ErrConflict, "another access request is already in flight")
		}
		return nil, err
	}

	// Best effort: recipients are notified outside the transaction and a
	// delivery failure never fails the creation.
	if err := u.notifier.RequestCreated(ctx, req); err != nil {
		u.logger.Warn("failed to notify access request recipients",
			slog.String("request_id", req.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return req, nil
}

// Approve grants the requested bits and resolves the request.
func (u *accessRequestUseCase) Approve(
	ctx context.Context,
	approver identityDomain.Subject,
	id uuid.UUID,
) (*accessrequestDomain.AccessRequest, error) {
	req, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsInProgress() {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "access request already resolved")
	}

	if err := u.purger.PurgeIfNeeded(ctx, req.SecretName); err != nil {
		return nil, err
	}

	// Authorize against the current grant holders, not the frozen snapshot:
	// a recipient who has since lost GrantAccess cannot approve.
	allowed, err := u.authorizer.IsAuthorized(ctx, approver, req.SecretName, permissionDomain.GrantAccess)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "approval requires grant access")
	}

	finishedAt := u.clock.Now()
	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.authorizer.SetPermission(txCtx, req.SecretName, req.Requester(), req.Permission); err != nil {
			return err
		}
		return u.requestRepo.Finish(txCtx, id, accessrequestDomain.StatusApproved, approver.ID, finishedAt)
	})
	if err != nil {
		return nil, err
	}

	req.Status = accessrequestDomain.StatusApproved
	req.FinishedBy = approver.ID
	req.FinishedAt = &finishedAt
	return req, nil
}

// Reject resolves the request with no permission change.
func (u *accessRequestUseCase) Reject(
	ctx context.Context,
	approver identityDomain.Subject,
	id uuid.UUID,
) (*accessrequestDomain.AccessRequest, error) {
	req, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsInProgress() {
		return nil, apperrors.Wrap(apperrors.ErrConflict, "access request already resolved")
	}
	if !req.HasRecipient(approver) {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "rejection requires being a recipient")
	}

	finishedAt := u.clock.Now()
	if err := u.requestRepo.Finish(ctx, id, accessrequestDomain.StatusRejected, approver.ID, finishedAt); err != nil {
		return nil, err
	}

	req.Status = accessrequestDomain.StatusRejected
	req.FinishedBy = approver.ID
	req.FinishedAt = &finishedAt
	return req, nil
}

// Cancel deletes an in-progress request on behalf of its requester.
func (u *accessRequestUseCase) Cancel(
	ctx context.Context,
	caller identityDomain.Subject,
	id uuid.UUID,
) error {
	req, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !req.IsRequestedBy(caller) {
		return apperrors.Wrap(apperrors.ErrForbidden, "only the requester may cancel")
	}

	return u.requestRepo.DeleteInProgress(ctx, id)
}

// List returns the subject's outgoing and incoming requests.
func (u *accessRequestUseCase) List(
	ctx context.Context,
	subject identityDomain.Subject,
) (outgoing, incoming []*accessrequestDomain.AccessRequest, err error) {
	return u.requestRepo.ListBySubject(ctx, subject.Type, subject.ID)
}
