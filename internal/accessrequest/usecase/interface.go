// Package usecase implements the access request workflow: creation with a
// frozen recipient snapshot, approval re-validated against current grant
// holders, rejection, cancellation and per-subject listing.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessrequestDomain "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/domain"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// AccessRequestRepository defines the interface for access request persistence operations.
type AccessRequestRepository interface {
	Create(ctx context.Context, req *accessrequestDomain.AccessRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*accessrequestDomain.AccessRequest, error)
	FindInFlight(ctx context.Context, secretName string, subjectType identityDomain.SubjectType, subjectID string) (*accessrequestDomain.AccessRequest, error)
	Finish(ctx context.Context, id uuid.UUID, status accessrequestDomain.Status, finishedBy string, finishedAt time.Time) error
	DeleteInProgress(ctx context.Context, id uuid.UUID) error
	ListBySubject(ctx context.Context, subjectType identityDomain.SubjectType, subjectID string) (outgoing, incoming []*accessrequestDomain.AccessRequest, err error)
	DeleteBySecret(ctx context.Context, secretName string) error
}

// Authorizer is the slice of the authorization engine the workflow needs:
// routing requests to grant holders and writing through approved permissions.
type Authorizer interface {
	IsAuthorized(ctx context.Context, subject identityDomain.Subject, secretName string, required permissionDomain.Mask) (bool, error)
	SetPermission(ctx context.Context, secretName string, target identityDomain.Subject, bits permissionDomain.Mask) error
	GrantHolders(ctx context.Context, secretName string) ([]*permissionDomain.SubjectPermissions, error)
}

// Purger removes a secret and its dependents when due.
type Purger interface {
	PurgeIfNeeded(ctx context.Context, secretName string) error
}

// Notifier delivers best-effort notifications about new requests to their
// recipients. Failures never fail the request creation.
type Notifier interface {
	RequestCreated(ctx context.Context, req *accessrequestDomain.AccessRequest) error
}

// TxManager runs a function inside a database transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccessRequestUseCase drives the access request approval workflow.
type AccessRequestUseCase interface {
	// Create records a request for permission bits on a secret, snapshotting
	// the current grant holders as recipients. A subject holds at most one
	// in-flight request per secret: an identical one is returned as-is, one
	// for different bits yields ErrConflict.
	Create(ctx context.Context, requester identityDomain.Subject, secretName string, permission permissionDomain.Mask) (*accessrequestDomain.AccessRequest, error)
	// Approve grants the originally requested bits and resolves the request.
	// The approver must hold GrantAccess at approval time; the frozen
	// recipient snapshot is not trusted for this check.
	Approve(ctx context.Context, approver identityDomain.Subject, id uuid.UUID) (*accessrequestDomain.AccessRequest, error)
	// Reject resolves the request with no permission change. Only a recipient
	// may reject.
	Reject(ctx context.Context, approver identityDomain.Subject, id uuid.UUID) (*accessrequestDomain.AccessRequest, error)
	// Cancel deletes an in-progress request. Only the requester may cancel.
	Cancel(ctx context.Context, caller identityDomain.Subject, id uuid.UUID) error
	// List returns the subject's outgoing requests and the in-progress
	// requests routed to it.
	List(ctx context.Context, subject identityDomain.Subject) (outgoing, incoming []*accessrequestDomain.AccessRequest, err error)
}
