// Package usecase implements the authorization engine: bitmask permission
// checks with group expansion, and the grant/revoke operations that maintain
// the permission store.
package usecase

import (
	"context"

	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// PermissionRepository defines the interface for permission persistence operations.
type PermissionRepository interface {
	Get(ctx context.Context, secretName string, subjectType identityDomain.SubjectType, subjectID string) (*permissionDomain.SubjectPermissions, error)
	Grant(ctx context.Context, perm *permissionDomain.SubjectPermissions) error
	Revoke(ctx context.Context, secretName string, subjectType identityDomain.SubjectType, subjectID string, bits permissionDomain.Mask) error
	ListBySecret(ctx context.Context, secretName string) ([]*permissionDomain.SubjectPermissions, error)
	ListBySubject(ctx context.Context, subjectType identityDomain.SubjectType, subjectID string) ([]*permissionDomain.SubjectPermissions, error)
	DeleteBySecret(ctx context.Context, secretName string) error
}

// GroupResolver resolves the cached group list for a user subject.
type GroupResolver interface {
	GroupsOf(ctx context.Context, userID string) ([]string, error)
}

// Purger removes a secret and all its dependents when the secret is due.
// Secret-touching operations call it opportunistically before authorizing.
type Purger interface {
	PurgeIfNeeded(ctx context.Context, secretName string) error
}

// AuthorizationUseCase decides whether a subject may act on a secret and
// maintains the permission rows behind those decisions.
type AuthorizationUseCase interface {
	// IsAuthorized reports whether the subject holds every requested bit on the
	// secret, expanding through group membership for user subjects when group
	// authorization is enabled. A required mask of None is always authorized.
	IsAuthorized(ctx context.Context, subject identityDomain.Subject, secretName string, required permissionDomain.Mask) (bool, error)
	// SetPermission ORs bits into the target's permission row, creating it if
	// absent. No caller check; handler-level operations gate on Grant.
	SetPermission(ctx context.Context, secretName string, target identityDomain.Subject, bits permissionDomain.Mask) error
	// DeletePermission clears bits from the target's row, removing it when empty.
	DeletePermission(ctx context.Context, secretName string, target identityDomain.Subject, bits permissionDomain.Mask) error
	// Grant is the caller-facing grant operation: the caller must hold
	// GrantAccess on the secret, and cannot hand out RevokeAccess unless it
	// holds that bit itself.
	Grant(ctx context.Context, caller identityDomain.Subject, secretName string, target identityDomain.Subject, bits permissionDomain.Mask) error
	// Revoke is the caller-facing revoke operation: the caller must hold
	// RevokeAccess on the secret.
	Revoke(ctx context.Context, caller identityDomain.Subject, secretName string, target identityDomain.Subject, bits permissionDomain.Mask) error
	// ListAccess returns every permission row on the secret. The caller must
	// hold Read; callers with no permission get NotFound so the secret's
	// existence is not revealed.
	ListAccess(ctx context.Context, caller identityDomain.Subject, secretName string) ([]*permissionDomain.SubjectPermissions, error)
	// GrantHolders returns the subjects currently holding GrantAccess on the
	// secret. Used to route access requests; not caller-gated.
	GrantHolders(ctx context.Context, secretName string) ([]*permissionDomain.SubjectPermissions, error)
}
