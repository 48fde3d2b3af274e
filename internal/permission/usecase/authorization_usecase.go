package usecase

import (
	"context"

	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
)

// authorizationUseCase implements AuthorizationUseCase on top of the
// permission store and the group membership cache.
type authorizationUseCase struct {
	permissionRepo    PermissionRepository
	groupResolver     GroupResolver
	purger            Purger
	groupAuthzEnabled bool
}

// NewAuthorizationUseCase creates a new AuthorizationUseCase.
func NewAuthorizationUseCase(
	permissionRepo PermissionRepository,
	groupResolver GroupResolver,
	purger Purger,
	groupAuthzEnabled bool,
) AuthorizationUseCase {
	return &authorizationUseCase{
		permissionRepo:    permissionRepo,
		groupResolver:     groupResolver,
		purger:            purger,
		groupAuthzEnabled: groupAuthzEnabled,
	}
}

// IsAuthorized reports whether the subject holds every requested bit on the
// secret. A single row must satisfy the whole requested set; bits are never
// unioned across the subject's direct row and its group rows.
func (u *authorizationUseCase) IsAuthorized(
	ctx context.Context,
	subject identityDomain.Subject,
	secretName string,
	required permissionDomain.Mask,
) (bool, error) {
	if required.IsEmpty() {
		return true, nil
	}

	perm, err := u.permissionRepo.Get(ctx, secretName, subject.Type, subject.ID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return false, apperrors.Wrap(err, "failed to check permission")
	}
	if perm != nil && perm.Mask.Has(required) {
		return true, nil
	}

	// Applications and groups carry no group membership of their own.
	if !u.groupAuthzEnabled || subject.Type != identityDomain.SubjectTypeUser {
		return false, nil
	}

	groups, err := u.groupResolver.GroupsOf(ctx, subject.ID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to resolve groups")
	}
	for _, group := range groups {
		groupPerm, err := u.permissionRepo.Get(ctx, secretName, identityDomain.SubjectTypeGroup, group)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return false, apperrors.Wrap(err, "failed to check group permission")
		}
		if groupPerm.Mask.Has(required) {
			return true, nil
		}
	}

	return false, nil
}

// SetPermission ORs bits into the target's permission row.
func (u *authorizationUseCase) SetPermission(
	ctx context.Context,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	if !target.Type.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid subject type")
	}
	if bits.IsEmpty() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no permission bits to grant")
	}

	perm := &permissionDomain.SubjectPermissions{
		SecretName:  secretName,
		SubjectType: target.Type,
		SubjectID:   target.ID,
		SubjectName: target.DisplayName,
		Mask:        bits,
	}
	return u.permissionRepo.Grant(ctx, perm)
}

// DeletePermission clears bits from the target's permission row.
func (u *authorizationUseCase) DeletePermission(
	ctx context.Context,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	if !target.Type.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid subject type")
	}
	if bits.IsEmpty() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no permission bits to revoke")
	}

	return u.permissionRepo.Revoke(ctx, secretName, target.Type, target.ID, bits)
}

// Grant hands bits to the target on behalf of the caller. The caller must
// hold GrantAccess, and additionally must hold RevokeAccess to hand that bit
// out.
func (u *authorizationUseCase) Grant(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	if bits.IsEmpty() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no permission bits to grant")
	}
	if !target.Type.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid subject type")
	}

	if err := u.purger.PurgeIfNeeded(ctx, secretName); err != nil {
		return err
	}

	required := permissionDomain.GrantAccess
	if bits.Has(permissionDomain.RevokeAccess) {
		// Handing out RevokeAccess requires possessing it.
		required = required.With(permissionDomain.RevokeAccess)
	}
	allowed, err := u.IsAuthorized(ctx, caller, secretName, required)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Wrap(apperrors.ErrForbidden, "grant access denied")
	}

	return u.SetPermission(ctx, secretName, target, bits)
}

// Revoke clears bits from the target on behalf of the caller. The caller
// must hold RevokeAccess.
func (u *authorizationUseCase) Revoke(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
	target identityDomain.Subject,
	bits permissionDomain.Mask,
) error {
	if bits.IsEmpty() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "no permission bits to revoke")
	}
	if !target.Type.Valid() {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid subject type")
	}

	if err := u.purger.PurgeIfNeeded(ctx, secretName); err != nil {
		return err
	}

	allowed, err := u.IsAuthorized(ctx, caller, secretName, permissionDomain.RevokeAccess)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Wrap(apperrors.ErrForbidden, "revoke access denied")
	}

	return u.DeletePermission(ctx, secretName, target, bits)
}

// ListAccess returns every permission row on the secret for callers holding
// Read. Callers with no permission get NotFound so existence is not revealed.
func (u *authorizationUseCase) ListAccess(
	ctx context.Context,
	caller identityDomain.Subject,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	if err := u.purger.PurgeIfNeeded(ctx, secretName); err != nil {
		return nil, err
	}

	allowed, err := u.IsAuthorized(ctx, caller, secretName, permissionDomain.Read)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "secret not found")
	}

	return u.permissionRepo.ListBySecret(ctx, secretName)
}

// GrantHolders returns the subjects currently holding GrantAccess on the secret.
func (u *authorizationUseCase) GrantHolders(
	ctx context.Context,
	secretName string,
) ([]*permissionDomain.SubjectPermissions, error) {
	perms, err := u.permissionRepo.ListBySecret(ctx, secretName)
	if err != nil {
		return nil, err
	}

	holders := make([]*permissionDomain.SubjectPermissions, 0, len(perms))
	for _, perm := range perms {
		if perm.CanGrant() {
			holders = append(holders, perm)
		}
	}
	return holders, nil
}
