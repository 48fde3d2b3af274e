package usecase

import (
	"context"
	"log/slog"

	"github.com/yury-opolev/safeexchange-sub000/internal/clock"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
	secretDomain "github.com/yury-opolev/safeexchange-sub000/internal/secret/domain"
)

// metadataUseCase implements MetadataUseCase.
type metadataUseCase struct {
	metadataRepo MetadataRepository
	contentRepo  ContentRepository
	valueStore   ValueStore
	authorizer   Authorizer
	purger       Purger
	txManager    TxManager
	clock        clock.Clock
	logger       *slog.Logger
}

// NewMetadataUseCase creates a new MetadataUseCase.
func NewMetadataUseCase(
	metadataRepo MetadataRepository,
	contentRepo ContentRepository,
	valueStore ValueStore,
	authorizer Authorizer,
	purger Purger,
	txManager TxManager,
	clk clock.Clock,
	logger *slog.Logger,
) MetadataUseCase {
	return &metadataUseCase{
		metadataRepo: metadataRepo,
		contentRepo:  contentRepo,
		valueStore:   valueStore,
		authorizer:   authorizer,
		purger:       purger,
		txManager:    txManager,
		clock:        clk,
		logger:       logger,
	}
}

// Create registers a new secret. The object row, the blank main content item
// and the creator's full grant commit in one transaction, so a partially
// created secret is never observable.
func (u *metadataUseCase) Create(
	ctx context.Context,
	creator identityDomain.Subject,
	params CreateSecretParams,
) (*secretDomain.ObjectMetadata, error) {
	if !creator.Type.Valid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "invalid subject type")
	}

	mainContentName, err := secretDomain.NewContentName()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate content name")
	}

	now := u.clock.Now().UTC()
	obj := &secretDomain.ObjectMetadata{
		ObjectName:      params.Name,
		Description:     params.Description,
		CreatedBy:       creator,
		CreatedAt:       now,
		UpdatedBy:       creator,
		UpdatedAt:       now,
		LastAccessedAt:  now,
		Expiration:      params.Expiration,
		KeepInStorage:   params.KeepInStorage,
		MainContentName: mainContentName,
	}
	mainContent := &secretDomain.ContentMetadata{
		ContentName: mainContentName,
		SecretName:  params.Name,
		IsMain:      true,
		Status:      secretDomain.ContentStatusBlank,
		UpdatedAt:   now,
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.metadataRepo.Create(txCtx, obj); err != nil {
			return err
		}
		if err := u.contentRepo.Create(txCtx, mainContent); err != nil {
			return err
		}
		return u.authorizer.SetPermission(txCtx, params.Name, creator, permissionDomain.Full)
	})
	if err != nil {
		return nil, err
	}

	if !params.KeepInStorage && len(params.Value) > 0 {
		if err := u.valueStore.Set(ctx, params.Name, params.Value); err != nil {
			return nil, apperrors.Wrap(err, "failed to store secret value")
		}
	}

	return obj, nil
}

// Get returns the secret's metadata and content list for a caller holding Read.
func (u *metadataUseCase) Get(
	ctx context.Context,
	caller identityDomain.Subject,
	name string,
) (*secretDomain.ObjectMetadata, []*secretDomain.ContentMetadata, error) {
	if err := u.purger.PurgeIfNeeded(ctx, name); err != nil {
		return nil, nil, err
	}

	obj, err := u.metadataRepo.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	allowed, err := u.authorizer.IsAuthorized(ctx, caller, name, permissionDomain.Read)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		// Existence is hidden from subjects with no permission.
		return nil, nil, apperrors.Wrap(apperrors.ErrNotFound, "secret not found")
	}

	contents, err := u.contentRepo.ListBySecret(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	if err := u.metadataRepo.Touch(ctx, name, u.clock.Now().UTC()); err != nil {
		return nil, nil, err
	}

	return obj, contents, nil
}

// Update persists description and expiration settings for a caller holding Write.
func (u *metadataUseCase) Update(
	ctx context.Context,
	caller identityDomain.Subject,
	name string,
	params UpdateSecretParams,
) (*secretDomain.ObjectMetadata, error) {
	if err := u.purger.PurgeIfNeeded(ctx, name); err != nil {
		return nil, err
	}

	obj, err := u.metadataRepo.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	allowed, err := u.authorizer.IsAuthorized(ctx, caller, name, permissionDomain.Write)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "write access denied")
	}

	now := u.clock.Now().UTC()
	obj.Description = params.Description
	obj.Expiration = params.Expiration
	obj.UpdatedBy = caller
	obj.UpdatedAt = now
	if err := u.metadataRepo.Update(ctx, obj); err != nil {
		return nil, err
	}
	if err := u.metadataRepo.Touch(ctx, name, now); err != nil {
		return nil, err
	}
	obj.LastAccessedAt = now

	return obj, nil
}

// Delete purges the secret and everything it owns for a caller holding Write.
func (u *metadataUseCase) Delete(
	ctx context.Context,
	caller identityDomain.Subject,
	name string,
) error {
	if err := u.purger.PurgeIfNeeded(ctx, name); err != nil {
		return err
	}

	if _, err := u.metadataRepo.Get(ctx, name); err != nil {
		return err
	}

	allowed, err := u.authorizer.IsAuthorized(ctx, caller, name, permissionDomain.Write)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Wrap(apperrors.ErrForbidden, "write access denied")
	}

	return u.purger.Purge(ctx, name)
}
