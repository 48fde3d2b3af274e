package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	identityService "github.com/yury-opolev/safeexchange-sub000/internal/identity/service"
)

// resolverUseCase implements ResolverUseCase.
type resolverUseCase struct {
	appRepo       ApplicationRepository
	secretService identityService.SecretService
}

// ResolveApplication authenticates an application bearer token.
// Invalid tokens resolve to ErrUnauthorized without revealing whether the
// application exists; inactive applications resolve to ErrForbidden.
func (u *resolverUseCase) ResolveApplication(
	ctx context.Context,
	token string,
) (*identityDomain.Subject, error) {
	id, secret, ok := splitToken(token)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if !u.secretService.CompareSecret(secret, app.SecretHash) {
		return nil, apperrors.ErrUnauthorized
	}

	if !app.IsActive {
		return nil, apperrors.ErrForbidden
	}

	return &identityDomain.Subject{
		Type:        identityDomain.SubjectTypeApplication,
		ID:          app.Name,
		DisplayName: app.Name,
	}, nil
}

// CreateApplication registers a new application. The returned plaintext token
// is shown exactly once; only its hash is persisted.
func (u *resolverUseCase) CreateApplication(
	ctx context.Context,
	name string,
) (string, *identityDomain.Application, error) {
	plainSecret, hashedSecret, err := u.secretService.GenerateSecret()
	if err != nil {
		return "", nil, err
	}

	app := &identityDomain.Application{
		ID:         uuid.Must(uuid.NewV7()),
		Name:       name,
		SecretHash: hashedSecret,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := u.appRepo.Create(ctx, app); err != nil {
		return "", nil, err
	}

	return app.ID.String() + "." + plainSecret, app, nil
}

// splitToken parses an "<application-id>.<secret>" bearer token.
func splitToken(token string) (uuid.UUID, string, bool) {
	idStr, secret, found := strings.Cut(token, ".")
	if !found || secret == "" {
		return uuid.Nil, "", false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", false
	}

	return id, secret, true
}

// NewResolverUseCase creates a new resolver use case instance.
func NewResolverUseCase(
	appRepo ApplicationRepository,
	secretService identityService.SecretService,
) ResolverUseCase {
	return &resolverUseCase{
		appRepo:       appRepo,
		secretService: secretService,
	}
}
