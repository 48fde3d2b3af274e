package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	identityMocks "github.com/yury-opolev/safeexchange-sub000/internal/identity/usecase/mocks"
)

func TestResolverUseCase_ResolveApplication(t *testing.T) {
	ctx := context.Background()
	appID := uuid.Must(uuid.NewV7())
	app := &identityDomain.Application{
		ID:         appID,
		Name:       "backup-agent",
		SecretHash: "hashed",
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	t.Run("Success_ValidToken", func(t *testing.T) {
		appRepo := new(identityMocks.MockApplicationRepository)
		secretService := new(identityMocks.MockSecretService)

		appRepo.On("GetByID", mock.Anything, appID).Return(app, nil).Once()
		secretService.On("CompareSecret", "s3cret", "hashed").Return(true).Once()

		uc := NewResolverUseCase(appRepo, secretService)
		subject, err := uc.ResolveApplication(ctx, appID.String()+".s3cret")

		require.NoError(t, err)
		assert.Equal(t, identityDomain.SubjectTypeApplication, subject.Type)
		assert.Equal(t, "backup-agent", subject.ID)
		assert.Equal(t, "backup-agent", subject.DisplayName)
	})

	t.Run("Error_MalformedToken", func(t *testing.T) {
		uc := NewResolverUseCase(
			new(identityMocks.MockApplicationRepository),
			new(identityMocks.MockSecretService),
		)

		for _, token := range []string{"", "no-dot", "not-a-uuid.secret", appID.String() + "."} {
			_, err := uc.ResolveApplication(ctx, token)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "token %q", token)
		}
	})

	t.Run("Error_UnknownApplication", func(t *testing.T) {
		appRepo := new(identityMocks.MockApplicationRepository)
		secretService := new(identityMocks.MockSecretService)

		appRepo.On("GetByID", mock.Anything, appID).
			Return(nil, apperrors.ErrNotFound).
			Once()

		uc := NewResolverUseCase(appRepo, secretService)
		_, err := uc.ResolveApplication(ctx, appID.String()+".s3cret")

		// Existence of the application is not revealed
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_WrongSecret", func(t *testing.T) {
		appRepo := new(identityMocks.MockApplicationRepository)
		secretService := new(identityMocks.MockSecretService)

		appRepo.On("GetByID", mock.Anything, appID).Return(app, nil).Once()
		secretService.On("CompareSecret", "wrong", "hashed").Return(false).Once()

		uc := NewResolverUseCase(appRepo, secretService)
		_, err := uc.ResolveApplication(ctx, appID.String()+".wrong")

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_InactiveApplication", func(t *testing.T) {
		appRepo := new(identityMocks.MockApplicationRepository)
		secretService := new(identityMocks.MockSecretService)

		inactive := *app
		inactive.IsActive = false

		appRepo.On("GetByID", mock.Anything, appID).Return(&inactive, nil).Once()
		secretService.On("CompareSecret", "s3cret", "hashed").Return(true).Once()

		uc := NewResolverUseCase(appRepo, secretService)
		_, err := uc.ResolveApplication(ctx, appID.String()+".s3cret")

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestResolverUseCase_CreateApplication(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatesActiveApplication", func(t *testing.T) {
		appRepo := new(identityMocks.MockApplicationRepository)
		secretService := new(identityMocks.MockSecretService)

		secretService.On("GenerateSecret").Return("plain", "hashed", nil).Once()
		appRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *identityDomain.Application) bool {
			return a.Name == "backup-agent" && a.SecretHash == "hashed" && a.IsActive
		})).Return(nil).Once()

		uc := NewResolverUseCase(appRepo, secretService)
		token, app, err := uc.CreateApplication(ctx, "backup-agent")

		require.NoError(t, err)
		assert.Equal(t, app.ID.String()+".plain", token)
		assert.Equal(t, "backup-agent", app.Name)
	})

	t.Run("Error_DuplicateName", func(t *testing.T) {
		appRepo := new(identityMocks.MockApplicationRepository)
		secretService := new(identityMocks.MockSecretService)

		secretService.On("GenerateSecret").Return("plain", "hashed", nil).Once()
		appRepo.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.Wrap(apperrors.ErrConflict, "application already exists")).
			Once()

		uc := NewResolverUseCase(appRepo, secretService)
		_, _, err := uc.CreateApplication(ctx, "backup-agent")

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}
