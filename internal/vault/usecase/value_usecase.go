package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yury-opolev/safeexchange-sub000/internal/clock"
	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	vaultDomain "github.com/yury-opolev/safeexchange-sub000/internal/vault/domain"
	vaultService "github.com/yury-opolev/safeexchange-sub000/internal/vault/service"
)

// valueUseCase implements the ValueUseCase interface.
type valueUseCase struct {
	valueRepo ValueRepository
	keeper    vaultService.Keeper
	clock     clock.Clock
	logger    *slog.Logger
}

// NewValueUseCase creates a new ValueUseCase.
func NewValueUseCase(
	valueRepo ValueRepository,
	keeper vaultService.Keeper,
	clk clock.Clock,
	logger *slog.Logger,
) ValueUseCase {
	return &valueUseCase{
		valueRepo: valueRepo,
		keeper:    keeper,
		clock:     clk,
		logger:    logger,
	}
}

// Set stores a new version of a secret's value.
func (v *valueUseCase) Set(ctx context.Context, secretName string, value []byte) error {
	if len(value) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "empty value payload")
	}

	var version uint = 1
	latest, err := v.valueRepo.GetLatest(ctx, secretName)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if latest != nil {
		version = latest.Version + 1
	}

	ciphertext, err := v.keeper.Encrypt(ctx, value)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt value")
	}

	return v.valueRepo.Create(ctx, &vaultDomain.VaultValue{
		ID:         uuid.Must(uuid.NewV7()),
		SecretName: secretName,
		Version:    version,
		Ciphertext: ciphertext,
		CreatedAt:  v.clock.Now().UTC(),
	})
}

// Get retrieves and decrypts the latest version of a secret's value.
func (v *valueUseCase) Get(ctx context.Context, secretName string) (*vaultDomain.VaultValue, error) {
	value, err := v.valueRepo.GetLatest(ctx, secretName)
	if err != nil {
		return nil, err
	}
	return v.decrypt(ctx, value)
}

// GetByVersion retrieves and decrypts a specific version.
func (v *valueUseCase) GetByVersion(
	ctx context.Context,
	secretName string,
	version uint,
) (*vaultDomain.VaultValue, error) {
	value, err := v.valueRepo.GetByVersion(ctx, secretName, version)
	if err != nil {
		return nil, err
	}
	return v.decrypt(ctx, value)
}

func (v *valueUseCase) decrypt(ctx context.Context, value *vaultDomain.VaultValue) (*vaultDomain.VaultValue, error) {
	plaintext, err := v.keeper.Decrypt(ctx, value.Ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt value")
	}
	value.Plaintext = plaintext
	return value, nil
}

// SoftDelete marks every version as deleted without removing ciphertext.
func (v *valueUseCase) SoftDelete(ctx context.Context, secretName string) error {
	return v.valueRepo.SoftDelete(ctx, secretName, v.clock.Now().UTC())
}

// Purge physically removes every version.
func (v *valueUseCase) Purge(ctx context.Context, secretName string) error {
	return v.valueRepo.Purge(ctx, secretName)
}

// SweepSoftDeleted physically removes values soft-deleted longer ago than the
// retention period. A failing purge is logged and skipped so one bad item
// cannot stall the sweep.
func (v *valueUseCase) SweepSoftDeleted(ctx context.Context, retention time.Duration, limit int) (int, error) {
	threshold := v.clock.Now().UTC().Add(-retention)
	names, err := v.valueRepo.ListSoftDeletedBefore(ctx, threshold, limit)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, name := range names {
		if err := v.valueRepo.Purge(ctx, name); err != nil {
			v.logger.Error("failed to purge soft deleted vault value",
				slog.String("secret_name", name),
				slog.Any("error", err),
			)
			continue
		}
		purged++
	}

	return purged, nil
}
