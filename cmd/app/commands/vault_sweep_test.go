package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	vaultMocks "github.com/yury-opolev/safeexchange-sub000/internal/vault/usecase/mocks"
)

func TestRunVaultSweep(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	retention := 72 * time.Hour

	t.Run("text-output", func(t *testing.T) {
		mockValues := &vaultMocks.MockValueUseCase{}
		mockValues.On("SweepSoftDeleted", ctx, retention, 100).Return(7, nil)

		var out bytes.Buffer
		err := RunVaultSweep(ctx, mockValues, logger, &out, retention, 100, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Purged 7 soft-deleted vault value(s)")
		mockValues.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockValues := &vaultMocks.MockValueUseCase{}
		mockValues.On("SweepSoftDeleted", ctx, retention, 10).Return(2, nil)

		var out bytes.Buffer
		err := RunVaultSweep(ctx, mockValues, logger, &out, retention, 10, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"purged": 2`)
		mockValues.AssertExpectations(t)
	})

	t.Run("invalid-limit", func(t *testing.T) {
		mockValues := &vaultMocks.MockValueUseCase{}

		err := RunVaultSweep(ctx, mockValues, logger, &bytes.Buffer{}, retention, 0, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "limit must be a positive number")
	})
}
