package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	vaultUseCase "github.com/yury-opolev/safeexchange-sub000/internal/vault/usecase"
)

// RunVaultSweep physically removes vault values whose soft deletion is older
// than the retention period.
//
// Requirements: Database must be migrated and accessible.
func RunVaultSweep(
	ctx context.Context,
	values vaultUseCase.ValueUseCase,
	logger *slog.Logger,
	out io.Writer,
	retention time.Duration,
	limit int,
	format string,
) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be a positive number, got: %d", limit)
	}

	logger.Info("sweeping soft-deleted vault values",
		slog.Duration("retention", retention),
		slog.Int("limit", limit),
	)

	count, err := values.SweepSoftDeleted(ctx, retention, limit)
	if err != nil {
		return fmt.Errorf("failed to sweep vault values: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(map[string]int{"purged": count}); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	} else {
		fmt.Fprintf(out, "Purged %d soft-deleted vault value(s)\n", count)
	}

	logger.Info("vault sweep completed", slog.Int("purged", count))
	return nil
}
