package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	purgeUseCase "github.com/yury-opolev/safeexchange-sub000/internal/purge/usecase"
)

// RunPurgeSweep purges a batch of expired secrets with all their dependents.
// Intended to run on a schedule alongside the lazy purge performed on access.
//
// Requirements: Database must be migrated and accessible.
func RunPurgeSweep(
	ctx context.Context,
	purger purgeUseCase.PurgeUseCase,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	logger.Info("sweeping expired secrets")

	count, err := purger.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep expired secrets: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(map[string]int{"purged": count}); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	} else {
		fmt.Fprintf(out, "Purged %d expired secret(s)\n", count)
	}

	logger.Info("purge sweep completed", slog.Int("purged", count))
	return nil
}
