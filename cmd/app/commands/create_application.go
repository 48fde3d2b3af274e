package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	identityUseCase "github.com/yury-opolev/safeexchange-sub000/internal/identity/usecase"
)

// RunCreateApplication registers a new application and prints its one-time
// bearer token. The token embeds the plaintext secret and is not recoverable
// later; only its hash is stored.
//
// Requirements: Database must be migrated and accessible.
func RunCreateApplication(
	ctx context.Context,
	resolver identityUseCase.ResolverUseCase,
	logger *slog.Logger,
	name string,
	format string,
	io IOTuple,
) error {
	if name == "" {
		return fmt.Errorf("application name is required")
	}

	logger.Info("creating new application", slog.String("name", name))

	token, application, err := resolver.CreateApplication(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if format == "json" {
		payload := map[string]string{
			"id":    application.ID.String(),
			"name":  application.Name,
			"token": token,
		}
		encoder := json.NewEncoder(io.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(payload); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	} else {
		fmt.Fprintf(io.Writer, "Application created successfully!\n")
		fmt.Fprintf(io.Writer, "ID:    %s\n", application.ID)
		fmt.Fprintf(io.Writer, "Name:  %s\n", application.Name)
		fmt.Fprintf(io.Writer, "Token: %s\n", token)
		fmt.Fprintf(io.Writer, "\nStore the token now. It cannot be retrieved again.\n")
	}

	logger.Info("application created successfully",
		slog.String("application_id", application.ID.String()),
		slog.String("name", name),
	)

	return nil
}
