// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/yury-opolev/safeexchange-sub000/cmd/app/commands"
	"github.com/yury-opolev/safeexchange-sub000/internal/app"
	"github.com/yury-opolev/safeexchange-sub000/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "safeexchange",
		Usage:   "Secret exchange service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-application",
				Usage: "Register an application and print its bearer token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Application name (e.g., deploy-bot)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(func(container *app.Container, logger *slog.Logger) error {
						resolver, err := container.ResolverUseCase()
						if err != nil {
							return fmt.Errorf("failed to initialize resolver use case: %w", err)
						}
						return commands.RunCreateApplication(
							ctx,
							resolver,
							logger,
							cmd.String("name"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "purge-sweep",
				Usage: "Purge a batch of expired secrets with all their dependents",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(func(container *app.Container, logger *slog.Logger) error {
						purger, err := container.PurgeUseCase()
						if err != nil {
							return fmt.Errorf("failed to initialize purge use case: %w", err)
						}
						return commands.RunPurgeSweep(ctx, purger, logger, os.Stdout, cmd.String("format"))
					})
				},
			},
			{
				Name:  "vault-sweep",
				Usage: "Physically remove vault values soft-deleted past the retention period",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   100,
						Usage:   "Maximum number of secrets to purge in one run",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(func(container *app.Container, logger *slog.Logger) error {
						values, err := container.ValueUseCase()
						if err != nil {
							return fmt.Errorf("failed to initialize value use case: %w", err)
						}
						retention := container.Config().VaultPurgeDelay
						if retention <= 0 {
							retention = 72 * time.Hour
						}
						return commands.RunVaultSweep(
							ctx,
							values,
							logger,
							os.Stdout,
							retention,
							int(cmd.Int("limit")),
							cmd.String("format"),
						)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// withContainer builds the DI container for a one-shot command and guarantees
// resource cleanup after the command returns.
func withContainer(fn func(container *app.Container, logger *slog.Logger) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(container, logger)
}
