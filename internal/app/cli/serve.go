package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"perfeval/internal/app/server"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/db"
	"perfeval/internal/platform/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(os.Stderr, cfg.Environment, cfg.LogLevel)
			slog.SetDefault(logger)
			return server.Run(cmd.Context(), cfg, logger)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := logging.New(os.Stderr, cfg.Environment, cfg.LogLevel)
			slog.SetDefault(logger)

			if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
				cfg.MigrationsDir = dir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(cmd.Context(), pool, cfg.MigrationsDir); err != nil {
				return err
			}
			if seed, _ := cmd.Flags().GetBool("seed"); seed {
				if err := db.Seed(cmd.Context(), pool, cfg); err != nil {
					return err
				}
			}
			logger.Info("migrations applied", "dir", cfg.MigrationsDir)
			return nil
		},
	}
	cmd.Flags().String("dir", "", "Migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.Flags().Bool("seed", false, "Also seed the admin user")
	return cmd
}
