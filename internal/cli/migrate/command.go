package migrate

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keyboxhn/keybox/internal/config"
	"github.com/keyboxhn/keybox/internal/db"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the embedded database migrations against DB_URL.`,
	}

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := open()
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.MigrateUp(cmd.Context(), conn); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newDownCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("steps must be at least 1")
			}

			conn, err := open()
			if err != nil {
				return err
			}
			defer conn.Close()

			log.Info().Int("steps", steps).Msg("rolling back migrations")
			if err := db.MigrateDown(cmd.Context(), conn, steps); err != nil {
				return fmt.Errorf("down migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := open()
			if err != nil {
				return err
			}
			defer conn.Close()

			version, err := db.MigrateStatus(cmd.Context(), conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nCurrent Version: %d\n", version)
			return nil
		},
	}
}

func open() (*sql.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.SetupLogging(cfg.LogLevel, "console")

	conn, err := db.Connect(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}
