// Package main is the schema migration tool. Migrations are read from the
// copy embedded in the binary unless --path points at a directory.
package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/fla7a/backend/internal/infrastructure/config"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/infrastructure/migration"
	"github.com/fla7a/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var (
	migrationsPath string
	logLevel       string
	log            *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply and manage the fla7a database schema",
		Long: `migrate applies the PostgreSQL schema migrations of the fla7a backend.

Connection settings come from config.toml and FLA7A_DATABASE_* variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logger.New(&logger.Config{
				Level:      logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Migrations directory (default: the embedded migrations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newUpCmd(),
		newDownCmd(),
		newStepCmd(),
		newVersionCmd(),
		newForceCmd(),
		newCreateCmd(),
		newListCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func source() fs.FS {
	if migrationsPath == "" {
		return migrations.FS
	}
	return os.DirFS(migrationsPath)
}

// withMigrator opens the database, runs fn and releases everything
func withMigrator(fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, source(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return fn(m)
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migration.Migrator) error { return m.Up() })
		},
	}
}

func newDownCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("down drops every table; rerun with --confirm")
			}
			return withMigrator(func(m *migration.Migrator) error { return m.Down() })
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm rolling back all migrations")
	return cmd
}

func newStepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "step <n>",
		Short: "Apply n migrations, or roll back when n is negative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					log.Info("No migrations applied")
					return nil
				}
				log.Info("Current migration version",
					zap.Uint("version", version),
					zap.Bool("dirty", dirty),
				)
				return nil
			})
		},
	}
}

func newForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Set the version without running migrations, to recover a dirty state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withMigrator(func(m *migration.Migrator) error { return m.Force(version) })
		},
	}
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := migrationsPath
			if dir == "" {
				dir = defaultMigrationsDir
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}

			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := migration.ListMigrations(source())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				log.Info("No migrations found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), "  -", name)
			}
			return nil
		},
	}
}
