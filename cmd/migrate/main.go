package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ats/internal/app"
	"github.com/odyssey-erp/odyssey-ats/internal/platform/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Default().Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dsn  string
		path string
		mg   *db.Migrator
	)
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Database migration tool for the ATS schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadMigrateConfig()
			if err != nil {
				return err
			}
			if dsn == "" {
				dsn = cfg.PGDSN
			}
			if path == "" {
				path = cfg.MigrationsPath
			}
			mg, err = db.NewMigrator(dsn, path)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if mg == nil {
				return nil
			}
			return mg.Close()
		},
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "Postgres DSN (defaults to PG_DSN)")
	root.PersistentFlags().StringVar(&path, "path", "", "migrations directory (defaults to MIGRATIONS_PATH)")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := mg.Up()
			if err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			report(cmd, changed, "migrations applied")
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1 step)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid steps %q", args[0])
				}
				steps = n
			}
			changed, err := mg.Down(steps)
			if err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			report(cmd, changed, fmt.Sprintf("rolled back %d step(s)", steps))
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			changed, err := mg.Goto(uint(v))
			if err != nil {
				return fmt.Errorf("migrate goto: %w", err)
			}
			report(cmd, changed, "now at version "+args[0])
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, ok, err := mg.Version()
			if err != nil {
				return fmt.Errorf("migrate version: %w", err)
			}
			if !ok {
				cmd.Println("no migrations applied")
				return nil
			}
			cmd.Printf("version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the recorded version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			if err := mg.Force(v); err != nil {
				return fmt.Errorf("migrate force: %w", err)
			}
			cmd.Printf("forced version %d\n", v)
			return nil
		},
	})
	return root
}

func report(cmd *cobra.Command, changed bool, msg string) {
	if !changed {
		cmd.Println("no change")
		return
	}
	cmd.Println(msg)
}
