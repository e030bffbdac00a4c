package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/config"
	"github.com/Veraticus/vatflow/internal/storage"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check every import against the records actually stored",
		Long: `Compare each import's declared record count with the records stored
under it. A save that stopped part way leaves an import with missing
records; re-import the file and delete the incomplete import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.gateway.Reconcile(cmd.Context(), a.owner())
			if err != nil {
				return err
			}
			return cli.WriteReconciliation(a.out, r)
		},
	}
}

func clearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored record",
		Long: `Delete all of your stored records. Import history is kept.

This is a destructive operation and cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireOwner(); err != nil {
				return err
			}

			if !force {
				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), a.out, "Delete all stored records?")
				if err != nil {
					return err
				}
				if !ok {
					writeln(a.out, cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			n, err := a.gateway.Clear(ctx, a.owner())
			if err != nil {
				return err
			}
			writeln(a.out, cli.FormatSuccess(fmt.Sprintf("Deleted %d records", n)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command migrates on start; use this to prepare a database ahead of
time or to check its schema version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if status {
				if cfg.Database.Driver != config.DriverSQLite {
					return common.NewUserError("Schema versions are only tracked for the sqlite driver", nil)
				}
				store, err := storage.NewSQLiteStorage(cfg.Database.Path)
				if err != nil {
					return &common.PersistenceError{Op: "open", Err: err}
				}
				defer func() { _ = store.Close() }()

				current, err := store.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				writef(cmd.OutOrStdout(), "Database: %s\nCurrent version: %d\nLatest version: %d\n",
					cfg.Database.Path, current, storage.ExpectedSchemaVersion)
				return nil
			}

			slog.Info("Running database migrations", "driver", cfg.Database.Driver)
			store, err := openStore(ctx, cfg)
			if err != nil {
				return &common.PersistenceError{Op: "migrate", Err: err}
			}
			defer func() { _ = store.Close() }()

			writeln(cmd.OutOrStdout(), cli.FormatSuccess("Database schema is up to date"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show current schema version without applying changes")
	return cmd
}
