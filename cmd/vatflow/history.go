package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/report"
	"github.com/Veraticus/vatflow/internal/service"
	"github.com/Veraticus/vatflow/internal/workset"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, preview, export and delete past imports",
		Example: `  vatflow history list
  vatflow history show 6f1d... --page 2
  vatflow history export 6f1d... -o ~/Desktop
  vatflow history delete 6f1d... --purge`,
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	cmd.AddCommand(historyExportCmd())
	cmd.AddCommand(historyDeleteCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			manifests, err := a.gateway.Manifests(cmd.Context(), a.owner())
			if err != nil {
				return err
			}
			return cli.WriteManifests(a.out, manifests)
		},
	}
}

func historyShowCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "show <import-id>",
		Short: "Preview the records of one import in the order they were saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			manifest, err := a.gateway.Manifest(ctx, a.owner(), args[0])
			if err != nil {
				return err
			}
			records, err := a.gateway.Load(ctx, model.Scope{Owner: a.owner(), ImportID: manifest.ID}, service.OrderCreation)
			if err != nil {
				return err
			}

			writeln(a.out, cli.FormatTitle(fmt.Sprintf("%s · %s · %d records",
				manifest.Filename, manifest.ImportedAt.Local().Format("2006-01-02 15:04"), manifest.RecordCount)))
			session := workset.NewSession()
			session.Set(records, manifest.Filename)
			return cli.WriteRecordPage(a.out, session.Page(page, a.cfg.Display.PageSize))
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to show")
	return cmd
}

func historyExportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export <import-id>",
		Short: "Export one import to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			manifest, err := a.gateway.Manifest(ctx, a.owner(), args[0])
			if err != nil {
				return err
			}
			records, err := a.gateway.Load(ctx, model.Scope{Owner: a.owner(), ImportID: manifest.ID}, service.OrderCreation)
			if err != nil {
				return err
			}

			path := filepath.Join(dir, report.HistoryFileName(manifest.Filename, time.Now()))
			if err := writeFile(path, func(f *os.File) error {
				return report.WriteExcel(f, report.HistorySheet, records)
			}); err != nil {
				return err
			}

			writeln(a.out, cli.FormatSuccess(fmt.Sprintf("Exported %d records to %s", len(records), path)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "output", "o", ".", "Directory to write to")
	return cmd
}

func historyDeleteCmd() *cobra.Command {
	var (
		purge bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "delete <import-id>",
		Short: "Delete an import from the history",
		Long: `Delete an import manifest. Its records stay in the data set unless
--purge is given, in which case they are deleted too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireOwner(); err != nil {
				return err
			}

			manifest, err := a.gateway.Manifest(ctx, a.owner(), args[0])
			if err != nil {
				return err
			}

			if !force {
				question := fmt.Sprintf("Delete import %s (%s)?", manifest.ID, manifest.Filename)
				if purge {
					question = fmt.Sprintf("Delete import %s (%s) and its records?", manifest.ID, manifest.Filename)
				}
				ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), a.out, question)
				if err != nil {
					return err
				}
				if !ok {
					writeln(a.out, cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			if err := a.gateway.DeleteManifest(ctx, a.owner(), manifest.ID, purge); err != nil {
				return err
			}
			writeln(a.out, cli.FormatSuccess(fmt.Sprintf("Deleted import %s", manifest.ID)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Also delete the import's records")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

// writeFile creates path and hands it to write, removing the file if
// write fails.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Warn("Failed to remove partial file", "path", path, "error", rmErr)
		}
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
