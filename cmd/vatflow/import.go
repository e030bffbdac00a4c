package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/gateway"
	"github.com/Veraticus/vatflow/internal/workset"
)

func importCmd() *cobra.Command {
	var (
		dryRun       bool
		allowInvalid bool
		quiet        bool
		name         string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV, Excel or OFX file",
		Long: `Read a spreadsheet or bank statement, validate every record, and save it
as a new import.

The first row of a CSV or Excel sheet names the columns. Records that fail
validation block the save unless --allow-invalid is given.`,
		Example: `  # Preview an import without saving
  vatflow import ledger-q1.xlsx --dry-run

  # Save a bank statement under a friendlier name
  vatflow import statement.qfx --name "March bank"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			session, result, err := readFile(ctx, args[0], quiet)
			if err != nil {
				return err
			}
			if _, err := validate(ctx, session); err != nil {
				return err
			}

			invalid := session.ErrorCount()
			writeln(out, cli.FormatSuccess(fmt.Sprintf("Read %d records from %s in %s",
				len(result.Records), result.Filename, result.Duration.Round(time.Millisecond))))
			if invalid > 0 {
				writeln(out, cli.FormatWarning(fmt.Sprintf("%d record(s) failed validation", invalid)))
			}
			if err := cli.WriteRecordPage(out, session.Page(1, 0)); err != nil {
				return err
			}

			if dryRun {
				writeln(out, cli.FormatInfo("Dry run: nothing was saved"))
				return nil
			}
			if invalid > 0 && !allowInvalid {
				return common.NewUserError("Import not saved", fmt.Errorf("%d invalid record(s); run vatflow validate %s or pass --allow-invalid", invalid, args[0]))
			}
			if session.Len() == 0 {
				return common.NewUserError("Import not saved", common.ErrNothingToSave)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireOwner(); err != nil {
				return err
			}

			handler := cli.NewInterruptHandler(out)
			saveCtx, stop := handler.HandleInterrupts(ctx, "Save", "Run vatflow reconcile to find partially saved imports.")
			defer stop()

			filename := session.Filename()
			if name != "" {
				filename = name
			}
			manifest, err := a.gateway.Save(saveCtx, session.Records(), gateway.SaveMeta{
				Owner:      a.owner(),
				Filename:   filename,
				ImportedBy: a.cfg.OwnerName(),
			})
			if err != nil {
				var saveErr *gateway.SaveError
				if errors.As(err, &saveErr) {
					writeln(out, cli.FormatWarning(fmt.Sprintf("Import %s stopped after %d of %d records",
						saveErr.Manifest.ID, saveErr.Committed, saveErr.Manifest.RecordCount)))
				}
				if handler.WasInterrupted() {
					return common.NewUserError("Import interrupted", err)
				}
				return err
			}

			writeln(out, cli.FormatSuccess(fmt.Sprintf("Saved import %s (%d records)", manifest.ID, manifest.RecordCount)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Preview import without saving")
	cmd.Flags().BoolVar(&allowInvalid, "allow-invalid", false, "Save even if some records fail validation")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	cmd.Flags().StringVar(&name, "name", "", "Name stored with the import (default: file name)")

	return cmd
}

func validateCmd() *cobra.Command {
	var (
		all   bool
		quiet bool
		save  bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check records for missing or inconsistent values",
		Long: `Validate a file, or the stored records when no file is given, and list
every record that fails a rule. Exits with an error if any record is invalid.

With --save the outcome of every record is stored as a validation run,
whether or not it passed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var a *app
			var session *workset.Session
			var err error
			if save {
				if a, err = openApp(cmd); err != nil {
					return err
				}
				defer a.Close()
				session, err = workingSetFrom(cmd, a, args, quiet)
			} else {
				session, err = workingSet(cmd, args, quiet)
			}
			if err != nil {
				return err
			}
			results, err := validate(ctx, session)
			if err != nil {
				return err
			}

			if all {
				if err := cli.WriteRecordPage(out, session.Page(1, max(session.Len(), 1))); err != nil {
					return err
				}
			} else if err := cli.WriteInvalid(out, session.Rows()); err != nil {
				return err
			}

			if save {
				run, err := a.gateway.SaveValidation(ctx, a.owner(), session.Filename(), session.Records(), results)
				if err != nil {
					return err
				}
				writeln(out, cli.FormatInfo(fmt.Sprintf("Saved validation run %s", run.ID)))
			}

			if n := session.ErrorCount(); n > 0 {
				return common.NewUserError("Validation failed", fmt.Errorf("%d of %d record(s) are invalid", n, session.Len()))
			}
			writeln(out, cli.FormatSuccess(fmt.Sprintf("All %d records are valid", session.Len())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List valid records too")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	cmd.Flags().BoolVar(&save, "save", false, "Store the outcome as a validation run")
	return cmd
}
