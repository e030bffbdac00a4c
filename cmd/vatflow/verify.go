package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/gateway"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/tui"
	"github.com/Veraticus/vatflow/internal/validation"
)

func verifyCmd() *cobra.Command {
	var flagged bool

	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Review and verify records interactively",
		Long: `Open the verification editor on a file or, without a file, on the stored
records.

Saving from a file creates a new import; saving again in the same session
replaces that import. Saving stored records replaces them in place,
keeping their ids and imports.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var save tui.SaveFunc
			session, err := workingSetFrom(cmd, a, args, false)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				save = fileSaver(a.gateway, gateway.SaveMeta{
					Owner:      a.owner(),
					Filename:   session.Filename(),
					ImportedBy: a.cfg.OwnerName(),
				})
			} else {
				save = func(ctx context.Context, records []model.Record) error {
					return a.gateway.Replace(ctx, a.owner(), records)
				}
			}
			if flagged {
				session.ToggleFlagged()
			}

			outcome, err := tui.Run(ctx, session,
				tui.WithSave(save),
				tui.WithValidate(validation.NewEngine().Validate),
				tui.WithPageSize(a.cfg.Display.PageSize),
			)
			if err != nil {
				return err
			}

			if outcome.Dirty {
				writeln(out, cli.FormatWarning("Closed with unsaved changes"))
			} else if outcome.Saved {
				writeln(out, cli.FormatSuccess(fmt.Sprintf("Saved %d records", session.Len())))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flagged, "flagged", "f", false, "Start with only flagged records shown")
	return cmd
}

// fileSaver saves a file's records as a new import the first time and
// replaces that import on every later call.
func fileSaver(g *gateway.Gateway, meta gateway.SaveMeta) tui.SaveFunc {
	var last model.ImportManifest
	return func(ctx context.Context, records []model.Record) error {
		var manifest model.ImportManifest
		var err error
		if last.ID == "" {
			manifest, err = g.Save(ctx, records, meta)
		} else {
			manifest, err = g.Resave(ctx, last, records, meta)
		}
		// A partial save still owns a manifest; the next save replaces it.
		if manifest.ID != "" {
			last = manifest
		}
		return err
	}
}
