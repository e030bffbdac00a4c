package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/workset"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Keep a single saved copy of a working set",
		Long: `Snapshots store one whole working set per owner as a single value,
separate from the import history. Saving replaces the previous snapshot.`,
	}

	cmd.AddCommand(snapshotSaveCmd())
	cmd.AddCommand(snapshotShowCmd())
	cmd.AddCommand(snapshotDropCmd())

	return cmd
}

func snapshotSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [file]",
		Short: "Save a file, or the stored records, as the snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireOwner(); err != nil {
				return err
			}

			session, err := workingSetFrom(cmd, a, args, false)
			if err != nil {
				return err
			}
			if err := a.snapshots.Save(cmd.Context(), a.owner(), session.Records()); err != nil {
				return err
			}
			writeln(a.out, cli.FormatSuccess(fmt.Sprintf("Saved snapshot of %d records", session.Len())))
			return nil
		},
	}
}

func snapshotShowCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.snapshots.Load(cmd.Context(), a.owner())
			if err != nil {
				return err
			}
			if snap.SavedAt.IsZero() {
				writeln(a.out, cli.FormatInfo("No snapshot saved"))
				return nil
			}

			writeln(a.out, cli.FormatTitle("Snapshot saved "+snap.SavedAt.Local().Format("2006-01-02 15:04")))
			session := workset.NewSession()
			session.Set(snap.Records, "snapshot")
			return cli.WriteRecordPage(a.out, session.Page(page, a.cfg.Display.PageSize))
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to show")
	return cmd
}

func snapshotDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Delete the saved snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireOwner(); err != nil {
				return err
			}

			if err := a.snapshots.Delete(cmd.Context(), a.owner()); err != nil {
				return err
			}
			writeln(a.out, cli.FormatSuccess("Snapshot deleted"))
			return nil
		},
	}
}
