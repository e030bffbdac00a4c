package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Change the verification status of stored records",
	}
	cmd.AddCommand(statusSetCmd())
	cmd.AddCommand(statusListCmd())
	return cmd
}

// parseStatus accepts a code or a label, case-insensitively.
func parseStatus(s string) (model.VerificationStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range model.Statuses() {
		if s == string(st) || strings.EqualFold(s, st.Label()) {
			return st, nil
		}
	}
	return "", common.NewUserError(fmt.Sprintf("Unknown status %q; run vatflow status list", s), nil)
}

func statusSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <status> <record-id>...",
		Short: "Set the status of one or more records",
		Example: `  # Mark two records verified
  vatflow status set 1 3f2c... 9ab1...

  vatflow status set "not vat registered" 3f2c...`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			status, err := parseStatus(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireOwner(); err != nil {
				return err
			}

			session, err := a.loadStored(ctx)
			if err != nil {
				return err
			}
			for _, id := range args[1:] {
				if err := session.SetStatus(id, status); err != nil {
					return common.NewUserError("Status not changed", err)
				}
			}
			if err := a.gateway.Replace(ctx, a.owner(), session.Records()); err != nil {
				return err
			}

			writeln(a.out, cli.FormatSuccess(fmt.Sprintf("Marked %d record(s) %s", len(args)-1, status.Label())))
			return nil
		},
	}
}

func statusListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the verification statuses",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, st := range model.Statuses() {
				writef(cmd.OutOrStdout(), "%s  %s\n", st, st.Label())
			}
		},
	}
}
