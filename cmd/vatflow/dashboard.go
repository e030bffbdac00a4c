package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/report"
	"github.com/Veraticus/vatflow/internal/service"
)

const recentImports = 5

var windowTitles = map[report.Window]string{
	report.WindowDay:   "Imports, last 24 hours",
	report.WindowWeek:  "Imports, last 7 days",
	report.WindowMonth: "Imports, last 30 days by month",
	report.WindowYear:  "Imports, last 365 days by month",
}

func dashboardCmd() *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, import activity and recent imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w := report.Window(window)
			title, ok := windowTitles[w]
			if !ok {
				return common.NewUserError(fmt.Sprintf("Unknown window %q; use day, week, month or year", window), nil)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.gateway.Load(ctx, model.Scope{Owner: a.owner()}, service.OrderNewest)
			if err != nil {
				return err
			}
			manifests, err := a.gateway.Manifests(ctx, a.owner())
			if err != nil {
				return err
			}

			writeln(a.out, cli.RenderBox(cli.ChartIcon+" Records", cli.RenderSummary(report.Summarize(records))))
			writeln(a.out, cli.RenderBox(title, cli.RenderActivity(report.Activity(manifests, w, time.Now()))))
			writeln(a.out, cli.FormatTitle("Recent imports"))
			return cli.WriteManifests(a.out, report.Recent(manifests, recentImports))
		},
	}

	cmd.Flags().StringVarP(&window, "window", "w", string(report.WindowWeek), "Activity window (day, week, month, year)")
	return cmd
}
