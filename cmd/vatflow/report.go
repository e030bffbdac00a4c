package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/report"
	"github.com/Veraticus/vatflow/internal/service"
)

func reportCmd() *cobra.Command {
	var (
		format   string
		dir      string
		importID string
		file     string
		title    string
	)

	cmd := &cobra.Command{
		Use:   "report [kind]",
		Short: "Export a report as PDF or Excel",
		Long: `Export stored records, one import, or a file as a report.

Run without a kind to list the available reports.`,
		Example: `  vatflow report top100vat --format xlsx
  vatflow report verified --import 6f1d...
  vatflow report full --file ledger.csv -o out/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, opt := range report.Options() {
					writef(out, "%-14s %-20s %s\n", opt.Kind, opt.Title, cli.SubtleStyle.Render(opt.Description))
				}
				return nil
			}

			opt, err := report.Lookup(args[0])
			if err != nil {
				return common.NewUserError("Unknown report", err)
			}
			format = strings.ToLower(strings.TrimPrefix(format, "."))
			if format != "pdf" && format != "xlsx" {
				return common.NewUserError(fmt.Sprintf("Unsupported format %q; use pdf or xlsx", format), nil)
			}

			records, err := reportSource(cmd, file, importID)
			if err != nil {
				return err
			}
			selected := opt.Select(records)
			if title == "" {
				title = opt.Title
			}

			now := time.Now()
			path := filepath.Join(dir, report.FileName(title, format, now))
			err = writeFile(path, func(f *os.File) error {
				if format == "xlsx" {
					return report.WriteExcel(f, report.ReportSheet, selected)
				}
				bar := cli.NewProgressBar(os.Stderr, "Rendering "+title)
				return report.WritePDF(f, title, selected, report.PDFOptions{GeneratedAt: now, OnPage: bar.Report})
			})
			if err != nil {
				return err
			}

			writeln(out, cli.FormatSuccess(fmt.Sprintf("Wrote %s (%d of %d records)", path, len(selected), len(records))))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "pdf", "Output format (pdf, xlsx)")
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "Directory to write to")
	cmd.Flags().StringVar(&importID, "import", "", "Report on one import only")
	cmd.Flags().StringVar(&file, "file", "", "Report on a file instead of stored records")
	cmd.Flags().StringVar(&title, "title", "", "Report title (default: the report's name)")

	return cmd
}

func reportSource(cmd *cobra.Command, file, importID string) ([]model.Record, error) {
	if file != "" {
		session, _, err := readFile(cmd.Context(), file, true)
		if err != nil {
			return nil, err
		}
		return session.Records(), nil
	}

	a, err := openApp(cmd)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.gateway.Load(cmd.Context(), model.Scope{Owner: a.owner(), ImportID: importID}, service.OrderCreation)
}
