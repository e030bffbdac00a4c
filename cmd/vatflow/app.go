package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/vatflow/internal/cli"
	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/config"
	"github.com/Veraticus/vatflow/internal/gateway"
	"github.com/Veraticus/vatflow/internal/importer"
	"github.com/Veraticus/vatflow/internal/legacy"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
	"github.com/Veraticus/vatflow/internal/storage"
	"github.com/Veraticus/vatflow/internal/storage/hosted"
	"github.com/Veraticus/vatflow/internal/validation"
	"github.com/Veraticus/vatflow/internal/workset"
)

// app bundles the configured store and the services built on it for one
// command invocation.
type app struct {
	cfg       *config.Config
	store     service.Store
	gateway   *gateway.Gateway
	snapshots *legacy.Snapshots
	out       io.Writer
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// openStore connects to the configured backend and migrates it.
func openStore(ctx context.Context, cfg *config.Config) (service.Store, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		store, err := hosted.Open(ctx, cfg.Database.DSN, cfg.Database.Debug)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	slog.Debug("Opening database", "path", cfg.Database.Path)
	store, err := storage.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, &common.PersistenceError{Op: "open", Err: err}
	}
	return &app{
		cfg:   cfg,
		store: store,
		gateway: gateway.New(store,
			gateway.WithBatchSizes(cfg.Import.BatchSize, cfg.Import.ReplaceBatchSize),
		),
		snapshots: legacy.New(store),
		out:       cmd.OutOrStdout(),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

func (a *app) owner() string {
	return a.cfg.Owner.ID
}

// requireOwner fails fast for commands that write.
func (a *app) requireOwner() error {
	if a.owner() == "" {
		return common.ErrNoOwner
	}
	return nil
}

// loadStored fills a session with every stored record of the owner.
func (a *app) loadStored(ctx context.Context) (*workset.Session, error) {
	records, err := a.gateway.Load(ctx, model.Scope{Owner: a.owner()}, service.OrderCreation)
	if err != nil {
		return nil, err
	}
	session := workset.NewSession()
	session.Set(records, "")
	return session, nil
}

// workingSet reads args[0] when given, otherwise the owner's stored
// records.
func workingSet(cmd *cobra.Command, args []string, quiet bool) (*workset.Session, error) {
	if len(args) > 0 {
		session, _, err := readFile(cmd.Context(), args[0], quiet)
		return session, err
	}

	a, err := openApp(cmd)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.loadStored(cmd.Context())
}

// workingSetFrom is workingSet for commands that already hold an app.
func workingSetFrom(cmd *cobra.Command, a *app, args []string, quiet bool) (*workset.Session, error) {
	if len(args) > 0 {
		session, _, err := readFile(cmd.Context(), args[0], quiet)
		return session, err
	}
	return a.loadStored(cmd.Context())
}

// readFile imports path into a new session, drawing a progress bar on
// stderr.
func readFile(ctx context.Context, path string, quiet bool) (*workset.Session, *importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &common.ParseError{File: filepath.Base(path), Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close file", "path", path, "error", err)
		}
	}()

	session := workset.NewSession()
	var opts []importer.Option
	if !quiet {
		bar := cli.NewProgressBar(os.Stderr, "Importing "+filepath.Base(path))
		opts = append(opts, importer.WithProgress(bar.Report))
	}

	result, err := importer.New(session, opts...).Run(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, nil, err
	}
	return session, result, nil
}

// validate runs the engine over the session and stores the results.
// validate runs every rule over the session and stores the results on it.
func validate(ctx context.Context, session *workset.Session) ([]model.ValidationResult, error) {
	results, err := validation.NewEngine().Validate(ctx, session.Records())
	if err != nil {
		return nil, err
	}
	session.SetValidation(results)
	return results, nil
}

func writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func writeln(w io.Writer, args ...any) {
	if _, err := fmt.Fprintln(w, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}
