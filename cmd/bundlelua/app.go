// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/BlockOG/bundle-lua/internal/app/bundler"
	"github.com/BlockOG/bundle-lua/internal/config"
	"github.com/BlockOG/bundle-lua/internal/textio"
	"github.com/BlockOG/bundle-lua/pkg/luamod"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: Cobra handlers receive an App and delegate through its services.
	App struct {
		Files       afero.Fs
		Config      ConfigProvider
		Bundler     BundleService
		Diagnostics DiagnosticRenderer
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Files       afero.Fs
		Config      ConfigProvider
		Bundler     BundleService
		Diagnostics DiagnosticRenderer
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// BundleService runs bundling passes. Implementations must not write to
	// stdout/stderr; diagnostics are returned as data.
	BundleService interface {
		BundleFiles(ctx context.Context, req bundler.FilesRequest) (bundler.Result, []bundler.Diagnostic, error)
		BundleDir(ctx context.Context, req bundler.DirRequest) (bundler.Result, []bundler.Diagnostic, error)
		Discover(ctx context.Context, req bundler.DiscoverRequest) ([]luamod.Identifier, error)
	}

	// DiagnosticRenderer renders structured diagnostics.
	DiagnosticRenderer interface {
		Render(ctx context.Context, diags []bundler.Diagnostic, logger *log.Logger)
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// session is the per-invocation state: resolved config and a logger
	// leveled from it.
	session struct {
		cfg     *config.Config
		logger  *log.Logger
		verbose bool
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Files == nil {
		deps.Files = afero.NewOsFs()
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Bundler == nil {
		deps.Bundler = bundler.New(textio.New(deps.Files))
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = &defaultDiagnosticRenderer{}
	}

	return &App{
		Files:       deps.Files,
		Config:      deps.Config,
		Bundler:     deps.Bundler,
		Diagnostics: deps.Diagnostics,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

// newSession loads configuration and builds the logger. A configuration that
// fails to load is reported and replaced by the defaults so bundling still runs.
func (a *App) newSession(ctx context.Context, rootFlags *rootFlagValues) *session {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: rootFlags.configPath})

	verbose := rootFlags.verbose
	if err != nil {
		cfg = config.DefaultConfig()
	} else if !verbose {
		verbose = cfg.UI.Verbose
	}

	logger := newLogger(a.stderr, cfg.Log.Level, verbose)
	if err != nil {
		logger.Warn(formatErrorForDisplay(err, verbose))
		logger.Warn("using default configuration")
	}

	return &session{cfg: cfg, logger: logger, verbose: verbose}
}

// newLogger creates the CLI logger: stderr, no timestamps, prefixed with the
// binary name. Verbose forces debug level.
func newLogger(w io.Writer, level config.LogLevel, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          config.AppName,
		ReportTimestamp: false,
	})

	lvl := log.InfoLevel
	if parsed, err := log.ParseLevel(string(level)); err == nil {
		lvl = parsed
	}
	if verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// Render writes each diagnostic as a structured log record.
func (r *defaultDiagnosticRenderer) Render(_ context.Context, diags []bundler.Diagnostic, logger *log.Logger) {
	for _, diag := range diags {
		keyvals := []any{"code", diag.Code}
		if diag.Identifier != "" {
			keyvals = append(keyvals, "module", diag.Identifier.String())
		}
		if diag.Path != "" {
			keyvals = append(keyvals, "path", diag.Path.String())
		}

		logger.Warn(diag.Message, keyvals...)
	}
}
