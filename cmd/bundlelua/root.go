// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for bundle-lua.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BlockOG/bundle-lua/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootFlags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "bundle-lua",
		Short: "Bundle Lua scripts and their required modules into one file",
		Long: TitleStyle.Render("bundle-lua") + SubtitleStyle.Render(" - Bundle Lua scripts into a single file") + `

bundle-lua merges a main Lua script and the modules it loads with
require("...") into one self-contained script.

` + SubtitleStyle.Render("Modes:") + `
  files   Eager: every listed package runs once at startup
  dir     Lazy: modules under a source directory run on first require
  build   Lazy, driven by a bundle.toml project file

` + SubtitleStyle.Render("Examples:") + `
  bundle-lua files out.lua main.lua lib/json.lua
  bundle-lua dir out.lua src main.lua -a
  bundle-lua build --watch
  bundle-lua discover src/main.lua`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/bundle-lua/config.cue)")

	rootCmd.AddCommand(newFilesCommand(app, rootFlags))
	rootCmd.AddCommand(newDirCommand(app, rootFlags))
	rootCmd.AddCommand(newBuildCommand(app, rootFlags))
	rootCmd.AddCommand(newDiscoverCommand(app, rootFlags))
	rootCmd.AddCommand(newConfigCommand(app, rootFlags))

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// errorHandler lets fang print usage and flag errors but stays quiet for
// failures the command already rendered.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
