// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/BlockOG/bundle-lua/internal/app/bundler"
	"github.com/BlockOG/bundle-lua/pkg/types"

	"github.com/spf13/cobra"
)

// dirFlagValues holds the flags of the dir and build commands.
type dirFlagValues struct {
	autoDetect bool
	watch      bool
}

func newDirCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &dirFlagValues{}

	dirCmd := &cobra.Command{
		Use:   "dir <OUTPUT> <SOURCE_DIR> <MAIN> [PACKAGES...]",
		Short: "Bundle modules under a source directory lazily",
		Long: `Bundle a main script with the modules it requires from SOURCE_DIR.

MAIN is resolved relative to SOURCE_DIR. PACKAGES are module names as
passed to require ("util/strings" loads SOURCE_DIR/util/strings.lua).
With --auto-detect, every require("...") literal in MAIN is added too.

Modules run on their first require and their result is cached. A module
whose file is missing is skipped with a warning; require then falls
through to Lua's normal loader at runtime.

Re-bundling a bundle replaces its loader instead of stacking a second one.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDir(cmd, app, rootFlags, flags, args)
		},
	}

	dirCmd.Flags().BoolVarP(&flags.autoDetect, "auto-detect", "a", false, "also bundle every require(\"...\") found in MAIN (default from config auto_detect)")
	dirCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebundle whenever a Lua file under SOURCE_DIR changes")

	return dirCmd
}

func runDir(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *dirFlagValues, args []string) error {
	ctx := cmd.Context()
	s := app.newSession(ctx, rootFlags)

	autoDetect := s.cfg.AutoDetect
	if cmd.Flags().Changed("auto-detect") {
		autoDetect = flags.autoDetect
	}

	req := bundler.DirRequest{
		Output:     types.FilesystemPath(args[0]),
		SourceDir:  types.FilesystemPath(args[1]),
		Main:       types.FilesystemPath(args[2]),
		Packages:   args[3:],
		AutoDetect: autoDetect,
	}

	if flags.watch {
		if err := runWatchMode(ctx, app, s, args[1], args[0], bundleDirFunc(app, s, req)); err != nil {
			return app.fail(cmd, s, err, "watch", args[1])
		}
		return nil
	}

	if err := bundleDirFunc(app, s, req)(ctx); err != nil {
		return app.fail(cmd, s, err, "bundle directory", args[1])
	}
	return nil
}

// bundleDirFunc returns a single directory bundling pass that renders its
// diagnostics and result. Watch mode calls it on every change.
func bundleDirFunc(app *App, s *session, req bundler.DirRequest) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		res, diags, err := app.Bundler.BundleDir(ctx, req)
		app.Diagnostics.Render(ctx, diags, s.logger)
		if err != nil {
			return err
		}
		printResult(app.stdout, s, res)
		return nil
	}
}
