// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/BlockOG/bundle-lua/internal/app/bundler"
	"github.com/BlockOG/bundle-lua/internal/manifest"
	"github.com/BlockOG/bundle-lua/pkg/types"

	"github.com/spf13/cobra"
)

func newBuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &dirFlagValues{}

	buildCmd := &cobra.Command{
		Use:   "build [PROJECT_DIR]",
		Short: "Bundle the project described by bundle.toml",
		Long: `Bundle the project described by the nearest bundle.toml.

The manifest is looked up in PROJECT_DIR (default: the working directory)
and then in each parent directory. Bundling works like 'bundle-lua dir'.

Example bundle.toml:

  [project]
  name = "game"

  [bundle]
  output = "dist/game.lua"
  source = "src"
  main = "main.lua"
  packages = ["util/strings"]
  auto_detect = true`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, rootFlags, flags, args)
		},
	}

	buildCmd.Flags().BoolVarP(&flags.autoDetect, "auto-detect", "a", false, "override the manifest's auto_detect")
	buildCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebundle whenever a Lua file under the source directory changes")

	return buildCmd
}

func runBuild(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *dirFlagValues, args []string) error {
	ctx := cmd.Context()
	s := app.newSession(ctx, rootFlags)

	startDir := "."
	if len(args) > 0 {
		startDir = args[0]
	}

	m, err := manifest.FindAndLoad(app.Files, types.FilesystemPath(startDir))
	if err != nil {
		return app.fail(cmd, s, err, "load manifest", startDir)
	}
	s.logger.Debug("loaded manifest", "path", m.Path().String(), "project", m.Project.Name)

	autoDetect := m.Bundle.AutoDetect
	if cmd.Flags().Changed("auto-detect") {
		autoDetect = flags.autoDetect
	}

	req := bundler.DirRequest{
		Output:     m.OutputPath(),
		SourceDir:  m.SourceDirPath(),
		Main:       m.MainPath(),
		Packages:   m.Bundle.Packages,
		AutoDetect: autoDetect,
	}

	if flags.watch {
		err := runWatchMode(ctx, app, s, req.SourceDir.String(), req.Output.String(), bundleDirFunc(app, s, req))
		if err != nil {
			return app.fail(cmd, s, err, "watch", req.SourceDir.String())
		}
		return nil
	}

	if err := bundleDirFunc(app, s, req)(ctx); err != nil {
		return app.fail(cmd, s, err, "build project", m.Path().String())
	}
	return nil
}
