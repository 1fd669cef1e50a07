// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/BlockOG/bundle-lua/internal/app/bundler"
	"github.com/BlockOG/bundle-lua/pkg/types"

	"github.com/spf13/cobra"
)

func newFilesCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "files <OUTPUT> <MAIN> [PACKAGES...]",
		Short: "Bundle explicit package files eagerly",
		Long: `Bundle a main script with an explicit list of package files.

Every package runs once, in the order given, before MAIN. Inside the bundle,
require returns each result by the file's stem ("json" for lib/json.lua) or
by its file name ("json.lua"); other names go to Lua's normal require.
package.loaded is left untouched.

Nothing is written unless MAIN and every package are readable files.
OUTPUT is created if it does not exist.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, app, rootFlags, args)
		},
	}
}

func runFiles(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, args []string) error {
	ctx := cmd.Context()
	s := app.newSession(ctx, rootFlags)

	req := bundler.FilesRequest{
		Output: types.FilesystemPath(args[0]),
		Main:   types.FilesystemPath(args[1]),
	}
	for _, p := range args[2:] {
		req.Packages = append(req.Packages, types.FilesystemPath(p))
	}

	res, diags, err := app.Bundler.BundleFiles(ctx, req)
	app.Diagnostics.Render(ctx, diags, s.logger)
	if err != nil {
		return app.fail(cmd, s, err, "bundle files", args[0])
	}

	printResult(app.stdout, s, res)
	return nil
}
