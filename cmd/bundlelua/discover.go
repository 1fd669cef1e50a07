// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/BlockOG/bundle-lua/internal/app/bundler"
	"github.com/BlockOG/bundle-lua/pkg/luamod"
	"github.com/BlockOG/bundle-lua/pkg/types"

	"github.com/spf13/cobra"
)

func newDiscoverCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var root string

	discoverCmd := &cobra.Command{
		Use:   "discover <FILE> [PACKAGES...]",
		Short: "List the modules auto-detection finds in a file",
		Long: `List the module names a directory bundle of FILE would include with
--auto-detect: the given PACKAGES first, then every require("...") literal
in FILE, one per line, without duplicates.

Only the exact form require("name") is recognized. Single quotes, string
concatenation and require "name" call syntax are not.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := app.newSession(ctx, rootFlags)

			ids, err := app.Bundler.Discover(ctx, bundler.DiscoverRequest{
				File:     types.FilesystemPath(args[0]),
				Packages: args[1:],
			})
			if err != nil {
				return app.fail(cmd, s, err, "discover modules", args[0])
			}

			for _, id := range ids {
				if root == "" {
					fmt.Fprintln(app.stdout, id)
					continue
				}
				fmt.Fprintf(app.stdout, "%s\t%s\n", id, luamod.Resolve(id, types.FilesystemPath(root)))
			}
			return nil
		},
	}

	discoverCmd.Flags().StringVarP(&root, "root", "r", "", "also print the file each module resolves to under this directory")

	return discoverCmd
}
