// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/BlockOG/bundle-lua/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `bundle-lua config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bundle-lua configuration",
		Long: `Manage bundle-lua configuration.

Configuration is stored in:
  - Linux: ~/.config/bundle-lua/config.cue
  - macOS: ~/Library/Application Support/bundle-lua/config.cue
  - Windows: %APPDATA%\bundle-lua\config.cue

A config.cue in the working directory is used when the user file is
absent. --config selects a file explicitly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				s := app.newSession(cmd.Context(), rootFlags)
				return app.fail(cmd, s, err, "create configuration", path)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Config file already exists: %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created config file: %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd.Context(), app.stdout, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				s := app.newSession(cmd.Context(), rootFlags)
				return app.fail(cmd, s, err, "dump configuration", rootFlags.configPath)
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, rootFlags *rootFlagValues) error {
	loaded, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: rootFlags.configPath})
	if err != nil {
		s := app.newSession(cmd.Context(), rootFlags)
		return app.fail(cmd, s, err, "show configuration", rootFlags.configPath)
	}
	cfg := loaded.Config

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	if loaded.Path != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), loaded.Path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("auto_detect"), valueStyle.Render(fmt.Sprintf("%v", cfg.AutoDetect)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(out, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(out, "  debounce: %s\n", valueStyle.Render(string(cfg.Watch.Debounce)))
	if len(cfg.Watch.Ignore) == 0 {
		fmt.Fprintf(out, "  ignore: %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		fmt.Fprintln(out, "  ignore:")
		for _, pattern := range cfg.Watch.Ignore {
			fmt.Fprintf(out, "    - %s\n", valueStyle.Render(pattern))
		}
	}

	return nil
}

// showConfigPath prints the file configuration is read from, or the
// default location when no file exists yet.
func showConfigPath(ctx context.Context, out io.Writer, rootFlags *rootFlagValues) error {
	loaded, err := config.LoadWithPath(ctx, config.LoadOptions{ConfigFilePath: rootFlags.configPath})
	if err == nil && loaded.Path != "" {
		fmt.Fprintln(out, loaded.Path)
		return nil
	}

	cfgPath, pathErr := config.DefaultConfigPath()
	if pathErr != nil {
		return fmt.Errorf("failed to get config path: %w", pathErr)
	}
	fmt.Fprintln(out, cfgPath)
	return nil
}
