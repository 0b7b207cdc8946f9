// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modcurator/modcurator/internal/config"
)

// newConfigCommand creates the `modcurator config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modcurator configuration",
		Long: `Manage modcurator configuration.

Configuration is stored in:
  - Linux: ~/.config/modcurator/config.cue
  - macOS: ~/Library/Application Support/modcurator/config.cue
  - Windows: %APPDATA%\modcurator\config.cue

Every key can be overridden through MODCURATOR_<SECTION>_<KEY> environment
variables, e.g. MODCURATOR_PRIORITY_MODE=lios.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.FilePath(app.flags.configDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, source, err := config.LoadWithSource(ctx, app.loadOptions())
	if err != nil {
		return err
	}

	out := app.stdout
	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if source != "" {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	rows := []struct{ key, value string }{
		{"storage.backend", cfg.Storage.Backend.String()},
		{"storage.path", cfg.Storage.Path.String()},
		{"storage.redis.addr", cfg.Storage.Redis.Addr},
		{"storage.redis.db", fmt.Sprint(cfg.Storage.Redis.DB)},
		{"storage.redis.key_prefix", cfg.Storage.Redis.KeyPrefix},
		{"hash.algorithm", cfg.Hash.Algorithm.String()},
		{"hash.concurrency", fmt.Sprint(cfg.Hash.Concurrency)},
		{"reader.cache_size", fmt.Sprint(cfg.Reader.CacheSize)},
		{"priority.mode", cfg.Priority.Mode.String()},
		{"log.level", cfg.Log.Level.String()},
		{"ui.color_scheme", cfg.UI.ColorScheme.String()},
		{"ui.verbose", fmt.Sprint(cfg.UI.Verbose || app.flags.verbose)},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%s: %s\n", CmdStyle.Render(r.key), SuccessStyle.Render(r.value))
	}
	return nil
}

func initConfig(app *App, force bool) error {
	dir, err := app.configDir()
	if err != nil {
		return err
	}
	path, written, err := config.CreateDefaultConfig(dir, force)
	if err != nil {
		return err
	}
	if !written {
		fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Configuration already exists:"), path)
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("Use --force to overwrite it."))
		return nil
	}
	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created configuration:"), path)
	return nil
}
