// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/modcurator/modcurator/internal/issue"
	"github.com/modcurator/modcurator/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree bound to app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modcurator",
		Short: "Curate mod collections, resolve conflicts and track file drift",
		Long: TitleStyle.Render("modcurator") + SubtitleStyle.Render(" - Curate mod collections for moddable games") + `

modcurator keeps ordered mod collections per game, decides which mod wins
when several mods define the same object, and records file hashes so that
changes to a collection's mods can be detected later.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Register a game:       modcurator game register stellaris --mods ~/mods
  2. Create a collection:   modcurator collection create main mod_a mod_b
  3. Record its hashes:     modcurator hash export main.json

` + SubtitleStyle.Render("Examples:") + `
  modcurator collection list         List collections of the selected game
  modcurator priority eval defs.cue  Resolve conflicting definitions
  modcurator hash import main.json   Show what changed since the export
  modcurator config show             Show current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configFile, "config", "", "config file (default is $HOME/.config/modcurator/config.cue)")
	rootCmd.PersistentFlags().StringVar(&app.flags.configDir, "config-dir", "", "configuration directory, also holding the default file storage")

	rootCmd.AddCommand(
		newGameCommand(app),
		newCollectionCommand(app),
		newPriorityCommand(app),
		newHashCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the command tree. It is called
// by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := newRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.flags.verbose)
		}),
	)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// renderError writes err for the user. Actionable errors are formatted with
// their suggestions, followed by the help text of their catalog issue.
func renderError(w io.Writer, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	if entry := ae.Issue(); entry != nil {
		if rendered, renderErr := entry.Render("dark"); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
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
