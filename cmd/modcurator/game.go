// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/pkg/priority"
	"github.com/modcurator/modcurator/pkg/types"
)

type registerGameOptions struct {
	name     string
	modDir   string
	userDir  string
	mode     string
	noSelect bool
}

// newGameCommand creates the `modcurator game` command tree.
func newGameCommand(app *App) *cobra.Command {
	gameCmd := &cobra.Command{
		Use:   "game",
		Short: "Register and select games",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	gameCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return listGames(cmd.Context(), app, s)
			})
		},
	})

	var opts registerGameOptions
	registerCmd := &cobra.Command{
		Use:   "register <type>",
		Short: "Register a game",
		Long: `Register a game. The first registered game is selected unless
--no-select is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return registerGame(cmd.Context(), app, s, args[0], opts)
			})
		},
	}
	registerCmd.Flags().StringVar(&opts.name, "name", "", "display name (defaults to the type)")
	registerCmd.Flags().StringVar(&opts.modDir, "mods", "", "directory holding the game's mods")
	registerCmd.Flags().StringVar(&opts.userDir, "user-dir", "", "the game's user directory")
	registerCmd.Flags().StringVar(&opts.mode, "priority-mode", "", "file ordering policy: fios or lios (defaults to priority.mode)")
	registerCmd.Flags().BoolVar(&opts.noSelect, "no-select", false, "do not select the game")
	gameCmd.AddCommand(registerCmd)

	gameCmd.AddCommand(&cobra.Command{
		Use:   "select <type>",
		Short: "Select the active game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				changed, err := s.games.SetSelected(cmd.Context(), args[0])
				if err != nil {
					return newExitError(types.ExitNotFound, err)
				}
				if !changed {
					fmt.Fprintf(app.stdout, "%s is already selected\n", CmdStyle.Render(args[0]))
					return nil
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Selected game"), CmdStyle.Render(args[0]))
				return nil
			})
		},
	})

	return gameCmd
}

func listGames(ctx context.Context, app *App, s *session) error {
	games, err := s.games.Get(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No games registered."))
		return nil
	}
	for _, g := range games {
		marker := " "
		if g.IsSelected {
			marker = selectedMarker
		}
		line := fmt.Sprintf("%s %s %s", marker, CmdStyle.Render(g.Type), g.Name)
		if g.ModDirectory != "" {
			line += SubtitleStyle.Render(" (" + g.ModDirectory + ")")
		}
		fmt.Fprintln(app.stdout, line)
	}
	return nil
}

func registerGame(ctx context.Context, app *App, s *session, gameType string, opts registerGameOptions) error {
	g := models.Game{
		Type:          gameType,
		Name:          opts.name,
		UserDirectory: opts.userDir,
		ModDirectory:  opts.modDir,
	}
	if g.Name == "" {
		g.Name = gameType
	}
	if opts.mode != "" {
		mode, err := priority.ParseMode(opts.mode)
		if err != nil {
			return newExitError(types.ExitUsage, err)
		}
		g.PriorityMode = mode
	}
	if g.ModDirectory != "" {
		abs, err := filepath.Abs(g.ModDirectory)
		if err != nil {
			return err
		}
		g.ModDirectory = abs
	}

	added, err := s.games.Register(ctx, g)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Game already registered:"), CmdStyle.Render(gameType))
		return nil
	}
	fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Registered game"), CmdStyle.Render(gameType))

	if opts.noSelect {
		return nil
	}
	selected, err := s.games.GetSelected(ctx)
	if err != nil {
		return err
	}
	if selected == nil {
		if _, err := s.games.SetSelected(ctx, gameType); err != nil {
			return err
		}
	}
	return nil
}
