// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modcurator/modcurator/internal/collection"
	"github.com/modcurator/modcurator/internal/issue"
	"github.com/modcurator/modcurator/pkg/cueutil"
	"github.com/modcurator/modcurator/pkg/definition"
	"github.com/modcurator/modcurator/pkg/types"
)

//go:embed definitions_schema.cue
var definitionsSchema []byte

type (
	definitionsFile struct {
		Definitions []definitionEntry `json:"definitions"`
	}

	definitionEntry struct {
		ID           string   `json:"id"`
		File         string   `json:"file"`
		FileName     string   `json:"file_name,omitempty"`
		Mod          string   `json:"mod"`
		Dependencies []string `json:"dependencies,omitempty"`
	}
)

// newPriorityCommand creates the `modcurator priority` command tree.
func newPriorityCommand(app *App) *cobra.Command {
	priorityCmd := &cobra.Command{
		Use:   "priority",
		Short: "Resolve conflicting definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var showAll bool
	evalCmd := &cobra.Command{
		Use:   "eval <definitions.cue>",
		Short: "Decide which definition wins each conflict",
		Long: `Decide which definition wins each conflict.

The definitions file lists game objects and the mod providing them:

  definitions: [
  	{id: "tech_lasers", file: "common/technology/00_weapons.txt", mod: "Better Lasers"},
  	{id: "tech_lasers", file: "common/technology/00_weapons.txt", mod: "Laser Rework", dependencies: ["Better Lasers"]},
  ]

Conflicts are decided with the load order of the selected collection and the
priority mode of the selected game.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions(args[0])
			if err != nil {
				return err
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				return evalPriority(cmd.Context(), app, s, defs, showAll)
			})
		},
	}
	evalCmd.Flags().BoolVar(&showAll, "all", false, "list every contender of each conflict")
	priorityCmd.AddCommand(evalCmd)

	return priorityCmd
}

// loadDefinitions parses and validates the definitions file at path.
func loadDefinitions(path string) ([]definition.Definition, error) {
	result, err := cueutil.ParseFile[definitionsFile](definitionsSchema, path, "#Definitions")
	if err != nil {
		id := issue.DefinitionsParseErrorId
		code := types.ExitUsage
		if errors.Is(err, fs.ErrNotExist) {
			id = issue.FileNotFoundId
			code = types.ExitNotFound
		}
		return nil, newExitError(code, issue.NewErrorContext().
			WithOperation("load definitions").
			WithResource(path).
			WithSuggestion("Check the file against the format shown by 'modcurator priority eval --help'").
			WithIssue(id).
			Wrap(err).
			BuildError())
	}

	defs := make([]definition.Definition, 0, len(result.Value.Definitions))
	for _, e := range result.Value.Definitions {
		deps := make([]definition.ModName, len(e.Dependencies))
		for i, d := range e.Dependencies {
			deps[i] = definition.ModName(d)
		}
		d := definition.New(definition.ID(e.ID), e.File, definition.ModName(e.Mod), deps...)
		if e.FileName != "" {
			d = d.WithFileName(e.FileName)
		}
		if valid, errs := d.IsValid(); !valid {
			return nil, newExitError(types.ExitUsage, fmt.Errorf("%s: %w", path, errors.Join(errs...)))
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func evalPriority(ctx context.Context, app *App, s *session, defs []definition.Definition, showAll bool) error {
	if err := s.requireGame(ctx); err != nil {
		return err
	}
	sets, results, err := s.collections.EvalConflicts(ctx, defs)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		fmt.Fprintln(app.stdout, SuccessStyle.Render("No conflicts."))
		return nil
	}

	rows := make([][]string, 0, len(sets))
	for i, set := range sets {
		res := results[i]
		rows = append(rows, []string{
			set.Key.File.String(),
			set.Key.ID.String(),
			res.Winner.ModName.String(),
			res.Reason.Label(),
		})
	}
	var md strings.Builder
	fmt.Fprintf(&md, "## %d conflicts\n\n", len(sets))
	md.WriteString(markdownTable([]string{"File", "ID", "Winner", "Reason"}, rows))

	if showAll {
		for i, set := range sets {
			lines := make([]string, 0, len(set.Definitions))
			for _, d := range set.Definitions {
				lines = append(lines, collection.DescribePriority(d, results[i]))
			}
			md.WriteString("\n" + markdownList(set.Key.String(), lines))
		}
	}
	return renderMarkdown(app.stdout, s.cfg, md.String())
}
