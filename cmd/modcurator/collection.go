// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modcurator/modcurator/internal/issue"
	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/pkg/types"
)

const (
	importFormatStandard        = "standard"
	importFormatParadoxos       = "paradoxos"
	importFormatParadox         = "paradox"
	importFormatParadoxLauncher = "paradox-launcher"
)

var errCollectionNotFound = errors.New("collection not found")

type importCollectionOptions struct {
	format string
	sel    bool
	dryRun bool
}

// newCollectionCommand creates the `modcurator collection` command tree.
func newCollectionCommand(app *App) *cobra.Command {
	colCmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage mod collections of the selected game",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	colCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return listCollections(cmd.Context(), app, s)
			})
		},
	})

	colCmd.AddCommand(&cobra.Command{
		Use:   "show [name]",
		Short: "Show the mods of a collection (default: the selected one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				c, err := resolveCollection(cmd.Context(), s, args)
				if err != nil {
					return err
				}
				return renderCollection(app, s, c)
			})
		},
	})

	var selectNew bool
	createCmd := &cobra.Command{
		Use:   "create <name> [mod...]",
		Short: "Create or replace a collection",
		Long: `Create or replace a collection. Mods are given from lowest to highest
precedence: the last mod wins conflicts decided by load order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return createCollection(cmd.Context(), app, s, args[0], args[1:], selectNew)
			})
		},
	}
	createCmd.Flags().BoolVar(&selectNew, "select", false, "select the collection")
	colCmd.AddCommand(createCmd)

	colCmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				if err := s.requireGame(cmd.Context()); err != nil {
					return err
				}
				deleted, err := s.collections.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !deleted {
					return collectionNotFound(args[0])
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Deleted collection"), CmdStyle.Render(args[0]))
				return nil
			})
		},
	})

	colCmd.AddCommand(&cobra.Command{
		Use:   "select <name>",
		Short: "Select the active collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				if err := s.requireGame(cmd.Context()); err != nil {
					return err
				}
				ok, err := s.collections.SetSelected(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return collectionNotFound(args[0])
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Selected collection"), CmdStyle.Render(args[0]))
				return nil
			})
		},
	})

	var (
		exportName      string
		exportOrderOnly bool
	)
	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a collection to an exchange file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return exportCollection(cmd.Context(), app, s, types.FilesystemPath(args[0]), exportName, exportOrderOnly)
			})
		},
	}
	exportCmd.Flags().StringVar(&exportName, "name", "", "collection to export (default: the selected one)")
	exportCmd.Flags().BoolVar(&exportOrderOnly, "order-only", false, "export the mod order without the patch mod")
	colCmd.AddCommand(exportCmd)

	var importOpts importCollectionOptions
	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a collection",
		Long: `Import a collection from an exchange file. The launcher formats
paradox and paradox-launcher read the launcher's own playset and take no file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file types.FilesystemPath
			if len(args) == 1 {
				file = types.FilesystemPath(args[0])
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				return importCollection(cmd.Context(), app, s, file, importOpts)
			})
		},
	}
	importCmd.Flags().StringVar(&importOpts.format, "format", importFormatStandard, "exchange format: standard, paradoxos, paradox or paradox-launcher")
	importCmd.Flags().BoolVar(&importOpts.sel, "select", false, "select the imported collection")
	importCmd.Flags().BoolVar(&importOpts.dryRun, "dry-run", false, "show the collection without importing it")
	colCmd.AddCommand(importCmd)

	return colCmd
}

func listCollections(ctx context.Context, app *App, s *session) error {
	if err := s.requireGame(ctx); err != nil {
		return err
	}
	all, err := s.collections.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No collections."))
		return nil
	}
	for _, c := range all {
		marker := " "
		if c.IsSelected {
			marker = selectedMarker
		}
		fmt.Fprintf(app.stdout, "%s %s %s\n", marker, CmdStyle.Render(c.Name), SubtitleStyle.Render(fmt.Sprintf("(%d mods)", len(c.Mods))))
	}
	return nil
}

// resolveCollection returns the collection named by args, or the selected one.
func resolveCollection(ctx context.Context, s *session, args []string) (*models.Collection, error) {
	if err := s.requireGame(ctx); err != nil {
		return nil, err
	}
	if len(args) > 0 && args[0] != "" {
		c, err := s.collections.Get(ctx, args[0])
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, collectionNotFound(args[0])
		}
		return c, nil
	}
	c, err := s.collections.GetSelected(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve selected collection").
			WithSuggestion("Select a collection with 'modcurator collection select <name>'").
			WithSuggestion("Or name the collection explicitly").
			WithIssue(issue.NoCollectionSelectedId).
			Wrap(errNoCollectionSelected).
			BuildError()
	}
	return c, nil
}

func collectionNotFound(name string) error {
	return newExitError(types.ExitNotFound, issue.NewErrorContext().
		WithOperation("find collection").
		WithResource(name).
		WithSuggestion("Run 'modcurator collection list' to see the collections of the selected game").
		WithIssue(issue.CollectionNotFoundId).
		Wrap(errCollectionNotFound).
		BuildError())
}

func createCollection(ctx context.Context, app *App, s *session, name string, mods []string, sel bool) error {
	if err := s.requireGame(ctx); err != nil {
		return err
	}
	exists, err := s.collections.Exists(ctx, name)
	if err != nil {
		return err
	}
	c := s.collections.Create(ctx)
	c.Name = name
	c.Mods = append(c.Mods, mods...)
	c.IsSelected = sel
	if _, err := s.collections.Save(ctx, c); err != nil {
		return err
	}
	verb := "Created collection"
	if exists {
		verb = "Replaced collection"
	}
	fmt.Fprintf(app.stdout, "%s %s %s\n", SuccessStyle.Render(verb), CmdStyle.Render(name), SubtitleStyle.Render(fmt.Sprintf("(%d mods)", len(mods))))
	return nil
}

func exportCollection(ctx context.Context, app *App, s *session, file types.FilesystemPath, name string, orderOnly bool) error {
	var args []string
	if name != "" {
		args = []string{name}
	}
	c, err := resolveCollection(ctx, s, args)
	if err != nil {
		return err
	}
	ok, err := s.collections.Export(ctx, file, c, orderOnly)
	if err != nil {
		return newExitError(types.ExitUsage, err)
	}
	if !ok {
		return issue.NewErrorContext().
			WithOperation("export collection").
			WithResource(file.String()).
			WithSuggestion("Check that the target directory is writable").
			WithIssue(issue.PermissionDeniedId).
			Wrap(fmt.Errorf("export of %s failed", c.Name)).
			BuildError()
	}
	fmt.Fprintf(app.stdout, "%s %s to %s\n", SuccessStyle.Render("Exported collection"), CmdStyle.Render(c.Name), file)
	return nil
}

func importCollection(ctx context.Context, app *App, s *session, file types.FilesystemPath, opts importCollectionOptions) error {
	if opts.dryRun {
		c := s.collections.GetImportedCollectionDetails(ctx, file)
		if c == nil {
			return invalidExchangeFile(file)
		}
		return renderCollection(app, s, c)
	}

	if err := s.requireGame(ctx); err != nil {
		return err
	}
	var c *models.Collection
	switch opts.format {
	case importFormatStandard:
		c = s.collections.Import(ctx, file)
	case importFormatParadoxos:
		c = s.collections.ImportParadoxos(ctx, file)
	case importFormatParadox:
		c = s.collections.ImportParadox(ctx)
	case importFormatParadoxLauncher:
		c = s.collections.ImportParadoxLauncher(ctx)
	default:
		return newExitError(types.ExitUsage, fmt.Errorf("unknown import format %q", opts.format))
	}
	if c == nil {
		return invalidExchangeFile(file)
	}

	c.IsSelected = opts.sel
	if _, err := s.collections.Save(ctx, c); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s %s %s\n", SuccessStyle.Render("Imported collection"), CmdStyle.Render(c.Name), SubtitleStyle.Render(fmt.Sprintf("(%d mods)", len(c.Mods))))
	return nil
}

func invalidExchangeFile(file types.FilesystemPath) error {
	return issue.NewErrorContext().
		WithOperation("import collection").
		WithResource(file.String()).
		WithSuggestion("Verify the file was written by 'modcurator collection export'").
		WithSuggestion("Run with --verbose to see the importer's log").
		WithIssue(issue.ExchangeFileInvalidId).
		Wrap(fmt.Errorf("cannot import %q", file)).
		BuildError()
}

func renderCollection(app *App, s *session, c *models.Collection) error {
	fmt.Fprintln(app.stdout, TitleStyle.Render(c.Name))
	if c.Game != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Game"), c.Game)
	}
	if len(c.Mods) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No mods."))
		return nil
	}
	md := markdownList("Load order", c.Mods)
	return renderMarkdown(app.stdout, s.cfg, md)
}
