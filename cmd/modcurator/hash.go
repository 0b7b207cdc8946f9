// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/modcurator/modcurator/internal/issue"
	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/internal/msgbus"
	"github.com/modcurator/modcurator/internal/reader"
	"github.com/modcurator/modcurator/internal/reconcile"
	"github.com/modcurator/modcurator/internal/watch"
	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/types"
)

var errNoModDirectory = errors.New("the selected game has no mod directory")

// newHashCommand creates the `modcurator hash` command tree.
func newHashCommand(app *App) *cobra.Command {
	hashCmd := &cobra.Command{
		Use:   "hash",
		Short: "Record and compare file hashes of the selected collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	hashCmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write a hash report of the selected collection's mods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return exportHashes(cmd.Context(), app, s, types.FilesystemPath(args[0]))
			})
		},
	})

	var details bool
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Compare a hash report with the current files",
		Long: `Compare a hash report with the current files of the selected
collection's mods and list the mods whose files changed or were added.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return importHashes(cmd.Context(), app, s, types.FilesystemPath(args[0]), details)
			})
		},
	}
	importCmd.Flags().BoolVar(&details, "files", false, "list the changed and added files")
	hashCmd.AddCommand(importCmd)

	var debounce time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Compare a hash report whenever the collection's mod files change",
		Long: `Watch the mod directories of the selected collection and compare them
with a hash report after every change, until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(s *session) error {
				return watchHashes(cmd.Context(), app, s, types.FilesystemPath(args[0]), debounce)
			})
		},
	}
	watchCmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before comparing")
	hashCmd.AddCommand(watchCmd)

	return hashCmd
}

// collectionMods resolves the mods of c below the mod directory of the
// selected game. Mods without a directory are skipped with a warning.
func collectionMods(ctx context.Context, s *session, c *models.Collection) ([]models.Mod, error) {
	g, err := s.games.GetSelected(ctx)
	if err != nil {
		return nil, err
	}
	if g == nil || g.ModDirectory == "" {
		return nil, issue.NewErrorContext().
			WithOperation("locate mods").
			WithSuggestion("Register the game with --mods pointing at its mod directory").
			Wrap(errNoModDirectory).
			BuildError()
	}

	mods := make([]models.Mod, 0, len(c.Mods))
	for _, name := range c.Mods {
		dir := filepath.Join(g.ModDirectory, name)
		files, err := reader.ListFiles(ctx, dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("mod directory missing", "mod", name, "directory", dir)
				continue
			}
			return nil, err
		}
		mods = append(mods, models.Mod{Name: name, FullPath: dir, Files: files})
	}
	return mods, nil
}

func exportHashes(ctx context.Context, app *App, s *session, file types.FilesystemPath) error {
	c, err := resolveCollection(ctx, s, nil)
	if err != nil {
		return err
	}
	mods, err := collectionMods(ctx, s, c)
	if err != nil {
		return err
	}
	if len(mods) == 0 {
		fmt.Fprintln(app.stdout, WarningStyle.Render("No installed mods in collection ")+CmdStyle.Render(c.Name))
		return nil
	}

	unsubscribe := s.bus.Subscribe(msgbus.TopicHashReportProgress, func(_ context.Context, env msgbus.Envelope) error {
		if ev, ok := env.Event.(msgbus.HashReportProgressEvent); ok {
			s.logger.Debug("hashed mod", "mod", ev.Mod, "progress", fmt.Sprintf("%.0f%%", ev.Percent()))
		}
		return nil
	})
	defer unsubscribe()

	ok, err := s.collections.ExportHashReport(ctx, mods, file)
	if err != nil {
		return err
	}
	if !ok {
		return issue.NewErrorContext().
			WithOperation("export hash report").
			WithResource(file.String()).
			WithSuggestion("Check that the target directory is writable").
			WithSuggestion("Run with --verbose to see which mod failed").
			WithIssue(issue.PermissionDeniedId).
			Wrap(fmt.Errorf("hash report of %s was not written", c.Name)).
			BuildError()
	}
	fmt.Fprintf(app.stdout, "%s %s %s\n", SuccessStyle.Render("Exported hash report of"), CmdStyle.Render(c.Name), SubtitleStyle.Render(fmt.Sprintf("(%d mods) to %s", len(mods), file)))
	return nil
}

func importHashes(ctx context.Context, app *App, s *session, file types.FilesystemPath, details bool) error {
	incoming, err := readHashReport(ctx, s, file)
	if err != nil {
		return err
	}
	c, err := resolveCollection(ctx, s, nil)
	if err != nil {
		return err
	}
	mods, err := collectionMods(ctx, s, c)
	if err != nil {
		return err
	}
	return compareHashes(ctx, app, s, file, mods, incoming, details)
}

func readHashReport(ctx context.Context, s *session, file types.FilesystemPath) ([]hashreport.Report, error) {
	incoming, err := s.reports.Import(ctx, file)
	if err != nil {
		id := issue.HashReportInvalidId
		if errors.Is(err, fs.ErrNotExist) {
			id = issue.FileNotFoundId
		}
		return nil, issue.NewErrorContext().
			WithOperation("read hash report").
			WithResource(file.String()).
			WithSuggestion("Use a file written by 'modcurator hash export'").
			WithIssue(id).
			Wrap(err).
			BuildError()
	}
	return incoming, nil
}

func compareHashes(ctx context.Context, app *App, s *session, file types.FilesystemPath, mods []models.Mod, incoming []hashreport.Report, details bool) error {
	results, err := s.collections.ImportHashReportDetailed(ctx, mods, incoming)
	if err != nil {
		return err
	}
	if results == nil {
		return fmt.Errorf("hash report %s could not be compared", file)
	}
	if len(results) == 0 {
		fmt.Fprintln(app.stdout, SuccessStyle.Render("No changes."))
		return nil
	}
	return renderMarkdown(app.stdout, s.cfg, hashDeltaMarkdown(results, details))
}

// watchHashes compares the collection with the report at file once, then again
// after every batch of changes below the game's mod directory.
func watchHashes(ctx context.Context, app *App, s *session, file types.FilesystemPath, debounce time.Duration) error {
	incoming, err := readHashReport(ctx, s, file)
	if err != nil {
		return err
	}
	c, err := resolveCollection(ctx, s, nil)
	if err != nil {
		return err
	}
	mods, err := collectionMods(ctx, s, c)
	if err != nil {
		return err
	}
	if err := compareHashes(ctx, app, s, file, mods, incoming, false); err != nil {
		return err
	}

	g, err := s.games.GetSelected(ctx)
	if err != nil {
		return err
	}
	patterns := make([]string, 0, len(c.Mods))
	for _, name := range c.Mods {
		patterns = append(patterns, doublestar.EscapeMeta(filepath.ToSlash(name))+"/**")
	}

	w, err := watch.New(watch.Config{
		BaseDir:  g.ModDirectory,
		Patterns: patterns,
		Debounce: debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Debug("mod files changed", "count", len(changed))
			return recompareHashes(ctx, app, s, file, c, incoming)
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s %s %s\n", SubtitleStyle.Render("Watching"), CmdStyle.Render(g.ModDirectory), SubtitleStyle.Render("(Ctrl+C to stop)"))
	return w.Run(ctx)
}

// recompareHashes drops cached digests and compares c with incoming again.
// The cache is keyed by size and mtime, which a quick same-size rewrite can
// leave unchanged.
func recompareHashes(ctx context.Context, app *App, s *session, file types.FilesystemPath, c *models.Collection, incoming []hashreport.Report) error {
	s.logger.Debug("dropping cached digests", "entries", s.files.Len())
	s.files.Purge()
	mods, err := collectionMods(ctx, s, c)
	if err != nil {
		return err
	}
	return compareHashes(ctx, app, s, file, mods, incoming, false)
}

// hashDeltaMarkdown summarizes merge results as a table of mods, optionally
// followed by the affected files of each mod.
func hashDeltaMarkdown(results []reconcile.MergeResult, details bool) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Report.Name, fmt.Sprint(len(r.Delta.Changed)), fmt.Sprint(len(r.Delta.Added))})
	}
	var md strings.Builder
	fmt.Fprintf(&md, "## %d mods changed\n\n", len(results))
	md.WriteString(markdownTable([]string{"Mod", "Changed", "Added"}, rows))
	if !details {
		return md.String()
	}
	for _, r := range results {
		files := make([]string, 0, r.Delta.Count())
		for _, f := range r.Delta.Changed {
			files = append(files, "changed: "+f)
		}
		for _, f := range r.Delta.Added {
			files = append(files, "added: "+f)
		}
		md.WriteString("\n" + markdownList(r.Report.Name, files))
	}
	return md.String()
}
