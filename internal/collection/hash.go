// SPDX-License-Identifier: MPL-2.0

package collection

import (
	"context"
	"errors"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/internal/msgbus"
	"github.com/modcurator/modcurator/internal/reconcile"
	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/types"
)

var (
	errNoReader         = errors.New("no file reader configured")
	errNoReportExporter = errors.New("no report exporter configured")
)

// ExportHashReport computes one collection report per mod from the files each
// mod declares and writes them to path. It returns false when mods or path is
// empty, when no game or collection is selected, or when a collaborator fails.
func (s *Service) ExportHashReport(ctx context.Context, mods []models.Mod, path types.FilesystemPath) (bool, error) {
	if len(mods) == 0 || path == "" {
		return false, nil
	}
	selected, err := s.GetSelected(ctx)
	if err != nil {
		return false, err
	}
	if selected == nil {
		return false, nil
	}

	reports, err := s.computeReports(ctx, selected.Name, mods)
	if err != nil {
		s.deps.Logger.Error("hash report computation failed", "collection", selected.Name, "error", err)
		return false, nil
	}
	if s.deps.Reports == nil {
		s.deps.Logger.Error("hash report export failed", "path", path, "error", errNoReportExporter)
		return false, nil
	}
	if err := s.deps.Reports.Export(ctx, reports, path); err != nil {
		s.deps.Logger.Error("hash report export failed", "path", path, "error", err)
		return false, nil
	}
	s.deps.Logger.Info("exported hash report", "collection", selected.Name, "mods", len(reports), "path", path)
	return true, nil
}

// ImportHashReport compares incoming reports with the current files of mods and
// returns the reports that changed. Only collection reports of incoming are
// considered. It returns nil when mods or incoming is nil, when no game is
// selected, or when the current files cannot be hashed; a non-nil empty result
// means nothing changed.
func (s *Service) ImportHashReport(ctx context.Context, mods []models.Mod, incoming []hashreport.Report) ([]hashreport.Report, error) {
	results, err := s.ImportHashReportDetailed(ctx, mods, incoming)
	if results == nil || err != nil {
		return nil, err
	}
	out := make([]hashreport.Report, 0, len(results))
	for _, r := range results {
		out = append(out, r.Report)
	}
	return out, nil
}

// ImportHashReportDetailed is ImportHashReport with the per-report delta.
func (s *Service) ImportHashReportDetailed(ctx context.Context, mods []models.Mod, incoming []hashreport.Report) ([]reconcile.MergeResult, error) {
	if mods == nil || incoming == nil {
		return nil, nil
	}
	game := s.selectedGame(ctx)
	if game == nil {
		return nil, nil
	}

	scope := game.Type
	if selected, err := s.GetSelected(ctx); err == nil && selected != nil {
		scope = selected.Name
	}
	existing := reconcile.GetCollectionReports(incoming)
	current, err := s.computeReports(ctx, scope, mods)
	if err != nil {
		s.deps.Logger.Error("hash report computation failed", "scope", scope, "error", err)
		return nil, nil
	}
	return reconcile.MergeReportsDetailed(existing, current), nil
}

func (s *Service) computeReports(ctx context.Context, scope string, mods []models.Mod) ([]hashreport.Report, error) {
	if s.deps.Reader == nil {
		return nil, errNoReader
	}
	reports := make([]hashreport.Report, 0, len(mods))
	for i, mod := range mods {
		report, err := s.deps.Reconciler.ComputeReportFromReader(ctx, mod.Name, hashreport.TypeCollection, mod.FullPath, mod.Files, s.deps.Reader)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
		// Progress is delivered in order and before the report is returned.
		err = s.deps.Events.PublishAwait(ctx, msgbus.HashReportProgressEvent{
			Collection: scope,
			Mod:        mod.Name,
			Done:       i + 1,
			Total:      len(mods),
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.deps.Logger.Warn("hash progress handler failed", "mod", mod.Name, "error", err)
		}
	}
	return reports, nil
}
