// SPDX-License-Identifier: MPL-2.0

package collection

import (
	"context"
	"errors"

	"github.com/modcurator/modcurator/internal/exchange"
	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/pkg/types"
)

var errNoExporter = errors.New("no collection exporter configured")

// Export writes c to file through the exporter. The patch mod directory of c is
// bundled when it exists and orderOnly is false. Exporter failures are logged
// and reported as false.
func (s *Service) Export(ctx context.Context, file types.FilesystemPath, c *models.Collection, orderOnly bool) (bool, error) {
	if c == nil {
		return false, ErrArgumentNil
	}
	if ok, errs := file.IsValid(); !ok {
		return false, errs[0]
	}

	params := exchange.ExportParams{
		File:               file,
		Collection:         c.Clone(),
		ExportModOrderOnly: orderOnly,
	}
	if dir, ok := s.patchModDirectory(ctx, c.Name); ok {
		params.ModDirectory = dir.Directory()
	}

	if s.deps.Exporter == nil {
		s.deps.Logger.Error("collection export failed", "collection", c.Name, "file", file, "error", errNoExporter)
		return false, nil
	}
	if err := s.deps.Exporter.Export(ctx, params); err != nil {
		s.deps.Logger.Error("collection export failed", "collection", c.Name, "file", file, "error", err)
		return false, nil
	}
	s.deps.Logger.Info("exported collection", "collection", c.Name, "file", file)
	return true, nil
}

// Import reads a standard exchange file and its bundled patch mod. It returns
// nil when no game is selected or the importer fails.
func (s *Service) Import(ctx context.Context, file types.FilesystemPath) *models.Collection {
	game := s.selectedGame(ctx)
	if game == nil || !s.hasExporter("standard", file) {
		return nil
	}
	instance := s.Create(ctx)
	params := exchange.ImportParams{File: file, Collection: instance}
	if err := s.deps.Exporter.Import(ctx, params); err != nil {
		s.deps.Logger.Error("collection import failed", "file", file, "error", err)
		return nil
	}
	instance.Game = game.Type

	if game.ModDirectory != "" {
		dir := exchange.ModWriterParams{
			RootDirectory: types.FilesystemPath(game.ModDirectory),
			Path:          PatchModName(instance.Name),
		}
		if s.deps.ModWriter != nil && s.deps.ModWriter.ModDirectoryExists(ctx, dir) {
			s.deps.Logger.Warn("import overwrites existing patch mod", "directory", dir.Directory())
		}
		params.ModDirectory = dir.Directory()
	}
	if err := s.deps.Exporter.ImportModDirectory(ctx, params); err != nil {
		s.deps.Logger.Error("patch mod import failed", "file", file, "error", err)
		return nil
	}
	s.deps.Logger.Info("imported collection", "collection", instance.Name, "mods", len(instance.Mods))
	return instance
}

// ImportParadoxos imports a collection exported by the secondary launcher
// format. It returns nil on failure.
func (s *Service) ImportParadoxos(ctx context.Context, file types.FilesystemPath) *models.Collection {
	return s.importWith(ctx, "paradoxos", file, Exporter.ImportParadoxos)
}

// ImportParadox imports the playset of the legacy game launcher. It returns nil
// on failure.
func (s *Service) ImportParadox(ctx context.Context) *models.Collection {
	return s.importWith(ctx, "paradox", "", Exporter.ImportParadox)
}

// ImportParadoxLauncher imports the playset of the current game launcher. It
// returns nil on failure.
func (s *Service) ImportParadoxLauncher(ctx context.Context) *models.Collection {
	return s.importWith(ctx, "paradox-launcher", "", Exporter.ImportParadoxLauncher)
}

// GetImportedCollectionDetails reads file without importing patch mod files or
// requiring a selected game. It returns nil when the file cannot be read.
func (s *Service) GetImportedCollectionDetails(ctx context.Context, file types.FilesystemPath) *models.Collection {
	if s.deps.Exporter == nil {
		return nil
	}
	instance := &models.Collection{Mods: []string{}}
	if err := s.deps.Exporter.Import(ctx, exchange.ImportParams{File: file, Collection: instance}); err != nil {
		s.deps.Logger.Debug("collection detection failed", "file", file, "error", err)
		return nil
	}
	return instance
}

func (s *Service) importWith(ctx context.Context, format string, file types.FilesystemPath, fn func(Exporter, context.Context, exchange.ImportParams) error) *models.Collection {
	game := s.selectedGame(ctx)
	if game == nil || !s.hasExporter(format, file) {
		return nil
	}
	instance := s.Create(ctx)
	if err := fn(s.deps.Exporter, ctx, exchange.ImportParams{File: file, Collection: instance}); err != nil {
		s.deps.Logger.Error("collection import failed", "format", format, "file", file, "error", err)
		return nil
	}
	instance.Game = game.Type
	return instance
}

func (s *Service) hasExporter(format string, file types.FilesystemPath) bool {
	if s.deps.Exporter == nil {
		s.deps.Logger.Error("collection import failed", "format", format, "file", file, "error", errNoExporter)
		return false
	}
	return true
}

// patchModDirectory locates the patch mod of the collection named name and
// reports whether it exists.
func (s *Service) patchModDirectory(ctx context.Context, name string) (exchange.ModWriterParams, bool) {
	game := s.selectedGame(ctx)
	if game == nil || game.ModDirectory == "" || s.deps.ModWriter == nil {
		return exchange.ModWriterParams{}, false
	}
	params := exchange.ModWriterParams{
		RootDirectory: types.FilesystemPath(game.ModDirectory),
		Path:          PatchModName(name),
	}
	return params, s.deps.ModWriter.ModDirectoryExists(ctx, params)
}
