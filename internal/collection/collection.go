// SPDX-License-Identifier: MPL-2.0

// Package collection owns the mod collections of the selected game. It persists
// them through a storage provider, drives import and export through exchange
// collaborators, evaluates definition priority against a collection's load
// order and produces hash reports for the mods of a collection.
package collection

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/modcurator/modcurator/internal/exchange"
	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/internal/msgbus"
	"github.com/modcurator/modcurator/internal/reconcile"
	"github.com/modcurator/modcurator/internal/storage"
	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/priority"
	"github.com/modcurator/modcurator/pkg/types"
)

// PatchModPrefix starts the name of every generated patch mod.
const PatchModPrefix = "modcurator_"

// ErrArgumentNil is returned when a required argument is missing.
var ErrArgumentNil = errors.New("required argument is nil")

type (
	// GameSelector reports the selected game, or nil when none is selected.
	GameSelector interface {
		GetSelected(ctx context.Context) (*models.Game, error)
	}

	// Exporter reads and writes collection exchange files. Import methods
	// populate params.Collection on success.
	Exporter interface {
		Export(ctx context.Context, params exchange.ExportParams) error
		Import(ctx context.Context, params exchange.ImportParams) error
		ImportModDirectory(ctx context.Context, params exchange.ImportParams) error
		ImportParadoxos(ctx context.Context, params exchange.ImportParams) error
		ImportParadox(ctx context.Context, params exchange.ImportParams) error
		ImportParadoxLauncher(ctx context.Context, params exchange.ImportParams) error
	}

	// ModWriter inspects mod directories.
	ModWriter interface {
		ModDirectoryExists(ctx context.Context, params exchange.ModWriterParams) bool
	}

	// ReportExporter serializes hash reports.
	ReportExporter interface {
		Export(ctx context.Context, reports []hashreport.Report, path types.FilesystemPath) error
	}

	// Dependencies holds the collaborators of a Service.
	Dependencies struct {
		Games      GameSelector
		Storage    storage.Provider
		Exporter   Exporter
		ModWriter  ModWriter
		Reader     reconcile.FileInfoReader
		Reports    ReportExporter
		Events     msgbus.Publisher
		Reconciler *reconcile.Reconciler
		Logger     *log.Logger
		// DefaultMode is the file ordering policy for games that do not set one.
		DefaultMode priority.Mode
	}

	// Service is the collection orchestrator. It is safe for concurrent use as
	// long as its collaborators are; mutations run as a single storage update.
	Service struct {
		deps Dependencies
	}
)

// NewService creates a Service. Nil logger, reconciler and event publisher are
// replaced with no-op defaults; an empty DefaultMode selects FIOS. Without an
// Exporter every export reports false and every import returns nil.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Reconciler == nil {
		deps.Reconciler = reconcile.New(nil)
	}
	if deps.Events == nil {
		deps.Events = msgbus.New(deps.Logger)
	}
	if deps.DefaultMode == "" {
		deps.DefaultMode = priority.ModeFIOS
	}
	return &Service{deps: deps}
}

// IsPatchMod reports whether name is a generated patch mod.
func IsPatchMod(name string) bool {
	return strings.HasPrefix(name, PatchModPrefix)
}

// PatchModName returns the patch mod name of the collection named collection.
// Characters that cannot appear in a directory name are replaced.
func PatchModName(collection string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		default:
			return r
		}
	}, strings.TrimSpace(collection))
	return PatchModPrefix + clean
}

// Create returns an empty collection bound to the selected game. Game stays
// empty when no game is selected.
func (s *Service) Create(ctx context.Context) *models.Collection {
	c := &models.Collection{Mods: []string{}}
	if game := s.selectedGame(ctx); game != nil {
		c.Game = game.Type
	}
	return c
}

// GetAll returns the collections of the selected game; nil when no game is
// selected or it has none.
func (s *Service) GetAll(ctx context.Context) ([]models.Collection, error) {
	game := s.selectedGame(ctx)
	if game == nil {
		return nil, nil
	}
	all, err := s.deps.Storage.GetCollections(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Collection
	for _, c := range all {
		if game.SameGame(c.Game) {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

// Get returns the collection named name of the selected game, or nil.
func (s *Service) Get(ctx context.Context, name string) (*models.Collection, error) {
	if name == "" {
		return nil, nil
	}
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(all, func(c models.Collection) bool { return c.Name == name })
	if i < 0 {
		return nil, nil
	}
	return &all[i], nil
}

// Exists reports whether the selected game has a collection named name.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	c, err := s.Get(ctx, name)
	return c != nil, err
}

// GetSelected returns the selected collection of the selected game, or nil.
func (s *Service) GetSelected(ctx context.Context) (*models.Collection, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(all, func(c models.Collection) bool { return c.IsSelected })
	if i < 0 {
		return nil, nil
	}
	return &all[i], nil
}

// Save persists c, replacing a stored collection with the same name and game.
// A selected c deselects the other collections of its game.
func (s *Service) Save(ctx context.Context, c *models.Collection) (bool, error) {
	if c == nil || c.Game == "" {
		return false, ErrArgumentNil
	}
	saved := c.Clone()
	err := s.deps.Storage.UpdateCollections(ctx, func(all []models.Collection) ([]models.Collection, error) {
		i := slices.IndexFunc(all, func(x models.Collection) bool { return x.Name == saved.Name && sameGame(x.Game, saved.Game) })
		if i < 0 {
			all = append(all, saved)
			i = len(all) - 1
		} else {
			all[i] = saved
		}
		if saved.IsSelected {
			deselectOthers(all, i)
		}
		return all, nil
	})
	if err != nil {
		return false, err
	}
	s.deps.Logger.Debug("saved collection", "name", c.Name, "game", c.Game, "mods", len(c.Mods))
	s.publishChange(c.Game, c.Name, msgbus.CollectionSaved)
	return true, nil
}

// Delete removes the collection named name from the selected game.
func (s *Service) Delete(ctx context.Context, name string) (bool, error) {
	game := s.selectedGame(ctx)
	if game == nil {
		return false, nil
	}
	var deleted bool
	err := s.deps.Storage.UpdateCollections(ctx, func(all []models.Collection) ([]models.Collection, error) {
		i := slices.IndexFunc(all, func(c models.Collection) bool { return c.Name == name && game.SameGame(c.Game) })
		if i < 0 {
			return nil, storage.ErrNoChange
		}
		deleted = true
		return slices.Delete(all, i, i+1), nil
	})
	if err != nil || !deleted {
		return false, err
	}
	s.publishChange(game.Type, name, msgbus.CollectionDeleted)
	return true, nil
}

// SetSelected makes the collection named name the only selected collection of
// the selected game.
func (s *Service) SetSelected(ctx context.Context, name string) (bool, error) {
	game := s.selectedGame(ctx)
	if game == nil {
		return false, nil
	}
	var found bool
	err := s.deps.Storage.UpdateCollections(ctx, func(all []models.Collection) ([]models.Collection, error) {
		i := slices.IndexFunc(all, func(c models.Collection) bool { return c.Name == name && game.SameGame(c.Game) })
		if i < 0 {
			return nil, storage.ErrNoChange
		}
		found = true
		all[i].IsSelected = true
		deselectOthers(all, i)
		return all, nil
	})
	if err != nil || !found {
		return false, err
	}
	s.publishChange(game.Type, name, msgbus.CollectionSelected)
	return true, nil
}

func (s *Service) selectedGame(ctx context.Context) *models.Game {
	if s.deps.Games == nil {
		return nil
	}
	game, err := s.deps.Games.GetSelected(ctx)
	if err != nil {
		s.deps.Logger.Warn("cannot determine selected game", "error", err)
		return nil
	}
	return game
}

func (s *Service) publishChange(game, name string, change msgbus.CollectionChange) {
	s.deps.Events.Publish(msgbus.CollectionChangedEvent{Game: game, Collection: name, Change: change})
}

func deselectOthers(all []models.Collection, keep int) {
	for j := range all {
		if j != keep && sameGame(all[j].Game, all[keep].Game) {
			all[j].IsSelected = false
		}
	}
}

// sameGame compares game types the way game registration does.
func sameGame(a, b string) bool {
	return strings.EqualFold(a, b)
}
