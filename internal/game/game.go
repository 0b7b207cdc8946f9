// SPDX-License-Identifier: MPL-2.0

// Package game manages registered games and the current game selection.
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/internal/storage"
	"github.com/modcurator/modcurator/pkg/priority"
)

// ErrGameNotFound is returned when an operation names an unregistered game.
var ErrGameNotFound = errors.New("game not found")

// Service reads and updates games through a storage provider.
type Service struct {
	store  storage.Provider
	logger *log.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(store storage.Provider, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{store: store, logger: logger}
}

// Get returns every registered game.
func (s *Service) Get(ctx context.Context) ([]models.Game, error) {
	return s.store.GetGames(ctx)
}

// GetSelected returns the selected game, or nil when none is selected.
func (s *Service) GetSelected(ctx context.Context) (*models.Game, error) {
	games, err := s.store.GetGames(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(games, func(g models.Game) bool { return g.IsSelected })
	if i < 0 {
		return nil, nil
	}
	g := games[i]
	return &g, nil
}

// Register adds game. It reports false when a game of the same type exists.
func (s *Service) Register(ctx context.Context, game models.Game) (bool, error) {
	if game.PriorityMode != "" {
		if ok, errs := game.PriorityMode.IsValid(); !ok {
			return false, errs[0]
		}
	}
	added, err := s.store.RegisterGame(ctx, game)
	if err != nil {
		return false, err
	}
	if !added {
		s.logger.Warn("game already registered", "type", game.Type)
	}
	return added, nil
}

// Save updates the stored record of game, matched by type.
func (s *Service) Save(ctx context.Context, game models.Game) error {
	return s.store.UpdateGames(ctx, func(games []models.Game) ([]models.Game, error) {
		i := slices.IndexFunc(games, func(g models.Game) bool { return g.SameGame(game.Type) })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, game.Type)
		}
		games[i] = game
		if game.IsSelected {
			clearOthers(games, i)
		}
		return games, nil
	})
}

// SetSelected makes the game of the given type the only selected one. It reports
// false when the game is already selected.
func (s *Service) SetSelected(ctx context.Context, gameType string) (bool, error) {
	var selected string
	err := s.store.UpdateGames(ctx, func(games []models.Game) ([]models.Game, error) {
		i := slices.IndexFunc(games, func(g models.Game) bool { return g.SameGame(gameType) })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameType)
		}
		if games[i].IsSelected {
			return nil, storage.ErrNoChange
		}
		games[i].IsSelected = true
		clearOthers(games, i)
		selected = games[i].Type
		return games, nil
	})
	if err != nil || selected == "" {
		return false, err
	}
	s.logger.Info("selected game", "type", selected)
	return true, nil
}

// PriorityMode returns the file ordering policy of game, falling back to def
// when the game does not set one.
func PriorityMode(game *models.Game, def priority.Mode) priority.Mode {
	if game == nil || game.PriorityMode == "" {
		return def
	}
	return game.PriorityMode
}

func clearOthers(games []models.Game, keep int) {
	for j := range games {
		if j != keep {
			games[j].IsSelected = false
		}
	}
}
