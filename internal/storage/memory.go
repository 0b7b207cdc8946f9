// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/modcurator/modcurator/internal/models"
)

// MemoryStore keeps games and collections in memory.
type MemoryStore struct {
	mu  sync.Mutex
	doc document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetCollections implements Provider.
func (s *MemoryStore) GetCollections(context.Context) ([]models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneCollections(s.doc.Collections), nil
}

// SetCollections implements Provider.
func (s *MemoryStore) SetCollections(_ context.Context, collections []models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Collections = models.CloneCollections(collections)
	return nil
}

// UpdateCollections implements Provider.
func (s *MemoryStore) UpdateCollections(_ context.Context, fn CollectionsUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := fn(models.CloneCollections(s.doc.Collections))
	if err != nil {
		return ignoreNoChange(err)
	}
	s.doc.Collections = models.CloneCollections(updated)
	return nil
}

// GetGames implements Provider.
func (s *MemoryStore) GetGames(context.Context) ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.doc.Games), nil
}

// SetGames implements Provider.
func (s *MemoryStore) SetGames(_ context.Context, games []models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Games = slices.Clone(games)
	return nil
}

// UpdateGames implements Provider.
func (s *MemoryStore) UpdateGames(_ context.Context, fn GamesUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := fn(slices.Clone(s.doc.Games))
	if err != nil {
		return ignoreNoChange(err)
	}
	s.doc.Games = slices.Clone(updated)
	return nil
}

// RegisterGame implements Provider.
func (s *MemoryStore) RegisterGame(_ context.Context, game models.Game) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games, added, err := registerGame(s.doc.Games, game)
	if err != nil || !added {
		return false, err
	}
	s.doc.Games = games
	return true, nil
}

// Close implements Provider.
func (s *MemoryStore) Close() error { return nil }
