// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/pkg/fspath"
	"github.com/modcurator/modcurator/pkg/types"
)

// FileStore keeps games and collections in a TOML document. The document is
// read on every access and replaced atomically on every write.
type FileStore struct {
	mu   sync.Mutex
	path types.FilesystemPath
}

// NewFileStore creates a store backed by the TOML file at path. The file is
// created on first write.
func NewFileStore(path types.FilesystemPath) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() types.FilesystemPath { return s.path }

// GetCollections implements Provider.
func (s *FileStore) GetCollections(ctx context.Context) ([]models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Collections, nil
}

// SetCollections implements Provider.
func (s *FileStore) SetCollections(ctx context.Context, collections []models.Collection) error {
	return s.update(ctx, func(doc *document) error {
		doc.Collections = models.CloneCollections(collections)
		return nil
	})
}

// UpdateCollections implements Provider.
func (s *FileStore) UpdateCollections(ctx context.Context, fn CollectionsUpdate) error {
	return ignoreNoChange(s.update(ctx, func(doc *document) error {
		updated, err := fn(doc.Collections)
		if err != nil {
			return err
		}
		doc.Collections = models.CloneCollections(updated)
		return nil
	}))
}

// GetGames implements Provider.
func (s *FileStore) GetGames(ctx context.Context) ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Games, nil
}

// SetGames implements Provider.
func (s *FileStore) SetGames(ctx context.Context, games []models.Game) error {
	return s.update(ctx, func(doc *document) error {
		doc.Games = games
		return nil
	})
}

// UpdateGames implements Provider.
func (s *FileStore) UpdateGames(ctx context.Context, fn GamesUpdate) error {
	return ignoreNoChange(s.update(ctx, func(doc *document) error {
		updated, err := fn(doc.Games)
		if err != nil {
			return err
		}
		doc.Games = updated
		return nil
	}))
}

// RegisterGame implements Provider.
func (s *FileStore) RegisterGame(ctx context.Context, game models.Game) (bool, error) {
	var added bool
	err := s.update(ctx, func(doc *document) error {
		games, ok, err := registerGame(doc.Games, game)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoChange
		}
		doc.Games, added = games, true
		return nil
	})
	if errors.Is(err, ErrNoChange) {
		return false, nil
	}
	return added, err
}

// Close implements Provider.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) update(ctx context.Context, fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	return fspath.WriteFileAtomic(s.path, data, 0o644)
}

func (s *FileStore) load(ctx context.Context) (document, error) {
	if err := ctx.Err(); err != nil {
		return document{}, err
	}
	data, err := os.ReadFile(string(s.path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document{}, nil
		}
		return document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, nil
}
