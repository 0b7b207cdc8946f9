// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/modcurator/modcurator/internal/models"
)

// DefaultKeyPrefix namespaces keys written by RedisStore.
const DefaultKeyPrefix = "modcurator"

// RedisStore keeps games and collections as JSON values in Redis.
type RedisStore struct {
	mu        sync.Mutex
	rdb       redis.UniversalClient
	keyPrefix string
}

// NewRedisStore creates a store using rdb. An empty keyPrefix selects DefaultKeyPrefix.
func NewRedisStore(rdb redis.UniversalClient, keyPrefix string) *RedisStore {
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, keyPrefix: keyPrefix}
}

func (s *RedisStore) key(parts ...string) string {
	return s.keyPrefix + ":" + strings.Join(parts, ":")
}

// GetCollections implements Provider.
func (s *RedisStore) GetCollections(ctx context.Context) ([]models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Collection
	if err := s.get(ctx, s.key("collections"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetCollections implements Provider.
func (s *RedisStore) SetCollections(ctx context.Context, collections []models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, s.key("collections"), collections)
}

// UpdateCollections implements Provider. The lock covers this store only;
// processes sharing the key prefix are not coordinated.
func (s *RedisStore) UpdateCollections(ctx context.Context, fn CollectionsUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var current []models.Collection
	if err := s.get(ctx, s.key("collections"), &current); err != nil {
		return err
	}
	updated, err := fn(current)
	if err != nil {
		return ignoreNoChange(err)
	}
	return s.set(ctx, s.key("collections"), updated)
}

// GetGames implements Provider.
func (s *RedisStore) GetGames(ctx context.Context) ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games(ctx)
}

// SetGames implements Provider.
func (s *RedisStore) SetGames(ctx context.Context, games []models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(ctx, s.key("games"), games)
}

// UpdateGames implements Provider.
func (s *RedisStore) UpdateGames(ctx context.Context, fn GamesUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	games, err := s.games(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(games)
	if err != nil {
		return ignoreNoChange(err)
	}
	return s.set(ctx, s.key("games"), updated)
}

// RegisterGame implements Provider.
func (s *RedisStore) RegisterGame(ctx context.Context, game models.Game) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games, err := s.games(ctx)
	if err != nil {
		return false, err
	}
	games, added, err := registerGame(games, game)
	if err != nil || !added {
		return false, err
	}
	if err := s.set(ctx, s.key("games"), games); err != nil {
		return false, err
	}
	return true, nil
}

// Close implements Provider.
func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) games(ctx context.Context) ([]models.Game, error) {
	var out []models.Game
	if err := s.get(ctx, s.key("games"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) get(ctx context.Context, key string, v any) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
