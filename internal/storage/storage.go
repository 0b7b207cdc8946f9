// SPDX-License-Identifier: MPL-2.0

// Package storage persists games and mod collections. Every backend replaces
// whole lists and serializes access through one mutex per instance, so a get
// never observes a partially applied set.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/pkg/types"
)

const (
	// BackendMemory keeps state in process memory.
	BackendMemory Backend = "memory"
	// BackendFile keeps state in a TOML document on disk.
	BackendFile Backend = "file"
	// BackendRedis keeps state in a Redis server.
	BackendRedis Backend = "redis"
)

var (
	// ErrInvalidBackend is the sentinel error wrapped by InvalidBackendError.
	ErrInvalidBackend = errors.New("invalid storage backend")
	// ErrInvalidGame is returned when a game without a type is registered.
	ErrInvalidGame = errors.New("invalid game")
	// ErrNoChange may be returned by an update function to leave the stored
	// list untouched. The update then returns nil.
	ErrNoChange = errors.New("no change")
)

type (
	// Backend selects a storage implementation.
	Backend string

	// InvalidBackendError is returned when a Backend value is not recognized.
	InvalidBackendError struct {
		Value Backend
	}

	// CollectionsUpdate returns the replacement for the stored collections.
	CollectionsUpdate func(collections []models.Collection) ([]models.Collection, error)

	// GamesUpdate returns the replacement for the stored games.
	GamesUpdate func(games []models.Game) ([]models.Game, error)

	// Provider is the persistence contract used by the game and collection services.
	//
	// UpdateCollections and UpdateGames run fn on a private copy of the stored
	// list and write its result while holding the store lock, so concurrent
	// read-modify-write cycles never lose each other's changes. An fn error
	// aborts the write and is returned, except ErrNoChange which yields nil.
	Provider interface {
		GetCollections(ctx context.Context) ([]models.Collection, error)
		SetCollections(ctx context.Context, collections []models.Collection) error
		UpdateCollections(ctx context.Context, fn CollectionsUpdate) error
		GetGames(ctx context.Context) ([]models.Game, error)
		SetGames(ctx context.Context, games []models.Game) error
		UpdateGames(ctx context.Context, fn GamesUpdate) error
		// RegisterGame adds game unless a game with the same type exists
		// (case-insensitive). It reports whether the game was added.
		RegisterGame(ctx context.Context, game models.Game) (bool, error)
		Close() error
	}

	// RedisOptions configures the redis backend.
	RedisOptions struct {
		Addr      string
		DB        int
		KeyPrefix string
	}

	// Options selects and configures a backend for Open.
	Options struct {
		Backend Backend
		Path    types.FilesystemPath
		Redis   RedisOptions
	}

	// document is the serialized form shared by the file and redis backends.
	document struct {
		Games       []models.Game       `json:"games" toml:"games"`
		Collections []models.Collection `json:"collections" toml:"collections"`
	}
)

// String returns the string representation of the Backend.
func (b Backend) String() string { return string(b) }

// IsValid returns whether the Backend is one of the defined backends.
func (b Backend) IsValid() (bool, []error) {
	switch b {
	case BackendMemory, BackendFile, BackendRedis:
		return true, nil
	default:
		return false, []error{&InvalidBackendError{Value: b}}
	}
}

// Error implements the error interface for InvalidBackendError.
func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("invalid storage backend %q (valid: memory, file, redis)", e.Value)
}

// Unwrap returns ErrInvalidBackend for errors.Is() compatibility.
func (e *InvalidBackendError) Unwrap() error { return ErrInvalidBackend }

// Open creates the Provider selected by opts.
func Open(opts Options) (Provider, error) {
	if ok, errs := opts.Backend.IsValid(); !ok {
		return nil, errs[0]
	}
	switch opts.Backend {
	case BackendFile:
		if ok, errs := opts.Path.IsValid(); !ok {
			return nil, fmt.Errorf("file storage: %w", errs[0])
		}
		return NewFileStore(opts.Path), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: opts.Redis.Addr, DB: opts.Redis.DB})
		return NewRedisStore(client, opts.Redis.KeyPrefix), nil
	default:
		return NewMemoryStore(), nil
	}
}

// ignoreNoChange maps ErrNoChange returned by an update function to nil.
func ignoreNoChange(err error) error {
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	return err
}

// registerGame appends game to games unless its type is already registered.
func registerGame(games []models.Game, game models.Game) ([]models.Game, bool, error) {
	if strings.TrimSpace(game.Type) == "" {
		return games, false, fmt.Errorf("%w: type must not be empty", ErrInvalidGame)
	}
	if slices.ContainsFunc(games, func(g models.Game) bool { return g.SameGame(game.Type) }) {
		return games, false, nil
	}
	return append(slices.Clone(games), game), true, nil
}
