// SPDX-License-Identifier: MPL-2.0

package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/internal/storage"
	"github.com/modcurator/modcurator/pkg/priority"
)

func newService(t *testing.T, games ...models.Game) *Service {
	t.Helper()
	store := storage.NewMemoryStore()
	if err := store.SetGames(context.Background(), games); err != nil {
		t.Fatalf("SetGames() error = %v", err)
	}
	return NewService(store, nil)
}

func TestService_GetSelected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := newService(t, models.Game{Type: "a"}, models.Game{Type: "b"})
	g, err := s.GetSelected(ctx)
	if err != nil || g != nil {
		t.Fatalf("GetSelected() = %v, %v; want nil, nil", g, err)
	}

	changed, err := s.SetSelected(ctx, "B")
	if err != nil || !changed {
		t.Fatalf("SetSelected() = %v, %v", changed, err)
	}
	g, _ = s.GetSelected(ctx)
	if g == nil || g.Type != "b" {
		t.Fatalf("expected b selected, got %+v", g)
	}

	if changed, _ := s.SetSelected(ctx, "b"); changed {
		t.Error("selecting the selected game must report no change")
	}
	if _, err := s.SetSelected(ctx, "zzz"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}

	if _, err := s.SetSelected(ctx, "a"); err != nil {
		t.Fatalf("SetSelected() error = %v", err)
	}
	games, _ := s.Get(ctx)
	selected := 0
	for _, g := range games {
		if g.IsSelected {
			selected++
		}
	}
	if selected != 1 {
		t.Errorf("expected exactly one selected game, got %d", selected)
	}
}

func TestService_RegisterAndSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := newService(t)
	if added, err := s.Register(ctx, models.Game{Type: "Stellaris", Name: "Stellaris"}); err != nil || !added {
		t.Fatalf("Register() = %v, %v", added, err)
	}
	if added, _ := s.Register(ctx, models.Game{Type: "STELLARIS"}); added {
		t.Error("duplicate register must be rejected")
	}
	if _, err := s.Register(ctx, models.Game{Type: "x", PriorityMode: "bogus"}); !errors.Is(err, priority.ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}

	if err := s.Save(ctx, models.Game{Type: "Stellaris", Name: "Renamed", IsSelected: true}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	g, _ := s.GetSelected(ctx)
	if g == nil || g.Name != "Renamed" {
		t.Errorf("unexpected selected game %+v", g)
	}
	if err := s.Save(ctx, models.Game{Type: "missing"}); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}

// slowStore delays every game update while the store lock is held.
type slowStore struct {
	*storage.MemoryStore
}

func (s slowStore) UpdateGames(ctx context.Context, fn storage.GamesUpdate) error {
	return s.MemoryStore.UpdateGames(ctx, func(games []models.Game) ([]models.Game, error) {
		time.Sleep(time.Millisecond)
		return fn(games)
	})
}

func TestService_ConcurrentSaves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	const count = 30
	games := make([]models.Game, count)
	for i := range games {
		games[i] = models.Game{Type: fmt.Sprintf("g%d", i)}
	}
	store := storage.NewMemoryStore()
	if err := store.SetGames(ctx, games); err != nil {
		t.Fatal(err)
	}
	s := NewService(slowStore{store}, nil)

	var wg sync.WaitGroup
	for i := range count {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Save(ctx, models.Game{Type: fmt.Sprintf("g%d", i), Name: "updated"}); err != nil {
				t.Errorf("Save(g%d) error = %v", i, err)
			}
		}()
	}
	wg.Wait()

	stored, _ := store.GetGames(ctx)
	for _, g := range stored {
		if g.Name != "updated" {
			t.Errorf("update of %s was lost", g.Type)
		}
	}
}

func TestPriorityMode(t *testing.T) {
	t.Parallel()

	if m := PriorityMode(nil, priority.ModeLIOS); m != priority.ModeLIOS {
		t.Errorf("PriorityMode(nil) = %s", m)
	}
	if m := PriorityMode(&models.Game{PriorityMode: priority.ModeFIOS}, priority.ModeLIOS); m != priority.ModeFIOS {
		t.Errorf("PriorityMode(game) = %s", m)
	}
}
