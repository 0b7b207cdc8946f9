// SPDX-License-Identifier: MPL-2.0

package collection

import (
	"context"
	"testing"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/pkg/definition"
	"github.com/modcurator/modcurator/pkg/priority"
)

func priorityCase(t *testing.T, mode priority.Mode, mods ...string) *Service {
	t.Helper()
	deps, store := mockCase(t)
	deps.Games = fakeGames{game: &models.Game{Type: "test", PriorityMode: mode}}
	if err := store.SetCollections(context.Background(), []models.Collection{
		{Name: "order", Game: "test", Mods: mods, IsSelected: true},
	}); err != nil {
		t.Fatal(err)
	}
	return NewService(deps)
}

func TestService_EvalDefinitionPriority(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	defs := []definition.Definition{
		definition.New("t1", "common/x/00.txt", "a"),
		definition.New("t1", "common/x/00.txt", "b"),
	}

	tests := []struct {
		name       string
		mods       []string
		mode       priority.Mode
		wantMod    definition.ModName
		wantReason priority.Reason
	}{
		{name: "collection order", mods: []string{"b", "a"}, wantMod: "a", wantReason: priority.ReasonModOrder},
		{name: "reversed order", mods: []string{"a", "b"}, wantMod: "b", wantReason: priority.ReasonModOrder},
		{name: "unlisted mods use game mode", mode: priority.ModeLIOS, wantMod: "b", wantReason: priority.ReasonLIOS},
		{name: "unlisted mods use default mode", wantMod: "a", wantReason: priority.ReasonFIOS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := priorityCase(t, tt.mode, tt.mods...).EvalDefinitionPriority(ctx, defs)
			if err != nil {
				t.Fatalf("EvalDefinitionPriority() error = %v", err)
			}
			if res.Winner.ModName != tt.wantMod || res.Reason != tt.wantReason {
				t.Errorf("got %s (%s), want %s (%s)", res.Winner.ModName, res.Reason, tt.wantMod, tt.wantReason)
			}
		})
	}
}

func TestService_EvalDefinitionPriorityWithoutSelection(t *testing.T) {
	t.Parallel()

	deps, _ := mockCase(t)
	deps.Games = fakeGames{}
	defs := []definition.Definition{
		definition.New("t1", "common/x/00.txt", "a"),
		definition.New("t1", "common/x/00.txt", "b"),
	}
	res, err := NewService(deps).EvalDefinitionPriority(context.Background(), defs)
	if err != nil {
		t.Fatalf("EvalDefinitionPriority() error = %v", err)
	}
	if res.Winner.ModName != "a" || res.Reason != priority.ReasonFIOS {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestService_EvalConflicts(t *testing.T) {
	t.Parallel()

	s := priorityCase(t, "", "a", "b")
	defs := []definition.Definition{
		definition.New("t1", "common/x/00.txt", "a"),
		definition.New("t1", "common/x/00.txt", "b"),
		definition.New("t2", "common/x/00.txt", "a"),
	}
	sets, results, err := s.EvalConflicts(context.Background(), defs)
	if err != nil {
		t.Fatalf("EvalConflicts() error = %v", err)
	}
	if len(sets) != 2 || len(results) != 2 {
		t.Fatalf("expected 2 conflict sets, got %d/%d", len(sets), len(results))
	}
	for i, set := range sets {
		if results[i].Winner.Key() != set.Key {
			t.Errorf("result %d does not belong to set %s", i, set.Key)
		}
	}
}

func TestDescribePriority(t *testing.T) {
	t.Parallel()

	winner := definition.New("t1", "common/x/00.txt", "fake1")
	loser := definition.New("t1", "common/x/00.txt", "fake2")
	patch := definition.New("t1", "common/x/00.txt", definition.ModName(PatchModName("list")))
	res := priority.Result{Winner: winner, Reason: priority.ReasonModOrder}

	if got := DescribePriority(winner, res); got != "fake1 - t1 Order" {
		t.Errorf("winner = %q", got)
	}
	if got := DescribePriority(loser, res); got != "fake2 - t1" {
		t.Errorf("loser = %q", got)
	}
	res.Winner = patch
	if got := DescribePriority(patch, res); got != "modcurator_list - t1" {
		t.Errorf("patch mod = %q", got)
	}
}
