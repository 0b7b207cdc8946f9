// SPDX-License-Identifier: MPL-2.0

package collection

import (
	"context"

	"github.com/modcurator/modcurator/internal/game"
	"github.com/modcurator/modcurator/pkg/definition"
	"github.com/modcurator/modcurator/pkg/priority"
)

// EvalDefinitionPriority selects the winner of a conflict set using the mod
// order of the selected collection and the priority mode of the selected game.
// Without a selected collection every mod ranks equally and file order decides.
func (s *Service) EvalDefinitionPriority(ctx context.Context, defs []definition.Definition) (priority.Result, error) {
	loadOrder, mode, err := s.priorityContext(ctx)
	if err != nil {
		return priority.Result{}, err
	}
	return priority.Evaluate(defs, loadOrder, mode)
}

// EvalConflicts groups defs into conflict sets and evaluates each of them.
func (s *Service) EvalConflicts(ctx context.Context, defs []definition.Definition) ([]definition.ConflictSet, []priority.Result, error) {
	loadOrder, mode, err := s.priorityContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	sets := definition.GroupConflicts(defs)
	results, err := priority.EvaluateAll(sets, loadOrder, mode)
	if err != nil {
		return nil, nil, err
	}
	return sets, results, nil
}

// DescribePriority renders the priority text of def for result.
func DescribePriority(def definition.Definition, result priority.Result) string {
	return priority.Describe(def, result, func(m definition.ModName) bool { return IsPatchMod(string(m)) })
}

func (s *Service) priorityContext(ctx context.Context) ([]definition.ModName, priority.Mode, error) {
	mode := game.PriorityMode(s.selectedGame(ctx), s.deps.DefaultMode)
	selected, err := s.GetSelected(ctx)
	if err != nil {
		return nil, "", err
	}
	if selected == nil {
		return nil, mode, nil
	}
	order := make([]definition.ModName, len(selected.Mods))
	for i, m := range selected.Mods {
		order[i] = definition.ModName(m)
	}
	return order, mode, nil
}
