// SPDX-License-Identifier: MPL-2.0

// Package priority decides which definition of a conflict set takes effect.
//
// Rules are applied in a fixed order and the first decisive rule wins:
//
//  1. ModOverride: a mod that declares a dependency on other mods of the set
//     overrides their definitions.
//  2. ModOrder: the mod loaded last wins.
//  3. FIOS/LIOS: the first (FIOS) or last (LIOS) file in override sequence wins.
//     Which one applies is a caller policy, never inferred.
//
// Evaluation is pure and deterministic for a given input and load order.
package priority

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/modcurator/modcurator/pkg/definition"
)

type (
	// Result is the outcome of evaluating one conflict set.
	Result struct {
		Winner definition.Definition
		Reason Reason
	}

	candidate struct {
		def   definition.Definition
		index int
	}
)

// Evaluate selects the winning definition of defs. All members must share the same
// file and ID; loadOrder lists mods from lowest to highest precedence.
func Evaluate(defs []definition.Definition, loadOrder []definition.ModName, mode Mode) (Result, error) {
	if err := definition.ValidateConflictSet(defs); err != nil {
		return Result{}, err
	}
	if valid, errs := mode.IsValid(); !valid {
		return Result{}, fmt.Errorf("%w: %w", definition.ErrInvalidInput, errs[0])
	}
	if len(defs) == 1 {
		return Result{Winner: defs[0], Reason: ReasonNone}, nil
	}

	candidates := make([]candidate, len(defs))
	for i, d := range defs {
		candidates[i] = candidate{def: d, index: i}
	}

	if remaining, narrowed := dropOverridden(candidates); narrowed {
		if len(remaining) == 1 {
			return Result{Winner: remaining[0].def, Reason: ReasonModOverride}, nil
		}
		candidates = remaining
	}

	top := latestLoaded(candidates, positions(loadOrder))
	if len(top) == 1 {
		return Result{Winner: top[0].def, Reason: ReasonModOrder}, nil
	}

	return Result{Winner: byFileSequence(top, mode).def, Reason: mode.Reason()}, nil
}

// EvaluateAll evaluates every conflict set with the same load order and mode.
func EvaluateAll(sets []definition.ConflictSet, loadOrder []definition.ModName, mode Mode) ([]Result, error) {
	results := make([]Result, 0, len(sets))
	for _, set := range sets {
		res, err := Evaluate(set.Definitions, loadOrder, mode)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", set.Key, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Describe returns the priority text for def: "<mod> - <id>", followed by the
// reason label when def is the winner of result. Definitions owned by the patch
// mod never carry a label.
func Describe(def definition.Definition, result Result, isPatchMod func(definition.ModName) bool) string {
	text := fmt.Sprintf("%s - %s", def.ModName, def.ID)
	if isPatchMod != nil && isPatchMod(def.ModName) {
		return text
	}
	if result.Reason == ReasonNone || !sameDefinition(def, result.Winner) {
		return text
	}
	return text + " " + result.Reason.Label()
}

// dropOverridden removes candidates whose mod is named as a dependency by another
// mod of the set. narrowed is false when no override is declared or when every
// candidate would be removed (cyclic declarations).
func dropOverridden(candidates []candidate) ([]candidate, bool) {
	present := make(map[definition.ModName]bool, len(candidates))
	for _, c := range candidates {
		present[c.def.ModName] = true
	}

	overridden := make(map[definition.ModName]bool)
	for _, c := range candidates {
		for _, dep := range c.def.Dependencies {
			if dep != c.def.ModName && present[dep] {
				overridden[dep] = true
			}
		}
	}
	if len(overridden) == 0 {
		return candidates, false
	}

	remaining := slices.DeleteFunc(slices.Clone(candidates), func(c candidate) bool {
		return overridden[c.def.ModName]
	})
	if len(remaining) == 0 {
		return candidates, false
	}
	return remaining, true
}

// positions maps each mod to its last index in loadOrder.
func positions(loadOrder []definition.ModName) map[definition.ModName]int {
	pos := make(map[definition.ModName]int, len(loadOrder))
	for i, mod := range loadOrder {
		pos[mod] = i
	}
	return pos
}

// latestLoaded returns the candidates sharing the highest load order position.
// Mods absent from the load order rank below every listed mod.
func latestLoaded(candidates []candidate, pos map[definition.ModName]int) []candidate {
	rank := func(c candidate) int {
		if p, ok := pos[c.def.ModName]; ok {
			return p
		}
		return -1
	}

	best := rank(candidates[0])
	top := []candidate{candidates[0]}
	for _, c := range candidates[1:] {
		switch r := rank(c); {
		case r > best:
			best = r
			top = []candidate{c}
		case r == best:
			top = append(top, c)
		}
	}
	return top
}

func byFileSequence(candidates []candidate, mode Mode) candidate {
	sorted := slices.Clone(candidates)
	slices.SortFunc(sorted, func(a, b candidate) int {
		return cmp.Or(
			strings.Compare(a.def.EffectiveFileName(), b.def.EffectiveFileName()),
			cmp.Compare(a.def.ModName, b.def.ModName),
			cmp.Compare(a.index, b.index),
		)
	})
	if mode == ModeFIOS {
		return sorted[0]
	}
	return sorted[len(sorted)-1]
}

func sameDefinition(a, b definition.Definition) bool {
	return a.Key() == b.Key() && a.ModName == b.ModName && a.EffectiveFileName() == b.EffectiveFileName()
}
