// SPDX-License-Identifier: MPL-2.0

package definition

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidInput is returned when a conflict set is empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConflictSet is the sentinel error wrapped by InvalidConflictSetError.
	ErrInvalidConflictSet = errors.New("invalid conflict set")
)

type (
	// ConflictKey is the identity shared by all members of a conflict set.
	ConflictKey struct {
		File FilePath
		ID   ID
	}

	// ConflictSet groups definitions sharing a key but contributed by different mods.
	ConflictSet struct {
		Key         ConflictKey
		Definitions []Definition
	}

	// InvalidConflictSetError is returned when the members of a conflict set do not
	// share the same key.
	InvalidConflictSetError struct {
		Expected ConflictKey
		Got      ConflictKey
		Index    int
	}
)

// String renders the key as "<file>:<id>".
func (k ConflictKey) String() string {
	return fmt.Sprintf("%s:%s", k.File, k.ID)
}

// Error implements the error interface for InvalidConflictSetError.
func (e *InvalidConflictSetError) Error() string {
	return fmt.Sprintf("definition %d has key %s, expected %s", e.Index, e.Got, e.Expected)
}

// Unwrap returns ErrInvalidConflictSet for errors.Is() compatibility.
func (e *InvalidConflictSetError) Unwrap() error { return ErrInvalidConflictSet }

// ValidateConflictSet checks that defs is non-empty and that every member shares
// the key of the first one.
func ValidateConflictSet(defs []Definition) error {
	if len(defs) == 0 {
		return fmt.Errorf("%w: conflict set is empty", ErrInvalidInput)
	}
	want := defs[0].Key()
	for i, d := range defs[1:] {
		if got := d.Key(); got != want {
			return &InvalidConflictSetError{Expected: want, Got: got, Index: i + 1}
		}
	}
	return nil
}

// Mods returns the distinct owning mods of the set in first-seen order.
func (s ConflictSet) Mods() []ModName {
	mods := make([]ModName, 0, len(s.Definitions))
	for _, d := range s.Definitions {
		if !slices.Contains(mods, d.ModName) {
			mods = append(mods, d.ModName)
		}
	}
	return mods
}

// GroupConflicts groups defs by key and returns the groups contributed by at least
// two different mods. Groups are ordered by file then ID; members keep input order.
func GroupConflicts(defs []Definition) []ConflictSet {
	byKey := make(map[ConflictKey][]Definition)
	var keys []ConflictKey
	for _, d := range defs {
		k := d.Key()
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], d)
	}

	slices.SortFunc(keys, func(a, b ConflictKey) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.ID, b.ID))
	})

	var sets []ConflictSet
	for _, k := range keys {
		set := ConflictSet{Key: k, Definitions: byKey[k]}
		if len(set.Mods()) < 2 {
			continue
		}
		sets = append(sets, set)
	}
	return sets
}
