// SPDX-License-Identifier: MPL-2.0

// Package models holds the persisted records shared by storage and services.
package models

import (
	"slices"
	"strings"

	"github.com/modcurator/modcurator/pkg/priority"
)

type (
	// Game is a registered moddable game. Type is its identity.
	Game struct {
		Type          string        `json:"type" toml:"type"`
		Name          string        `json:"name" toml:"name"`
		UserDirectory string        `json:"user_directory,omitempty" toml:"user_directory,omitempty"`
		ModDirectory  string        `json:"mod_directory,omitempty" toml:"mod_directory,omitempty"`
		PriorityMode  priority.Mode `json:"priority_mode,omitempty" toml:"priority_mode,omitempty"`
		IsSelected    bool          `json:"is_selected" toml:"is_selected"`
	}

	// Collection is a named, ordered list of mods for one game. Mods are listed
	// from lowest to highest precedence.
	Collection struct {
		Name       string   `json:"name" toml:"name"`
		Game       string   `json:"game" toml:"game"`
		Mods       []string `json:"mods" toml:"mods"`
		IsSelected bool     `json:"is_selected" toml:"is_selected"`
	}

	// Mod is an installed mod as seen by hash reporting: its name, the directory
	// it lives in and the files it declares relative to that directory.
	Mod struct {
		Name     string   `json:"name" toml:"name"`
		FullPath string   `json:"full_path,omitempty" toml:"full_path,omitempty"`
		Files    []string `json:"files,omitempty" toml:"files,omitempty"`
	}
)

// SameGame reports whether g and other identify the same game. Game identities
// compare case-insensitively.
func (g Game) SameGame(other string) bool { return strings.EqualFold(g.Type, other) }

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	c.Mods = slices.Clone(c.Mods)
	if c.Mods == nil {
		c.Mods = []string{}
	}
	return c
}

// CloneCollections deep-copies a collection list, preserving nil.
func CloneCollections(in []Collection) []Collection {
	if in == nil {
		return nil
	}
	out := make([]Collection, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
