// SPDX-License-Identifier: MPL-2.0

// Package definition models game-content units ("definitions") contributed by mods.
//
// A definition is identified by the logical file it lives under and its ID within
// that file. Several mods frequently redefine the same object; such a group is a
// conflict set and is handed to the priority package to pick the effective version.
package definition
