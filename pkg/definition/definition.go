// SPDX-License-Identifier: MPL-2.0

package definition

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

var (
	// ErrInvalidID is the sentinel error wrapped by InvalidIDError.
	ErrInvalidID = errors.New("invalid definition id")
	// ErrInvalidFilePath is the sentinel error wrapped by InvalidFilePathError.
	ErrInvalidFilePath = errors.New("invalid definition file path")
	// ErrInvalidModName is the sentinel error wrapped by InvalidModNameError.
	ErrInvalidModName = errors.New("invalid mod name")
	// ErrInvalidDefinition is the sentinel error wrapped by InvalidDefinitionError.
	ErrInvalidDefinition = errors.New("invalid definition")
)

type (
	// ID is the stable identity of an in-game object within its file.
	ID string

	// InvalidIDError is returned when an ID is empty or whitespace-only.
	InvalidIDError struct {
		Value ID
	}

	// FilePath is a normalized relative path using forward slashes.
	FilePath string

	// InvalidFilePathError is returned when a FilePath is empty or absolute.
	InvalidFilePathError struct {
		Value  FilePath
		Reason string
	}

	// ModName is the display identity of a mod.
	ModName string

	// InvalidModNameError is returned when a ModName is empty or whitespace-only.
	InvalidModNameError struct {
		Value ModName
	}

	// InvalidDefinitionError collects field-level validation errors of a Definition.
	InvalidDefinitionError struct {
		FieldErrors []error
	}

	// Definition is one game-content unit contributed by one mod.
	// Values are never edited in place; the With* helpers return copies.
	Definition struct {
		// ID identifies the object within File.
		ID ID `json:"id"`
		// File is the logical file the object belongs to.
		File FilePath `json:"file"`
		// FileName is the physical file inside the mod that declared the object.
		// Empty means the base name of File.
		FileName string `json:"file_name,omitempty"`
		// ModName is the owning mod.
		ModName ModName `json:"mod_name"`
		// Dependencies lists mods the owning mod declares a dependency on.
		Dependencies []ModName `json:"dependencies,omitempty"`
	}
)

// New creates a Definition with a normalized File.
func New(id ID, file string, mod ModName, deps ...ModName) Definition {
	return Definition{
		ID:           id,
		File:         NormalizeFilePath(file),
		ModName:      mod,
		Dependencies: slices.Clone(deps),
	}
}

// NormalizeFilePath converts p into the canonical relative form: forward slashes,
// no redundant elements and no leading "./".
func NormalizeFilePath(p string) FilePath {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return FilePath(p)
}

// String returns the string representation of the ID.
func (i ID) String() string { return string(i) }

// IsValid returns whether the ID is valid.
func (i ID) IsValid() (bool, []error) {
	if strings.TrimSpace(string(i)) == "" {
		return false, []error{&InvalidIDError{Value: i}}
	}
	return true, nil
}

// Error implements the error interface for InvalidIDError.
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid definition id %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidID for errors.Is() compatibility.
func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }

// String returns the string representation of the FilePath.
func (p FilePath) String() string { return string(p) }

// IsValid returns whether the FilePath is a non-empty relative path.
func (p FilePath) IsValid() (bool, []error) {
	switch {
	case strings.TrimSpace(string(p)) == "":
		return false, []error{&InvalidFilePathError{Value: p, Reason: "must be non-empty"}}
	case strings.HasPrefix(string(p), "/"):
		return false, []error{&InvalidFilePathError{Value: p, Reason: "must be relative"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFilePathError.
func (e *InvalidFilePathError) Error() string {
	return fmt.Sprintf("invalid definition file path %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidFilePath for errors.Is() compatibility.
func (e *InvalidFilePathError) Unwrap() error { return ErrInvalidFilePath }

// String returns the string representation of the ModName.
func (m ModName) String() string { return string(m) }

// IsValid returns whether the ModName is valid.
func (m ModName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(m)) == "" {
		return false, []error{&InvalidModNameError{Value: m}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModNameError.
func (e *InvalidModNameError) Error() string {
	return fmt.Sprintf("invalid mod name %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidModName for errors.Is() compatibility.
func (e *InvalidModNameError) Unwrap() error { return ErrInvalidModName }

// Error implements the error interface for InvalidDefinitionError.
func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid definition: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidDefinition for errors.Is() compatibility.
func (e *InvalidDefinitionError) Unwrap() error { return ErrInvalidDefinition }

// IsValid returns whether the Definition has valid fields.
// Dependencies are optional, but each listed entry must be a valid ModName.
func (d Definition) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := d.ID.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := d.File.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := d.ModName.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, dep := range d.Dependencies {
		if valid, fieldErrs := dep.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidDefinitionError{FieldErrors: errs}}
	}
	return true, nil
}

// Key returns the conflict identity of the definition.
func (d Definition) Key() ConflictKey {
	return ConflictKey{File: d.File, ID: d.ID}
}

// EffectiveFileName returns FileName, falling back to the base name of File.
func (d Definition) EffectiveFileName() string {
	if d.FileName != "" {
		return d.FileName
	}
	return path.Base(string(d.File))
}

// DependsOn reports whether the owning mod declares a dependency on mod.
func (d Definition) DependsOn(mod ModName) bool {
	return slices.Contains(d.Dependencies, mod)
}

// WithFileName returns a copy of d with FileName set.
func (d Definition) WithFileName(name string) Definition {
	d.Dependencies = slices.Clone(d.Dependencies)
	d.FileName = name
	return d
}

// WithDependencies returns a copy of d with Dependencies replaced.
func (d Definition) WithDependencies(deps ...ModName) Definition {
	d.Dependencies = slices.Clone(deps)
	return d
}
