// SPDX-License-Identifier: MPL-2.0

// Package exchange reads and writes collection exchange files: a TOML document
// carrying the collection, its mod order and optionally the files of the
// collection's patch mod.
package exchange

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/pkg/fspath"
	"github.com/modcurator/modcurator/pkg/types"
)

// FormatVersion is written to every exchange file.
const FormatVersion = 1

var (
	// ErrUnsupportedFormat is returned for launcher formats this build cannot read.
	ErrUnsupportedFormat = errors.New("unsupported import format")
	// ErrInvalidExchangeFile is returned when a file is not a valid exchange document.
	ErrInvalidExchangeFile = errors.New("invalid exchange file")
)

type (
	// ExportParams describes one export.
	ExportParams struct {
		File               types.FilesystemPath
		Collection         models.Collection
		ExportModOrderOnly bool
		// ModDirectory is the patch mod directory to bundle. Empty means none.
		ModDirectory types.FilesystemPath
	}

	// ImportParams describes one import. Collection is populated by a
	// successful import.
	ImportParams struct {
		File       types.FilesystemPath
		Collection *models.Collection
		// ModDirectory receives the bundled patch mod files.
		ModDirectory types.FilesystemPath
	}

	// TOMLExchange implements the standard exchange format. The launcher formats
	// are reported as unsupported.
	TOMLExchange struct{}

	document struct {
		Version    int         `toml:"version"`
		Name       string      `toml:"name"`
		Game       string      `toml:"game"`
		Mods       []string    `toml:"mods"`
		OrderOnly  bool        `toml:"order_only"`
		PatchFiles []patchFile `toml:"patch_files,omitempty"`
	}

	patchFile struct {
		Path    string `toml:"path"`
		Content string `toml:"content"`
	}
)

// Export writes the collection described by p.
func (TOMLExchange) Export(ctx context.Context, p ExportParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := document{
		Version:   FormatVersion,
		Name:      p.Collection.Name,
		Game:      p.Collection.Game,
		Mods:      p.Collection.Mods,
		OrderOnly: p.ExportModOrderOnly,
	}
	if doc.Mods == nil {
		doc.Mods = []string{}
	}
	if !p.ExportModOrderOnly && p.ModDirectory != "" {
		files, err := readPatchFiles(p.ModDirectory)
		if err != nil {
			return err
		}
		doc.PatchFiles = files
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.File, err)
	}
	return fspath.WriteFileAtomic(p.File, data, 0o644)
}

// Import reads the collection stored in p.File into p.Collection.
func (TOMLExchange) Import(ctx context.Context, p ImportParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := load(p.File)
	if err != nil {
		return err
	}
	if p.Collection == nil {
		return fmt.Errorf("%w: no target collection", ErrInvalidExchangeFile)
	}
	p.Collection.Name = doc.Name
	p.Collection.Game = doc.Game
	p.Collection.Mods = append([]string{}, doc.Mods...)
	return nil
}

// ImportModDirectory extracts the bundled patch mod files of p.File into
// p.ModDirectory. Files with order-only exports carry none and succeed as a no-op.
func (TOMLExchange) ImportModDirectory(ctx context.Context, p ImportParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := load(p.File)
	if err != nil {
		return err
	}
	if len(doc.PatchFiles) == 0 {
		return nil
	}
	if ok, errs := p.ModDirectory.IsValid(); !ok {
		return errs[0]
	}
	for _, f := range doc.PatchFiles {
		rel := filepath.FromSlash(f.Path)
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("%w: patch file %q escapes the mod directory", ErrInvalidExchangeFile, f.Path)
		}
		content, err := base64.StdEncoding.DecodeString(f.Content)
		if err != nil {
			return fmt.Errorf("%w: patch file %q: %w", ErrInvalidExchangeFile, f.Path, err)
		}
		if err := fspath.WriteFileAtomic(fspath.Join(p.ModDirectory, rel), content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// ImportParadoxos implements the secondary launcher format importer.
func (TOMLExchange) ImportParadoxos(context.Context, ImportParams) error {
	return fmt.Errorf("%w: paradoxos", ErrUnsupportedFormat)
}

// ImportParadox implements the legacy launcher importer.
func (TOMLExchange) ImportParadox(context.Context, ImportParams) error {
	return fmt.Errorf("%w: paradox launcher (legacy)", ErrUnsupportedFormat)
}

// ImportParadoxLauncher implements the current launcher importer.
func (TOMLExchange) ImportParadoxLauncher(context.Context, ImportParams) error {
	return fmt.Errorf("%w: paradox launcher", ErrUnsupportedFormat)
}

func load(path types.FilesystemPath) (document, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", path, err)
	}
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("%w: %s: %w", ErrInvalidExchangeFile, path, err)
	}
	if doc.Version != FormatVersion || strings.TrimSpace(doc.Name) == "" {
		return document{}, fmt.Errorf("%w: %s: missing name or unknown version %d", ErrInvalidExchangeFile, path, doc.Version)
	}
	return doc, nil
}

func readPatchFiles(dir types.FilesystemPath) ([]patchFile, error) {
	var files []patchFile
	err := filepath.WalkDir(string(dir), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(string(dir), p)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files = append(files, patchFile{
			Path:    filepath.ToSlash(rel),
			Content: base64.StdEncoding.EncodeToString(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bundle patch mod %s: %w", dir, err)
	}
	return files, nil
}
