// SPDX-License-Identifier: MPL-2.0

package exchange

import (
	"context"

	"github.com/modcurator/modcurator/pkg/fspath"
	"github.com/modcurator/modcurator/pkg/types"
)

type (
	// ModWriterParams locates a mod directory.
	ModWriterParams struct {
		RootDirectory types.FilesystemPath
		Path          string
	}

	// DirectoryWriter inspects mod directories on the local filesystem.
	DirectoryWriter struct{}
)

// Directory returns the full path of the mod directory.
func (p ModWriterParams) Directory() types.FilesystemPath {
	return fspath.Join(p.RootDirectory, p.Path)
}

// ModDirectoryExists reports whether the mod directory exists.
func (DirectoryWriter) ModDirectoryExists(ctx context.Context, p ModWriterParams) bool {
	if ctx.Err() != nil || p.RootDirectory == "" || p.Path == "" {
		return false
	}
	return fspath.IsDir(p.Directory())
}
