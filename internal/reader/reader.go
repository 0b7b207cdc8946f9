// SPDX-License-Identifier: MPL-2.0

// Package reader describes mod files on disk and produces the content hashes
// used by hash reports.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/modcurator/modcurator/pkg/hashreport"
)

// DefaultCacheSize is the number of file descriptions kept in memory.
const DefaultCacheSize = 4096

type (
	// FileInfo describes one file of a mod.
	FileInfo struct {
		FileName    string
		ContentHash string
	}

	// FileReader hashes files below a base directory. Results are cached per
	// absolute path and invalidated when the file size or modification time changes.
	FileReader struct {
		digester hashreport.Digester
		cache    *lru.Cache[string, cacheEntry]
		logger   *log.Logger
	}

	// Option configures a FileReader during construction.
	Option func(*FileReader)

	cacheEntry struct {
		size    int64
		modTime time.Time
		info    FileInfo
	}
)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *FileReader) {
		r.logger = l
	}
}

// New creates a FileReader hashing with digester and caching up to cacheSize
// descriptions. A non-positive cacheSize selects DefaultCacheSize.
func New(digester hashreport.Digester, cacheSize int, opts ...Option) (*FileReader, error) {
	if digester == nil {
		digester = hashreport.SHA256Digester{}
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create file info cache: %w", err)
	}
	r := &FileReader{digester: digester, cache: cache}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r, nil
}

// GetFileInfo describes basePath/relativePath. relativePath may use either
// separator. A missing file yields (nil, nil).
func (r *FileReader) GetFileInfo(ctx context.Context, basePath, relativePath string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(basePath, filepath.FromSlash(strings.ReplaceAll(relativePath, `\`, "/")))
	st, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", full, err)
	}
	if st.IsDir() {
		return nil, nil
	}

	if e, ok := r.cache.Get(full); ok && e.size == st.Size() && e.modTime.Equal(st.ModTime()) {
		r.logger.Debug("file info cache hit", "path", full)
		info := e.info
		return &info, nil
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", full, err)
	}
	defer func() { _ = f.Close() }()

	hash, err := r.digester.Digest(f)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", full, err)
	}

	info := FileInfo{FileName: st.Name(), ContentHash: hash}
	r.cache.Add(full, cacheEntry{size: st.Size(), modTime: st.ModTime(), info: info})
	return &info, nil
}

// Purge drops every cached description.
func (r *FileReader) Purge() { r.cache.Purge() }

// Len returns the number of cached descriptions.
func (r *FileReader) Len() int { return r.cache.Len() }
