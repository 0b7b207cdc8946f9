// SPDX-License-Identifier: MPL-2.0

// Package reconcile computes hash reports for mod files and merges them
// against previously known reports so that only changed content is surfaced.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/modcurator/modcurator/internal/reader"
	"github.com/modcurator/modcurator/pkg/hashreport"
)

type (
	// FileSource is a file to hash: its report path and a way to open its content.
	FileSource struct {
		Path string
		Open func() (io.ReadCloser, error)
	}

	// FileInfoReader describes files below a base directory. A nil FileInfo with
	// a nil error means the file cannot be described and is skipped.
	FileInfoReader interface {
		GetFileInfo(ctx context.Context, basePath, relativePath string) (*reader.FileInfo, error)
	}

	// Reconciler computes reports concurrently. It holds no mutable state and is
	// safe for concurrent use.
	Reconciler struct {
		digester    hashreport.Digester
		concurrency int
		logger      *log.Logger
	}

	// Option configures a Reconciler during construction.
	Option func(*Reconciler)
)

// WithConcurrency bounds the number of files hashed at once. Non-positive
// values keep the default of GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger for progress diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reconciler. A nil digester selects SHA-256.
func New(digester hashreport.Digester, opts ...Option) *Reconciler {
	if digester == nil {
		digester = hashreport.SHA256Digester{}
	}
	r := &Reconciler{
		digester:    digester,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Digester returns the digester used by ComputeReport.
func (r *Reconciler) Digester() hashreport.Digester { return r.digester }

// ComputeReport hashes every source and returns a report with one entry per
// distinct path, in input order. The first error cancels remaining work.
func (r *Reconciler) ComputeReport(ctx context.Context, name string, typ hashreport.ReportType, files []FileSource) (hashreport.Report, error) {
	files = distinctSources(files)
	entries := make([]hashreport.FileReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, src := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hash, err := r.digest(src)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Path, err)
			}
			entries[i] = hashreport.FileReport{File: src.Path, Hash: hash}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return hashreport.Report{}, fmt.Errorf("compute report %q: %w", name, err)
	}

	r.logger.Debug("computed hash report", "name", name, "files", len(entries), "algorithm", r.digester.Name())
	return hashreport.Report{Name: name, ReportType: typ, Reports: entries}, nil
}

// ComputeReportFromReader builds a report from the content hashes fr reports
// for files below basePath. Files fr cannot describe are left out.
func (r *Reconciler) ComputeReportFromReader(ctx context.Context, name string, typ hashreport.ReportType, basePath string, files []string, fr FileInfoReader) (hashreport.Report, error) {
	files = distinctPaths(files)
	found := make([]*hashreport.FileReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, file := range files {
		g.Go(func() error {
			info, err := fr.GetFileInfo(gctx, basePath, file)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			if info == nil {
				return nil
			}
			found[i] = &hashreport.FileReport{File: file, Hash: info.ContentHash}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return hashreport.Report{}, fmt.Errorf("compute report %q: %w", name, err)
	}

	entries := make([]hashreport.FileReport, 0, len(files))
	for i, fr := range found {
		if fr == nil {
			r.logger.Debug("skipping undescribed file", "report", name, "file", files[i])
			continue
		}
		entries = append(entries, *fr)
	}
	return hashreport.Report{Name: name, ReportType: typ, Reports: entries}, nil
}

func (r *Reconciler) digest(src FileSource) (string, error) {
	if src.Open == nil {
		return "", fmt.Errorf("no content accessor")
	}
	rc, err := src.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()
	return r.digester.Digest(rc)
}

func distinctSources(files []FileSource) []FileSource {
	seen := make(map[string]bool, len(files))
	out := make([]FileSource, 0, len(files))
	for _, f := range files {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		out = append(out, f)
	}
	return out
}

func distinctPaths(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
