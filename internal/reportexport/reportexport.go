// SPDX-License-Identifier: MPL-2.0

// Package reportexport reads and writes hash report files.
package reportexport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/modcurator/modcurator/pkg/fspath"
	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/types"
)

// ErrInvalidReportFile is returned when a report file cannot be decoded or
// contains invalid reports.
var ErrInvalidReportFile = errors.New("invalid hash report file")

// JSONExporter stores reports as an indented JSON array.
type JSONExporter struct{}

// Export writes reports to path, replacing any existing file.
func (JSONExporter) Export(ctx context.Context, reports []hashreport.Report, path types.FilesystemPath) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reports == nil {
		reports = []hashreport.Report{}
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("encode hash reports: %w", err)
	}
	return fspath.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// Import reads the reports stored at path and validates each of them.
func (JSONExporter) Import(ctx context.Context, path types.FilesystemPath) ([]hashreport.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var reports []hashreport.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidReportFile, path, err)
	}
	for _, r := range reports {
		if ok, errs := r.IsValid(); !ok {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidReportFile, path, errs[0])
		}
	}
	if reports == nil {
		reports = []hashreport.Report{}
	}
	return reports, nil
}
