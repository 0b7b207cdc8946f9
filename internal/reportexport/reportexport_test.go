// SPDX-License-Identifier: MPL-2.0

package reportexport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/types"
)

func TestJSONExporter_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := types.FilesystemPath(filepath.Join(t.TempDir(), "out", "report.json"))
	reports := []hashreport.Report{
		{Name: "test", ReportType: hashreport.TypeCollection, Reports: []hashreport.FileReport{{File: `test\test`, Hash: "2"}}},
		{Name: "legacy", Reports: []hashreport.FileReport{{File: "a", Hash: "1"}}},
	}

	var e JSONExporter
	if err := e.Export(ctx, reports, path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	got, err := e.Import(ctx, path)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(got) != 2 || got[0].Reports[0].File != `test\test` || got[1].ReportType.Effective() != hashreport.TypeCollection {
		t.Errorf("unexpected reports %+v", got)
	}
}

func TestJSONExporter_ImportInvalid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	var e JSONExporter

	garbage := filepath.Join(dir, "garbage.json")
	if err := os.WriteFile(garbage, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Import(ctx, types.FilesystemPath(garbage)); !errors.Is(err, ErrInvalidReportFile) {
		t.Errorf("expected ErrInvalidReportFile, got %v", err)
	}

	dup := filepath.Join(dir, "dup.json")
	if err := os.WriteFile(dup, []byte(`[{"name":"r","reports":[{"file":"a","hash":"1"},{"file":"a","hash":"2"}]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := e.Import(ctx, types.FilesystemPath(dup))
	if !errors.Is(err, ErrInvalidReportFile) || !errors.Is(err, hashreport.ErrInvalidReport) {
		t.Errorf("expected invalid report error, got %v", err)
	}

	if _, err := e.Import(ctx, types.FilesystemPath(filepath.Join(dir, "missing.json"))); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestJSONExporter_EmptyExport(t *testing.T) {
	t.Parallel()

	path := types.FilesystemPath(filepath.Join(t.TempDir(), "empty.json"))
	var e JSONExporter
	if err := e.Export(context.Background(), nil, path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	got, err := e.Import(context.Background(), path)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("Import() = %#v, %v", got, err)
	}
}
