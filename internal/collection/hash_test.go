// SPDX-License-Identifier: MPL-2.0

package collection

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/modcurator/modcurator/internal/models"
	"github.com/modcurator/modcurator/internal/msgbus"
	"github.com/modcurator/modcurator/internal/reader"
	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/types"
)

func hashedAs(hash string) fakeReader {
	return fakeReader{info: &reader.FileInfo{ContentHash: hash}}
}

func TestService_ExportHashReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deps, reports := hashCase(t, hashedAs("2"))
	bus := deps.Events.(*recordingBus)
	s := NewService(deps)

	ok, err := s.ExportHashReport(ctx, []models.Mod{{Name: "test", Files: []string{`test\test`}}}, "test")
	if err != nil || !ok {
		t.Fatalf("ExportHashReport() = %v, %v", ok, err)
	}
	if reports.path != "test" {
		t.Errorf("path = %q", reports.path)
	}
	if len(reports.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports.reports))
	}
	r := reports.reports[0]
	if r.Name != "test" || r.ReportType != hashreport.TypeCollection {
		t.Errorf("unexpected report header %+v", r)
	}
	if len(r.Reports) != 1 || r.Reports[0].File != `test\test` || r.Reports[0].Hash != "2" {
		t.Errorf("unexpected report entries %+v", r.Reports)
	}
	if n := bus.awaitedCount(msgbus.TopicHashReportProgress); n != 1 {
		t.Errorf("expected 1 awaited progress event, got %d", n)
	}
}

func TestService_ExportHashReportDeliversProgressBeforeReturning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deps, _ := hashCase(t, hashedAs("2"))
	bus := msgbus.New(nil)
	deps.Events = bus

	var (
		mu   sync.Mutex
		seen []string
	)
	unsubscribe := bus.Subscribe(msgbus.TopicHashReportProgress, func(_ context.Context, env msgbus.Envelope) error {
		time.Sleep(10 * time.Millisecond)
		ev, ok := env.Event.(msgbus.HashReportProgressEvent)
		if !ok {
			return errors.New("unexpected event type")
		}
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ev.Mod)
		return nil
	})
	defer unsubscribe()

	mods := []models.Mod{
		{Name: "first", Files: []string{"a.txt"}},
		{Name: "second", Files: []string{"b.txt"}},
	}
	ok, err := NewService(deps).ExportHashReport(ctx, mods, "out.json")
	if err != nil || !ok {
		t.Fatalf("ExportHashReport() = %v, %v", ok, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(seen, []string{"first", "second"}) {
		t.Errorf("progress seen on return = %v, want [first second]", seen)
	}
}

func TestService_ExportHashReportProgressHandlerFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deps, reports := hashCase(t, hashedAs("2"))
	bus := msgbus.New(nil)
	deps.Events = bus
	defer bus.Subscribe(msgbus.TopicHashReportProgress, func(context.Context, msgbus.Envelope) error {
		return errCollaborator
	})()

	ok, err := NewService(deps).ExportHashReport(ctx, []models.Mod{{Name: "test", Files: []string{"a.txt"}}}, "out.json")
	if err != nil || !ok {
		t.Fatalf("ExportHashReport() = %v, %v; a failing progress handler must not abort", ok, err)
	}
	if len(reports.reports) != 1 {
		t.Errorf("expected the report to be written, got %d reports", len(reports.reports))
	}
}

func TestService_ExportHashReportNotApplicable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mods := []models.Mod{{Name: "test", Files: []string{`test\test`}}}

	tests := []struct {
		name   string
		mods   []models.Mod
		path   string
		reader fakeReader
		export error
	}{
		{name: "nil mods", path: "test", reader: hashedAs("2")},
		{name: "empty path", mods: mods, reader: hashedAs("2")},
		{name: "reader failure", mods: mods, path: "test", reader: fakeReader{err: errCollaborator}},
		{name: "export failure", mods: mods, path: "test", reader: hashedAs("2"), export: errCollaborator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps, reports := hashCase(t, tt.reader)
			reports.err = tt.export
			ok, err := NewService(deps).ExportHashReport(ctx, tt.mods, types.FilesystemPath(tt.path))
			if ok || err != nil {
				t.Errorf("ExportHashReport() = %v, %v", ok, err)
			}
		})
	}
}

func TestService_ExportHashReportWithoutSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deps, reports := hashCase(t, hashedAs("2"))
	if err := deps.Storage.SetCollections(ctx, []models.Collection{{Name: "test", Game: "no-items"}}); err != nil {
		t.Fatal(err)
	}

	ok, err := NewService(deps).ExportHashReport(ctx, []models.Mod{{Name: "test"}}, "test")
	if ok || err != nil {
		t.Errorf("ExportHashReport() = %v, %v", ok, err)
	}
	if reports.reports != nil {
		t.Error("nothing must be exported without a selected collection")
	}
}

func TestService_ImportHashReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mods := []models.Mod{{Name: "testreport", Files: []string{`test\test`}}}

	incoming := func(file, hash string) []hashreport.Report {
		return []hashreport.Report{{
			Name:    "testreport",
			Reports: []hashreport.FileReport{{File: file, Hash: hash}},
		}}
	}

	tests := []struct {
		name        string
		incoming    []hashreport.Report
		wantReports int
		wantEntries int
	}{
		{name: "files from both sources", incoming: incoming(`test\1`, "2"), wantReports: 1, wantEntries: 2},
		{name: "changed hash only", incoming: incoming(`test\test`, "2"), wantReports: 1, wantEntries: 1},
		{name: "unchanged", incoming: incoming(`test\test`, "3")},
		{
			name: "mod reports ignored",
			incoming: []hashreport.Report{{
				Name:       "testreport",
				ReportType: hashreport.TypeMod,
				Reports:    []hashreport.FileReport{{File: `test\test`, Hash: "3"}},
			}},
			wantReports: 1,
			wantEntries: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps, _ := hashCase(t, hashedAs("3"))
			got, err := NewService(deps).ImportHashReport(ctx, mods, tt.incoming)
			if err != nil {
				t.Fatalf("ImportHashReport() error = %v", err)
			}
			if got == nil {
				t.Fatal("ImportHashReport() = nil, want non-nil result")
			}
			if len(got) != tt.wantReports {
				t.Fatalf("expected %d reports, got %d", tt.wantReports, len(got))
			}
			if tt.wantReports > 0 && len(got[0].Reports) != tt.wantEntries {
				t.Errorf("expected %d entries, got %+v", tt.wantEntries, got[0].Reports)
			}
		})
	}
}

func TestService_ImportHashReportNil(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deps, _ := hashCase(t, hashedAs("3"))
	s := NewService(deps)

	if got, err := s.ImportHashReport(ctx, []models.Mod{}, nil); got != nil || err != nil {
		t.Errorf("nil incoming = %v, %v", got, err)
	}
	if got, err := s.ImportHashReport(ctx, nil, []hashreport.Report{}); got != nil || err != nil {
		t.Errorf("nil mods = %v, %v", got, err)
	}

	deps.Reader = fakeReader{err: errCollaborator}
	mods := []models.Mod{{Name: "m", Files: []string{"a"}}}
	if got, _ := NewService(deps).ImportHashReport(ctx, mods, []hashreport.Report{}); got != nil {
		t.Errorf("reader failure = %v, want nil", got)
	}
}

func TestService_ImportHashReportDetailed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	deps, _ := hashCase(t, hashedAs("3"))
	mods := []models.Mod{{Name: "r", Files: []string{"a", "b"}}}
	incoming := []hashreport.Report{{Name: "r", Reports: []hashreport.FileReport{{File: "a", Hash: "1"}}}}

	got, err := NewService(deps).ImportHashReportDetailed(ctx, mods, incoming)
	if err != nil || len(got) != 1 {
		t.Fatalf("ImportHashReportDetailed() = %v, %v", got, err)
	}
	d := got[0].Delta
	if len(d.Changed) != 1 || d.Changed[0] != "a" || len(d.Added) != 1 || d.Added[0] != "b" {
		t.Errorf("unexpected delta %+v", d)
	}
}
