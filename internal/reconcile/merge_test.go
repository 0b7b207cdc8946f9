// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"slices"
	"testing"

	"github.com/modcurator/modcurator/pkg/hashreport"
)

func TestMergeReports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		existing    []hashreport.Report
		incoming    []hashreport.Report
		wantReports int
		wantEntries []int
	}{
		{
			name:        "identical reports merge to nothing",
			existing:    []hashreport.Report{report("r", "a", "2")},
			incoming:    []hashreport.Report{report("r", "a", "2")},
			wantReports: 0,
		},
		{
			name:        "changed hash replaces the entry",
			existing:    []hashreport.Report{report("r", `test\test`, "2")},
			incoming:    []hashreport.Report{report("r", `test\test`, "3")},
			wantReports: 1,
			wantEntries: []int{1},
		},
		{
			name:        "new file is appended",
			existing:    []hashreport.Report{report("r", `test\1`, "2")},
			incoming:    []hashreport.Report{report("r", `test\test`, "2")},
			wantReports: 1,
			wantEntries: []int{2},
		},
		{
			name:        "unknown report is added wholesale",
			existing:    nil,
			incoming:    []hashreport.Report{report("new", "a", "1", "b", "2")},
			wantReports: 1,
			wantEntries: []int{2},
		},
		{
			name:        "unknown empty report is dropped",
			existing:    nil,
			incoming:    []hashreport.Report{report("new")},
			wantReports: 0,
		},
		{
			name:     "only reports with deltas are returned",
			existing: []hashreport.Report{report("same", "a", "1"), report("diff", "a", "1")},
			incoming: []hashreport.Report{
				report("same", "a", "1"),
				report("diff", "a", "5"),
				report("other", "z", "0"),
			},
			wantReports: 2,
			wantEntries: []int{1, 1},
		},
		{
			name:        "incoming reports sharing a name merge sequentially",
			existing:    []hashreport.Report{report("r", "a", "1")},
			incoming:    []hashreport.Report{report("r", "a", "2"), report("r", "b", "3")},
			wantReports: 1,
			wantEntries: []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MergeReports(tt.existing, tt.incoming)
			if got == nil {
				t.Fatal("MergeReports() must not return nil")
			}
			if len(got) != tt.wantReports {
				t.Fatalf("expected %d reports, got %d: %+v", tt.wantReports, len(got), got)
			}
			for i, n := range tt.wantEntries {
				if len(got[i].Reports) != n {
					t.Errorf("report %q: expected %d entries, got %+v", got[i].Name, n, got[i].Reports)
				}
				if ok, errs := got[i].IsValid(); !ok {
					t.Errorf("report %q is invalid: %v", got[i].Name, errs)
				}
			}
		})
	}
}

func TestMergeReports_Idempotent(t *testing.T) {
	t.Parallel()

	existing := []hashreport.Report{report("r", "a", "1", "b", "2")}
	incoming := []hashreport.Report{report("r", "a", "9", "c", "3")}

	first := MergeReports(existing, incoming)
	if len(first) != 1 {
		t.Fatalf("expected 1 report, got %d", len(first))
	}
	if second := MergeReports(first, incoming); len(second) != 0 {
		t.Errorf("re-applying the same incoming reports must be a no-op, got %+v", second)
	}
	if existing[0].Reports[0].Hash != "1" {
		t.Error("MergeReports must not modify its inputs")
	}
}

func TestMergeReport_Delta(t *testing.T) {
	t.Parallel()

	merged, delta := MergeReport(
		report("r", "a", "1", "b", "2"),
		report("r", "a", "1", "b", "3", "c", "4"),
	)
	if delta.Count() != 2 || len(delta.Changed) != 1 || delta.Changed[0] != "b" || len(delta.Added) != 1 || delta.Added[0] != "c" {
		t.Errorf("unexpected delta %+v", delta)
	}
	if i := slices.IndexFunc(merged.Reports, func(fr hashreport.FileReport) bool { return fr.File == "b" }); i < 0 || merged.Reports[i].Hash != "3" {
		t.Errorf("expected b to be updated, got %+v", merged.Reports)
	}
	if len(merged.Reports) != 3 {
		t.Errorf("expected 3 entries, got %d", len(merged.Reports))
	}

	_, none := MergeReport(report("r", "a", "1"), report("r", "a", "1"))
	if !none.Empty() {
		t.Errorf("expected empty delta, got %+v", none)
	}
}

func TestGetCollectionReports(t *testing.T) {
	t.Parallel()

	if got := GetCollectionReports(nil); got != nil {
		t.Errorf("expected nil for nil input, got %+v", got)
	}

	reports := []hashreport.Report{
		{Name: "untyped"},
		{Name: "collection", ReportType: hashreport.TypeCollection},
		{Name: "mod", ReportType: hashreport.TypeMod},
		{Name: "game", ReportType: hashreport.TypeGame},
	}
	got := GetCollectionReports(reports)
	if len(got) != 2 || got[0].Name != "untyped" || got[1].Name != "collection" {
		t.Errorf("unexpected filter result %+v", got)
	}
	if got := GetCollectionReports([]hashreport.Report{}); got == nil || len(got) != 0 {
		t.Errorf("expected non-nil empty result, got %#v", got)
	}
}
