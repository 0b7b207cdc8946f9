// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"slices"

	"github.com/modcurator/modcurator/pkg/hashreport"
)

type (
	// Delta lists the files a merge changed or added.
	Delta struct {
		Changed []string
		Added   []string
	}

	// MergeResult is a merged report together with what the merge changed.
	MergeResult struct {
		Report hashreport.Report
		Delta  Delta
	}
)

// Empty reports whether the merge changed nothing.
func (d Delta) Empty() bool { return len(d.Changed) == 0 && len(d.Added) == 0 }

// Count returns the number of changed and added files.
func (d Delta) Count() int { return len(d.Changed) + len(d.Added) }

// MergeReport applies incoming onto a copy of existing. An incoming entry with
// a different hash replaces the existing one, an equal hash is dropped, and an
// unknown file is appended.
func MergeReport(existing, incoming hashreport.Report) (hashreport.Report, Delta) {
	merged := existing.Clone()
	var delta Delta
	for _, in := range incoming.Reports {
		i := slices.IndexFunc(merged.Reports, func(fr hashreport.FileReport) bool { return fr.File == in.File })
		switch {
		case i < 0:
			merged.Reports = append(merged.Reports, in)
			delta.Added = append(delta.Added, in.File)
		case merged.Reports[i].Hash != in.Hash:
			merged.Reports[i].Hash = in.Hash
			delta.Changed = append(delta.Changed, in.File)
		}
	}
	return merged, delta
}

// MergeReports merges incoming into existing by report name and returns only the
// reports that changed. The result is never nil.
func MergeReports(existing, incoming []hashreport.Report) []hashreport.Report {
	results := MergeReportsDetailed(existing, incoming)
	out := make([]hashreport.Report, 0, len(results))
	for _, res := range results {
		out = append(out, res.Report)
	}
	return out
}

// MergeReportsDetailed is MergeReports with the per-report delta. Reports of
// incoming with a name unknown to existing are added wholesale when they carry
// entries. Results follow the order in which names first appear in incoming.
func MergeReportsDetailed(existing, incoming []hashreport.Report) []MergeResult {
	base := make(map[string]hashreport.Report, len(existing))
	for _, r := range existing {
		if _, ok := base[r.Name]; !ok {
			base[r.Name] = r
		}
	}

	state := make(map[string]*MergeResult)
	var order []string
	for _, in := range incoming {
		res, ok := state[in.Name]
		if !ok {
			res = &MergeResult{}
			if prev, known := base[in.Name]; known {
				res.Report = prev.Clone()
			} else {
				res.Report = hashreport.Report{Name: in.Name, ReportType: in.ReportType}
			}
			state[in.Name] = res
			order = append(order, in.Name)
		}
		merged, delta := MergeReport(res.Report, in)
		res.Report = merged
		res.Delta.Changed = append(res.Delta.Changed, delta.Changed...)
		res.Delta.Added = append(res.Delta.Added, delta.Added...)
	}

	out := make([]MergeResult, 0, len(order))
	for _, name := range order {
		if res := state[name]; !res.Delta.Empty() {
			out = append(out, *res)
		}
	}
	return out
}

// GetCollectionReports returns the reports whose effective type is collection.
// A nil input yields nil.
func GetCollectionReports(reports []hashreport.Report) []hashreport.Report {
	if reports == nil {
		return nil
	}
	out := make([]hashreport.Report, 0, len(reports))
	for _, r := range reports {
		if r.ReportType.Effective() == hashreport.TypeCollection {
			out = append(out, r)
		}
	}
	return out
}
