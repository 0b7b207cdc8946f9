// SPDX-License-Identifier: MPL-2.0

// Package hashreport defines file-hash reports used to detect drift between the
// files a mod collection shipped with and the files currently on disk.
package hashreport

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// TypeCollection is a report covering the files of one mod inside a collection.
	TypeCollection ReportType = "collection"
	// TypeMod is a report covering a standalone mod.
	TypeMod ReportType = "mod"
	// TypeGame is a report covering game files.
	TypeGame ReportType = "game"
)

var (
	// ErrInvalidReportType is the sentinel error wrapped by InvalidReportTypeError.
	ErrInvalidReportType = errors.New("invalid report type")
	// ErrInvalidReport is the sentinel error wrapped by InvalidReportError.
	ErrInvalidReport = errors.New("invalid hash report")
)

type (
	// ReportType tags what a report covers.
	ReportType string

	// FileReport is the hash of a single file, addressed by its path relative to
	// the mod root.
	FileReport struct {
		File string `json:"file" toml:"file"`
		Hash string `json:"hash" toml:"hash"`
	}

	// Report is a named list of file hashes.
	Report struct {
		Name       string       `json:"name" toml:"name"`
		ReportType ReportType   `json:"report_type,omitempty" toml:"report_type,omitempty"`
		Reports    []FileReport `json:"reports" toml:"reports"`
	}

	// InvalidReportTypeError is returned when a ReportType value is not recognized.
	InvalidReportTypeError struct {
		Value ReportType
	}

	// InvalidReportError collects the problems found in a Report.
	InvalidReportError struct {
		Name     string
		Problems []string
	}
)

// String returns the string representation of the ReportType.
func (t ReportType) String() string { return string(t) }

// Effective returns the type a report is treated as. Reports written without a
// type are collection reports.
func (t ReportType) Effective() ReportType {
	if t == "" {
		return TypeCollection
	}
	return t
}

// IsValid returns whether the ReportType is one of the defined types.
// The zero value is accepted.
func (t ReportType) IsValid() (bool, []error) {
	switch t {
	case "", TypeCollection, TypeMod, TypeGame:
		return true, nil
	default:
		return false, []error{&InvalidReportTypeError{Value: t}}
	}
}

// Error implements the error interface for InvalidReportTypeError.
func (e *InvalidReportTypeError) Error() string {
	return fmt.Sprintf("invalid report type %q (valid: collection, mod, game)", e.Value)
}

// Unwrap returns ErrInvalidReportType for errors.Is() compatibility.
func (e *InvalidReportTypeError) Unwrap() error { return ErrInvalidReportType }

// Error implements the error interface for InvalidReportError.
func (e *InvalidReportError) Error() string {
	return fmt.Sprintf("hash report %q: %s", e.Name, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidReport for errors.Is() compatibility.
func (e *InvalidReportError) Unwrap() error { return ErrInvalidReport }

// IsValid checks that the report has a name, a known type and no duplicate file entries.
func (r Report) IsValid() (bool, []error) {
	var problems []string
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name must not be empty")
	}
	if ok, errs := r.ReportType.IsValid(); !ok {
		problems = append(problems, errs[0].Error())
	}
	seen := make(map[string]bool, len(r.Reports))
	for _, fr := range r.Reports {
		switch {
		case fr.File == "":
			problems = append(problems, "file entry with empty path")
		case seen[fr.File]:
			problems = append(problems, fmt.Sprintf("duplicate file entry %q", fr.File))
		}
		seen[fr.File] = true
	}
	if len(problems) > 0 {
		return false, []error{&InvalidReportError{Name: r.Name, Problems: problems}}
	}
	return true, nil
}

// Clone returns a deep copy of the report.
func (r Report) Clone() Report {
	r.Reports = slices.Clone(r.Reports)
	return r
}
