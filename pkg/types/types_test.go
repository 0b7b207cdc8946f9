// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path FilesystemPath
		want bool
	}{
		{"absolute path", "/home/user/.local/share/modcurator/store.toml", true},
		{"relative path", "report.json", true},
		{"windows style", `C:\Users\me\Documents\Paradox Interactive`, true},
		{"empty is invalid", "", false},
		{"whitespace only is invalid", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.path.IsValid()
			if ok != tt.want {
				t.Fatalf("FilesystemPath(%q).IsValid() = %v, want %v", tt.path, ok, tt.want)
			}
			if !tt.want {
				var fpErr *InvalidFilesystemPathError
				if !errors.As(errs[0], &fpErr) || !errors.Is(errs[0], ErrInvalidFilesystemPath) {
					t.Errorf("unexpected error %v", errs[0])
				}
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	for _, c := range []ExitCode{ExitSuccess, ExitFailure, ExitUsage, ExitNotFound, 255} {
		if ok, errs := c.IsValid(); !ok {
			t.Errorf("ExitCode(%d) should be valid: %v", c, errs)
		}
	}
	for _, c := range []ExitCode{-1, 256} {
		ok, errs := c.IsValid()
		if ok || !errors.Is(errs[0], ErrInvalidExitCode) {
			t.Errorf("ExitCode(%d) should be invalid", c)
		}
	}
	if !ExitSuccess.IsSuccess() || ExitFailure.IsSuccess() {
		t.Error("unexpected IsSuccess results")
	}
	if ExitNotFound.String() != "3" {
		t.Errorf("String() = %q", ExitNotFound.String())
	}
}
