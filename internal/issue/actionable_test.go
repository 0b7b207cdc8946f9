// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "open storage"},
			expected: "failed to open storage",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "import collection", Resource: "./list.toml"},
			expected: "failed to import collection: ./list.toml",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "parse config", Cause: errors.New("syntax error at line 5")},
			expected: "failed to parse config: syntax error at line 5",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "export hash report",
				Resource:  "report.json",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to export hash report: report.json: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().
		WithOperation("load configuration").
		WithResource("config.cue").
		Wrap(fmt.Errorf("reading: %w", sentinel)).
		BuildError()
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() must reach the wrapped sentinel")
	}

	var ae *ActionableError
	if !errors.As(fmt.Errorf("outer: %w", err), &ae) || ae.Resource != "config.cue" {
		t.Errorf("errors.As() = %+v", ae)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := &ActionableError{
		Operation:   "open storage",
		Resource:    "localhost:6379",
		Suggestions: []string{"Start the redis server", "Switch to the file backend"},
		Cause:       fmt.Errorf("dial: %w", errors.New("connection refused")),
	}

	plain := err.Format(false)
	for _, want := range []string{"failed to open storage", "• Start the redis server", "• Switch to the file backend"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain:") {
		t.Error("Format(false) must not include the error chain")
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. dial: connection refused", "2. connection refused"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation must return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation must return nil")
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("import collection").
		WithResource("list.toml").
		WithSuggestion("Export it again").
		WithSuggestion("Check the format").
		WithIssue(ExchangeFileInvalidId).
		Wrap(cause).
		Build()

	if ae.Operation != "import collection" || ae.Resource != "list.toml" || ae.Cause != cause {
		t.Errorf("unexpected error %+v", ae)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if is := ae.Issue(); is == nil || is.Id() != ExchangeFileInvalidId {
		t.Errorf("Issue() = %v", is)
	}
	if (&ActionableError{Operation: "x"}).Issue() != nil {
		t.Error("Issue() without id must be nil")
	}
}
