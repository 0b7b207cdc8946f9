// SPDX-License-Identifier: MPL-2.0

package priority

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ReasonNone means no rule was needed, e.g. a single-member set.
	ReasonNone Reason = iota
	// ReasonModOverride means the winner's mod declares a dependency on the mods it overrides.
	ReasonModOverride
	// ReasonModOrder means the winner's mod is loaded last.
	ReasonModOrder
	// ReasonFIOS means the winner comes from the first file in override sequence.
	ReasonFIOS
	// ReasonLIOS means the winner comes from the last file in override sequence.
	ReasonLIOS
)

const (
	// ModeFIOS selects the first file in override sequence.
	ModeFIOS Mode = "fios"
	// ModeLIOS selects the last file in override sequence.
	ModeLIOS Mode = "lios"
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid priority mode")

type (
	// Reason explains why a definition won its conflict set.
	Reason int

	// Mode is the caller-supplied file ordering policy used when load order
	// cannot disambiguate.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}
)

// String returns the identifier of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonModOverride:
		return "mod_override"
	case ReasonModOrder:
		return "mod_order"
	case ReasonFIOS:
		return "fios"
	case ReasonLIOS:
		return "lios"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Label returns the short text shown next to a winning definition.
func (r Reason) Label() string {
	switch r {
	case ReasonModOverride:
		return "Override"
	case ReasonModOrder:
		return "Order"
	case ReasonFIOS:
		return "FIOS"
	case ReasonLIOS:
		return "LIOS"
	default:
		return ""
	}
}

// ParseMode converts s (case-insensitive) into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if valid, errs := m.IsValid(); !valid {
		return "", errs[0]
	}
	return m, nil
}

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// IsValid returns whether the Mode is one of the defined modes.
func (m Mode) IsValid() (bool, []error) {
	switch m {
	case ModeFIOS, ModeLIOS:
		return true, nil
	default:
		return false, []error{&InvalidModeError{Value: m}}
	}
}

// Reason returns the reason reported when m decides a conflict.
func (m Mode) Reason() Reason {
	if m == ModeFIOS {
		return ReasonFIOS
	}
	return ReasonLIOS
}

// Error implements the error interface for InvalidModeError.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid priority mode %q (valid: fios, lios)", e.Value)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }
