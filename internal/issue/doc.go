// SPDX-License-Identifier: MPL-2.0

// Package issue holds the catalog of known failure scenarios and the
// ActionableError type the CLI uses to print them with suggestions and
// Markdown guidance.
package issue
