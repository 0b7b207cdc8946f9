// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for modcurator.
//
// This package implements the Cobra command hierarchy: the root command and
// the game, collection, priority, hash and config subcommands. Every command
// handler resolves its services through an App, which loads configuration and
// opens storage once per invocation.
package cmd
