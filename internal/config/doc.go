// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/modcurator/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/modcurator/config.cue on macOS,
// %APPDATA%\modcurator\config.cue on Windows). Values can be overridden with MODCURATOR_*
// environment variables. The package covers storage backend selection, hash report
// settings, the default priority mode, logging and UI options.
//
// Configuration files are validated against an embedded CUE schema (config_schema.cue)
// before they are merged over the defaults.
package config
