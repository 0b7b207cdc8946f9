// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/modcurator/modcurator/internal/issue"
	"github.com/modcurator/modcurator/pkg/cueutil"
	"github.com/modcurator/modcurator/pkg/fspath"
	"github.com/modcurator/modcurator/pkg/types"
)

const (
	// AppName is the application name.
	AppName = "modcurator"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. MODCURATOR_STORAGE_BACKEND.
	EnvPrefix = "MODCURATOR"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the modcurator configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the path of the config file inside dir, or inside
// ConfigDir when dir is empty.
func FilePath(dir string) (types.FilesystemPath, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}
	return types.FilesystemPath(filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'modcurator config show' to see the default configuration").
				WithIssue(issue.FileNotFoundId).
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", parseFailure(path, err)
		}
		resolvedPath = path
	} else {
		cuePath, err := FilePath(string(opts.ConfigDirPath))
		if err != nil {
			return nil, "", err
		}
		for _, candidate := range []types.FilesystemPath{cuePath, ConfigFileName + "." + ConfigFileExt} {
			if !fileExists(string(candidate)) {
				continue
			}
			if err := loadCUEIntoViper(v, string(candidate)); err != nil {
				return nil, "", parseFailure(string(candidate), err)
			}
			resolvedPath = string(candidate)
			break
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the values of MODCURATOR_* environment variables").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}
	if cfg.Storage.Path == "" {
		dir, err := configDirWithOverride(string(opts.ConfigDirPath))
		if err != nil {
			return nil, "", err
		}
		cfg.Storage.Path = types.FilesystemPath(filepath.Join(dir, DefaultStorageFile))
	}
	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("storage.backend", defaults.Storage.Backend)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.redis.addr", defaults.Storage.Redis.Addr)
	v.SetDefault("storage.redis.db", defaults.Storage.Redis.DB)
	v.SetDefault("storage.redis.key_prefix", defaults.Storage.Redis.KeyPrefix)
	v.SetDefault("hash.algorithm", defaults.Hash.Algorithm)
	v.SetDefault("hash.concurrency", defaults.Hash.Concurrency)
	v.SetDefault("reader.cache_size", defaults.Reader.CacheSize)
	v.SetDefault("priority.mode", defaults.Priority.Mode)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

func parseFailure(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates the CUE file at path against #Config and merges
// the values it sets into v. Unset keys keep their defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config", path)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file into dir (ConfigDir when
// empty) unless one exists. It returns the file path and whether it was
// written.
func CreateDefaultConfig(dir string, force bool) (types.FilesystemPath, bool, error) {
	cfgPath, err := FilePath(dir)
	if err != nil {
		return "", false, err
	}
	if !force {
		exists, err := fspath.Exists(cfgPath)
		if err != nil {
			return "", false, err
		}
		if exists {
			return cfgPath, false, nil
		}
	}
	if err := fspath.WriteFileAtomic(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// Save writes cfg to the config file inside dir (ConfigDir when empty).
func Save(cfg *Config, dir string) error {
	cfgPath, err := FilePath(dir)
	if err != nil {
		return err
	}
	if err := fspath.WriteFileAtomic(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// modcurator configuration\n\n")

	sb.WriteString("storage: {\n")
	fmt.Fprintf(&sb, "\tbackend: %q\n", cfg.Storage.Backend)
	if cfg.Storage.Path != "" {
		fmt.Fprintf(&sb, "\tpath: %q\n", cfg.Storage.Path)
	}
	sb.WriteString("\tredis: {\n")
	fmt.Fprintf(&sb, "\t\taddr: %q\n", cfg.Storage.Redis.Addr)
	fmt.Fprintf(&sb, "\t\tdb: %d\n", cfg.Storage.Redis.DB)
	fmt.Fprintf(&sb, "\t\tkey_prefix: %q\n", cfg.Storage.Redis.KeyPrefix)
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")

	sb.WriteString("\nhash: {\n")
	fmt.Fprintf(&sb, "\talgorithm: %q\n", cfg.Hash.Algorithm)
	fmt.Fprintf(&sb, "\tconcurrency: %d\n", cfg.Hash.Concurrency)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nreader: cache_size: %d\n", cfg.Reader.CacheSize)
	fmt.Fprintf(&sb, "\npriority: mode: %q\n", cfg.Priority.Mode)
	fmt.Fprintf(&sb, "\nlog: level: %q\n", cfg.Log.Level)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
