// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modcurator/modcurator/internal/reader"
	"github.com/modcurator/modcurator/internal/storage"
	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/priority"
	"github.com/modcurator/modcurator/pkg/types"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// DefaultStorageFile is the file name of the file backend inside the
	// config directory.
	DefaultStorageFile = "storage.toml"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidStorageConfig is the sentinel error wrapped by InvalidStorageConfigError.
	ErrInvalidStorageConfig = errors.New("invalid storage config")
	// ErrInvalidHashConfig is the sentinel error wrapped by InvalidHashConfigError.
	ErrInvalidHashConfig = errors.New("invalid hash config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level written by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidStorageConfigError collects field errors of a StorageConfig.
	InvalidStorageConfigError struct {
		FieldErrors []error
	}

	// InvalidHashConfigError collects field errors of a HashConfig.
	InvalidHashConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		Storage  StorageConfig  `json:"storage" mapstructure:"storage"`
		Hash     HashConfig     `json:"hash" mapstructure:"hash"`
		Reader   ReaderConfig   `json:"reader" mapstructure:"reader"`
		Priority PriorityConfig `json:"priority" mapstructure:"priority"`
		Log      LogConfig      `json:"log" mapstructure:"log"`
		UI       UIConfig       `json:"ui" mapstructure:"ui"`
	}

	// StorageConfig selects where games and collections are persisted.
	StorageConfig struct {
		// Backend is one of memory, file or redis.
		Backend storage.Backend `json:"backend" mapstructure:"backend"`
		// Path is the TOML document of the file backend. Empty selects
		// DefaultStorageFile in the config directory.
		Path  types.FilesystemPath `json:"path" mapstructure:"path"`
		Redis RedisConfig          `json:"redis" mapstructure:"redis"`
	}

	// RedisConfig configures the redis backend.
	RedisConfig struct {
		Addr      string `json:"addr" mapstructure:"addr"`
		DB        int    `json:"db" mapstructure:"db"`
		KeyPrefix string `json:"key_prefix" mapstructure:"key_prefix"`
	}

	// HashConfig configures hash report computation.
	HashConfig struct {
		Algorithm hashreport.Algorithm `json:"algorithm" mapstructure:"algorithm"`
		// Concurrency bounds parallel hashing; 0 uses GOMAXPROCS.
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
	}

	// ReaderConfig configures the file reader cache.
	ReaderConfig struct {
		CacheSize int `json:"cache_size" mapstructure:"cache_size"`
	}

	// PriorityConfig holds the default file ordering policy for games that
	// do not set their own.
	PriorityConfig struct {
		Mode priority.Mode `json:"mode" mapstructure:"mode"`
	}

	// LogConfig configures the CLI logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: storage.DefaultKeyPrefix,
			},
		},
		Hash: HashConfig{
			Algorithm: hashreport.AlgorithmSHA256,
		},
		Reader: ReaderConfig{
			CacheSize: reader.DefaultCacheSize,
		},
		Priority: PriorityConfig{
			Mode: priority.ModeFIOS,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid returns whether the StorageConfig has valid fields.
func (c StorageConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Backend.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Backend == storage.BackendRedis && strings.TrimSpace(c.Redis.Addr) == "" {
		errs = append(errs, errors.New("redis address must not be empty"))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("redis db %d must not be negative", c.Redis.DB))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidStorageConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidStorageConfigError.
func (e *InvalidStorageConfigError) Error() string {
	return fmt.Sprintf("invalid storage config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidStorageConfig and the field errors for errors.Is()
// compatibility.
func (e *InvalidStorageConfigError) Unwrap() []error {
	return append([]error{ErrInvalidStorageConfig}, e.FieldErrors...)
}

// IsValid returns whether the HashConfig has valid fields.
func (c HashConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Algorithm.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency %d must not be negative", c.Concurrency))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidHashConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidHashConfigError.
func (e *InvalidHashConfigError) Error() string {
	return fmt.Sprintf("invalid hash config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidHashConfig and the field errors for errors.Is()
// compatibility.
func (e *InvalidHashConfigError) Unwrap() []error {
	return append([]error{ErrInvalidHashConfig}, e.FieldErrors...)
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Storage.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Hash.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Reader.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("reader cache size %d must not be negative", c.Reader.CacheSize))
	}
	if valid, fieldErrs := c.Priority.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}
