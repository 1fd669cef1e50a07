// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// LogLevelDebug shows per-module progress.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn shows skipped dependencies and worse.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError shows failures only.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidDebounce is returned when a Debounce value is not a positive duration.
	ErrInvalidDebounce = errors.New("invalid debounce")
	// ErrInvalidIgnorePattern is returned when a watch ignore pattern is not a valid glob.
	ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level of log records written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Debounce is a Go duration string such as "500ms".
	Debounce string

	// InvalidDebounceError is returned when a Debounce does not parse or is not positive.
	InvalidDebounceError struct {
		Value Debounce
		Err   error
	}

	// InvalidIgnorePatternError is returned for a malformed doublestar pattern.
	InvalidIgnorePatternError struct {
		Pattern string
		Err     error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// AutoDetect is the default for `dir --auto-detect`.
		AutoDetect bool `json:"auto_detect" mapstructure:"auto_detect"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Log configures the stderr logger
		Log LogConfig `json:"log" mapstructure:"log"`
		// Watch configures --watch mode
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Debounce is the quiet period before a rebundle.
		Debounce Debounce `json:"debounce" mapstructure:"debounce"`
		// Ignore lists extra doublestar patterns that never trigger a rebundle.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}
)

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

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

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

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the Debounce.
func (d Debounce) String() string { return string(d) }

// Duration parses the debounce. The zero value yields 0, which the watcher
// treats as its default.
func (d Debounce) Duration() (time.Duration, error) {
	if d == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(string(d))
	if err != nil {
		return 0, &InvalidDebounceError{Value: d, Err: err}
	}
	if dur <= 0 {
		return 0, &InvalidDebounceError{Value: d, Err: errors.New("must be positive")}
	}
	return dur, nil
}

// IsValid returns whether the Debounce parses as a positive duration.
func (d Debounce) IsValid() (bool, []error) {
	if _, err := d.Duration(); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// Error implements the error interface for InvalidDebounceError.
func (e *InvalidDebounceError) Error() string {
	return fmt.Sprintf("invalid watch debounce %q: %v", e.Value, e.Err)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidDebounceError) Unwrap() error { return ErrInvalidDebounce }

// Error implements the error interface for InvalidIgnorePatternError.
func (e *InvalidIgnorePatternError) Error() string {
	return fmt.Sprintf("invalid watch ignore pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidIgnorePatternError) Unwrap() error { return ErrInvalidIgnorePattern }

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid returns whether the WatchConfig has a positive debounce and
// well-formed ignore patterns.
func (c WatchConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Debounce.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, pat := range c.Ignore {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, &InvalidIgnorePatternError{Pattern: pat, Err: doublestar.ErrBadPattern})
		}
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Config has valid fields. It collects the
// field errors of every section.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Watch.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so callers
// can match a specific field sentinel with errors.Is().
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		AutoDetect: false,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
			Ignore:   []string{},
		},
	}
}
