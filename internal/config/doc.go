// SPDX-License-Identifier: MPL-2.0

// Package config handles user configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/bundle-lua/config.cue (or the XDG equivalent
// on Linux, ~/Library/Application Support/bundle-lua/config.cue on macOS,
// %APPDATA%\bundle-lua\config.cue on Windows), falling back to ./config.cue.
// The file is validated against the embedded #Config schema (config_schema.cue)
// before it is merged over the defaults.
package config
