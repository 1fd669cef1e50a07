// SPDX-License-Identifier: MPL-2.0

// Package manifest handles bundle.toml project files.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/BlockOG/bundle-lua/pkg/fspath"
	"github.com/BlockOG/bundle-lua/pkg/types"
)

const (
	// FileName is the manifest file looked up in project directories.
	FileName = "bundle.toml"

	// DefaultSource is the source directory used when none is configured.
	DefaultSource = "."
	// DefaultMain is the entry script used when none is configured.
	DefaultMain = "main.lua"
)

var (
	// ErrNotFound is returned by FindAndLoad when no manifest exists in the
	// start directory or any of its parents.
	ErrNotFound = errors.New("no " + FileName + " found")

	// ErrInvalidManifest is the sentinel wrapped by InvalidManifestError.
	ErrInvalidManifest = errors.New("invalid manifest")
)

type (
	// Manifest represents a bundle.toml project file.
	Manifest struct {
		Project Project `toml:"project"`
		Bundle  Bundle  `toml:"bundle"`

		// Dir is the absolute directory containing the manifest (set at load time).
		Dir types.FilesystemPath `toml:"-"`
	}

	// Project contains project metadata.
	Project struct {
		Name string `toml:"name"`
	}

	// Bundle configures a directory bundle. Relative paths are relative to
	// the manifest directory, except Main which is relative to Source.
	Bundle struct {
		Output     string   `toml:"output"`
		Source     string   `toml:"source"`
		Main       string   `toml:"main"`
		Packages   []string `toml:"packages"`
		AutoDetect bool     `toml:"auto_detect"`
	}

	// InvalidManifestError is returned when a manifest fails to parse or
	// misses a required field.
	InvalidManifestError struct {
		Path   types.FilesystemPath
		Reason string
		Err    error
	}
)

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid manifest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid manifest %s: %s", e.Path, e.Reason)
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }

// Load parses the bundle.toml file in dir. Unknown keys are rejected.
func Load(fsys afero.Fs, dir types.FilesystemPath) (*Manifest, error) {
	path := fspath.JoinStr(dir, FileName)
	data, err := afero.ReadFile(fsys, string(path))
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	m.Dir, err = fspath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes manifest data, applies defaults and validates required
// fields. path is only used in error messages.
func Parse(path types.FilesystemPath, data []byte) (*Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, &InvalidManifestError{Path: path, Reason: "unknown keys", Err: errors.New(strict.String())}
		}
		return nil, &InvalidManifestError{Path: path, Reason: "parse error", Err: err}
	}

	if m.Bundle.Source == "" {
		m.Bundle.Source = DefaultSource
	}
	if m.Bundle.Main == "" {
		m.Bundle.Main = DefaultMain
	}
	if m.Bundle.Output == "" {
		return nil, &InvalidManifestError{Path: path, Reason: "[bundle] output is required"}
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a bundle.toml file, then loads
// and returns the manifest. It returns ErrNotFound when the filesystem root
// is reached without finding one.
func FindAndLoad(fsys afero.Fs, startDir types.FilesystemPath) (*Manifest, error) {
	dir, err := fspath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if info, err := fsys.Stat(filepath.Join(string(dir), FileName)); err == nil && !info.IsDir() {
			return Load(fsys, dir)
		}

		parent := fspath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%w in %s or any parent directory", ErrNotFound, startDir)
		}
		dir = parent
	}
}

// Path returns the absolute path of the manifest file.
func (m *Manifest) Path() types.FilesystemPath {
	return fspath.JoinStr(m.Dir, FileName)
}

// OutputPath returns the absolute path of the bundle output.
func (m *Manifest) OutputPath() types.FilesystemPath {
	return m.abs(m.Bundle.Output)
}

// SourceDirPath returns the absolute path of the source directory.
func (m *Manifest) SourceDirPath() types.FilesystemPath {
	return m.abs(m.Bundle.Source)
}

// MainPath returns the entry script path, relative to the source directory.
func (m *Manifest) MainPath() types.FilesystemPath {
	return types.FilesystemPath(filepath.FromSlash(m.Bundle.Main))
}

func (m *Manifest) abs(p string) types.FilesystemPath {
	native := types.FilesystemPath(filepath.FromSlash(p))
	if fspath.IsAbs(native) {
		return native
	}
	return fspath.Join(m.Dir, native)
}
