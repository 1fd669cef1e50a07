// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"fmt"

	"github.com/BlockOG/bundle-lua/pkg/luamod"
	"github.com/BlockOG/bundle-lua/pkg/types"
)

const (
	// KindFile is the path kind required for scripts and outputs.
	KindFile PathKind = "file"
	// KindDirectory is the path kind required for source roots.
	KindDirectory PathKind = "directory"
)

var (
	// ErrInvalidArgument is returned when a request has the wrong shape.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotAFile is wrapped by PathKindError when a file was required.
	ErrNotAFile = errors.New("not a file")
	// ErrNotADirectory is wrapped by PathKindError when a directory was required.
	ErrNotADirectory = errors.New("not a directory")
	// ErrIO is wrapped by IOError for open, read and write failures.
	ErrIO = errors.New("i/o error")
	// ErrMissingDependency is wrapped by MissingDependencyError.
	ErrMissingDependency = errors.New("missing dependency")
)

type (
	// PathKind names the kind of filesystem entry a path argument must be.
	PathKind string

	// PathKindError is returned when a path does not exist or is not of the
	// required kind. It wraps ErrNotAFile or ErrNotADirectory.
	PathKindError struct {
		// Role describes the argument, e.g. "main", "package", "output".
		Role string
		Path types.FilesystemPath
		Want PathKind
	}

	// IOError carries the underlying message of a failed filesystem operation.
	IOError struct {
		Op   string
		Path types.FilesystemPath
		Err  error
	}

	// MissingDependencyError reports a resolved module file that does not exist.
	MissingDependencyError struct {
		Identifier luamod.Identifier
		Path       types.FilesystemPath
		Err        error
	}
)

// Error implements the error interface.
func (e *PathKindError) Error() string {
	return fmt.Sprintf("%s has to be a %s: %s", e.Role, e.Want, e.Path)
}

// Unwrap returns the sentinel matching the required kind.
func (e *PathKindError) Unwrap() error {
	if e.Want == KindDirectory {
		return ErrNotADirectory
	}
	return ErrNotAFile
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns both ErrIO and the underlying error so callers can match
// either with errors.Is.
func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("module %q not found at %s", e.Identifier, e.Path)
}

// Unwrap returns both ErrMissingDependency and the underlying cause.
func (e *MissingDependencyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMissingDependency}
	}
	return []error{ErrMissingDependency, e.Err}
}
