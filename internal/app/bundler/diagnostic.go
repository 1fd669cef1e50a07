// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"github.com/BlockOG/bundle-lua/pkg/luamod"
	"github.com/BlockOG/bundle-lua/pkg/types"
)

const (
	// SeverityWarning indicates a skipped dependency; the bundle was still written.
	SeverityWarning Severity = "warning"

	// CodeMissingDependency is reported when a resolved module file does not exist.
	CodeMissingDependency = "missing_dependency"
	// CodeUnreadableDependency is reported when a module file exists but cannot be read.
	CodeUnreadableDependency = "unreadable_dependency"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a structured, non-fatal finding of a bundling pass.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g., "missing_dependency").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path types.FilesystemPath
		// Identifier is the module the diagnostic is about (optional).
		Identifier luamod.Identifier
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)
