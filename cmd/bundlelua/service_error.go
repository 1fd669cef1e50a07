// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BlockOG/bundle-lua/internal/config"
	"github.com/BlockOG/bundle-lua/internal/issue"
	"github.com/BlockOG/bundle-lua/internal/manifest"
	"github.com/BlockOG/bundle-lua/pkg/bundle"
	"github.com/BlockOG/bundle-lua/pkg/luamod"
	"github.com/BlockOG/bundle-lua/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before formatting the underlying error.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the issue help section when
// withIssue is set.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, withIssue bool, colorScheme config.ColorScheme) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if !withIssue || svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(string(colorScheme))
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// classifyError maps a failure to its issue catalog entry and the
// suggestions shown under the error line.
func classifyError(err error) (issue.Id, []string) {
	switch {
	case errors.Is(err, luamod.ErrInvalidIdentifier):
		return issue.InvalidModuleIdentifierId, []string{
			"Pass module names exactly as written inside require(\"...\")",
		}
	case errors.Is(err, bundle.ErrNotADirectory):
		return issue.NotADirectoryId, []string{
			"Check that SOURCE_DIR exists and is a directory",
		}
	case errors.Is(err, bundle.ErrNotAFile):
		return issue.NotAFileId, []string{
			"Check that the path exists and is a regular file",
			"OUTPUT may be absent but must not be a directory",
		}
	case errors.Is(err, bundle.ErrMissingDependency):
		return issue.MissingDependencyId, []string{
			"Create the module file under the source directory or drop the require",
		}
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId, []string{
			"Check the permissions of the file and its directory",
		}
	case errors.Is(err, bundle.ErrIO):
		return issue.IoErrorId, nil
	case errors.Is(err, manifest.ErrNotFound):
		return issue.ManifestNotFoundId, []string{
			"Create a " + manifest.FileName + " with a [bundle] table naming the output",
			"Or run 'bundle-lua dir' with explicit paths",
		}
	case errors.Is(err, manifest.ErrInvalidManifest):
		return issue.ManifestInvalidId, nil
	case errors.Is(err, errWatchFailed):
		return issue.WatchFailedId, nil
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId, nil
	default:
		return 0, nil
	}
}

// fail renders err as an actionable error and returns the ExitError that
// makes Execute exit with a failure status. fang stays quiet for it.
func (a *App) fail(cmd *cobra.Command, s *session, err error, operation, resource string) error {
	issueID, suggestions := classifyError(err)

	actionable := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithSuggestions(suggestions...).
		Wrap(err).
		BuildError()

	styled := fmt.Sprintf("%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(actionable, s.verbose))
	svcErr := newServiceError(actionable, issueID, styled)
	renderServiceError(a.stderr, svcErr, s.verbose, s.cfg.UI.ColorScheme)

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: types.ExitFailure, Err: svcErr}
}
