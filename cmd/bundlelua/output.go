// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/BlockOG/bundle-lua/internal/app/bundler"
)

const (
	noPackagesMessage = "You probably want at least one package."
	doneMessage       = "Done!"
)

// printResult reports a finished bundling pass: the no-op notice, or the
// module list at debug level followed by the completion line.
func printResult(stdout io.Writer, s *session, res bundler.Result) {
	if res.NoOp {
		fmt.Fprintln(stdout, WarningStyle.Render(noPackagesMessage))
		return
	}

	for _, id := range res.Modules {
		s.logger.Debug("bundled module", "module", id.String())
	}
	s.logger.Debug("wrote bundle", "path", res.Output.String(), "bytes", res.Bytes, "skipped", len(res.Skipped))

	fmt.Fprintln(stdout, SuccessStyle.Render(doneMessage))
}
