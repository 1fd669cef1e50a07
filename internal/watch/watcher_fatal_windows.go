// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// fatalErrnos are Win32 codes after which ReadDirectoryChangesW cannot
// continue: ERROR_TOO_MANY_OPEN_FILES (4), ERROR_INVALID_HANDLE (6, the
// watched directory is gone) and ERROR_NOT_ENOUGH_MEMORY (8).
var fatalErrnos = []syscall.Errno{4, 6, 8}

func isFatalFsnotifyError(err error) bool {
	for _, errno := range fatalErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
