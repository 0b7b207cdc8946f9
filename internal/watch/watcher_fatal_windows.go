// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// fatalErrnos are the Win32 codes after which ReadDirectoryChangesW delivers
// no further events: ERROR_TOO_MANY_OPEN_FILES, ERROR_INVALID_HANDLE (the mod
// directory was removed or unmounted) and ERROR_NOT_ENOUGH_MEMORY.
var fatalErrnos = []syscall.Errno{4, 6, 8}

// isFatalFsnotifyError reports whether err means the watcher stopped working.
func isFatalFsnotifyError(err error) bool {
	for _, errno := range fatalErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
