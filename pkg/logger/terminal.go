package logger

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/term"
)

func useConsole(format string) bool {
	switch format {
	case "console":
		return true
	case "json":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// Syncing a terminal or pipe fails with EINVAL/ENOTTY on Linux; that is not a lost write.
func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}
