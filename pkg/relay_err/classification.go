// pkg/relay_err/classification.go
//
// Error classification with exit codes for the CLI.

package relay_err

import (
	cerr "github.com/cockroachdb/errors"
)

// ErrorCategory classifies errors for appropriate handling.
type ErrorCategory int

const (
	// CategoryInternal - anything not recognised (exit 3)
	CategoryInternal ErrorCategory = iota
	// CategoryConflict - singleton slot conflicts (exit 1)
	CategoryConflict
	// CategorySubscriber - a subscriber callback failed (exit 1)
	CategorySubscriber
	// CategoryRegistry - registry misuse (exit 1)
	CategoryRegistry
	// CategoryConfig - configuration failed validation (exit 2)
	CategoryConfig
	// CategoryCancelled - the run was interrupted (exit 130)
	CategoryCancelled
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryConflict:
		return "conflict"
	case CategorySubscriber:
		return "subscriber"
	case CategoryRegistry:
		return "registry"
	case CategoryConfig:
		return "config"
	case CategoryCancelled:
		return "cancelled"
	default:
		return "internal"
	}
}

// Category returns the category of err. A nil error is CategoryInternal;
// callers are expected to check for nil first.
func Category(err error) ErrorCategory {
	switch {
	case cerr.Is(err, ErrInvalidConfig):
		return CategoryConfig
	case cerr.Is(err, ErrSubscriberFailed):
		return CategorySubscriber
	case cerr.Is(err, ErrAlreadyRegistered), cerr.Is(err, ErrDuplicateInstance):
		return CategoryConflict
	case cerr.Is(err, ErrNotRegistered), cerr.Is(err, ErrNilInstance), cerr.Is(err, ErrRelayDestroyed):
		return CategoryRegistry
	case isCancelled(err):
		return CategoryCancelled
	default:
		return CategoryInternal
	}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch Category(err) {
	case CategoryConfig:
		return 2
	case CategoryInternal:
		return 3
	case CategoryCancelled:
		return 130
	default:
		return 1
	}
}

// Hints returns the user-facing hints attached anywhere in err's chain.
func Hints(err error) []string {
	if err == nil {
		return nil
	}
	return cerr.GetAllHints(err)
}
