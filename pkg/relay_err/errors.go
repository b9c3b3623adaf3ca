// pkg/relay_err/errors.go

package relay_err

import (
	cerr "github.com/cockroachdb/errors"
)

// Sentinel errors shared by the registry, relay and channel packages.
// Match them with cerr.Is; marks added by the Wrap helpers are only visible
// to the cockroachdb matcher.
var (
	// ErrAlreadyRegistered is returned when a different instance already
	// occupies the registry slot for a type.
	ErrAlreadyRegistered = cerr.New("instance already registered")

	// ErrNilInstance is returned when a nil instance is offered to the registry.
	ErrNilInstance = cerr.New("nil instance")

	// ErrNotRegistered is only raised by MustResolve. Resolve reports a miss
	// through its boolean result instead.
	ErrNotRegistered = cerr.New("instance not registered")

	// ErrDuplicateInstance marks a relay that lost the claim for the singleton
	// slot. It is logged and counted, never returned to subscribers.
	ErrDuplicateInstance = cerr.New("duplicate relay instance")

	// ErrRelayDestroyed is returned when a destroyed relay is enabled again.
	ErrRelayDestroyed = cerr.New("relay destroyed")

	// ErrSubscriberFailed marks an error raised by a channel subscriber.
	ErrSubscriberFailed = cerr.New("subscriber callback failed")

	// ErrInvalidConfig marks configuration that failed validation.
	ErrInvalidConfig = cerr.New("invalid configuration")
)
