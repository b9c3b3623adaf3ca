// pkg/relay_err/wrap.go

package relay_err

import (
	cerr "github.com/cockroachdb/errors"
)

// WrapSubscriberFailure annotates an error returned by a channel subscriber
// with the channel it was raised on and the subscriber's position in the pass.
// cerr.Is matches both the original error and ErrSubscriberFailed.
func WrapSubscriberFailure(err error, channel string, id, index int) error {
	if err == nil {
		return nil
	}
	wrapped := cerr.Wrapf(err, "channel %s (id %d) subscriber #%d", channel, id, index)
	return cerr.Mark(wrapped, ErrSubscriberFailed)
}

// WrapConflict attaches the registry key to ErrAlreadyRegistered.
func WrapConflict(key string) error {
	return cerr.WithHintf(
		cerr.Wrapf(ErrAlreadyRegistered, "registry key %s", key),
		"unregister the current instance first or use Overwrite",
	)
}

// WrapConfigError marks err as a configuration failure.
func WrapConfigError(err error) error {
	if err == nil {
		return nil
	}
	return cerr.Mark(cerr.WithHint(cerr.WithStack(err), "check FRAMERELAY_* environment variables and the config file"), ErrInvalidConfig)
}
