// Package channel implements a named broadcast event with an ordered list of
// zero-argument subscriber callbacks.
//
// Invoke works on a snapshot of the subscriber list taken when the pass
// starts: callbacks added during a pass first run on the next pass, and
// callbacks removed during a pass still run in the current one if they had
// not been reached yet.
//
// A callback that returns an error stops the pass. The remaining subscribers
// are skipped for that invocation and the error is returned to the caller.
// Panics are not recovered.
package channel

import (
	"context"
	"fmt"
	"sync"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/telemetry"
)

// Callback is a subscriber notification.
type Callback func() error

type subscriber struct {
	id uint64
	cb Callback
}

// Channel is safe for concurrent use. Callbacks always run without any lock held.
type Channel struct {
	id      int
	name    string
	metrics *telemetry.Metrics

	mu     sync.RWMutex
	subs   []subscriber // copy-on-write; never mutated in place
	nextID uint64
}

// Option configures a Channel.
type Option func(*Channel)

// WithName sets the name used in errors, logs and metrics.
func WithName(name string) Option {
	return func(c *Channel) { c.name = name }
}

// WithMetrics records dispatches, failures and subscriber counts.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Channel) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New creates an empty channel identified by id.
func New(id int, opts ...Option) *Channel {
	c := &Channel{
		id:      id,
		name:    fmt.Sprintf("event(%d)", id),
		metrics: telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Channel) ID() int      { return c.id }
func (c *Channel) Name() string { return c.name }

// Subscribe appends cb to the subscriber list. Subscribing a nil callback
// returns an invalid Subscription and changes nothing.
func (c *Channel) Subscribe(cb Callback) Subscription {
	if cb == nil {
		return Subscription{}
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	next := make([]subscriber, len(c.subs), len(c.subs)+1)
	copy(next, c.subs)
	c.subs = append(next, subscriber{id: id, cb: cb})
	c.mu.Unlock()

	c.metrics.SubscribersChanged(context.Background(), c.name, 1)
	return Subscription{id: id, ch: c}
}

// SubscribeFunc subscribes a callback that cannot fail.
func (c *Channel) SubscribeFunc(fn func()) Subscription {
	if fn == nil {
		return Subscription{}
	}
	return c.Subscribe(func() error {
		fn()
		return nil
	})
}

// Unsubscribe removes the subscription. It reports whether the subscription
// was still present; removing twice is harmless.
func (c *Channel) Unsubscribe(s Subscription) bool {
	if s.ch != c || s.id == 0 {
		return false
	}

	c.mu.Lock()
	idx := -1
	for i, sub := range c.subs {
		if sub.id == s.id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	next := make([]subscriber, 0, len(c.subs)-1)
	next = append(next, c.subs[:idx]...)
	next = append(next, c.subs[idx+1:]...)
	c.subs = next
	c.mu.Unlock()

	c.metrics.SubscribersChanged(context.Background(), c.name, -1)
	return true
}

// Len returns the number of current subscribers.
func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Clear removes every subscriber.
func (c *Channel) Clear() {
	c.mu.Lock()
	n := len(c.subs)
	c.subs = nil
	c.mu.Unlock()

	if n > 0 {
		c.metrics.SubscribersChanged(context.Background(), c.name, -int64(n))
	}
}

// Invoke calls every current subscriber in subscription order.
func (c *Channel) Invoke() error {
	return c.InvokeContext(context.Background())
}

// InvokeContext is Invoke with a context for metrics attribution. The context
// is not passed to callbacks and does not cancel the pass.
func (c *Channel) InvokeContext(ctx context.Context) error {
	c.mu.RLock()
	snapshot := c.subs
	c.mu.RUnlock()

	c.metrics.ChannelDispatched(ctx, c.name)
	for i, sub := range snapshot {
		if err := sub.cb(); err != nil {
			c.metrics.SubscriberFailed(ctx, c.name)
			return relay_err.WrapSubscriberFailure(err, c.name, c.id, i)
		}
	}
	return nil
}
