// Package relay implements the object a host runtime drives once per frame.
//
// Any number of Relays may be constructed, but only the one holding the
// registry slot for *Relay forwards frame callbacks to the channels. The
// claim is made in Enable: the first relay to enable takes the slot, every
// later one goes Inert and asks the host to dispose of it.
package relay

import (
	"context"
	"sync"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/channel"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/registry"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Channels are the three frame-phase channels a relay forwards to.
type Channels struct {
	Update      *channel.Channel
	LateUpdate  *channel.Channel
	FixedUpdate *channel.Channel
}

// Relay forwards host frame callbacks to Channels while it is the active instance.
type Relay struct {
	id       string
	reg      *registry.Registry
	channels Channels
	log      *otelzap.Logger
	metrics  *telemetry.Metrics
	disposer func(*Relay)

	mu    sync.Mutex
	state State
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.log = otelzap.New(l.Named("relay").With(zap.String("relay_id", r.id)))
		}
	}
}

// WithMetrics records claim conflicts.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Relay) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithDisposer sets the hook a relay calls when it loses the claim and
// requests its own disposal from the host.
func WithDisposer(fn func(*Relay)) Option {
	return func(r *Relay) { r.disposer = fn }
}

// New constructs an Unclaimed relay. It does nothing until Enable.
func New(reg *registry.Registry, channels Channels, opts ...Option) *Relay {
	r := &Relay{
		id:       uuid.NewString(),
		reg:      reg,
		channels: channels,
		log:      otelzap.New(zap.NewNop()),
		metrics:  telemetry.Noop(),
		state:    Unclaimed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InstanceID identifies this physical relay.
func (r *Relay) InstanceID() string { return r.id }

// State returns the current lifecycle state.
func (r *Relay) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsActive reports whether the relay is Active and still holds the registry slot.
func (r *Relay) IsActive() bool {
	if r.State() != Active {
		return false
	}
	current, ok := registry.Resolve[*Relay](r.reg)
	return ok && current == r
}

// Enable claims the registry slot. If the slot is free the relay becomes
// Active; if it already holds the slot nothing changes; if another relay
// holds it this one goes Inert and the disposer is called. Losing the claim
// is not an error. Enabling an Inert relay does nothing.
func (r *Relay) Enable(ctx context.Context) error {
	switch r.State() {
	case Destroyed:
		return cerr.Wrapf(relay_err.ErrRelayDestroyed, "enable relay %s", r.id)
	case Inert:
		return nil
	}

	current, ok := registry.Resolve[*Relay](r.reg)
	switch {
	case !ok:
		if err := registry.Register(r.reg, r); err != nil {
			if cerr.Is(err, relay_err.ErrAlreadyRegistered) {
				r.yield(ctx)
				return nil
			}
			return err
		}
		r.setState(Active)
		r.log.Ctx(ctx).Info("Relay claimed singleton slot")
	case current == r:
		r.setState(Active)
		r.log.Ctx(ctx).Debug("Relay re-enabled")
	default:
		r.yield(ctx)
	}
	return nil
}

func (r *Relay) yield(ctx context.Context) {
	r.setState(Inert)
	r.metrics.RelayConflict(ctx)

	current, _ := registry.Resolve[*Relay](r.reg)
	holder := ""
	if current != nil {
		holder = current.id
	}
	r.log.Ctx(ctx).Warn("Relay lost singleton claim, disposing",
		zap.String("active_relay_id", holder),
		zap.Error(relay_err.ErrDuplicateInstance))

	if r.disposer != nil {
		r.disposer(r)
	}
}

// Update forwards the host's update callback.
func (r *Relay) Update(ctx context.Context) error {
	return r.forward(ctx, r.channels.Update)
}

// LateUpdate forwards the host's late-update callback.
func (r *Relay) LateUpdate(ctx context.Context) error {
	return r.forward(ctx, r.channels.LateUpdate)
}

// FixedUpdate forwards the host's fixed-update callback.
func (r *Relay) FixedUpdate(ctx context.Context) error {
	return r.forward(ctx, r.channels.FixedUpdate)
}

// forward invokes ch only while this relay is the registered active one, so
// stale or inert instances the host keeps calling never deliver twice.
func (r *Relay) forward(ctx context.Context, ch *channel.Channel) error {
	if ch == nil || !r.IsActive() {
		return nil
	}
	return ch.InvokeContext(ctx)
}

// Destroy is the host destroying the object. The registry slot is released
// only if this relay still holds it.
func (r *Relay) Destroy(ctx context.Context) {
	prev := r.swapState(Destroyed)
	if prev == Destroyed {
		return
	}
	released := registry.UnregisterInstance(r.reg, r)
	r.log.Ctx(ctx).Debug("Relay destroyed",
		zap.Stringer("previous_state", prev),
		zap.Bool("released_slot", released))
}

// Release implements registry.Releaser; a registry reset destroys the relay.
func (r *Relay) Release() {
	r.swapState(Destroyed)
}

func (r *Relay) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Relay) swapState(s State) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.state
	r.state = s
	return prev
}
