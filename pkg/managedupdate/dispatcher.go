// Package managedupdate exposes the three per-frame channels and keeps one
// Relay claimed in the registry so the host's frame callbacks reach them.
//
// The first access to any channel performs one-time setup: if no Relay is
// registered a fresh one is created and enabled, and a reset listener is
// installed so that a new Relay is created after every registry reset.
// Subscriber lists live on the channels and survive resets.
//
// One Dispatcher should own a given Registry. A second Dispatcher on the same
// Registry finds the slot taken and its channels are never driven.
package managedupdate

import (
	"context"
	"sync"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/channel"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/registry"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Dispatcher owns the update, late-update and fixed-update channels.
type Dispatcher struct {
	reg       *registry.Registry
	channels  relay.Channels
	zl        *zap.Logger
	log       *otelzap.Logger
	metrics   *telemetry.Metrics
	relayOpts []relay.Option

	once     sync.Once
	setupErr error
	resetSub registry.ResetSubscription
	closed   bool
	mu       sync.Mutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger passed to the dispatcher and its relays.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.zl = l
		}
	}
}

// WithMetrics records dispatches and subscriber changes on the channels.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithRelayOptions appends options applied to every relay the dispatcher creates.
func WithRelayOptions(opts ...relay.Option) Option {
	return func(d *Dispatcher) { d.relayOpts = append(d.relayOpts, opts...) }
}

// New returns a Dispatcher over reg. Nothing is registered until the first
// channel access.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:     reg,
		zl:      zap.NewNop(),
		metrics: telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = otelzap.New(d.zl.Named("managedupdate"))
	d.channels = relay.Channels{
		Update:      channel.New(EventIDUpdate, channel.WithName(NameUpdate), channel.WithMetrics(d.metrics)),
		LateUpdate:  channel.New(EventIDLateUpdate, channel.WithName(NameLateUpdate), channel.WithMetrics(d.metrics)),
		FixedUpdate: channel.New(EventIDFixedUpdate, channel.WithName(NameFixedUpdate), channel.WithMetrics(d.metrics)),
	}
	return d
}

// Init runs the one-time setup and returns its error, if any. Channel
// accessors run it implicitly.
func (d *Dispatcher) Init(ctx context.Context) error {
	d.once.Do(func() { d.setupErr = d.setup(ctx) })
	return d.setupErr
}

func (d *Dispatcher) ensure() {
	if err := d.Init(context.Background()); err != nil {
		d.log.Error("Dispatcher setup failed", zap.Error(err))
	}
}

func (d *Dispatcher) setup(ctx context.Context) error {
	sub := d.reg.OnGlobalReset(d.respawn)
	d.mu.Lock()
	d.resetSub = sub
	d.mu.Unlock()

	if registry.IsRegistered[*relay.Relay](d.reg) {
		d.log.Ctx(ctx).Debug("Relay already registered, skipping spawn")
		return nil
	}
	return d.spawn(ctx)
}

func (d *Dispatcher) respawn(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil
	}
	d.log.Ctx(ctx).Info("Registry reset, spawning relay")
	return d.spawn(ctx)
}

func (d *Dispatcher) spawn(ctx context.Context) error {
	r := d.NewRelay()
	if err := r.Enable(ctx); err != nil {
		return cerr.Wrap(err, "enable relay")
	}
	d.log.Ctx(ctx).Debug("Relay spawned",
		zap.String("relay_id", r.InstanceID()),
		zap.Stringer("state", r.State()))
	return nil
}

// NewRelay constructs an Unclaimed relay bound to this dispatcher's channels.
// Hosts that instantiate their own objects enable it themselves; it still
// yields if another relay holds the slot.
func (d *Dispatcher) NewRelay(opts ...relay.Option) *relay.Relay {
	all := make([]relay.Option, 0, len(d.relayOpts)+len(opts)+2)
	all = append(all, relay.WithLogger(d.zl), relay.WithMetrics(d.metrics))
	all = append(all, d.relayOpts...)
	all = append(all, opts...)
	return relay.New(d.reg, d.channels, all...)
}

// OnUpdate is invoked once per rendered frame.
func (d *Dispatcher) OnUpdate() *channel.Channel {
	d.ensure()
	return d.channels.Update
}

// OnLateUpdate is invoked once per rendered frame after every update.
func (d *Dispatcher) OnLateUpdate() *channel.Channel {
	d.ensure()
	return d.channels.LateUpdate
}

// OnFixedUpdate is invoked once per fixed simulation step.
func (d *Dispatcher) OnFixedUpdate() *channel.Channel {
	d.ensure()
	return d.channels.FixedUpdate
}

// Relay returns the currently registered relay, or nil if none is.
func (d *Dispatcher) Relay(ctx context.Context) *relay.Relay {
	if err := d.Init(ctx); err != nil {
		d.log.Ctx(ctx).Error("Dispatcher setup failed", zap.Error(err))
	}
	r, _ := registry.Resolve[*relay.Relay](d.reg)
	return r
}

// Registry returns the registry the dispatcher claims its relay in.
func (d *Dispatcher) Registry() *registry.Registry { return d.reg }

// Close detaches the reset listener. The registered relay and the channels
// are left as they are.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	sub := d.resetSub
	d.mu.Unlock()
	sub.Cancel()
}
