package registry

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Releaser is implemented by instances that must be told when Reset drops
// them from the registry.
type Releaser interface {
	Release()
}

// ResetFunc runs after every Reset, once all entries are gone.
type ResetFunc func(ctx context.Context) error

type resetListener struct {
	id uint64
	fn ResetFunc
}

// Registry maps types to their single live instance.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]any

	resetMu     sync.Mutex
	listeners   []resetListener // copy-on-write
	nextResetID uint64

	log     *zap.Logger
	metrics *telemetry.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l.Named("registry")
		}
	}
}

// WithMetrics records registrations and resets.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[reflect.Type]any),
		log:     zap.NewNop(),
		metrics: telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len returns the number of occupied slots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Keys returns the occupied slot names, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.entries))
	for t := range r.entries {
		keys = append(keys, keyName(t))
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

func (r *Registry) load(t reflect.Type) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[t]
	return v, ok
}

// store puts instance into slot t. With overwrite false it refuses a slot
// held by a different instance.
func (r *Registry) store(t reflect.Type, instance any, overwrite bool) error {
	r.mu.Lock()
	existing, ok := r.entries[t]
	if ok && !overwrite {
		r.mu.Unlock()
		if sameInstance(existing, instance) {
			return nil
		}
		return relay_err.WrapConflict(keyName(t))
	}
	r.entries[t] = instance
	r.mu.Unlock()

	r.metrics.Registered(context.Background(), keyName(t))
	r.log.Debug("Instance registered",
		zap.String("key", keyName(t)),
		zap.Bool("replaced", ok))
	return nil
}

func (r *Registry) remove(t reflect.Type, match func(existing any) bool) bool {
	r.mu.Lock()
	existing, ok := r.entries[t]
	if !ok || (match != nil && !match(existing)) {
		r.mu.Unlock()
		return false
	}
	delete(r.entries, t)
	r.mu.Unlock()

	r.log.Debug("Instance unregistered", zap.String("key", keyName(t)))
	return true
}

// OnGlobalReset subscribes fn to every future Reset.
func (r *Registry) OnGlobalReset(fn ResetFunc) ResetSubscription {
	if fn == nil {
		return ResetSubscription{}
	}
	r.resetMu.Lock()
	defer r.resetMu.Unlock()

	r.nextResetID++
	next := make([]resetListener, len(r.listeners), len(r.listeners)+1)
	copy(next, r.listeners)
	r.listeners = append(next, resetListener{id: r.nextResetID, fn: fn})
	return ResetSubscription{id: r.nextResetID, r: r}
}

// RemoveResetListener detaches a listener added with OnGlobalReset.
func (r *Registry) RemoveResetListener(s ResetSubscription) bool {
	if s.r != r || s.id == 0 {
		return false
	}
	r.resetMu.Lock()
	defer r.resetMu.Unlock()

	for i, l := range r.listeners {
		if l.id == s.id {
			next := make([]resetListener, 0, len(r.listeners)-1)
			next = append(next, r.listeners[:i]...)
			r.listeners = append(next, r.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Reset clears every slot, releases the dropped instances that implement
// Releaser, then runs all reset listeners in subscription order. Every
// listener runs even if an earlier one fails; the failures are returned
// together.
func (r *Registry) Reset(ctx context.Context) error {
	ctx, span := telemetry.Start(ctx, "registry.reset")
	defer span.End()

	r.mu.Lock()
	cleared := r.entries
	r.entries = make(map[reflect.Type]any)
	r.mu.Unlock()

	types := make([]reflect.Type, 0, len(cleared))
	for t := range cleared {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return keyName(types[i]) < keyName(types[j]) })
	for _, t := range types {
		if rel, ok := cleared[t].(Releaser); ok {
			rel.Release()
		}
	}

	r.resetMu.Lock()
	listeners := r.listeners
	r.resetMu.Unlock()

	span.SetAttributes(
		attribute.Int("registry.cleared", len(cleared)),
		attribute.Int("registry.listeners", len(listeners)),
	)
	r.metrics.RegistryReset(ctx)
	r.log.Info("Registry reset",
		zap.Int("cleared", len(cleared)),
		zap.Int("listeners", len(listeners)))

	var result *multierror.Error
	for i, l := range listeners {
		if err := l.fn(ctx); err != nil {
			r.log.Error("Reset listener failed", zap.Int("listener", i), zap.Error(err))
			result = multierror.Append(result, cerr.Wrapf(err, "reset listener #%d", i))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// ResetSubscription identifies a reset listener. The zero value is invalid.
type ResetSubscription struct {
	id uint64
	r  *Registry
}

// Cancel detaches the listener.
func (s ResetSubscription) Cancel() bool {
	if s.r == nil {
		return false
	}
	return s.r.RemoveResetListener(s)
}
