// Package testutil provides fixtures for frame-dispatch scenario tests: a
// fresh registry and dispatcher wired to an observed logger, a call log, and
// a step runner that reports which step of a scenario failed.
package testutil

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/managedupdate"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/registry"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Harness is one isolated dispatcher world.
type Harness struct {
	t          *testing.T
	Ctx        context.Context
	Registry   *registry.Registry
	Dispatcher *managedupdate.Dispatcher
	Calls      *CallLog
	Log        *zap.Logger
	Logs       *observer.ObservedLogs

	// Disposed collects relays that asked the host to dispose of them.
	Disposed []*relay.Relay
}

// NewHarness builds a Harness whose dispatcher has not been touched yet.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	h := &Harness{
		t:     t,
		Ctx:   context.Background(),
		Calls: &CallLog{},
		Log:   log,
		Logs:  logs,
	}
	h.Registry = registry.New(registry.WithLogger(log))
	h.Dispatcher = managedupdate.New(h.Registry,
		managedupdate.WithLogger(log),
		managedupdate.WithRelayOptions(relay.WithDisposer(func(r *relay.Relay) {
			h.Disposed = append(h.Disposed, r)
		})))
	t.Cleanup(h.Dispatcher.Close)
	return h
}

// Active returns the registered relay, failing the test if there is none.
func (h *Harness) Active() *relay.Relay {
	h.t.Helper()
	r := h.Dispatcher.Relay(h.Ctx)
	if r == nil {
		h.t.Fatal("no relay registered")
	}
	return r
}

// Spawn constructs and enables an extra host-side relay.
func (h *Harness) Spawn() *relay.Relay {
	h.t.Helper()
	r := h.Dispatcher.NewRelay()
	if err := r.Enable(h.Ctx); err != nil {
		h.t.Fatalf("enable relay: %v", err)
	}
	return r
}

// Frame drives one Update, LateUpdate and FixedUpdate pass on every target.
func (h *Harness) Frame(targets ...*relay.Relay) error {
	for _, r := range targets {
		if err := r.Update(h.Ctx); err != nil {
			return err
		}
	}
	for _, r := range targets {
		if err := r.LateUpdate(h.Ctx); err != nil {
			return err
		}
	}
	for _, r := range targets {
		if err := r.FixedUpdate(h.Ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reset performs a global registry reset.
func (h *Harness) Reset() error {
	return h.Registry.Reset(h.Ctx)
}
