// cmd/run/host.go

package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/hostloop"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/managedupdate"
	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay"
	"go.uber.org/zap"
)

// host stands in for the engine: it owns relay objects and destroys the ones
// that ask to be disposed.
type host struct {
	log      *zap.Logger
	disposed int
	resets   int
}

type phaseCounts struct {
	update, late, fixed int
}

func newHost(log *zap.Logger) *host {
	return &host{log: log.Named("host")}
}

func (h *host) dispose(r *relay.Relay) {
	h.disposed++
	h.log.Debug("Disposing relay", zap.String("relay_id", r.InstanceID()))
	r.Destroy(context.Background())
}

// subscribe attaches counting subscribers to every channel.
func (h *host) subscribe(d *managedupdate.Dispatcher) *phaseCounts {
	c := &phaseCounts{}
	d.OnUpdate().SubscribeFunc(func() { c.update++ })
	d.OnLateUpdate().SubscribeFunc(func() { c.late++ })
	d.OnFixedUpdate().SubscribeFunc(func() { c.fixed++ })
	return c
}

// source resolves the registered relay every frame so a replacement spawned
// by a reset is driven from the next frame on.
func (h *host) source(ctx context.Context, d *managedupdate.Dispatcher) hostloop.Source {
	return func() (hostloop.FrameTarget, bool) {
		r := d.Relay(ctx)
		if r == nil {
			return nil, false
		}
		return r, true
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
