// Package guard isolates misbehaving channel subscribers behind a circuit
// breaker. A guarded callback still reports its failures, but after enough
// consecutive failures it is skipped until the breaker half-opens again.
package guard

import (
	"sync/atomic"
	"time"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/channel"
	cerr "github.com/cockroachdb/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultMaxFailures = 3
	DefaultOpenTimeout = 5 * time.Second
)

// Settings configure one Guard.
type Settings struct {
	// Name shows up in logs and state-change notifications.
	Name string
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
	// Logger receives state changes. Optional.
	Logger *zap.Logger
	// OnStateChange is called after every breaker transition. Optional.
	OnStateChange func(name string, from, to gobreaker.State)
}

// Guard wraps callbacks with a shared circuit breaker.
type Guard struct {
	breaker *gobreaker.CircuitBreaker
	skipped atomic.Uint64
}

// New builds a Guard. Zero values in s fall back to the package defaults.
func New(s Settings) *Guard {
	if s.MaxFailures == 0 {
		s.MaxFailures = DefaultMaxFailures
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = DefaultOpenTimeout
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("guard")

	maxFailures := s.MaxFailures
	return &Guard{
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        s.Name,
			MaxRequests: 1,
			Timeout:     s.OpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Subscriber breaker changed state",
					zap.String("subscriber", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to))
				if s.OnStateChange != nil {
					s.OnStateChange(name, from, to)
				}
			},
		}),
	}
}

// Wrap returns a callback that runs cb through the breaker. While the breaker
// is open the callback is skipped and reports success.
func (g *Guard) Wrap(cb channel.Callback) channel.Callback {
	return func() error {
		_, err := g.breaker.Execute(func() (interface{}, error) {
			return nil, cb()
		})
		if cerr.Is(err, gobreaker.ErrOpenState) || cerr.Is(err, gobreaker.ErrTooManyRequests) {
			g.skipped.Add(1)
			return nil
		}
		return err
	}
}

// State is the breaker's current state.
func (g *Guard) State() gobreaker.State { return g.breaker.State() }

// Skipped counts calls dropped while the breaker was open.
func (g *Guard) Skipped() uint64 { return g.skipped.Load() }

// Wrap is shorthand for New(s).Wrap(cb).
func Wrap(cb channel.Callback, s Settings) channel.Callback {
	return New(s).Wrap(cb)
}
