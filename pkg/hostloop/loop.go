// Package hostloop is a reference host runtime. It plays the part of an
// engine main loop: once per rendered frame it calls Update then LateUpdate
// on the current frame target, then FixedUpdate as many times as the
// fixed-timestep accumulator allows.
package hostloop

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/relay_err"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FrameTarget receives the host's per-frame callbacks.
type FrameTarget interface {
	Update(ctx context.Context) error
	LateUpdate(ctx context.Context) error
	FixedUpdate(ctx context.Context) error
}

// Source returns the target to drive for the coming frame. It is consulted
// every frame so a target replaced mid-run is picked up. ok=false skips the
// frame's callbacks.
type Source func() (target FrameTarget, ok bool)

// Static always drives t.
func Static(t FrameTarget) Source {
	return func() (FrameTarget, bool) { return t, t != nil }
}

// Phase names one of the per-frame callbacks.
type Phase string

const (
	PhaseUpdate      Phase = "update"
	PhaseLateUpdate  Phase = "late_update"
	PhaseFixedUpdate Phase = "fixed_update"
)

// Config controls frame pacing and the fixed timestep.
type Config struct {
	// FPS caps the rendered frame rate. Zero runs unpaced.
	FPS float64
	// FixedStep is the simulated time consumed by one FixedUpdate.
	FixedStep time.Duration
	// MaxCatchUp bounds FixedUpdate calls per frame.
	MaxCatchUp int
	// Frames stops the loop after this many frames. Zero runs until ctx is done.
	Frames int
}

// DefaultConfig is 60 frames per second with a 50 Hz fixed step.
func DefaultConfig() Config {
	return Config{
		FPS:        60,
		FixedStep:  20 * time.Millisecond,
		MaxCatchUp: 5,
	}
}

// Stats summarises a run.
type Stats struct {
	Frames        int           `json:"frames" yaml:"frames"`
	Updates       int           `json:"updates" yaml:"updates"`
	LateUpdates   int           `json:"late_updates" yaml:"late_updates"`
	FixedUpdates  int           `json:"fixed_updates" yaml:"fixed_updates"`
	DroppedSteps  int           `json:"dropped_steps" yaml:"dropped_steps"`
	SkippedFrames int           `json:"skipped_frames" yaml:"skipped_frames"`
	Elapsed       time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Loop drives a Source frame by frame.
type Loop struct {
	cfg     Config
	source  Source
	now     func() time.Time
	limiter *rate.Limiter
	log     *zap.Logger
	onFrame func(ctx context.Context, frame int) error
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log.Named("hostloop")
		}
	}
}

// WithFrameHook runs fn after every completed frame, before the next one is
// paced. An error from fn stops the run.
func WithFrameHook(fn func(ctx context.Context, frame int) error) Option {
	return func(l *Loop) { l.onFrame = fn }
}

// New validates cfg and returns a Loop over source.
func New(cfg Config, source Source, opts ...Option) (*Loop, error) {
	if source == nil {
		return nil, relay_err.WrapConfigError(cerr.New("hostloop: nil source"))
	}
	if cfg.FixedStep <= 0 {
		return nil, relay_err.WrapConfigError(cerr.Newf("hostloop: fixed step must be positive, got %s", cfg.FixedStep))
	}
	if cfg.MaxCatchUp < 1 {
		return nil, relay_err.WrapConfigError(cerr.Newf("hostloop: max catch-up must be at least 1, got %d", cfg.MaxCatchUp))
	}
	if cfg.FPS < 0 || cfg.Frames < 0 {
		return nil, relay_err.WrapConfigError(cerr.New("hostloop: fps and frames must not be negative"))
	}

	l := &Loop{
		cfg:    cfg,
		source: source,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	if cfg.FPS > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(cfg.FPS), 1)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run drives frames until the frame budget is spent or ctx is done. A
// callback error aborts the rest of its frame and is returned wrapped with
// the frame number and phase. Cancellation is checked between frames and
// ends the run without error.
func (l *Loop) Run(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		acc   time.Duration
	)
	start := l.now()
	last := start
	maxDelta := l.cfg.FixedStep * time.Duration(l.cfg.MaxCatchUp)

	l.log.Info("Host loop starting",
		zap.Float64("fps", l.cfg.FPS),
		zap.Duration("fixed_step", l.cfg.FixedStep),
		zap.Int("max_catch_up", l.cfg.MaxCatchUp),
		zap.Int("frames", l.cfg.Frames))

	for l.cfg.Frames == 0 || stats.Frames < l.cfg.Frames {
		if ctx.Err() != nil {
			break
		}
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					break
				}
				return l.finish(stats, start), cerr.Wrap(err, "pace frame")
			}
		}

		now := l.now()
		delta := now.Sub(last)
		last = now
		if delta > maxDelta {
			stats.DroppedSteps += int((delta - maxDelta) / l.cfg.FixedStep)
			delta = maxDelta
		}
		acc += delta
		if acc > maxDelta {
			acc = maxDelta
		}

		frame := stats.Frames + 1
		steps, err := l.frame(ctx, frame, &acc, &stats)
		if err != nil {
			l.log.Error("Frame aborted", zap.Int("frame", frame), zap.Error(err))
			return l.finish(stats, start), err
		}
		stats.Frames = frame
		l.log.Debug("Frame complete", zap.Int("frame", frame), zap.Int("fixed_steps", steps))

		if l.onFrame != nil {
			if err := l.onFrame(ctx, frame); err != nil {
				return l.finish(stats, start), cerr.Wrapf(err, "frame %d hook", frame)
			}
		}
	}

	stats = l.finish(stats, start)
	l.log.Info("Host loop stopped",
		zap.Int("frames", stats.Frames),
		zap.Int("fixed_updates", stats.FixedUpdates),
		zap.Duration("elapsed", stats.Elapsed))
	return stats, nil
}

func (l *Loop) frame(ctx context.Context, frame int, acc *time.Duration, stats *Stats) (int, error) {
	target, ok := l.source()
	if !ok {
		stats.SkippedFrames++
		return 0, nil
	}

	if err := target.Update(ctx); err != nil {
		return 0, wrapPhase(err, frame, PhaseUpdate)
	}
	stats.Updates++

	if err := target.LateUpdate(ctx); err != nil {
		return 0, wrapPhase(err, frame, PhaseLateUpdate)
	}
	stats.LateUpdates++

	steps := 0
	for *acc >= l.cfg.FixedStep && steps < l.cfg.MaxCatchUp {
		if err := target.FixedUpdate(ctx); err != nil {
			return steps, wrapPhase(err, frame, PhaseFixedUpdate)
		}
		*acc -= l.cfg.FixedStep
		steps++
		stats.FixedUpdates++
	}
	return steps, nil
}

func (l *Loop) finish(stats Stats, start time.Time) Stats {
	stats.Elapsed = l.now().Sub(start)
	return stats
}

func wrapPhase(err error, frame int, phase Phase) error {
	return cerr.Wrapf(err, "frame %d %s", frame, phase)
}
