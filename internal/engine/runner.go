package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Step is one applied event and the state it produced.
type Step struct {
	Seq   int64
	Event ir.Event
	State ir.State
}

// Sink consumes steps in order. Renderers, audio players and the session
// recorder are sinks. A sink error is logged and does not stop the game.
type Sink interface {
	Consume(ctx context.Context, step Step) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, step Step) error

// Consume calls f.
func (f SinkFunc) Consume(ctx context.Context, step Step) error {
	return f(ctx, step)
}

// Enqueuer accepts events. Sources deliver into one.
type Enqueuer interface {
	Enqueue(ev ir.Event) bool
}

// Runner is the single-writer game loop.
//
// Thread-safety model:
//   - Enqueue(), Stop(), State(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Runner struct {
	rules Rules
	clock *Clock
	queue *eventQueue
	sinks []Sink

	stopWhenDrained bool
	logger          *slog.Logger

	mu    sync.RWMutex
	state ir.State
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSinks appends sinks; they are called in the order given.
func WithSinks(sinks ...Sink) RunnerOption {
	return func(r *Runner) {
		r.sinks = append(r.sinks, sinks...)
	}
}

// WithInitialState starts the runner from s instead of ir.InitialState().
func WithInitialState(s ir.State) RunnerOption {
	return func(r *Runner) {
		r.state = s
	}
}

// WithClock sets the step sequence clock. Used to resume numbering.
func WithClock(c *Clock) RunnerOption {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithStopWhenDrained makes Run return once the song has ended and the
// track is empty.
func WithStopWhenDrained(stop bool) RunnerOption {
	return func(r *Runner) {
		r.stopWhenDrained = stop
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner for the given rules.
func NewRunner(rules Rules, opts ...RunnerOption) *Runner {
	r := &Runner{
		rules:  rules,
		clock:  NewClock(),
		queue:  newEventQueue(),
		state:  ir.InitialState(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enqueue submits an event. Returns false once the runner has stopped.
func (r *Runner) Enqueue(ev ir.Event) bool {
	if ev == nil {
		return false
	}
	return r.queue.Enqueue(ev)
}

// Stop closes the queue. Run drains what is already queued, then returns.
func (r *Runner) Stop() {
	r.queue.Close()
}

// State returns the most recent state.
func (r *Runner) State() ir.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Steps returns how many events have been applied.
func (r *Runner) Steps() int64 {
	return r.clock.Current()
}

// Run applies queued events until the context is cancelled, Stop is
// called, or (with WithStopWhenDrained) the game drains.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("runner starting", "sinks", len(r.sinks), "stop_when_drained", r.stopWhenDrained)

	for {
		ev, ok := r.queue.TryDequeue()
		if ok {
			step := r.apply(ev)
			r.emit(ctx, step)
			if r.stopWhenDrained && step.State.Drained() {
				r.logger.Info("runner stopping: game drained",
					"steps", step.Seq,
					"score", step.State.Score,
					"misses", step.State.MissCount,
				)
				r.queue.Close()
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			r.logger.Info("runner stopping: context cancelled")
			r.queue.Close()
			return ctx.Err()

		case <-r.queue.Wait():
			// A closed queue makes this fire immediately.
			if r.queue.Len() == 0 && r.queue.Closed() {
				r.logger.Info("runner stopping: queue closed")
				return nil
			}
		}
	}
}

func (r *Runner) apply(ev ir.Event) Step {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = Apply(r.rules, r.state, ev)
	step := Step{Seq: r.clock.Next(), Event: ev, State: r.state}

	r.logger.Debug("event applied",
		"seq", step.Seq,
		"kind", ev.Kind(),
		"falling", len(r.state.FallingNotes),
		"score", r.state.Score,
		"combo", r.state.Combo,
	)
	return step
}

func (r *Runner) emit(ctx context.Context, step Step) {
	for _, sink := range r.sinks {
		if err := sink.Consume(ctx, step); err != nil {
			r.logger.Error("sink failed",
				"seq", step.Seq,
				"kind", step.Event.Kind(),
				"error", err,
			)
		}
	}
}
