package reactive

import (
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Stats is a snapshot of a Runtime's cumulative counters. All counters are
// monotonically increasing and cheap enough to maintain unconditionally;
// the metrics package exposes them as Prometheus counters.
type Stats struct {
	// CellsCreated is the number of cells created, including the internal
	// cells of computed values.
	CellsCreated uint64

	// EffectsCreated is the number of effects created.
	EffectsCreated uint64

	// Writes is the number of cell writes that changed a value and
	// triggered a notification cascade.
	Writes uint64

	// EffectRuns is the number of effect executions, initial runs included.
	EffectRuns uint64

	// SkippedNotifications counts notifications dropped by the re-entrancy
	// guard because the target effect was mid-execution.
	SkippedNotifications uint64
}

// counters is the live backing for Stats. The fields are atomic so a metrics
// scrape on another goroutine can read them while the runtime's goroutine is
// mid-cascade; everything else on the runtime remains single-goroutine.
type counters struct {
	cellsCreated   atomic.Uint64
	effectsCreated atomic.Uint64
	writes         atomic.Uint64
	effectRuns     atomic.Uint64
	skipped        atomic.Uint64
}

// Runtime owns the reactive execution state: the stack of currently running
// effects, diagnostics, and counters. Cells, effects and computed values are
// always created against a Runtime; primitives from different runtimes do
// not interact.
//
// A Runtime is single-threaded by contract. All reads and writes against its
// primitives must happen on one goroutine; the execution-stack discipline
// relies on it and no internal locking is performed. Only the Stats counters
// may be read from other goroutines.
type Runtime struct {
	logger *slog.Logger
	tracer trace.Tracer

	// stack is the active-execution stack. The innermost currently running
	// effect is on top; a nil entry suppresses tracking (Untracked).
	stack []*Effect

	stats counters
	ids   uint64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for runtime diagnostics, such as skipped
// re-entrant notifications. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithTracing enables OpenTelemetry spans around write cascades and effect
// runs, using the tracer with the given name from the global provider.
func WithTracing(name string) Option {
	return func(rt *Runtime) {
		rt.tracer = otel.Tracer(name)
	}
}

// NewRuntime creates an empty reactive runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Logger returns the runtime's diagnostics logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Stats returns a snapshot of the runtime's counters. Safe to call from any
// goroutine.
func (rt *Runtime) Stats() Stats {
	return Stats{
		CellsCreated:         rt.stats.cellsCreated.Load(),
		EffectsCreated:       rt.stats.effectsCreated.Load(),
		Writes:               rt.stats.writes.Load(),
		EffectRuns:           rt.stats.effectRuns.Load(),
		SkippedNotifications: rt.stats.skipped.Load(),
	}
}

// Untracked runs fn with dependency tracking suppressed: cell reads inside
// fn do not subscribe the currently running effect. For a single read,
// Cell.Peek is clearer.
func (rt *Runtime) Untracked(fn func()) {
	rt.push(nil)
	defer rt.pop()
	fn()
}

// current returns the innermost currently running effect, or nil when no
// tracked execution is active.
func (rt *Runtime) current() *Effect {
	if len(rt.stack) == 0 {
		return nil
	}
	return rt.stack[len(rt.stack)-1]
}

func (rt *Runtime) push(e *Effect) {
	rt.stack = append(rt.stack, e)
}

func (rt *Runtime) pop() {
	rt.stack = rt.stack[:len(rt.stack)-1]
}

// nextID returns the next unique ID for a primitive of this runtime.
func (rt *Runtime) nextID() uint64 {
	rt.ids++
	return rt.ids
}
