package breaker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// State is the circuit breaker state for a single dependency.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds the tunables of the breaker state machine.
type Config struct {
	// WindowSize is the number of recent call outcomes the failure ratio is
	// computed over.
	WindowSize int
	// FailureRatio opens the circuit once failures/WindowSize reaches it.
	FailureRatio float64
	// Cooldown is how long an open circuit rejects calls before admitting a
	// single trial call.
	Cooldown time.Duration
}

// DefaultConfig returns the default breaker tunables.
func DefaultConfig() Config {
	return Config{
		WindowSize:   10,
		FailureRatio: 0.5,
		Cooldown:     10 * time.Second,
	}
}

// ConfigFromViper reads the breaker tunables from the application config,
// falling back to the defaults for unset keys.
func ConfigFromViper() Config {
	cfg := DefaultConfig()

	if v := viper.GetInt("breaker.window_size"); v > 0 {
		cfg.WindowSize = v
	}
	if v := viper.GetFloat64("breaker.failure_ratio"); v > 0 {
		cfg.FailureRatio = v
	}
	if v := viper.GetInt("breaker.cooldown_seconds"); v > 0 {
		cfg.Cooldown = time.Duration(v) * time.Second
	}

	return cfg
}

// Registry holds one breaker per remote dependency key. It is shared
// process-wide and safe for concurrent use: every TryAcquire, RecordSuccess
// and RecordFailure is a single consistent read-modify-write under the mutex.
type Registry struct {
	mu       sync.Mutex
	cfg      Config
	now      func() time.Time
	breakers map[string]*breakerState
}

type breakerState struct {
	state         State
	window        []bool // ring of recent outcomes, true = failure
	next          int
	count         int
	openedAt      time.Time
	probeInFlight bool
}

// option is a function that configures the Registry.
type option func(*Registry)

// WithClock overrides the time source, used by tests to step the cool-down.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a breaker registry with the given tunables.
func NewRegistry(cfg Config, opts ...option) *Registry {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = DefaultConfig().FailureRatio
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultConfig().Cooldown
	}

	r := &Registry{
		cfg:      cfg,
		now:      time.Now,
		breakers: make(map[string]*breakerState),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// TryAcquire reports whether a call to the dependency may be attempted right
// now. It never blocks: the decision is a state check plus a timestamp
// comparison. A rejected acquire means the caller should use its fallback
// without touching the network.
func (r *Registry) TryAcquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.get(key)
	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if r.now().Sub(b.openedAt) < r.cfg.Cooldown {
			return false
		}
		// Cool-down elapsed, admit a single trial call.
		b.state = StateHalfOpen
		b.probeInFlight = true
		slog.Info("circuit breaker half-open", "dependency", key)

		return true
	case StateHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true

		return true
	default:
		return true
	}
}

// RecordSuccess reports a successful call to the dependency. In half-open it
// closes the circuit and clears the failure history.
func (r *Registry) RecordSuccess(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.get(key)
	switch b.state {
	case StateHalfOpen:
		b.state = StateClosed
		b.probeInFlight = false
		r.resetWindow(b)
		slog.Info("circuit breaker closed", "dependency", key)
	case StateClosed:
		r.record(b, false)
	case StateOpen:
		// A call that started before the circuit opened; its outcome no
		// longer matters.
	}
}

// RecordFailure reports a failed or timed-out call to the dependency. In
// half-open it reopens the circuit and restarts the cool-down clock; in
// closed it opens the circuit once the window's failure ratio reaches the
// threshold.
func (r *Registry) RecordFailure(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.get(key)
	switch b.state {
	case StateHalfOpen:
		r.open(b, key)
	case StateClosed:
		r.record(b, true)
		failures := 0
		for i := 0; i < b.count; i++ {
			if b.window[i] {
				failures++
			}
		}
		if float64(failures)/float64(r.cfg.WindowSize) >= r.cfg.FailureRatio {
			r.open(b, key)
		}
	case StateOpen:
	}
}

// CurrentState returns the state of the breaker for the given key.
func (r *Registry) CurrentState(key string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.get(key).state
}

func (r *Registry) get(key string) *breakerState {
	b, ok := r.breakers[key]
	if !ok {
		b = &breakerState{
			state:  StateClosed,
			window: make([]bool, r.cfg.WindowSize),
		}
		r.breakers[key] = b
	}

	return b
}

func (r *Registry) open(b *breakerState, key string) {
	b.state = StateOpen
	b.openedAt = r.now()
	b.probeInFlight = false
	r.resetWindow(b)
	slog.Warn("circuit breaker opened", "dependency", key, "cooldown", r.cfg.Cooldown)
}

func (r *Registry) record(b *breakerState, failure bool) {
	b.window[b.next] = failure
	b.next = (b.next + 1) % r.cfg.WindowSize
	if b.count < r.cfg.WindowSize {
		b.count++
	}
}

func (r *Registry) resetWindow(b *breakerState) {
	for i := range b.window {
		b.window[i] = false
	}
	b.next = 0
	b.count = 0
}
