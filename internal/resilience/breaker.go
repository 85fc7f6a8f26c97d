// Package resilience provides the circuit breaker that guards calls to the
// voice backend. Translation and generation requests run through a [Breaker]
// so a struggling backend is given room to recover instead of being hammered
// by retries.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] when the breaker has tripped and the
// cooldown has not yet elapsed.
var ErrOpen = errors.New("resilience: circuit open")

// State is the operating mode of a [Breaker].
type State int

const (
	// StateClosed forwards every call.
	StateClosed State = iota

	// StateOpen rejects every call with [ErrOpen] until the cooldown
	// elapses.
	StateOpen

	// StateHalfOpen lets a limited number of probe calls through to decide
	// whether the backend has recovered.
	StateHalfOpen
)

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

// Config holds tuning knobs for a [Breaker]. Zero-value fields are replaced
// with defaults by [New].
type Config struct {
	// Name labels the breaker in log output, e.g. "translate".
	Name string

	// Trip is the number of consecutive failures before the breaker opens.
	// Default: 5.
	Trip int

	// Cooldown is how long the breaker stays open before probing again.
	// Default: 30s.
	Cooldown time.Duration

	// Probes is how many half-open calls must all succeed for the breaker
	// to close. Default: 3.
	Probes int

	// Logger receives state-change events. Defaults to slog.Default().
	Logger *slog.Logger
}

// Breaker is a three-state circuit breaker (closed, open, half-open).
// It is safe for concurrent use.
type Breaker struct {
	name     string
	trip     int
	cooldown time.Duration
	probes   int
	log      *slog.Logger

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probeCalls  int
	probeFails  int
}

// New creates a [Breaker] from cfg.
func New(cfg Config) *Breaker {
	if cfg.Trip <= 0 {
		cfg.Trip = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Breaker{
		name:     cfg.Name,
		trip:     cfg.Trip,
		cooldown: cfg.Cooldown,
		probes:   cfg.Probes,
		log:      cfg.Logger,
		state:    StateClosed,
	}
}

// Do runs fn if the breaker allows it. While open it returns [ErrOpen]
// without calling fn; in the half-open state only the probe budget gets
// through.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailure) < b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.probeCalls = 0
		b.probeFails = 0
		b.log.Info("circuit half-open, probing backend", "breaker", b.name)

	case StateHalfOpen:
		if b.probeCalls >= b.probes {
			b.mu.Unlock()
			return ErrOpen
		}
	}

	probing := b.state == StateHalfOpen
	if probing {
		b.probeCalls++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure(probing)
	} else {
		b.onSuccess(probing)
	}
	return err
}

// onFailure must be called with b.mu held.
func (b *Breaker) onFailure(probing bool) {
	b.lastFailure = time.Now()

	if probing {
		b.probeFails++
		// One failed probe is enough to re-open.
		b.state = StateOpen
		b.failures = b.trip
		b.log.Warn("circuit re-opened after failed probe", "breaker", b.name)
		return
	}

	b.failures++
	if b.failures >= b.trip {
		b.state = StateOpen
		b.log.Warn("circuit opened",
			"breaker", b.name,
			"consecutive_failures", b.failures)
	}
}

// onSuccess must be called with b.mu held.
func (b *Breaker) onSuccess(probing bool) {
	if probing {
		if b.probeCalls-b.probeFails >= b.probes {
			b.state = StateClosed
			b.failures = 0
			b.probeCalls = 0
			b.probeFails = 0
			b.log.Info("circuit closed, backend recovered", "breaker", b.name)
		}
		return
	}
	b.failures = 0
}

// State returns the breaker's state. An open breaker whose cooldown has
// elapsed reports half-open; the transition itself happens on the next Do.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && time.Since(b.lastFailure) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Reset forces the breaker back to closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.probeCalls = 0
	b.probeFails = 0
	b.log.Info("circuit manually reset", "breaker", b.name)
}
