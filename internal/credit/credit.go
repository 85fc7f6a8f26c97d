// Package credit tracks the account's prepaid balance on the client side.
//
// The ledger is advisory: the backend is the authority and debits credits
// itself during generation. The local balance exists to gate obviously
// unaffordable batches before any network traffic and to keep the UI honest.
// After every batch the ledger reconciles against the server's number, which
// also absorbs concurrent spending from other sessions.
package credit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sajina/voicecloneai/internal/observe"
	"github.com/sajina/voicecloneai/pkg/provider"
)

// DefaultCostPerUnit is the tariff for one voice unit in a batch.
const DefaultCostPerUnit = 5

// InsufficientCreditsError reports a failed affordability check. Need and
// Have let the caller build a precise top-up prompt.
type InsufficientCreditsError struct {
	Need int64
	Have int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("credit: need %d credits, have %d", e.Need, e.Have)
}

// ReconciliationError marks a failed balance refresh. The cached balance
// stays stale; callers treat this as non-fatal.
type ReconciliationError struct {
	Err error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("credit: reconcile balance: %v", e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// ---- options ----

// Option is a functional option for configuring a Ledger.
type Option func(*Ledger)

// WithCostPerUnit overrides the per-unit tariff.
func WithCostPerUnit(cost int64) Option {
	return func(l *Ledger) {
		if cost > 0 {
			l.costPerUnit = cost
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		l.log = log
	}
}

// WithMetrics attaches metric instruments for balance and reconcile
// outcomes.
func WithMetrics(m *observe.Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// ---- Ledger ----

// Ledger is the client-side credit balance. Safe for concurrent use.
type Ledger struct {
	profiles    provider.ProfileService
	costPerUnit int64
	log         *slog.Logger
	metrics     *observe.Metrics

	mu      sync.Mutex
	balance int64
}

// NewLedger creates a Ledger that reconciles via profiles.
func NewLedger(profiles provider.ProfileService, opts ...Option) *Ledger {
	l := &Ledger{
		profiles:    profiles,
		costPerUnit: DefaultCostPerUnit,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Balance returns the cached balance.
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Set replaces the cached balance, e.g. after login.
func (l *Ledger) Set(balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = balance
}

// Cost returns the credit cost of a batch of n units.
func (l *Ledger) Cost(n int) int64 {
	return int64(n) * l.costPerUnit
}

// CanAfford checks whether the cached balance covers a batch of n units.
// It returns an *InsufficientCreditsError when it does not. The check is
// advisory; the backend re-validates on every generation.
func (l *Ledger) CanAfford(n int) error {
	need := l.Cost(n)

	l.mu.Lock()
	have := l.balance
	l.mu.Unlock()

	if have < need {
		return &InsufficientCreditsError{Need: need, Have: have}
	}
	return nil
}

// Reconcile refreshes the cached balance from the server. It is idempotent:
// repeated calls converge on the server's number regardless of what the
// cache held. On failure the cache is left untouched and a
// *ReconciliationError is returned.
func (l *Ledger) Reconcile(ctx context.Context) error {
	profile, err := l.profiles.Profile(ctx)
	if err != nil {
		l.log.Warn("balance reconcile failed, keeping cached value",
			"cached_balance", l.Balance(),
			"error", err)
		if l.metrics != nil {
			l.metrics.ReconcileFailures.Add(ctx, 1)
		}
		return &ReconciliationError{Err: err}
	}

	l.mu.Lock()
	old := l.balance
	l.balance = profile.Credits
	l.mu.Unlock()

	if old != profile.Credits {
		l.log.Debug("balance reconciled",
			"old", old,
			"new", profile.Credits)
	}
	if l.metrics != nil {
		l.metrics.SetCreditBalance(ctx, old, profile.Credits)
	}
	return nil
}
