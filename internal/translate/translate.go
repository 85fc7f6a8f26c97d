// Package translate runs text through the backend's translation service
// before speech generation. It enforces the no-op translation rule (equal
// source and target is rejected before any network call) and shields the
// backend behind a circuit breaker.
//
// A translation that succeeds with a warning is a success; the warning rides
// along on the outcome for the caller to surface. A failed translation is a
// hard error here, but callers are expected to degrade gracefully by keeping
// the untranslated text.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sajina/voicecloneai/internal/langdetect"
	"github.com/sajina/voicecloneai/internal/language"
	"github.com/sajina/voicecloneai/internal/observe"
	"github.com/sajina/voicecloneai/internal/resilience"
	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/types"
)

// ErrSameLanguage is returned when the explicit source language equals the
// target. The backend would charge a round-trip for an identity mapping.
var ErrSameLanguage = errors.New("translate: source and target language are identical")

// ErrUnsupportedTarget is returned for target languages outside the
// supported table.
var ErrUnsupportedTarget = errors.New("translate: unsupported target language")

// Error wraps a translation failure with the language pair it occurred on.
type Error struct {
	Source string
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("translate: %s to %s: %v", e.Source, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ---- options ----

// Option is a functional option for configuring a Pipeline.
type Option func(*Pipeline)

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(p *Pipeline) {
		p.breaker = b
	}
}

// WithDetector attaches a debounced detector whose latest guess is used as
// the effective source language when the caller passes "auto".
func WithDetector(d *langdetect.Debounced) Option {
	return func(p *Pipeline) {
		p.detector = d
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithMetrics attaches metric instruments for translation outcomes.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// ---- Pipeline ----

// Pipeline translates text ahead of generation. Safe for concurrent use.
type Pipeline struct {
	svc      provider.TranslationService
	breaker  *resilience.Breaker
	detector *langdetect.Debounced
	log      *slog.Logger
	metrics  *observe.Metrics
}

// NewPipeline creates a Pipeline backed by svc.
func NewPipeline(svc provider.TranslationService, opts ...Option) *Pipeline {
	p := &Pipeline{
		svc: svc,
		log: slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.breaker == nil {
		p.breaker = resilience.New(resilience.Config{Name: "translate"})
	}
	return p
}

// Translate converts text into target. source may be a concrete language
// code or [language.Auto]; in auto mode the effective source is the
// detector's latest guess when one is attached and has a guess, otherwise
// the literal "auto" is sent for the backend to resolve.
//
// An explicit source equal to the target fails fast with [ErrSameLanguage]
// before any backend call. Backend failures and open-breaker rejections are
// returned as *[Error].
func (p *Pipeline) Translate(ctx context.Context, text, source, target string) (types.TranslationOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return types.TranslationOutcome{}, &Error{Source: source, Target: target,
			Err: errors.New("empty text")}
	}
	if target == "" || target == language.Unrestricted || !language.IsSupported(target) {
		return types.TranslationOutcome{}, ErrUnsupportedTarget
	}

	effective := p.effectiveSource(source)
	if effective != language.Auto && effective == target {
		return types.TranslationOutcome{}, ErrSameLanguage
	}

	var out types.TranslationOutcome
	start := time.Now()
	err := p.breaker.Do(func() error {
		var svcErr error
		out, svcErr = p.svc.Translate(ctx, text, effective, target)
		return svcErr
	})
	if p.metrics != nil {
		p.metrics.TranslationDuration.Record(ctx, time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		p.metrics.RecordTranslation(ctx, target, status)
	}
	if err != nil {
		return types.TranslationOutcome{}, &Error{Source: effective, Target: target, Err: err}
	}

	if out.Warning != "" {
		p.log.Warn("translation degraded",
			"source", effective,
			"target", target,
			"warning", out.Warning)
	}
	if out.TargetLanguage == "" {
		out.TargetLanguage = target
	}
	return out, nil
}

// effectiveSource resolves "auto" against the detector's latest guess.
func (p *Pipeline) effectiveSource(source string) string {
	if source != "" && source != language.Auto {
		return source
	}
	if p.detector != nil {
		if guess, ok := p.detector.Latest(); ok {
			return guess.Language
		}
	}
	return language.Auto
}
