// Package studio is the generation workbench: it validates a request, gates
// it on the credit balance, optionally translates the text, fans the batch
// out across every selected voice, and folds the per-voice outcomes into a
// single report.
//
// A batch is all-or-nothing only at admission time. Once it is running, each
// voice succeeds or fails on its own; partial success is a normal outcome,
// not an error. Whatever happens, the credit ledger is reconciled against
// the server afterwards, because the backend debits autonomously.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sajina/voicecloneai/internal/catalog"
	"github.com/sajina/voicecloneai/internal/credit"
	"github.com/sajina/voicecloneai/internal/language"
	"github.com/sajina/voicecloneai/internal/observe"
	"github.com/sajina/voicecloneai/internal/translate"
	"github.com/sajina/voicecloneai/pkg/provider"
	"github.com/sajina/voicecloneai/pkg/types"
)

// MaxTextLen is the maximum request text length in code points.
const MaxTextLen = 5000

// defaultMaxParallel bounds concurrent generation requests per batch.
const defaultMaxParallel = 4

// ErrBusy is returned when a batch is started while another is in flight.
var ErrBusy = errors.New("studio: a generation batch is already running")

// ValidationError reports a request rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "studio: invalid request: " + e.Reason
}

// UnitError wraps a single voice's generation failure inside a batch.
type UnitError struct {
	Voice types.VoiceIdentity
	Err   error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("studio: generate with voice %s (%s): %v", e.Voice.Name, e.Voice.ID, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// UnitResult is the outcome for one voice in a batch. Exactly one of Result
// and Err is meaningful.
type UnitResult struct {
	Voice  types.VoiceIdentity
	Result types.GenerationResult
	Err    error
}

// BatchReport summarises one batch. Units are in issue order (the visible
// order of the selected voices), regardless of completion order.
type BatchReport struct {
	// ID identifies the batch in logs.
	ID string

	// Text is the text actually synthesised, after any translation.
	Text string

	// Translation is set when a translation step ran and succeeded.
	Translation *types.TranslationOutcome

	// Warnings carries non-fatal degradations: translation fallbacks,
	// failed reconciliation.
	Warnings []string

	Units     []UnitResult
	Succeeded int
	Failed    int
}

// ---- options ----

// Option is a functional option for configuring an Orchestrator.
type Option func(*Orchestrator)

// WithTranslation attaches the translation pipeline. Without it batches skip
// the translation step entirely.
func WithTranslation(p *translate.Pipeline) Option {
	return func(o *Orchestrator) {
		o.pipeline = p
	}
}

// WithMaxParallel bounds concurrent generation requests in one batch.
func WithMaxParallel(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxParallel = n
		}
	}
}

// WithMaxTextLen overrides the per-request input limit.
func WithMaxTextLen(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTextLen = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithMetrics attaches metric instruments for batch and unit outcomes.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// ---- Orchestrator ----

// Orchestrator runs generation batches. Safe for concurrent use; concurrent
// Generate calls beyond the first are rejected with [ErrBusy].
type Orchestrator struct {
	speech      provider.SpeechService
	catalog     *catalog.Catalog
	ledger      *credit.Ledger
	history     *History
	pipeline    *translate.Pipeline
	maxParallel int
	maxTextLen  int
	log         *slog.Logger
	metrics     *observe.Metrics

	busy chan struct{} // 1-slot semaphore guarding Generate
}

// New creates an Orchestrator.
func New(speech provider.SpeechService, cat *catalog.Catalog, ledger *credit.Ledger, history *History, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		speech:      speech,
		catalog:     cat,
		ledger:      ledger,
		history:     history,
		maxParallel: defaultMaxParallel,
		maxTextLen:  MaxTextLen,
		log:         slog.Default(),
		busy:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs one batch over the current selection. It returns an error
// only when the batch is rejected outright: another batch in flight, a
// validation failure, or not enough credits. Once admitted it always
// returns a report; per-voice failures live in the report's units.
func (o *Orchestrator) Generate(ctx context.Context, text string) (*BatchReport, error) {
	select {
	case o.busy <- struct{}{}:
	default:
		return nil, ErrBusy
	}
	defer func() { <-o.busy }()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ValidationError{Reason: "text is empty"}
	}
	if n := utf8.RuneCountInString(trimmed); n > o.maxTextLen {
		return nil, &ValidationError{Reason: fmt.Sprintf("text is %d characters, limit is %d", n, o.maxTextLen)}
	}

	selected := o.catalog.Selected()
	if len(selected) == 0 {
		return nil, &ValidationError{Reason: "no voices selected"}
	}

	if err := o.ledger.CanAfford(len(selected)); err != nil {
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.ActiveBatches.Add(ctx, 1)
		defer o.metrics.ActiveBatches.Add(ctx, -1)
		start := time.Now()
		defer func() {
			o.metrics.BatchDuration.Record(ctx, time.Since(start).Seconds())
		}()
	}

	report := &BatchReport{
		ID:   uuid.NewString(),
		Text: trimmed,
	}
	o.log.Info("generation batch admitted",
		"batch_id", report.ID,
		"voices", len(selected),
		"text_len", utf8.RuneCountInString(trimmed))

	o.translateStep(ctx, report)
	o.fanOut(ctx, report, selected)

	// The backend debited on its own; pull the authoritative balance even
	// when every unit failed.
	if err := o.ledger.Reconcile(ctx); err != nil {
		report.Warnings = append(report.Warnings, "credit balance may be out of date")
	}

	o.log.Info("generation batch finished",
		"batch_id", report.ID,
		"succeeded", report.Succeeded,
		"failed", report.Failed)
	return report, nil
}

// translateStep rewrites report.Text into the filter's target language when
// one is active. Translation failure degrades to the original text with a
// warning; it never fails the batch.
func (o *Orchestrator) translateStep(ctx context.Context, report *BatchReport) {
	target := o.catalog.Filter().Language
	if o.pipeline == nil || target == language.Unrestricted {
		return
	}

	out, err := o.pipeline.Translate(ctx, report.Text, language.Auto, target)
	switch {
	case err == nil:
		report.Text = out.Text
		report.Translation = &out
		if out.Warning != "" {
			report.Warnings = append(report.Warnings, out.Warning)
		}
	case errors.Is(err, translate.ErrSameLanguage):
		// Already in the target language.
	default:
		o.log.Warn("translation failed, generating with original text",
			"batch_id", report.ID,
			"target", target,
			"error", err)
		report.Warnings = append(report.Warnings, "translation failed, original text was used")
	}
}

// fanOut issues one generation request per voice and collects outcomes in
// issue order.
func (o *Orchestrator) fanOut(ctx context.Context, report *BatchReport, voices []types.VoiceIdentity) {
	report.Units = make([]UnitResult, len(voices))

	var g errgroup.Group
	g.SetLimit(o.maxParallel)
	for i, voice := range voices {
		report.Units[i].Voice = voice
		g.Go(func() error {
			start := time.Now()
			result, err := o.speech.Generate(ctx, types.GenerationRequest{
				Text:  report.Text,
				Voice: voice,
			})
			if o.metrics != nil {
				o.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds())
				status := "ok"
				if err != nil {
					status = "error"
				}
				o.metrics.RecordGenerationUnit(ctx, string(voice.Kind), status)
			}
			if err != nil {
				report.Units[i].Err = &UnitError{Voice: voice, Err: err}
				return nil
			}
			report.Units[i].Result = result
			return nil
		})
	}
	g.Wait()

	var saved []types.GenerationResult
	for _, u := range report.Units {
		if u.Err != nil {
			report.Failed++
			continue
		}
		report.Succeeded++
		if u.Result.Saved() {
			saved = append(saved, u.Result)
		}
	}
	o.history.Append(saved...)
}

// Preview synthesises the voice's localized sample sentence. Previews are
// free and ephemeral: no credit gate, no history entry, no reconciliation.
func (o *Orchestrator) Preview(ctx context.Context, voice types.VoiceIdentity) (types.GenerationResult, error) {
	if !voice.Previewable() {
		return types.GenerationResult{}, &ValidationError{Reason: "voice is not available for preview"}
	}

	result, err := o.speech.Generate(ctx, types.GenerationRequest{
		Text:    language.SampleText(voice.Language, voice.Name),
		Voice:   voice,
		Preview: true,
	})
	if err != nil {
		return types.GenerationResult{}, &UnitError{Voice: voice, Err: err}
	}
	return result, nil
}
