// Package langdetect guesses the language of freshly typed text so the UI can
// offer a sensible translation source without a backend round-trip.
//
// Detection is trigram-based via whatlanggo and only ever reports languages
// the product supports. The [Debounced] wrapper coalesces keystroke-frequency
// updates into a single detection per pause and guarantees that out-of-order
// completions never overwrite the guess for newer text.
package langdetect

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"github.com/sajina/voicecloneai/internal/language"
	"github.com/sajina/voicecloneai/internal/observe"
)

// DefaultMinSample is the minimum number of code points before detection is
// attempted. Trigram detection on shorter samples is noise.
const DefaultMinSample = 10

// DefaultDelay is the default debounce interval for [Debounced].
const DefaultDelay = 300 * time.Millisecond

// Guess is one detection result.
type Guess struct {
	// Language is the detected language code, always from the supported
	// table.
	Language string

	// Confidence is the detector's confidence in [0, 1].
	Confidence float64

	// Reliable reports whether the detector considered the sample
	// unambiguous.
	Reliable bool
}

// ---- Detector ----

// Option is a functional option for configuring a Detector.
type Option func(*Detector)

// WithMinSample overrides the minimum sample length in code points.
func WithMinSample(n int) Option {
	return func(d *Detector) {
		d.minSample = n
	}
}

// WithMetrics enables detection latency recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(d *Detector) {
		d.metrics = m
	}
}

// Detector performs synchronous language detection. It is stateless and safe
// for concurrent use.
type Detector struct {
	minSample int
	metrics   *observe.Metrics
}

// NewDetector creates a Detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{minSample: DefaultMinSample}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Detect guesses the language of text. It returns false when the trimmed
// sample is shorter than the minimum, when detection fails, or when the
// detected language is not in the supported table.
func (d *Detector) Detect(text string) (Guess, bool) {
	sample := strings.TrimSpace(text)
	if utf8.RuneCountInString(sample) < d.minSample {
		return Guess{}, false
	}

	if d.metrics != nil {
		start := time.Now()
		defer func() {
			d.metrics.DetectionDuration.Record(context.Background(), time.Since(start).Seconds())
		}()
	}

	info := whatlanggo.Detect(sample)
	code := info.Lang.Iso6391()
	if code == "" || !language.IsSupported(code) {
		return Guess{}, false
	}
	return Guess{
		Language:   code,
		Confidence: info.Confidence,
		Reliable:   info.IsReliable(),
	}, true
}

// ---- Debounced ----

// Debounced wraps a Detector behind a debounce timer. Each Observe restarts
// the timer; when the text finally rests, one detection runs and its outcome
// becomes the latest guess. Observations are stamped so a detection that
// loses the race against newer text is discarded instead of applied.
//
// The zero value is not usable; construct with [NewDebounced]. Safe for
// concurrent use.
type Debounced struct {
	det   *Detector
	delay time.Duration
	emit  func(Guess, bool)

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	latest Guess
	hasAny bool
}

// NewDebounced creates a debounced detector. emit may be nil; when set it is
// invoked from a timer goroutine with each applied outcome, including
// (Guess{}, false) when the rested text yields no detection, so callers can
// clear a stale guess.
func NewDebounced(det *Detector, delay time.Duration, emit func(Guess, bool)) *Debounced {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debounced{det: det, delay: delay, emit: emit}
}

// Observe registers the latest text. Any pending detection for older text is
// cancelled.
func (db *Debounced) Observe(text string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.gen++
	gen := db.gen

	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.delay, func() {
		db.detect(gen, text)
	})
}

// Reset drops any pending detection and clears the latest guess. Used when
// the caller switches to an explicit source language or clears the text.
func (db *Debounced) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.gen++
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
	db.latest = Guess{}
	db.hasAny = false
}

// Latest returns the most recently applied guess, if any.
func (db *Debounced) Latest() (Guess, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.latest, db.hasAny
}

func (db *Debounced) detect(gen uint64, text string) {
	guess, ok := db.det.Detect(text)

	// Apply only if no newer observation arrived while detecting.
	db.mu.Lock()
	if gen != db.gen {
		db.mu.Unlock()
		return
	}
	db.latest = guess
	db.hasAny = ok
	db.mu.Unlock()

	if db.emit != nil {
		db.emit(guess, ok)
	}
}
