// Package playback owns the process-wide audio output. At most one clip is
// ever audible: starting a clip stops whatever was playing, and toggling the
// clip that is already playing stops it without a restart.
//
// The controller tracks a small per-key state machine (idle, loading,
// playing). Loading is asynchronous; every transition carries a generation
// stamp so a slow load or a stale done-signal can never clobber the state of
// a newer playback.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sajina/voicecloneai/internal/observe"
	"github.com/sajina/voicecloneai/pkg/audio"
	"github.com/sajina/voicecloneai/pkg/provider"
)

// Slot namespaces playback keys by UI surface.
type Slot string

const (
	// SlotPreview is a voice card's audition clip.
	SlotPreview Slot = "preview"

	// SlotHistory is a generated result in the session history.
	SlotHistory Slot = "history"
)

// Key identifies one playable clip.
type Key struct {
	Slot Slot
	ID   string
}

func (k Key) String() string {
	return string(k.Slot) + "/" + k.ID
}

// Status is the controller's state for a key.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPlaying
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Error wraps a failure to load or play a clip.
type Error struct {
	Key Key
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("playback: %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Source resolves a key to the audio reference to fetch. Preview keys may
// trigger an on-the-fly generation here.
type Source func(ctx context.Context, key Key) (string, error)

// ---- options ----

// Option is a functional option for configuring a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithMetrics enables metric recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// ---- Controller ----

// Controller is the exclusive playback state machine. Safe for concurrent
// use.
type Controller struct {
	source  Source
	fetcher provider.AudioFetcher
	player  audio.Player
	log     *slog.Logger
	metrics *observe.Metrics

	mu      sync.Mutex
	current Key
	status  Status
	handle  audio.Handle
	gen     uint64
}

// New creates a Controller. source resolves keys to audio refs, fetcher
// retrieves the audio, player makes it audible.
func New(source Source, fetcher provider.AudioFetcher, player audio.Player, opts ...Option) *Controller {
	c := &Controller{
		source:  source,
		fetcher: fetcher,
		player:  player,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Toggle starts the clip for key, or stops it when it is the one currently
// loading or playing. Starting implicitly stops any other active clip first.
// Toggle blocks through the load; by the time it returns without error the
// clip is audible.
func (c *Controller) Toggle(ctx context.Context, key Key) error {
	c.mu.Lock()

	if c.status != StatusIdle && c.current == key {
		// Toggle off. A pending load for this key sees the stamp change
		// and abandons its result.
		c.stopLocked()
		c.mu.Unlock()
		return nil
	}

	if c.status != StatusIdle {
		c.stopLocked()
	}

	c.gen++
	gen := c.gen
	c.current = key
	c.status = StatusLoading
	c.mu.Unlock()

	ref, err := c.source(ctx, key)
	if err != nil {
		c.abandon(gen)
		return &Error{Key: key, Err: err}
	}

	stream, err := c.fetcher.Fetch(ctx, ref)
	if err != nil {
		c.abandon(gen)
		return &Error{Key: key, Err: err}
	}

	handle, err := c.player.Play(audio.FormatForRef(ref), stream)
	if err != nil {
		c.abandon(gen)
		return &Error{Key: key, Err: err}
	}

	c.mu.Lock()
	if gen != c.gen {
		// Something newer took over while we were loading.
		c.mu.Unlock()
		handle.Stop()
		return nil
	}
	c.handle = handle
	c.status = StatusPlaying
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordPlaybackStart(ctx, string(key.Slot))
	}
	go c.watch(gen, key, handle)
	return nil
}

// Stop halts whatever is active.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Status returns the state of key.
func (c *Controller) Status(key Key) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != key {
		return StatusIdle
	}
	return c.status
}

// Active returns the active key, if any clip is loading or playing.
func (c *Controller) Active() (Key, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusIdle {
		return Key{}, false
	}
	return c.current, true
}

// stopLocked must be called with c.mu held.
func (c *Controller) stopLocked() {
	c.gen++
	if c.handle != nil {
		c.handle.Stop()
		c.handle = nil
	}
	c.status = StatusIdle
}

// abandon resets to idle unless a newer playback already owns the state.
func (c *Controller) abandon(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.status = StatusIdle
	c.handle = nil
}

// watch clears the state when the clip ends on its own.
func (c *Controller) watch(gen uint64, key Key, handle audio.Handle) {
	<-handle.Done()

	c.mu.Lock()
	if gen == c.gen {
		c.status = StatusIdle
		c.handle = nil
	}
	c.mu.Unlock()

	if err := handle.Err(); err != nil {
		c.log.Warn("playback ended with error",
			"key", key.String(),
			"error", err)
	}
}
