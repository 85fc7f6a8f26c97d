// Package mock provides a controllable test double for the audio.Player
// interface. Playbacks started on the mock stay active until the test
// finishes them via Handle.Finish or the caller stops them.
package mock

import (
	"io"
	"sync"

	"github.com/sajina/voicecloneai/pkg/audio"
)

// Compile-time interface assertions.
var (
	_ audio.Player = (*Player)(nil)
	_ audio.Handle = (*Handle)(nil)
)

// PlayCall records a single invocation of Play.
type PlayCall struct {
	// Format is the format passed to Play.
	Format audio.Format
	// Data is the fully drained content of the reader passed to Play.
	Data []byte
}

// Player is a mock implementation of audio.Player.
type Player struct {
	mu sync.Mutex

	// PlayErr, if non-nil, is returned by Play instead of starting a handle.
	PlayErr error

	// PlayCalls records every call to Play in order.
	PlayCalls []PlayCall

	// Handles records every handle returned by Play in order. Tests use
	// these to finish or fail playbacks on demand.
	Handles []*Handle
}

// Play drains and closes r, records the call, and returns a new live Handle.
func (p *Player) Play(format audio.Format, r io.ReadCloser) (audio.Handle, error) {
	data, _ := io.ReadAll(r)
	r.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.PlayCalls = append(p.PlayCalls, PlayCall{Format: format, Data: data})
	if p.PlayErr != nil {
		return nil, p.PlayErr
	}
	h := &Handle{done: make(chan struct{})}
	p.Handles = append(p.Handles, h)
	return h, nil
}

// Last returns the most recently created handle, or nil if none exist.
func (p *Player) Last() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Handles) == 0 {
		return nil
	}
	return p.Handles[len(p.Handles)-1]
}

// Handle is a mock audio.Handle whose lifecycle is driven by the test.
type Handle struct {
	mu      sync.Mutex
	err     error
	done    chan struct{}
	stopped bool
}

// Stop marks the handle stopped and closes Done.
func (h *Handle) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
	h.finish(nil)
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Stopped reports whether Stop was called on this handle.
func (h *Handle) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Finish simulates the playback ending naturally.
func (h *Handle) Finish() {
	h.finish(nil)
}

// Fail simulates the playback failing mid-stream.
func (h *Handle) Fail(err error) {
	h.finish(err)
}

func (h *Handle) finish(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return
	default:
	}
	h.err = err
	close(h.done)
}
