// Package beep implements audio.Player on the system speaker using the
// faiface/beep toolkit. MP3 and WAV streams are supported.
package beep

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/sajina/voicecloneai/pkg/audio"
)

// Compile-time interface assertions.
var (
	_ audio.Player = (*Player)(nil)
	_ audio.Handle = (*handle)(nil)
)

// speakerBuf is the speaker buffer length. A tenth of a second keeps latency
// low without audible underruns.
const speakerBuf = time.Second / 10

// ---- options ----

// Option is a functional option for configuring a Player.
type Option func(*Player)

// WithVolume sets the playback volume in dB relative to the source
// (negative values attenuate). Defaults to 0 dB.
func WithVolume(db float64) Option {
	return func(p *Player) {
		p.volumeDB = db
	}
}

// ---- Player ----

// Player plays audio streams on the system speaker. It is safe for
// concurrent use, though the speaker device itself mixes whatever is
// playing; exclusive playback is the caller's policy.
type Player struct {
	mu       sync.Mutex // serialises speaker re-initialisation
	volumeDB float64
}

// New creates a speaker-backed Player.
func New(opts ...Option) *Player {
	p := &Player{}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Play decodes r and starts asynchronous playback. The stream is closed when
// playback ends.
func (p *Player) Play(format audio.Format, r io.ReadCloser) (audio.Handle, error) {
	var (
		streamer beep.StreamSeekCloser
		sfmt     beep.Format
		err      error
	)
	switch format {
	case audio.FormatWAV:
		streamer, sfmt, err = wav.Decode(r)
	case audio.FormatMP3:
		streamer, sfmt, err = mp3.Decode(r)
	default:
		r.Close()
		return nil, fmt.Errorf("beep: unsupported audio format %q", format)
	}
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("beep: decode %s stream: %w", format, err)
	}

	// The speaker must be (re-)initialised to the stream's sample rate.
	// Re-initialising drops anything still playing, which matches the
	// exclusive-playback policy of every caller in this codebase.
	p.mu.Lock()
	err = speaker.Init(sfmt.SampleRate, sfmt.SampleRate.N(speakerBuf))
	p.mu.Unlock()
	if err != nil {
		streamer.Close()
		return nil, fmt.Errorf("beep: init speaker: %w", err)
	}

	h := &handle{done: make(chan struct{})}
	vol := &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   p.volumeDB,
	}
	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		h.finish(streamer.Err())
		streamer.Close()
	})))
	h.streamer = streamer
	return h, nil
}

// ---- handle ----

type handle struct {
	streamer beep.StreamSeekCloser

	mu   sync.Mutex
	err  error
	done chan struct{}
}

func (h *handle) Stop() {
	// Clearing the speaker detaches the streamer; the end-of-seq callback
	// never fires for a cleared stream, so finish here.
	speaker.Clear()
	h.finish(nil)
}

func (h *handle) Done() <-chan struct{} {
	return h.done
}

func (h *handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *handle) finish(err error) {
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
