// Package audio defines the playback abstraction used by the playback
// controller: a Player that starts asynchronous playback of a decoded audio
// stream and returns a Handle to observe and stop it.
//
// The beep subpackage implements Player against the system speaker; the mock
// subpackage provides a controllable test double.
package audio

import "io"

// Format identifies the container format of an audio stream.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
)

// FormatForRef guesses the audio format from a file reference. Generated
// audio is served as MP3 unless the reference says otherwise.
func FormatForRef(ref string) Format {
	if len(ref) >= 4 && ref[len(ref)-4:] == ".wav" {
		return FormatWAV
	}
	return FormatMP3
}

// Handle observes and controls one in-progress playback.
type Handle interface {
	// Stop halts playback. Safe to call multiple times and after the
	// playback has already finished.
	Stop()

	// Done is closed when playback ends, whether it finished naturally,
	// was stopped, or failed.
	Done() <-chan struct{}

	// Err returns the playback failure, or nil if playback finished
	// naturally or was stopped. Only valid after Done is closed.
	Err() error
}

// Player starts playback of audio streams. Implementations must be safe for
// concurrent use; starting a new playback while another is active is the
// caller's policy to enforce, not the player's.
type Player interface {
	// Play starts asynchronous playback of the audio in r. The player takes
	// ownership of r and closes it when playback ends. Returns a non-nil
	// error only if playback cannot be started (e.g. the stream can not be
	// decoded); failures during playback are reported via the handle.
	Play(format Format, r io.ReadCloser) (Handle, error)
}
